package render

import (
	"bytes"
	"fmt"

	"github.com/HugoSmits86/nativewebp"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/xinyong-bot/xinyong/internal/layout"
)

// The canvas works in millimeters. Rasterizing at one dot per millimeter
// makes one canvas unit equal one pixel, so font sizes in pixels convert to
// points before building a face.
const mmToPt = 72.0 / 25.4

// Text shadow offset in pixels. The black copy draws first, the white copy
// on top of it at the nominal position.
const shadowOffset = 4

// Composer turns layout plans into encoded sticker images.
type Composer struct {
	assets *Assets
}

// NewComposer creates a composer drawing with the given assets.
func NewComposer(assets *Assets) *Composer {
	return &Composer{assets: assets}
}

// Compose draws the plan over the base icon for the given sign and returns
// the lossless WebP encoding of the result.
func (c *Composer) Compose(plan layout.Plan, positive bool) ([]byte, error) {
	base, err := c.assets.Icon(positive)
	if err != nil {
		return nil, err
	}

	cv := canvas.New(Width, Height)
	ctx := canvas.NewContext(cv)
	ctx.SetCoordSystem(canvas.CartesianIV)
	ctx.DrawImage(0, 0, base, canvas.DPMM(1.0))

	for _, in := range plan {
		if err := c.drawInstruction(ctx, in); err != nil {
			return nil, err
		}
	}

	img := rasterizer.Draw(cv, canvas.DPMM(1.0), canvas.DefaultColorSpace)

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("render: encoding webp: %w", err)
	}
	return buf.Bytes(), nil
}

// drawInstruction renders one line of text with its drop shadow. DrawText
// places the baseline at the given y, matching the plan's coordinates.
func (c *Composer) drawInstruction(ctx *canvas.Context, in layout.Instruction) error {
	family, err := c.family(in.Script)
	if err != nil {
		return err
	}
	sizePt := sizePx(in.Script, in.Tier) * mmToPt

	shadow := family.Face(sizePt, canvas.Black, canvas.FontRegular, canvas.FontNormal)
	fill := family.Face(sizePt, canvas.White, canvas.FontRegular, canvas.FontNormal)

	x, y := float64(in.X), float64(in.Y)
	ctx.DrawText(x+shadowOffset, y+shadowOffset, canvas.NewTextLine(shadow, in.Text, canvas.Left))
	ctx.DrawText(x, y, canvas.NewTextLine(fill, in.Text, canvas.Left))
	return nil
}

func (c *Composer) family(s layout.Script) (*canvas.FontFamily, error) {
	if s == layout.ScriptHan {
		return c.assets.CJKFamily()
	}
	return c.assets.LatinFamily()
}

// sizePx maps a script and tier to a glyph size in pixels. Latin text only
// distinguishes large from everything else.
func sizePx(s layout.Script, t layout.Tier) float64 {
	if s == layout.ScriptLatin {
		if t == layout.TierLarge {
			return 29
		}
		return 24
	}
	switch t {
	case layout.TierLarge:
		return 40
	case layout.TierMedium:
		return 36
	case layout.TierSmall:
		return 32
	default:
		return 28
	}
}
