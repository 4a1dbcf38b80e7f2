// Package sticker registers the sticker render module. It loads the fonts
// and base icons, assembles the composer and exposes the render service to
// other modules as "render.sticker".
package sticker

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/xinyong-bot/xinyong/internal/core"
	"github.com/xinyong-bot/xinyong/internal/layout"
	"github.com/xinyong-bot/xinyong/internal/render"
	stickersvc "github.com/xinyong-bot/xinyong/internal/sticker"
)

func init() {
	core.RegisterModule(&Module{})
}

// Interface guards.
var (
	_ core.Module       = (*Module)(nil)
	_ core.Configurable = (*Module)(nil)
	_ core.Provisioner  = (*Module)(nil)
	_ core.Validator    = (*Module)(nil)
)

// Module provides sticker rendering backed by on-disk fonts and icons.
type Module struct {
	config  Config
	logger  *slog.Logger
	assets  *render.Assets
	service *stickersvc.Service
}

// ModuleInfo implements core.Module.
func (m *Module) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  "render.sticker",
		New: func() core.Module { return &Module{} },
	}
}

// Configure implements core.Configurable.
func (m *Module) Configure(node *yaml.Node) error {
	if err := node.Decode(&m.config); err != nil {
		return fmt.Errorf("render.sticker: parsing config: %w", err)
	}
	return nil
}

// Provision implements core.Provisioner. It builds the asset loader and the
// render service and registers them as "render.assets" and "render.sticker".
func (m *Module) Provision(ctx *core.AppContext) error {
	m.logger = ctx.Logger

	dir := m.config.AssetsDir
	if dir == "" {
		dir = ctx.AssetsDir
	}
	m.assets = render.NewAssets(dir)

	m.service = stickersvc.NewService(render.NewComposer(m.assets), layout.Suffixes{
		Han:        m.config.HanSuffix,
		LatinFull:  m.config.LatinSuffixFull,
		LatinShort: m.config.LatinSuffixShort,
	}, ctx.Logger)

	ctx.RegisterService("render.sticker", m.service)
	ctx.RegisterService("render.assets", m.assets)

	m.logger.Info("sticker render module provisioned", "assets_dir", dir)
	return nil
}

// Validate implements core.Validator. It loads every asset once so a missing
// or corrupt font fails startup instead of the first render.
func (m *Module) Validate() error {
	if m.assets == nil {
		return errors.New("render.sticker: module not provisioned")
	}
	if err := m.config.validate(); err != nil {
		return err
	}
	return m.assets.Verify()
}

// Service returns the provisioned render service.
func (m *Module) Service() *stickersvc.Service {
	return m.service
}
