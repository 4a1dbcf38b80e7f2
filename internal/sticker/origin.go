package sticker

import "context"

type originKey struct{}

// WithOrigin tags ctx with the surface a render request came from, such as
// "inline", "message", "http" or "cli". Metrics and recorded events carry
// the tag; untagged contexts report "unknown".
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func originFrom(ctx context.Context) string {
	if origin, ok := ctx.Value(originKey{}).(string); ok && origin != "" {
		return origin
	}
	return "unknown"
}
