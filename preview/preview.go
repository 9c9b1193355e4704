// Package preview renders a template document back into markup with
// positional identities assigned and rasterizes it to a fixed size page.
package preview

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"tmplgen/certificate"
	"tmplgen/common"
)

// Rasterizer turns markup into a fixed size document written to w.
type Rasterizer interface {
	Rasterize(ctx context.Context, markup []byte, w io.Writer) error
}

// Preview renders t and rasterizes resulting markup into w. Returned markup
// is valid whenever template expansion succeeded.
func Preview(ctx context.Context, t *certificate.Template, opts RenderOptions, r Rasterizer, w io.Writer, log *zap.Logger) ([]byte, error) {
	markup, err := Render(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	log.Debug("Preview markup rendered", zap.Int("bytes", len(markup)), zap.Int("texts", len(t.Texts)), zap.Int("elements", len(t.Elements)))

	if err := r.Rasterize(ctx, markup, w); err != nil {
		if errors.Is(err, common.ErrRendering) {
			return markup, err
		}
		return markup, fmt.Errorf("%w: %w", common.ErrRendering, err)
	}
	return markup, nil
}
