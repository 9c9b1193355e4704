// Package extract turns a hand-authored HTML certificate layout into a
// template document.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tmplgen/certificate"
	"tmplgen/common"
)

// Engine produces pages able to load and evaluate documents.
type Engine interface {
	NewPage(ctx context.Context) (Page, error)
}

// Page is a rendering context. It must be closed exactly once.
type Page interface {
	SetContent(ctx context.Context, src []byte) error
	Evaluate(ctx context.Context, fn func(Document) error) error
	Close() error
}

// Options controls extraction.
type Options struct {
	WarnUnmatched bool
}

// Extract loads src into a new page of engine, classifies placeholders and
// returns normalized template. Page is released on every path.
func Extract(ctx context.Context, engine Engine, src []byte, log *zap.Logger, opts Options) (_ *certificate.Template, err error) {
	page, err := engine.NewPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: unable to open page: %w", common.ErrRendering, err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%w: unable to close page: %w", common.ErrRendering, cerr))
		}
	}()

	if err := page.SetContent(ctx, src); err != nil {
		return nil, fmt.Errorf("%w: unable to load content: %w", common.ErrRendering, err)
	}

	var classified *Classified
	if err := page.Evaluate(ctx, func(doc Document) (err error) {
		classified, err = Classify(doc, log, opts.WarnUnmatched)
		return err
	}); err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: unable to evaluate document: %w", common.ErrRendering, err)
	}

	log.Debug("Placeholders classified", zap.Stringer("placeholders", classified))

	t, err := Build(classified)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Build normalizes classified placeholders into template document. Numeric
// values which cannot be parsed are reported as common.ErrValidation naming
// selector and properties.
func Build(c *Classified) (*certificate.Template, error) {
	t := certificate.New()
	t.BackgroundImage = c.BackgroundImage
	t.FontURL = c.FontURL

	for _, p := range c.Texts {
		style := NormalizeText(p.Declarations)
		if bad := invalidTextNumbers(style); len(bad) > 0 {
			return nil, invalidStyle(p, bad)
		}
		if p.Attribute != "" {
			t.Texts = append(t.Texts, certificate.AttributeText(p.Attribute, style))
		} else {
			t.Texts = append(t.Texts, certificate.LiteralText(p.Text, style))
		}
	}

	for _, p := range c.Elements {
		style := NormalizeImage(p.Declarations)
		if bad := invalidImageNumbers(style); len(bad) > 0 {
			return nil, invalidStyle(p, bad)
		}
		if p.IsLogo {
			t.Elements = append(t.Elements, certificate.LogoImage(style))
		} else {
			t.Elements = append(t.Elements, certificate.URLImage(p.URL, style))
		}
	}
	return t, nil
}

func invalidStyle(p Placeholder, fields []string) error {
	values := make([]string, 0, len(fields))
	for _, f := range fields {
		for name, field := range propertyNames {
			if field == f {
				values = append(values, fmt.Sprintf("%s: %q", name, p.Declarations[name]))
			}
		}
	}
	return fmt.Errorf("%w: rule '%s' has values which are not numbers (%s)",
		common.ErrValidation, p.Selector, strings.Join(values, ", "))
}
