package raster

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"tmplgen/css"
)

// fallbackFamily is the core PDF font used when family is not available.
const fallbackFamily = "Helvetica"

// fontSet keeps fonts registered with the document.
type fontSet struct {
	// slugged family -> set of registered gofpdf styles
	families  map[string]map[string]bool
	translate func(string) string
}

func newFontSet(pdf *gofpdf.Fpdf) *fontSet {
	return &fontSet{
		families:  make(map[string]map[string]bool),
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func familyKey(family string) string {
	return "f-" + slug.Make(family)
}

func (fs *fontSet) add(family, style string) {
	key := familyKey(family)
	if fs.families[key] == nil {
		fs.families[key] = make(map[string]bool)
	}
	fs.families[key][style] = true
}

// selectFont makes family current and returns function text should be
// passed through before drawing.
func (fs *fontSet) selectFont(pdf *gofpdf.Fpdf, family, style string, sizePt float64) func(string) string {
	if styles, ok := fs.families[familyKey(family)]; ok && family != "" {
		if !styles[style] {
			// embedded faces are never synthesized, first registered one is used
			for _, s := range []string{"", "B", "I", "BI"} {
				if styles[s] {
					style = s
					break
				}
			}
		}
		pdf.SetFont(familyKey(family), style, sizePt)
		return func(s string) string { return s }
	}
	pdf.SetFont(fallbackFamily, style, sizePt)
	return fs.translate
}

// faceStyle maps @font-face descriptors to gofpdf style.
func faceStyle(ff css.FontFace) string {
	var style string
	switch w := strings.ToLower(strings.TrimSpace(ff.Weight)); w {
	case "bold", "bolder":
		style = "B"
	default:
		// ranges ("100 900") use the lower bound
		first, _, _ := strings.Cut(w, " ")
		if n, err := strconv.Atoi(first); err == nil && n >= 600 {
			style = "B"
		}
	}
	switch strings.ToLower(strings.TrimSpace(ff.Style)) {
	case "italic", "oblique":
		style += "I"
	}
	return style
}

// maxImportDepth limits how deep @import chains of font stylesheets are followed.
const maxImportDepth = 4

// loadFonts downloads stylesheets linked from the page, following their
// @import rules, and registers TrueType faces they declare. Failures are
// logged and leave fallback font in place.
func (r *PDF) loadFonts(ctx context.Context, pdf *gofpdf.Fpdf, sheets []*css.Stylesheet) *fontSet {
	fs := newFontSet(pdf)
	if !r.opts.Fonts {
		return fs
	}

	parser := css.NewParser(r.log)
	seen := make(map[string]bool)
	for _, sheet := range sheets {
		if !sheet.Opaque || sheet.Href == "" {
			continue
		}
		if err := r.loadFontSheet(ctx, pdf, parser, fs, sheet.Href, 0, seen); err != nil {
			return fs
		}
	}
	return fs
}

// loadFontSheet registers faces of a single stylesheet and the ones it
// imports. Only context cancellation is returned as an error.
func (r *PDF) loadFontSheet(ctx context.Context, pdf *gofpdf.Fpdf, parser *css.Parser, fs *fontSet, href string, depth int, seen map[string]bool) error {
	if seen[href] {
		return nil
	}
	seen[href] = true

	data, err := r.fetcher.Fetch(ctx, href)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.log.Warn("Unable to load font stylesheet, using fallback font", zap.String("href", href), zap.Error(err))
		return nil
	}

	parsed := parser.Parse(data, href)
	for _, w := range parsed.Warnings {
		r.log.Debug("Font stylesheet problem", zap.String("href", href), zap.String("warning", w))
	}

	for _, imp := range parsed.Imports() {
		ref := resolveRef(href, imp)
		if depth >= maxImportDepth {
			r.log.Warn("Font stylesheet imports are nested too deep, ignoring", zap.String("href", ref))
			continue
		}
		if err := r.loadFontSheet(ctx, pdf, parser, fs, ref, depth+1, seen); err != nil {
			return err
		}
	}

	for _, ff := range parsed.FontFaces() {
		style := faceStyle(ff)
		if styles := fs.families[familyKey(ff.Family)]; styles[style] {
			continue
		}
		if r.loadFace(ctx, pdf, href, ff, style) {
			fs.add(ff.Family, style)
		}
	}
	return nil
}

func (r *PDF) loadFace(ctx context.Context, pdf *gofpdf.Fpdf, base string, ff css.FontFace, style string) bool {
	for _, src := range ff.Sources() {
		switch src.Format {
		case "", "truetype", "opentype":
		default:
			continue
		}

		ref := resolveRef(base, src.URL)
		data, err := r.fetcher.Fetch(ctx, ref)
		if err != nil {
			r.log.Debug("Unable to fetch font", zap.String("family", ff.Family), zap.String("url", ref), zap.Error(err))
			continue
		}
		if !filetype.Is(data, "ttf") {
			r.log.Debug("Font is not TrueType, skipping", zap.String("family", ff.Family), zap.String("url", ref))
			continue
		}

		pdf.AddUTF8FontFromBytes(familyKey(ff.Family), style, data)
		if err := pdf.Error(); err != nil {
			r.log.Warn("Unable to embed font", zap.String("family", ff.Family), zap.String("url", ref), zap.Error(err))
			pdf.ClearError()
			continue
		}
		r.log.Debug("Font embedded", zap.String("family", ff.Family), zap.String("style", style), zap.Int("bytes", len(data)))
		return true
	}
	return false
}

// resolveRef resolves ref relative to base when both are valid URLs.
func resolveRef(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(u).String()
}
