// Package raster turns preview markup into a single fixed size PDF page.
// Only absolutely positioned images and text blocks are drawn, which is all
// preview templates produce.
package raster

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"tmplgen/common"
	"tmplgen/css"
	"tmplgen/dom"
	"tmplgen/misc"
)

// drawable lists elements rasterizer knows how to paint.
const drawable = "img, h1, h2, h3, h4, h5, h6, p, div, span"

// Options controls page geometry and asset handling.
type Options struct {
	Width       int     // page width, CSS px
	Height      int     // page height, CSS px
	Fonts       bool    // embed fonts declared by linked stylesheets
	UseBroken   bool    // draw placeholder instead of failing on unreadable images
	ScaleFactor float64 // image pixels per CSS px
	JPEGQuality int
}

// PDF rasterizes markup into PDF document. It is not safe for concurrent use.
type PDF struct {
	fetcher *Fetcher
	opts    Options
	log     *zap.Logger

	images int
}

// NewPDF returns rasterizer fetching assets with fetcher.
func NewPDF(fetcher *Fetcher, opts Options, log *zap.Logger) *PDF {
	if opts.JPEGQuality <= 0 || opts.JPEGQuality > 100 {
		opts.JPEGQuality = 90
	}
	return &PDF{fetcher: fetcher, opts: opts, log: log.Named("raster")}
}

func (r *PDF) scale() float64 {
	if r.opts.ScaleFactor <= 0 {
		return 1
	}
	return r.opts.ScaleFactor
}

// Rasterize draws markup and writes resulting PDF to w.
func (r *PDF) Rasterize(ctx context.Context, markup []byte, w io.Writer) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.opts.Width <= 0 || r.opts.Height <= 0 {
		return fmt.Errorf("%w: bad page size %dx%d", common.ErrRendering, r.opts.Width, r.opts.Height)
	}

	page, err := dom.NewEngine(r.log).NewPage(ctx)
	if err != nil {
		return fmt.Errorf("%w: unable to open page: %w", common.ErrRendering, err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			err = multierr.Append(err, fmt.Errorf("%w: unable to close page: %w", common.ErrRendering, cerr))
		}
	}()

	if err := page.SetContent(ctx, markup); err != nil {
		return fmt.Errorf("%w: unable to load markup: %w", common.ErrRendering, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("unable to generate document id: %w", err)
	}
	log := r.log.With(zap.Stringer("id", id))

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(r.opts.Width) * pxToPt, Ht: float64(r.opts.Height) * pxToPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetCreator(misc.GetAppName()+" "+misc.GetVersion(), true)
	pdf.SetSubject("preview "+id.String(), true)
	pdf.AddPage()

	r.images = 0
	err = page.Evaluate(ctx, func(doc *dom.Document) error {
		return r.draw(ctx, pdf, doc, log)
	})
	if err != nil {
		if errors.Is(err, common.ErrRendering) || ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", common.ErrRendering, err)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("%w: unable to write pdf: %w", common.ErrRendering, err)
	}
	log.Debug("Page rasterized", zap.Int("width", r.opts.Width), zap.Int("height", r.opts.Height), zap.Int("images", r.images))
	return nil
}

func (r *PDF) draw(ctx context.Context, pdf *gofpdf.Fpdf, doc *dom.Document, log *zap.Logger) error {
	fonts := r.loadFonts(ctx, pdf, doc.StyleSheets())

	elements, err := doc.QuerySelectorAll(drawable)
	if err != nil {
		return err
	}

	m := metrics{pageW: float64(r.opts.Width), pageH: float64(r.opts.Height)}
	parser := css.NewParser(r.log)
	for _, el := range elements {
		if err := ctx.Err(); err != nil {
			return err
		}

		style := parser.ParseInline(el.Style())
		if !positioned(style) {
			log.Debug("Element is not absolutely positioned, skipping", zap.String("tag", el.TagName()), zap.String("id", el.ID()))
			continue
		}

		if el.TagName() == "img" {
			if err := r.drawImage(ctx, pdf, el, m.box(style), log); err != nil {
				return err
			}
			continue
		}
		drawText(pdf, fonts, el.InnerText(), m.text(el.TagName(), style), m.pageW)
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("unable to draw text of '%s': %w", el.ID(), err)
		}
	}
	return nil
}

func positioned(r css.Rule) bool {
	v, ok := r.GetProperty("position")
	return ok && (v.Keyword == "absolute" || v.Keyword == "fixed")
}

func (r *PDF) drawImage(ctx context.Context, pdf *gofpdf.Fpdf, el *dom.Element, b box, log *zap.Logger) error {
	src := el.Src()
	if src == "" {
		log.Debug("Image has no source, skipping", zap.String("id", el.ID()))
		return nil
	}

	e, err := r.embedImage(ctx, pdf, src, b)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !r.opts.UseBroken {
			return fmt.Errorf("unable to load image '%s': %w", clip(src), err)
		}
		log.Warn("Unable to load image, substituting placeholder", zap.String("id", el.ID()), zap.String("src", clip(src)), zap.Error(err))
		if e, err = r.embedBroken(pdf); err != nil {
			return err
		}
	}

	w, h := drawSize(e, b)
	pdf.ImageOptions(e.name, b.left*pxToPt, b.top*pxToPt, w*pxToPt, h*pxToPt, false,
		gofpdf.ImageOptions{AllowNegativePosition: true}, 0, "")
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("unable to draw image '%s': %w", clip(src), err)
	}
	return nil
}

// drawText paints text block. Without explicit width the block extends to
// the right edge of the page and is not aligned.
func drawText(pdf *gofpdf.Fpdf, fonts *fontSet, text string, s textStyle, pageW float64) {
	if text == "" {
		return
	}

	tr := fonts.selectFont(pdf, s.family, s.fontStyle(), s.size*pxToPt)
	cr, cg, cb := s.color.Clamped().RGB255()
	pdf.SetTextColor(int(cr), int(cg), int(cb))

	width, align := s.width, s.align
	if width <= 0 {
		width, align = pageW-s.left, "L"
	}
	if width <= 0 {
		width = pageW
	}

	pdf.SetXY(s.left*pxToPt, s.top*pxToPt)
	pdf.MultiCell(width*pxToPt, s.size*lineHeight*pxToPt, tr(text), "", align, false)
}
