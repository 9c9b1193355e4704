package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"tmplgen/utils/images"
)

// embedded is an image registered with the document.
type embedded struct {
	name          string
	width, height float64 // intrinsic size, CSS px
}

// brokenImage is drawn in place of images which could not be loaded.
var brokenImage = sync.OnceValue(func() []byte {
	const size = 48
	img := imaging.New(size, size, color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff})
	ink := color.NRGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}
	for i := range size {
		img.SetNRGBA(i, 0, ink)
		img.SetNRGBA(i, size-1, ink)
		img.SetNRGBA(0, i, ink)
		img.SetNRGBA(size-1, i, ink)
		img.SetNRGBA(i, i, ink)
		img.SetNRGBA(size-1-i, i, ink)
	}
	data, err := images.EncodePNG(img)
	if err != nil {
		panic(err)
	}
	return data
})

// targetSize returns pixel size image should be resampled to so it is not
// much denser than the box it is drawn into. Zero means keep.
func (r *PDF) targetSize(b box) (int, int) {
	scale := r.scale()
	return int(math.Ceil(b.width * scale)), int(math.Ceil(b.height * scale))
}

// embedImage fetches and registers image referenced by src.
func (r *PDF) embedImage(ctx context.Context, pdf *gofpdf.Fpdf, src string, b box) (*embedded, error) {
	data, err := r.fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch image: %w", err)
	}

	tw, th := r.targetSize(b)
	var (
		img    image.Image
		out    []byte
		imgTyp string
		iw, ih float64
	)

	switch kind := images.Kind(data); kind {
	case "":
		return nil, errors.New("unsupported image type")
	case "svg":
		rgba, err := images.RasterizeSVG(data, tw, th)
		if err != nil {
			return nil, fmt.Errorf("unable to rasterize svg: %w", err)
		}
		img = rgba
		iw, ih = float64(rgba.Bounds().Dx()), float64(rgba.Bounds().Dy())
		if tw > 0 || th > 0 {
			// intrinsic size of svg is the box it was fitted to
			iw, ih = iw/r.scale(), ih/r.scale()
		}
	default:
		decoded, format, err := images.Decode(data)
		if err != nil {
			return nil, err
		}
		iw, ih = float64(decoded.Bounds().Dx()), float64(decoded.Bounds().Dy())
		img = decoded

		resized := false
		if w, h := shrink(decoded.Bounds().Dx(), decoded.Bounds().Dy(), tw, th); w > 0 {
			img = imaging.Resize(decoded, w, h, imaging.Lanczos)
			resized = true
		}
		if format == "jpeg" && !resized {
			out, imgTyp = data, "JPG"
		}
		r.log.Debug("Image decoded", zap.String("src", clip(src)), zap.String("format", format), zap.Bool("resized", resized))
	}

	if out == nil {
		if images.IsOpaque(img) {
			out, err = images.EncodeJPEG(img, r.opts.JPEGQuality, int16(96*r.scale()))
			imgTyp = "JPG"
		} else {
			out, err = images.EncodePNG(img)
			imgTyp = "PNG"
		}
		if err != nil {
			return nil, fmt.Errorf("unable to encode image: %w", err)
		}
	}
	return r.register(pdf, out, imgTyp, iw, ih)
}

func (r *PDF) register(pdf *gofpdf.Fpdf, data []byte, imgTyp string, w, h float64) (*embedded, error) {
	r.images++
	e := &embedded{name: fmt.Sprintf("img%05d", r.images), width: w, height: h}
	pdf.RegisterImageOptionsReader(e.name, gofpdf.ImageOptions{ImageType: imgTyp}, bytes.NewReader(data))
	if err := pdf.Error(); err != nil {
		pdf.ClearError()
		return nil, fmt.Errorf("unable to register image: %w", err)
	}
	return e, nil
}

// embedBroken registers broken image placeholder.
func (r *PDF) embedBroken(pdf *gofpdf.Fpdf) (*embedded, error) {
	return r.register(pdf, brokenImage(), "PNG", 48, 48)
}

// shrink returns size image of w×h should be downsampled to in order to
// fit target box, or 0 when no resampling is necessary. Images are never
// enlarged.
func shrink(w, h, tw, th int) (int, int) {
	switch {
	case tw > 0 && th > 0:
		if w > tw || h > th {
			return min(w, tw), min(h, th)
		}
	case tw > 0:
		if w > tw {
			return tw, max(int(math.Round(float64(h)*float64(tw)/float64(w))), 1)
		}
	case th > 0:
		if h > th {
			return max(int(math.Round(float64(w)*float64(th)/float64(h))), 1), th
		}
	}
	return 0, 0
}

// drawSize resolves size image is drawn at, CSS px.
func drawSize(e *embedded, b box) (float64, float64) {
	switch {
	case b.width > 0 && b.height > 0:
		return b.width, b.height
	case b.width > 0 && e.width > 0:
		return b.width, b.width * e.height / e.width
	case b.height > 0 && e.height > 0:
		return b.height * e.width / e.height, b.height
	}
	return e.width, e.height
}

// clip shortens data URLs for logging.
func clip(s string) string {
	if len(s) > 96 {
		return s[:96] + "..."
	}
	return s
}
