// Package certificate defines the template document produced by extraction
// and consumed by preview: positioned text and image placeholders plus the
// background image and font stylesheet locations.
package certificate

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"tmplgen/utils/debug"
)

// TextStyle is normalized style of a text placeholder. Nil means the
// property was not specified and must not be treated as zero.
type TextStyle struct {
	Top        *float64 `json:"top,omitempty"`
	Left       *float64 `json:"left,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	FontWeight *float64 `json:"fontWeight,omitempty"`
	FontSize   *float64 `json:"fontSize,omitempty"`
	FontFamily *string  `json:"fontFamily,omitempty"`
	Color      *string  `json:"color,omitempty"`
}

// ImageStyle is normalized style of an image placeholder.
type ImageStyle struct {
	Top    *float64 `json:"top,omitempty"`
	Left   *float64 `json:"left,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Width  *float64 `json:"width,omitempty"`
}

// Text is a text placeholder. It is either attribute-bound (value supplied
// later from named attribute) or carries literal text captured at
// extraction time.
type Text struct {
	IsAttribute bool    `json:"isAttribute,omitempty"`
	Attribute   string  `json:"attribute,omitempty"`
	Text        *string `json:"text,omitempty"`
	TextStyle
}

// AttributeText returns attribute-bound text placeholder.
func AttributeText(attribute string, style TextStyle) Text {
	return Text{IsAttribute: true, Attribute: attribute, TextStyle: style}
}

// LiteralText returns text placeholder with fixed text.
func LiteralText(text string, style TextStyle) Text {
	return Text{Text: &text, TextStyle: style}
}

// Image is an image placeholder. It is either a logo (source supplied by the
// caller at render time) or carries literal image URL.
type Image struct {
	IsLogo bool    `json:"isLogo,omitempty"`
	URL    *string `json:"url,omitempty"`
	ImageStyle
}

// LogoImage returns logo image placeholder.
func LogoImage(style ImageStyle) Image {
	return Image{IsLogo: true, ImageStyle: style}
}

// URLImage returns image placeholder with fixed source.
func URLImage(url string, style ImageStyle) Image {
	return Image{URL: &url, ImageStyle: style}
}

// Template is the interchange document between extraction and preview.
// Order of Elements and Texts determines positional identity at render
// time and carries no other meaning.
type Template struct {
	Elements        []Image `json:"elements"`
	Texts           []Text  `json:"texts"`
	BackgroundImage string  `json:"backgroundImage"`
	FontURL         string  `json:"fontUrl"`
}

// New returns empty template with non-nil placeholder lists.
func New() *Template {
	return &Template{Elements: make([]Image, 0), Texts: make([]Text, 0)}
}

// Validate checks document invariants returning all violations found.
func (t *Template) Validate() error {
	var err error
	if t.BackgroundImage == "" {
		err = multierr.Append(err, errors.New("backgroundImage must not be empty"))
	}
	if t.FontURL == "" {
		err = multierr.Append(err, errors.New("fontUrl must not be empty"))
	}
	for i, txt := range t.Texts {
		switch {
		case txt.IsAttribute && (txt.Attribute == "" || txt.Text != nil):
			err = multierr.Append(err, fmt.Errorf("texts[%d]: attribute-bound text must have attribute name and no text", i))
		case !txt.IsAttribute && (txt.Attribute != "" || txt.Text == nil):
			err = multierr.Append(err, fmt.Errorf("texts[%d]: text must be either attribute-bound or literal", i))
		}
		err = multierr.Append(err, checkNumbers(fmt.Sprintf("texts[%d]", i), map[string]*float64{
			"top": txt.Top, "left": txt.Left, "width": txt.Width, "fontWeight": txt.FontWeight, "fontSize": txt.FontSize,
		}))
	}
	for i, img := range t.Elements {
		if img.IsLogo == (img.URL != nil) {
			err = multierr.Append(err, fmt.Errorf("elements[%d]: image must be either logo or have url", i))
		}
		err = multierr.Append(err, checkNumbers(fmt.Sprintf("elements[%d]", i), map[string]*float64{
			"top": img.Top, "left": img.Left, "height": img.Height, "width": img.Width,
		}))
	}
	return err
}

func checkNumbers(where string, values map[string]*float64) error {
	var err error
	for _, name := range []string{"top", "left", "width", "height", "fontWeight", "fontSize"} {
		v, ok := values[name]
		if !ok || v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			err = multierr.Append(err, fmt.Errorf("%s: %s is not a number", where, name))
		}
	}
	return err
}

// String returns readable tree of the template for debugging.
func (t *Template) String() string {
	if t == nil {
		return "<nil Template>"
	}

	tw := debug.NewTreeWriter()
	tw.TextBlock(0, "Background image", t.BackgroundImage)
	tw.TextBlock(0, "Font URL", t.FontURL)

	tw.Line(0, "Texts: %d", len(t.Texts))
	for i, txt := range t.Texts {
		if txt.IsAttribute {
			tw.Line(1, "Text[%d] attribute=%q", i, txt.Attribute)
		} else {
			tw.Line(1, "Text[%d]", i)
			tw.Value(2, "text", txt.Text)
		}
		tw.Value(2, "top", txt.Top)
		tw.Value(2, "left", txt.Left)
		tw.Value(2, "width", txt.Width)
		tw.Value(2, "fontWeight", txt.FontWeight)
		tw.Value(2, "fontSize", txt.FontSize)
		tw.Value(2, "fontFamily", txt.FontFamily)
		tw.Value(2, "color", txt.Color)
	}

	tw.Line(0, "Elements: %d", len(t.Elements))
	for i, img := range t.Elements {
		if img.IsLogo {
			tw.Line(1, "Element[%d] logo", i)
		} else {
			tw.Line(1, "Element[%d]", i)
			tw.Value(2, "url", img.URL)
		}
		tw.Value(2, "top", img.Top)
		tw.Value(2, "left", img.Left)
		tw.Value(2, "height", img.Height)
		tw.Value(2, "width", img.Width)
	}
	return tw.String()
}
