package raster

import (
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"tmplgen/css"
)

const (
	// pxToPt converts CSS pixels to PDF points.
	pxToPt = 0.75
	// rootFontSize is the size em and rem are relative to, CSS px.
	rootFontSize = 16.0
	// lineHeight is the normal line height factor.
	lineHeight = 1.2
)

// defaultFontSizes are user agent sizes of text elements, em.
var defaultFontSizes = map[string]float64{
	"h1": 2, "h2": 1.5, "h3": 1.17, "h4": 1, "h5": 0.83, "h6": 0.67,
}

// box is the absolutely positioned rectangle of an element, CSS px.
type box struct {
	top, left     float64
	width, height float64 // 0 when not set
}

// textStyle is the part of computed style text drawing needs.
type textStyle struct {
	box
	size   float64 // CSS px
	bold   bool
	italic bool
	family string
	color  colorful.Color
	align  string // gofpdf alignment: L, C, R or J
}

// metrics resolves relative lengths.
type metrics struct {
	pageW, pageH float64
}

// length converts CSS length to px. Percentages are relative to base.
func (m metrics) length(v css.Value, base float64) (float64, bool) {
	if !v.IsNumeric() {
		return 0, false
	}
	switch v.Unit {
	case "", "px":
		return v.Value, true
	case "%":
		return base * v.Value / 100, true
	case "em", "rem":
		return v.Value * rootFontSize, true
	case "pt":
		return v.Value / pxToPt, true
	case "vw":
		return m.pageW * v.Value / 100, true
	case "vh":
		return m.pageH * v.Value / 100, true
	case "in":
		return v.Value * 96, true
	case "cm":
		return v.Value * 96 / 2.54, true
	case "mm":
		return v.Value * 96 / 25.4, true
	}
	return 0, false
}

func (m metrics) box(r css.Rule) box {
	var b box
	if v, ok := r.GetProperty("top"); ok {
		b.top, _ = m.length(v, m.pageH)
	}
	if v, ok := r.GetProperty("left"); ok {
		b.left, _ = m.length(v, m.pageW)
	}
	if v, ok := r.GetProperty("width"); ok {
		b.width, _ = m.length(v, m.pageW)
	}
	if v, ok := r.GetProperty("height"); ok {
		b.height, _ = m.length(v, m.pageH)
	}
	return b
}

func (m metrics) text(tag string, r css.Rule) textStyle {
	s := textStyle{
		box:   m.box(r),
		size:  rootFontSize,
		align: "L",
	}
	if em, ok := defaultFontSizes[tag]; ok {
		s.size = em * rootFontSize
		s.bold = true
	}

	// em and % are relative to inherited size which is the root one here
	if v, ok := r.GetProperty("font-size"); ok {
		if px, ok := m.length(v, rootFontSize); ok && px > 0 {
			s.size = px
		}
	}
	if v, ok := r.GetProperty("font-weight"); ok {
		s.bold = isBold(v)
	}
	if v, ok := r.GetProperty("font-style"); ok {
		s.italic = v.Keyword == "italic" || v.Keyword == "oblique"
	}
	if v, ok := r.GetProperty("font-family"); ok {
		s.family = firstFamily(v.Keyword)
	}
	if v, ok := r.GetProperty("color"); ok {
		if c, ok := parseColor(v.Keyword); ok {
			s.color = c
		}
	}
	if v, ok := r.GetProperty("text-align"); ok {
		switch v.Keyword {
		case "center":
			s.align = "C"
		case "right", "end":
			s.align = "R"
		case "justify":
			s.align = "J"
		}
	}
	return s
}

// fontStyle returns gofpdf style string.
func (s textStyle) fontStyle() string {
	var st string
	if s.bold {
		st += "B"
	}
	if s.italic {
		st += "I"
	}
	return st
}

func isBold(v css.Value) bool {
	switch v.Keyword {
	case "bold", "bolder":
		return true
	case "":
		return v.Value >= 600
	}
	return false
}

// firstFamily returns first entry of font-family list, unquoted.
func firstFamily(list string) string {
	first, _, _ := strings.Cut(list, ",")
	first = strings.TrimSpace(first)
	first = strings.Trim(first, `"'`)
	return first
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"silver":  "#c0c0c0",
	"red":     "#ff0000",
	"maroon":  "#800000",
	"orange":  "#ffa500",
	"yellow":  "#ffff00",
	"olive":   "#808000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"aqua":    "#00ffff",
	"teal":    "#008080",
	"blue":    "#0000ff",
	"navy":    "#000080",
	"fuchsia": "#ff00ff",
	"purple":  "#800080",
	"gold":    "#ffd700",
}

// parseColor understands hex notation, rgb()/rgba() functions and basic
// named colors. Alpha is ignored.
func parseColor(s string) (colorful.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}

	if strings.HasPrefix(s, "#") {
		switch len(s) {
		case 5: // #rgba
			s = s[:4]
		case 9: // #rrggbbaa
			s = s[:7]
		}
		c, err := colorful.Hex(s)
		return c, err == nil
	}

	var args string
	switch {
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		args = s[4 : len(s)-1]
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		args = s[5 : len(s)-1]
	default:
		return colorful.Color{}, false
	}

	parts := strings.FieldsFunc(args, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) < 3 {
		return colorful.Color{}, false
	}
	var rgb [3]float64
	for i := range rgb {
		p := parts[i]
		scale := 255.0
		if strings.HasSuffix(p, "%") {
			p, scale = strings.TrimSuffix(p, "%"), 100
		}
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return colorful.Color{}, false
		}
		rgb[i] = f / scale
	}
	return colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}.Clamped(), true
}
