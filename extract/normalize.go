package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"tmplgen/certificate"
	"tmplgen/common"
)

// propertyNames maps CSS property names to template field names. Properties
// missing here are kept under their CSS name and never selected.
var propertyNames = map[string]string{
	"top":         "top",
	"left":        "left",
	"width":       "width",
	"height":      "height",
	"font-weight": "fontWeight",
	"font-size":   "fontSize",
	"font-family": "fontFamily",
	"color":       "color",
}

// numberPattern splits numeric value from optional unit suffix. Units are
// case-insensitive as in CSS.
var numberPattern = regexp.MustCompile(`^([+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)\s*((?i:%|em|px|rem|vh|vw))?$`)

var fontWeightKeywords = map[string]float64{
	"normal": 400,
	"bold":   700,
}

// rekey renames declarations to template field names.
func rekey(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for name, value := range raw {
		name = strings.ToLower(strings.TrimSpace(name))
		if field, ok := propertyNames[name]; ok {
			name = field
		}
		out[name] = value
	}
	return out
}

// number converts raw value to a number. Absent and empty values give nil,
// anything not matching numberPattern gives NaN.
func number(raw string, ok bool) *float64 {
	raw = strings.TrimSpace(raw)
	if !ok || raw == "" {
		return nil
	}
	m := numberPattern.FindStringSubmatch(raw)
	if m == nil {
		nan := math.NaN()
		return &nan
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		v = math.NaN()
	}
	return &v
}

func fontWeight(raw string, ok bool) *float64 {
	if v, known := fontWeightKeywords[strings.ToLower(strings.TrimSpace(raw))]; ok && known {
		return &v
	}
	return number(raw, ok)
}

func text(raw string, ok bool) *string {
	if !ok || raw == "" {
		return nil
	}
	return &raw
}

// NormalizeText converts raw declarations into text placeholder style.
func NormalizeText(raw map[string]string) certificate.TextStyle {
	fields := rekey(raw)
	get := func(name string) (string, bool) {
		v, ok := fields[name]
		return v, ok
	}

	style := certificate.TextStyle{
		Top:        number(get("top")),
		Left:       number(get("left")),
		Width:      number(get("width")),
		FontWeight: fontWeight(get("fontWeight")),
		FontSize:   number(get("fontSize")),
		Color:      text(get("color")),
	}
	if ff, ok := get("fontFamily"); ok && ff != "" {
		ff = strings.ReplaceAll(ff, `"`, "")
		style.FontFamily = &ff
	}
	return style
}

// NormalizeImage converts raw declarations into image placeholder style.
func NormalizeImage(raw map[string]string) certificate.ImageStyle {
	fields := rekey(raw)
	get := func(name string) (string, bool) {
		v, ok := fields[name]
		return v, ok
	}

	return certificate.ImageStyle{
		Top:    number(get("top")),
		Left:   number(get("left")),
		Height: number(get("height")),
		Width:  number(get("width")),
	}
}

// Normalize dispatches on placeholder kind returning certificate.TextStyle
// or certificate.ImageStyle. Kinds other than image are treated as text.
func Normalize(raw map[string]string, kind common.PlaceholderKind) any {
	if kind == common.PlaceholderKindImage {
		return NormalizeImage(raw)
	}
	return NormalizeText(raw)
}

// invalidNumbers returns names of fields holding NaN in field order.
func invalidNumbers(fields []string, values ...*float64) []string {
	var bad []string
	for i, v := range values {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			bad = append(bad, fields[i])
		}
	}
	return bad
}

func invalidTextNumbers(s certificate.TextStyle) []string {
	return invalidNumbers([]string{"top", "left", "width", "fontWeight", "fontSize"},
		s.Top, s.Left, s.Width, s.FontWeight, s.FontSize)
}

func invalidImageNumbers(s certificate.ImageStyle) []string {
	return invalidNumbers([]string{"top", "left", "height", "width"},
		s.Top, s.Left, s.Height, s.Width)
}
