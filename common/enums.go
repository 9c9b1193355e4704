// Package common keeps types shared by extraction and preview pipelines
// which do not belong to any of them in particular.
package common

//go:generate go tool go-enum --names --values

// Kind of placeholder produced from a styled element.
// ENUM(text, image)
type PlaceholderKind int

// SelectorPrefix returns id selector prefix used by template authors for
// placeholders of this kind.
func (k PlaceholderKind) SelectorPrefix() string {
	switch k {
	case PlaceholderKindText:
		return "#text"
	case PlaceholderKindImage:
		return "#element"
	default:
		// this should never happen
		panic("unsupported placeholder kind")
	}
}

// Tag returns the only HTML element name allowed for placeholders of this kind.
func (k PlaceholderKind) Tag() string {
	switch k {
	case PlaceholderKindText:
		return "h2"
	case PlaceholderKindImage:
		return "img"
	default:
		// this should never happen
		panic("unsupported placeholder kind")
	}
}
