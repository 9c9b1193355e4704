package css

import (
	"regexp"
	"strings"
	"unicode"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
// Backslashes and double quotes are escaped per CSS syntax: \" and \\.
func cssEscapeDoubleQuoted(s string) string {
	// Fast path: nothing to escape.
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Value represents a parsed CSS property value.
type Value struct {
	Raw       string  // Serialized value, strings always in double quotes (e.g. "24px", "\"Open Sans\", serif")
	Value     float64 // Numeric value if applicable
	Unit      string  // Unit if applicable: "em", "px", "%", "pt", etc.
	Keyword   string  // Keyword if applicable: "bold", "center", "#ff0000"
	Important bool    // Declaration was marked !important
}

// IsNumeric returns true if the value has a numeric component.
// This includes explicit zero values like "0" or "0px".
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	// "0" has neither unit nor non-zero value
	if v.Raw != "" && v.Keyword == "" {
		first := rune(v.Raw[0])
		if unicode.IsDigit(first) || first == '.' || first == '-' || first == '+' {
			return true
		}
	}
	return false
}

// Rule is a single style rule: selector text and its declaration block.
// Grouped selectors ("a, b { ... }") produce one Rule per selector.
type Rule struct {
	Selector   string           // Selector text as written, whitespace collapsed
	Properties map[string]Value // Lower-cased property name -> value, last declaration wins
	Order      []string         // Property names in order of first appearance
}

// GetProperty returns the value for a property, or empty Value if not found.
func (r Rule) GetProperty(name string) (Value, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// Declarations returns raw declaration block as property -> serialized value.
func (r Rule) Declarations() map[string]string {
	out := make(map[string]string, len(r.Properties))
	for name, v := range r.Properties {
		out[name] = v.Raw
	}
	return out
}

// FontFace represents an @font-face declaration.
type FontFace struct {
	Family string // font-family value, unquoted
	Src    string // src value as written
	Style  string // font-style: normal, italic
	Weight string // font-weight: normal, bold, 400, 700
}

// FontSource is a single url() entry of @font-face src.
type FontSource struct {
	URL    string
	Format string // value of format() hint if present, lower-cased
}

var fontSourcePattern = regexp.MustCompile(`url\s*\(\s*(?:"([^"]*)"|'([^']*)'|([^)"']*))\s*\)(?:\s*format\s*\(\s*["']?([^"')]*)["']?\s*\))?`)

// Sources returns url() references from src in declaration order.
func (ff FontFace) Sources() []FontSource {
	var out []FontSource
	for _, m := range fontSourcePattern.FindAllStringSubmatch(ff.Src, -1) {
		u := m[1]
		if u == "" {
			u = m[2]
		}
		if u == "" {
			u = strings.TrimSpace(m[3])
		}
		if u == "" {
			continue
		}
		out = append(out, FontSource{URL: u, Format: strings.ToLower(strings.TrimSpace(m[4]))})
	}
	return out
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of Rule, MediaBlock, FontFace or Import is non-nil.
type StylesheetItem struct {
	Rule       *Rule       // A plain rule (selector + properties)
	MediaBlock *MediaBlock // A @media block containing nested rules
	FontFace   *FontFace   // A @font-face declaration
	Import     *string     // An @import URL
}

// MediaBlock represents a @media block with its query and nested rules.
type MediaBlock struct {
	Query string
	Rules []Rule
}

// Stylesheet represents a parsed CSS stylesheet.
type Stylesheet struct {
	Href     string           // Location of linked stylesheet, empty for inline <style>
	Opaque   bool             // Rules are not accessible (linked stylesheet which was not loaded)
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Warnings for unsupported features
}

// Rules returns top-level rules in source order. Rules nested in @media
// blocks are not included.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

// Imports returns all @import URLs from the stylesheet in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.Import != nil {
			urls = append(urls, *item.Import)
		}
	}
	return urls
}

// FontFaces returns all @font-face declarations with non-empty family in source order.
func (s *Stylesheet) FontFaces() []FontFace {
	var faces []FontFace
	for _, item := range s.Items {
		if item.FontFace != nil && item.FontFace.Family != "" {
			faces = append(faces, *item.FontFace)
		}
	}
	return faces
}
