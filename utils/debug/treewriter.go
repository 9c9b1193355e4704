// Package debug produces indented text dumps used in debug reports.
package debug

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
)

// TreeWriter accumulates indented lines, two spaces per level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Value writes optional value. Nil pointers are shown as unset.
func (tw TreeWriter) Value(depth int, label string, v any) {
	var s string
	switch v := v.(type) {
	case *float64:
		if v == nil {
			s = "<unset>"
		} else {
			s = strconv.FormatFloat(*v, 'g', -1, 64)
		}
	case *string:
		if v == nil {
			s = "<unset>"
		} else {
			s = strconv.Quote(*v)
		}
	case string:
		s = strconv.Quote(v)
	case nil:
		s = "<unset>"
	default:
		s = fmt.Sprintf("%v", v)
	}
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(" = ")
	tw.w.WriteString(s)
	tw.w.WriteByte('\n')
}

// Map writes map entries with keys in natural order.
func (tw TreeWriter) Map(depth int, label string, m map[string]string) {
	tw.Line(depth, "%s (%d entries)", label, len(m))
	keys := slices.Collect(maps.Keys(m))
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		tw.TextBlock(depth+1, k, m[k])
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
