package dom

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element is an element node of a Document.
type Element struct {
	node *html.Node
	doc  *Document
}

// TagName returns lower-cased tag name.
func (e *Element) TagName() string {
	return strings.ToLower(e.node.Data)
}

// ID returns value of id attribute.
func (e *Element) ID() string {
	v, _ := attr(e.node, "id")
	return v
}

// Data returns dataset entry. Key is in dataset form, "fontName" reads
// attribute data-font-name.
func (e *Element) Data(key string) (string, bool) {
	return attr(e.node, "data-"+datasetAttr(key))
}

// Style returns inline style attribute.
func (e *Element) Style() string {
	v, _ := attr(e.node, "style")
	return v
}

// Src returns src attribute resolved against document base, empty when absent.
func (e *Element) Src() string {
	v, ok := attr(e.node, "src")
	if !ok {
		return ""
	}
	return e.doc.resolve(v)
}

// Href returns href attribute resolved against document base, empty when absent.
func (e *Element) Href() string {
	v, ok := attr(e.node, "href")
	if !ok {
		return ""
	}
	return e.doc.resolve(v)
}

// InnerText approximates rendered text: whitespace runs collapse to a single
// space, <br> and block boundaries become line breaks, script and style
// content is dropped.
func (e *Element) InnerText() string {
	var w textWriter
	w.walk(e.node)
	lines := strings.Split(w.sb.String(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

type textWriter struct {
	sb    strings.Builder
	space bool
}

func (w *textWriter) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			w.text(c.Data)
		case html.ElementNode:
			switch c.DataAtom {
			case atom.Script, atom.Style, atom.Template, atom.Head:
				continue
			case atom.Br:
				w.newline()
				continue
			}
			block := isBlock(c.DataAtom)
			if block {
				w.newline()
			}
			w.walk(c)
			if block {
				w.newline()
			}
		}
	}
}

func (w *textWriter) text(s string) {
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			w.space = true
			continue
		}
		if w.space && w.sb.Len() > 0 {
			w.sb.WriteByte(' ')
		}
		w.space = false
		w.sb.WriteRune(r)
	}
}

func (w *textWriter) newline() {
	w.sb.WriteByte('\n')
	w.space = false
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.Address, atom.Article, atom.Aside, atom.Blockquote, atom.Div, atom.Dl, atom.Dt, atom.Dd,
		atom.Fieldset, atom.Figcaption, atom.Figure, atom.Footer, atom.Form, atom.H1, atom.H2, atom.H3,
		atom.H4, atom.H5, atom.H6, atom.Header, atom.Hr, atom.Li, atom.Main, atom.Nav, atom.Ol, atom.P,
		atom.Pre, atom.Section, atom.Table, atom.Tr, atom.Ul:
		return true
	}
	return false
}

// datasetAttr converts dataset key to attribute suffix: "fontName" -> "font-name".
func datasetAttr(key string) string {
	var sb strings.Builder
	for _, r := range key {
		if 'A' <= r && r <= 'Z' {
			sb.WriteByte('-')
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
