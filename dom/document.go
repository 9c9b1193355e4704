package dom

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"tmplgen/css"
)

// Document is a parsed HTML document.
type Document struct {
	root   *html.Node
	base   *url.URL
	sheets []*css.Stylesheet
}

// StyleSheets returns stylesheets in document order. Linked stylesheets are
// present but opaque, their rules are never loaded.
func (d *Document) StyleSheets() []*css.Stylesheet {
	return d.sheets
}

// QuerySelector returns first element in document order matching selector
// group or nil when nothing matches.
func (d *Document) QuerySelector(selector string) (*Element, error) {
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	n := cascadia.Query(d.root, m)
	if n == nil {
		return nil, nil
	}
	return &Element{node: n, doc: d}, nil
}

// QuerySelectorAll returns all elements matching selector group in document order.
func (d *Document) QuerySelectorAll(selector string) ([]*Element, error) {
	m, err := compile(selector)
	if err != nil {
		return nil, err
	}
	nodes := cascadia.QueryAll(d.root, m)
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &Element{node: n, doc: d})
	}
	return out, nil
}

func compile(selector string) (cascadia.SelectorGroup, error) {
	m, err := cascadia.ParseGroup(strings.TrimSpace(selector))
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a valid selector: %w", selector, err)
	}
	return m, nil
}

// resolve makes ref absolute against document base. Unparsable references
// and documents without base return ref unchanged.
func (d *Document) resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if d.base == nil || ref == "" {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return d.base.ResolveReference(u).String()
}

func attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// hasToken reports whether space separated attribute contains token, ASCII
// case-insensitive as rel values are.
func hasToken(n *html.Node, name, token string) bool {
	v, ok := attr(n, name)
	if !ok {
		return false
	}
	return slices.ContainsFunc(strings.Fields(v), func(s string) bool {
		return strings.EqualFold(s, token)
	})
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	for c := range n.Descendants() {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}
