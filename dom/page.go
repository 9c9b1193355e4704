// Package dom is a small in-process rendering engine. It parses HTML into a
// live document exposing stylesheets, selector queries and the few element
// properties placeholders need. It does not run scripts or compute layout.
package dom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"tmplgen/css"
)

var (
	errPageClosed = errors.New("page is closed")
	errNoContent  = errors.New("page has no content")
)

// Engine creates pages. It keeps no state between pages.
type Engine struct {
	log      *zap.Logger
	baseURL  *url.URL
	encoding encoding.Encoding
}

// Option configures Engine.
type Option func(*Engine)

// WithBaseURL sets location relative src and href values are resolved
// against when document has no <base> element.
func WithBaseURL(base *url.URL) Option {
	return func(e *Engine) {
		e.baseURL = base
	}
}

// WithEncoding forces source encoding instead of sniffing it.
func WithEncoding(enc encoding.Encoding) Option {
	return func(e *Engine) {
		e.encoding = enc
	}
}

// NewEngine returns engine producing pages with given options.
func NewEngine(log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{log: log.Named("dom")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewPage acquires a new empty page. Caller must Close it.
func (e *Engine) NewPage(ctx context.Context) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.log.Debug("Page opened")
	return &Page{engine: e, log: e.log}, nil
}

// Page holds a single loaded document.
type Page struct {
	engine *Engine
	log    *zap.Logger
	doc    *Document
	closed bool
}

// SetContent parses src replacing current document.
func (p *Page) SetContent(ctx context.Context, src []byte) error {
	if p.closed {
		return errPageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r, name, err := p.decoder(src)
	if err != nil {
		return fmt.Errorf("unable to decode content: %w", err)
	}

	root, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("unable to parse content: %w", err)
	}

	doc := &Document{root: root, base: p.engine.baseURL}
	doc.load(css.NewParser(p.log))
	p.doc = doc

	p.log.Debug("Content loaded",
		zap.String("encoding", name),
		zap.Int("bytes", len(src)),
		zap.Int("stylesheets", len(doc.sheets)),
		zap.Stringer("base", doc.base))
	return nil
}

func (p *Page) decoder(src []byte) (io.Reader, string, error) {
	if enc := p.engine.encoding; enc != nil {
		name, _ := ianaindex.IANA.Name(enc)
		return enc.NewDecoder().Reader(bytes.NewReader(src)), name, nil
	}
	_, name, _ := charset.DetermineEncoding(src, "text/html")
	r, err := charset.NewReader(bytes.NewReader(src), "text/html")
	if err != nil {
		return nil, "", err
	}
	return r, name, nil
}

// Evaluate runs fn against the loaded document.
func (p *Page) Evaluate(ctx context.Context, fn func(*Document) error) error {
	if p.closed {
		return errPageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.doc == nil {
		return errNoContent
	}
	return fn(p.doc)
}

// Close releases the page. Closing twice is an error.
func (p *Page) Close() error {
	if p.closed {
		return errPageClosed
	}
	p.closed = true
	p.doc = nil
	p.log.Debug("Page closed")
	return nil
}

// load collects stylesheets in document order and determines base URL.
func (d *Document) load(parser *css.Parser) {
	var baseSeen bool
	var inline int
	for n := range d.root.Descendants() {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Base:
			if href, ok := attr(n, "href"); ok && !baseSeen {
				baseSeen = true
				if u, err := url.Parse(strings.TrimSpace(href)); err == nil {
					if d.base != nil {
						u = d.base.ResolveReference(u)
					}
					d.base = u
				}
			}
		case atom.Style:
			inline++
			sheet := parser.Parse([]byte(textContent(n)), fmt.Sprintf("<style> #%d", inline))
			d.sheets = append(d.sheets, sheet)
		case atom.Link:
			if !hasToken(n, "rel", "stylesheet") {
				continue
			}
			href, _ := attr(n, "href")
			d.sheets = append(d.sheets, &css.Stylesheet{Href: strings.TrimSpace(href), Opaque: true})
		}
	}
	// links are resolved after base is known, <base> may come later in head
	for _, s := range d.sheets {
		if s.Opaque {
			s.Href = d.resolve(s.Href)
		}
	}
}
