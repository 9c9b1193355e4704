package extract

import (
	"context"

	"tmplgen/dom"
)

// DOMEngine adapts dom.Engine to Engine.
func DOMEngine(e *dom.Engine) Engine {
	return domEngine{e}
}

type domEngine struct {
	engine *dom.Engine
}

func (e domEngine) NewPage(ctx context.Context) (Page, error) {
	p, err := e.engine.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	return domPage{p}, nil
}

type domPage struct {
	*dom.Page
}

func (p domPage) Evaluate(ctx context.Context, fn func(Document) error) error {
	return p.Page.Evaluate(ctx, func(d *dom.Document) error {
		return fn(domDocument{d})
	})
}

type domDocument struct {
	*dom.Document
}

func (d domDocument) QuerySelector(selector string) (Element, error) {
	el, err := d.Document.QuerySelector(selector)
	if err != nil || el == nil {
		// keep interface nil, typed nil pointer would not compare equal to nil
		return nil, err
	}
	return el, nil
}
