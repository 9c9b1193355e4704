package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"tmplgen/common"
	"tmplgen/css"
	"tmplgen/utils/debug"
)

// Document is the part of a loaded page classification needs.
type Document interface {
	StyleSheets() []*css.Stylesheet
	// QuerySelector returns nil Element and nil error when nothing matches.
	QuerySelector(selector string) (Element, error)
}

// Element is a DOM element as seen by classification.
type Element interface {
	TagName() string
	ID() string
	Data(key string) (string, bool)
	InnerText() string
	Src() string
	Href() string
}

const (
	backgroundSelector = "#bg"
	fontLinkSelector   = "link[rel=stylesheet]"
)

// Placeholder is a classified element together with raw declarations of the
// rule which selected it.
type Placeholder struct {
	Kind     common.PlaceholderKind
	Selector string
	Element  string

	// text placeholders
	Attribute string
	Text      string

	// image placeholders
	IsLogo bool
	URL    string

	Declarations map[string]string
}

// Classified is classification result in rule order.
type Classified struct {
	Texts           []Placeholder
	Elements        []Placeholder
	BackgroundImage string
	FontURL         string
}

// Classify walks rules of the last stylesheet of the document and turns
// #text* and #element* rules into placeholders. Rules without matching
// element are skipped, when warnUnmatched is set they are logged at warning
// level.
func Classify(doc Document, log *zap.Logger, warnUnmatched bool) (*Classified, error) {
	sheets := doc.StyleSheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: document has no stylesheets", common.ErrValidation)
	}
	sheet := sheets[len(sheets)-1]
	if sheet.Opaque {
		return nil, fmt.Errorf("%w: rules of the last stylesheet '%s' are not accessible, placeholder styles must be in the last <style> element",
			common.ErrValidation, sheet.Href)
	}

	for _, w := range sheet.Warnings {
		log.Warn("Problem in placeholder stylesheet", zap.String("warning", w))
	}

	res := &Classified{
		Texts:    make([]Placeholder, 0),
		Elements: make([]Placeholder, 0),
	}

	for _, rule := range sheet.Rules() {
		var kind common.PlaceholderKind
		switch {
		case strings.HasPrefix(rule.Selector, common.PlaceholderKindText.SelectorPrefix()):
			kind = common.PlaceholderKindText
		case strings.HasPrefix(rule.Selector, common.PlaceholderKindImage.SelectorPrefix()):
			kind = common.PlaceholderKindImage
		default:
			continue
		}

		target := strings.Fields(rule.Selector)[0]
		el, err := doc.QuerySelector(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
		}
		if el == nil {
			if warnUnmatched {
				log.Warn("Style rule does not match any element, skipping", zap.String("selector", rule.Selector))
			} else {
				log.Debug("Style rule does not match any element, skipping", zap.String("selector", rule.Selector))
			}
			continue
		}

		if tag := el.TagName(); tag != kind.Tag() {
			return nil, fmt.Errorf("%w: all %s placeholders must be <%s> elements, element '%s' is <%s>",
				common.ErrValidation, kind, kind.Tag(), el.ID(), tag)
		}

		p := Placeholder{
			Kind:         kind,
			Selector:     rule.Selector,
			Element:      el.ID(),
			Declarations: rule.Declarations(),
		}

		switch kind {
		case common.PlaceholderKindText:
			if attr, ok := el.Data("attribute"); ok && attr != "" {
				p.Attribute = attr
			} else {
				p.Text = el.InnerText()
			}
			res.Texts = append(res.Texts, p)
		case common.PlaceholderKindImage:
			if logo, ok := el.Data("logo"); ok && logo != "" {
				p.IsLogo = true
			} else {
				p.URL = el.Src()
			}
			res.Elements = append(res.Elements, p)
		}

		log.Debug("Placeholder classified",
			zap.Stringer("kind", kind),
			zap.String("selector", p.Selector),
			zap.String("element", p.Element),
			zap.Bool("attribute", p.Attribute != ""),
			zap.Bool("logo", p.IsLogo))
	}

	bg, err := doc.QuerySelector(backgroundSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	if bg != nil {
		res.BackgroundImage = bg.Src()
	}
	if res.BackgroundImage == "" {
		return nil, fmt.Errorf("%w: Background Image must have an id of 'bg'", common.ErrValidation)
	}

	link, err := doc.QuerySelector(fontLinkSelector)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	if link != nil {
		res.FontURL = link.Href()
	}
	if res.FontURL == "" {
		return nil, fmt.Errorf("%w: No font link provided", common.ErrValidation)
	}

	return res, nil
}

// String returns debug dump of classification with raw declarations of
// every placeholder.
func (c *Classified) String() string {
	if c == nil {
		return "<nil Classified>"
	}

	tw := debug.NewTreeWriter()
	tw.TextBlock(0, "Background image", c.BackgroundImage)
	tw.TextBlock(0, "Font URL", c.FontURL)
	for _, group := range []struct {
		label string
		list  []Placeholder
	}{{"Texts", c.Texts}, {"Elements", c.Elements}} {
		tw.Line(0, "%s: %d", group.label, len(group.list))
		for i, p := range group.list {
			tw.Line(1, "[%d] %s <%s id=%q>", i, p.Selector, p.Kind.Tag(), p.Element)
			switch {
			case p.Attribute != "":
				tw.Value(2, "attribute", p.Attribute)
			case p.IsLogo:
				tw.Line(2, "logo")
			case p.Kind == common.PlaceholderKindText:
				tw.Value(2, "text", p.Text)
			default:
				tw.Value(2, "url", p.URL)
			}
			tw.Map(2, "declarations", p.Declarations)
		}
	}
	return tw.String()
}
