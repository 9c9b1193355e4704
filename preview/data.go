package preview

import (
	"tmplgen/certificate"
)

// SecondStageDirective returns directive a downstream population step
// replaces with value of named attribute. Preview never resolves it.
func SecondStageDirective(name string) string {
	return "{{" + name + "}}"
}

// TextView is a text placeholder with its positional identity.
type TextView struct {
	ID          int
	IsAttribute bool
	Attribute   string
	Text        string
	Style       certificate.TextStyle
}

// Placeholder returns content of the text element: literal text or second
// stage directive for attribute-bound texts.
func (v TextView) Placeholder() string {
	if v.IsAttribute {
		return SecondStageDirective(v.Attribute)
	}
	return v.Text
}

// ImageView is an image placeholder with its positional identity.
type ImageView struct {
	ID     int
	IsLogo bool
	URL    string
	Style  certificate.ImageStyle

	logo string
}

// Src returns image source, logos always resolve to the caller supplied logo.
func (v ImageView) Src() string {
	if v.IsLogo {
		return v.logo
	}
	return v.URL
}

// Data is the context preview template is executed with.
type Data struct {
	Elements        []ImageView
	Texts           []TextView
	BackgroundImage string
	FontURL         string
	Logo            string
	Width           int
	Height          int
}

// Annotate derives template context from t. Texts and elements get 0-based
// identities assigned independently per list. t is not modified.
func Annotate(t *certificate.Template, logo string) Data {
	d := Data{
		Elements:        make([]ImageView, 0, len(t.Elements)),
		Texts:           make([]TextView, 0, len(t.Texts)),
		BackgroundImage: t.BackgroundImage,
		FontURL:         t.FontURL,
		Logo:            logo,
	}

	for i, img := range t.Elements {
		v := ImageView{ID: i, IsLogo: img.IsLogo, Style: img.ImageStyle, logo: logo}
		if !img.IsLogo && img.URL != nil {
			v.URL = *img.URL
		}
		d.Elements = append(d.Elements, v)
	}

	for i, txt := range t.Texts {
		v := TextView{ID: i, IsAttribute: txt.IsAttribute, Attribute: txt.Attribute, Style: txt.TextStyle}
		if txt.Text != nil {
			v.Text = *txt.Text
		}
		d.Texts = append(d.Texts, v)
	}
	return d
}
