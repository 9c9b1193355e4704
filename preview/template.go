package preview

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"tmplgen/certificate"
	"tmplgen/common"
)

//go:embed template.html.tmpl
var defaultTemplate []byte

// DefaultTemplate returns embedded preview template.
func DefaultTemplate() []byte {
	return defaultTemplate
}

// RenderOptions controls template expansion.
type RenderOptions struct {
	Logo     string
	Template []byte // uses embedded template when empty
	Width    int
	Height   int
	Unit     string // CSS unit for extracted numbers, "px" when empty
}

func funcMap(unit string) template.FuncMap {
	funcs := sprig.FuncMap()
	// wrap re-emits its argument as a directive for the second substitution pass
	funcs["wrap"] = SecondStageDirective
	funcs["unit"] = func() string { return unit }
	return funcs
}

// Render expands preview template with annotated t producing markup.
func Render(ctx context.Context, t *certificate.Template, opts RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text := opts.Template
	if len(text) == 0 {
		text = defaultTemplate
	}
	unit := opts.Unit
	if unit == "" {
		unit = "px"
	}

	tmpl, err := template.New("preview").Funcs(funcMap(unit)).Option("missingkey=error").Parse(string(text))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse preview template: %w", common.ErrRendering, err)
	}

	data := Annotate(t, opts.Logo)
	data.Width, data.Height = opts.Width, opts.Height

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("%w: unable to expand preview template: %w", common.ErrRendering, err)
	}
	return buf.Bytes(), nil
}
