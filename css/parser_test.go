package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"tmplgen/css"
)

func TestParser_IDSelectors(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
		#text1 { top: 100px; left: 50px; font-size: 24px; }
		#element0 { top: 10px; height: 50%; }
	`))

	rules := sheet.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}
	if rules[0].Selector != "#text1" {
		t.Errorf("expected selector '#text1', got '%s'", rules[0].Selector)
	}
	if rules[1].Selector != "#element0" {
		t.Errorf("expected selector '#element0', got '%s'", rules[1].Selector)
	}

	top, ok := rules[0].GetProperty("top")
	if !ok {
		t.Fatal("expected 'top' property")
	}
	if top.Raw != "100px" || top.Value != 100 || top.Unit != "px" {
		t.Errorf("unexpected top value: %+v", top)
	}

	height, _ := rules[1].GetProperty("height")
	if height.Raw != "50%" || height.Value != 50 || height.Unit != "%" {
		t.Errorf("unexpected height value: %+v", height)
	}

	decl := rules[0].Declarations()
	if len(decl) != 3 || decl["font-size"] != "24px" {
		t.Errorf("unexpected declarations: %v", decl)
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`#text0,   #text1 { color: red; }`))

	rules := sheet.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules from grouped selector, got %d", len(rules))
	}
	if rules[0].Selector != "#text0" || rules[1].Selector != "#text1" {
		t.Errorf("unexpected selectors: %q, %q", rules[0].Selector, rules[1].Selector)
	}

	// properties must not be shared between split rules
	rules[0].Properties["color"] = css.Value{Raw: "blue"}
	if sheet.Rules()[1].Properties["color"].Raw != "red" {
		t.Error("grouped rules share property maps")
	}
}

func TestParser_DescendantSelectorWhitespace(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte("body   \n #text2 { top: 1px; }"))
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector != "body #text2" {
		t.Errorf("expected selector 'body #text2', got %q", rules[0].Selector)
	}
}

func TestParser_StringsSerializedWithDoubleQuotes(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`#text0 { font-family: 'Open Sans', serif; }`))
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	ff, _ := rules[0].GetProperty("font-family")
	if ff.Raw != `"Open Sans", serif` {
		t.Errorf("expected font-family %q, got %q", `"Open Sans", serif`, ff.Raw)
	}
}

func TestParser_Important(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`#text0 { top: 10px !important; top: 20px; left: 5px; left: 7px; }`))
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	top, _ := rules[0].GetProperty("top")
	if top.Raw != "10px" || !top.Important {
		t.Errorf("expected important top 10px to survive, got %+v", top)
	}

	left, _ := rules[0].GetProperty("left")
	if left.Raw != "7px" {
		t.Errorf("expected last declaration to win, got %q", left.Raw)
	}

	if got := strings.Join(rules[0].Order, ","); got != "top,left" {
		t.Errorf("expected order 'top,left', got %q", got)
	}
}

func TestParser_PropertyNamesLowerCased(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`#text0 { FONT-WEIGHT: Bold; }`))
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}

	fw, ok := rules[0].GetProperty("font-weight")
	if !ok {
		t.Fatal("expected lower-cased 'font-weight' property")
	}
	if fw.Keyword != "bold" {
		t.Errorf("expected keyword 'bold', got %q", fw.Keyword)
	}
}

func TestParser_FontFace(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
		@font-face {
			font-family: "Roboto";
			src: url("https://fonts.example.com/roboto.ttf") format("truetype"), url(roboto.woff2) format('woff2');
			font-weight: 400;
			font-style: normal;
		}
		#text0 { font-family: Roboto; }
	`))

	faces := sheet.FontFaces()
	if len(faces) != 1 {
		t.Fatalf("expected 1 font-face, got %d", len(faces))
	}
	ff := faces[0]
	if ff.Family != "Roboto" {
		t.Errorf("expected family 'Roboto', got %q", ff.Family)
	}
	if ff.Weight != "400" || ff.Style != "normal" {
		t.Errorf("unexpected weight/style: %q/%q", ff.Weight, ff.Style)
	}

	sources := ff.Sources()
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d (%q)", len(sources), ff.Src)
	}
	if sources[0].URL != "https://fonts.example.com/roboto.ttf" || sources[0].Format != "truetype" {
		t.Errorf("unexpected first source: %+v", sources[0])
	}
	if sources[1].URL != "roboto.woff2" || sources[1].Format != "woff2" {
		t.Errorf("unexpected second source: %+v", sources[1])
	}

	if len(sheet.Rules()) != 1 {
		t.Errorf("expected 1 rule after font-face, got %d", len(sheet.Rules()))
	}
}

func TestParser_Import(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
		@import "other.css";
		@import url("another.css");
		#text0 { top: 0; }
	`))

	if len(sheet.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sheet.Items))
	}
	imports := sheet.Imports()
	if len(imports) != 2 {
		t.Fatalf("expected 2 imports, got %d", len(imports))
	}
	if imports[0] != "other.css" || imports[1] != "another.css" {
		t.Errorf("unexpected imports: %v", imports)
	}
	if sheet.Items[2].Rule == nil {
		t.Fatal("expected third item to be a Rule")
	}
}

func TestParser_MediaBlockNotTopLevel(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
		#text0 { top: 1px; }
		@media print {
			#text0 { top: 2px; }
			#text1 { top: 3px; }
		}
		@keyframes spin { from { top: 0; } to { top: 10px; } }
		#text1 { top: 4px; }
	`))

	rules := sheet.Rules()
	if len(rules) != 2 {
		t.Fatalf("expected 2 top-level rules, got %d", len(rules))
	}
	if rules[0].Selector != "#text0" || rules[1].Selector != "#text1" {
		t.Errorf("unexpected top-level selectors: %q, %q", rules[0].Selector, rules[1].Selector)
	}

	var media *css.MediaBlock
	for _, item := range sheet.Items {
		if item.MediaBlock != nil {
			media = item.MediaBlock
		}
	}
	if media == nil {
		t.Fatal("expected @media block item")
	}
	if media.Query != "print" {
		t.Errorf("expected query 'print', got %q", media.Query)
	}
	if len(media.Rules) != 2 {
		t.Errorf("expected 2 rules inside @media, got %d", len(media.Rules))
	}
}

func TestParser_Comments(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`
		/* heading */
		#text0 { /* inside */ top: 5px; }
	`))
	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if v, _ := rules[0].GetProperty("top"); v.Raw != "5px" {
		t.Errorf("expected top '5px', got %q", v.Raw)
	}
}

func TestParser_Empty(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse(nil, "empty")
	if len(sheet.Items) != 0 {
		t.Errorf("expected no items, got %d", len(sheet.Items))
	}
	if sheet.Rules() != nil {
		t.Error("expected nil rules for empty stylesheet")
	}
}

func TestParser_ParseInline(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	rule := p.ParseInline(`position: absolute; top: 12.5px; Left: 3em; font-family: "Open Sans"`)
	if got := strings.Join(rule.Order, ","); got != "position,top,left,font-family" {
		t.Errorf("unexpected order %q", got)
	}
	if v := rule.Properties["top"]; v.Value != 12.5 || v.Unit != "px" {
		t.Errorf("unexpected top: %+v", v)
	}
	if v := rule.Properties["left"]; v.Value != 3 || v.Unit != "em" {
		t.Errorf("unexpected left: %+v", v)
	}
	if v := rule.Properties["font-family"]; v.Keyword != "Open Sans" {
		t.Errorf("unexpected font-family keyword: %q", v.Keyword)
	}

	empty := p.ParseInline("   ")
	if len(empty.Properties) != 0 || len(empty.Order) != 0 {
		t.Errorf("expected empty rule, got %+v", empty)
	}
}

func TestValue_IsNumeric(t *testing.T) {
	tests := []struct {
		val  css.Value
		want bool
	}{
		{css.Value{Raw: "10px", Value: 10, Unit: "px"}, true},
		{css.Value{Raw: "0"}, true},
		{css.Value{Raw: "1.5", Value: 1.5}, true},
		{css.Value{Raw: "bold", Keyword: "bold"}, false},
		{css.Value{}, false},
	}
	for _, tt := range tests {
		if got := tt.val.IsNumeric(); got != tt.want {
			t.Errorf("IsNumeric(%q) = %v, want %v", tt.val.Raw, got, tt.want)
		}
	}
}
