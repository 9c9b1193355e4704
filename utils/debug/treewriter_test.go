package debug

import (
	"testing"
)

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{"no depth", 0, "test", nil, "test\n"},
		{"depth 2", 2, "double indent", nil, "    double indent\n"},
		{"with formatting", 1, "Text[%d] attribute=%q", []any{3, "name"}, "  Text[3] attribute=\"name\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_TextBlock(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		label string
		value string
		want  string
	}{
		{"empty value", 0, "field", "", "field: \n"},
		{"with value", 1, "Font URL", "https://fonts.example.com/css", "  Font URL: \"https://fonts.example.com/css\"\n"},
		{"value with newline", 0, "text", "line1\nline2", "text: \"line1\\nline2\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.TextBlock(tt.depth, tt.label, tt.value)
			if got := tw.String(); got != tt.want {
				t.Errorf("TextBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Value(t *testing.T) {
	num := 12.5
	str := `Open "Sans"`

	tests := []struct {
		name string
		v    any
		want string
	}{
		{"nil float", (*float64)(nil), "v = <unset>\n"},
		{"float", &num, "v = 12.5\n"},
		{"nil string", (*string)(nil), "v = <unset>\n"},
		{"string pointer", &str, "v = \"Open \\\"Sans\\\"\"\n"},
		{"plain string", "x", "v = \"x\"\n"},
		{"untyped nil", nil, "v = <unset>\n"},
		{"other", 42, "v = 42\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Value(0, "v", tt.v)
			if got := tw.String(); got != tt.want {
				t.Errorf("Value() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_MapNaturalOrder(t *testing.T) {
	tw := NewTreeWriter()
	tw.Map(0, "rules", map[string]string{
		"#text10":   "top: 1px",
		"#text2":    "top: 2px",
		"#element1": "",
	})

	want := "rules (3 entries)\n" +
		"  #element1: \n" +
		"  #text2: \"top: 2px\"\n" +
		"  #text10: \"top: 1px\"\n"
	if got := tw.String(); got != want {
		t.Errorf("Map():\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"hello", `"hello"`},
		{`say "hi"`, `"say \"hi\""`},
		{"col1\tcol2", `"col1\tcol2"`},
		{`path\to\file`, `"path\\to\\file"`},
	}

	for _, tt := range tests {
		if got := encodeText(tt.input); got != tt.want {
			t.Errorf("encodeText(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
