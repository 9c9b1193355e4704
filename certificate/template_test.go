package certificate_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tmplgen/certificate"
	"tmplgen/common"
)

func ptr[T any](v T) *T { return &v }

func sample() *certificate.Template {
	t := certificate.New()
	t.BackgroundImage = "https://example.com/bg.png"
	t.FontURL = "https://fonts.example.com/css?family=Roboto"
	t.Texts = append(t.Texts,
		certificate.AttributeText("name", certificate.TextStyle{Top: ptr(10.0), Left: ptr(20.0), FontFamily: ptr("Roboto"), Color: ptr("rgb(0, 0, 0)")}),
		certificate.LiteralText("Certificate of completion", certificate.TextStyle{Top: ptr(12.5), FontWeight: ptr(700.0), FontSize: ptr(24.0)}),
	)
	t.Elements = append(t.Elements,
		certificate.LogoImage(certificate.ImageStyle{Top: ptr(1.0), Height: ptr(50.0)}),
		certificate.URLImage("https://example.com/seal.png", certificate.ImageStyle{Left: ptr(0.0), Width: ptr(100.0)}),
	)
	return t
}

const sampleJSON = `{
  "elements": [
    {
      "isLogo": true,
      "top": 1,
      "height": 50
    },
    {
      "url": "https://example.com/seal.png",
      "left": 0,
      "width": 100
    }
  ],
  "texts": [
    {
      "isAttribute": true,
      "attribute": "name",
      "top": 10,
      "left": 20,
      "fontFamily": "Roboto",
      "color": "rgb(0, 0, 0)"
    },
    {
      "text": "Certificate of completion",
      "top": 12.5,
      "fontWeight": 700,
      "fontSize": 24
    }
  ],
  "backgroundImage": "https://example.com/bg.png",
  "fontUrl": "https://fonts.example.com/css?family=Roboto"
}
`

func TestMarshal_Canonical(t *testing.T) {
	data, err := certificate.Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != sampleJSON {
		t.Errorf("unexpected canonical form:\n%s\nwant:\n%s", data, sampleJSON)
	}
}

func TestMarshal_EmptyLists(t *testing.T) {
	tmpl := &certificate.Template{BackgroundImage: "bg.png", FontURL: "font.css"}
	data, err := certificate.Marshal(tmpl)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := "{\n  \"elements\": [],\n  \"texts\": [],\n  \"backgroundImage\": \"bg.png\",\n  \"fontUrl\": \"font.css\"\n}\n"
	if string(data) != want {
		t.Errorf("unexpected output:\n%s", data)
	}
}

func TestMarshal_NoHTMLEscaping(t *testing.T) {
	tmpl := sample()
	tmpl.FontURL = "https://fonts.example.com/css?family=A&display=swap"
	data, err := certificate.Marshal(tmpl)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "family=A&display=swap") {
		t.Errorf("expected ampersand to be written as is:\n%s", data)
	}
}

func TestMarshal_RejectsNaN(t *testing.T) {
	tmpl := sample()
	tmpl.Texts[0].FontSize = ptr(math.NaN())

	_, err := certificate.Marshal(tmpl)
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "fontSize") {
		t.Errorf("expected error to name property, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	first, err := certificate.Marshal(sample())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	decoded, err := certificate.Unmarshal(first)
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	second, err := certificate.Marshal(decoded)
	if err != nil {
		t.Fatalf("second Marshal failed: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("round trip changed document:\n%s\nvs\n%s", first, second)
	}
}

func TestUnmarshal_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"elements": [`},
		{"not object", `[]`},
		{"missing fontUrl", `{"elements": [], "texts": [], "backgroundImage": "bg.png"}`},
		{"empty backgroundImage", `{"elements": [], "texts": [], "backgroundImage": "", "fontUrl": "f.css"}`},
		{"unknown field", `{"elements": [], "texts": [], "backgroundImage": "bg.png", "fontUrl": "f.css", "extra": 1}`},
		{"logo with url", `{"elements": [{"isLogo": true, "url": "x.png"}], "texts": [], "backgroundImage": "bg.png", "fontUrl": "f.css"}`},
		{"image without source", `{"elements": [{"top": 1}], "texts": [], "backgroundImage": "bg.png", "fontUrl": "f.css"}`},
		{"attribute without name", `{"elements": [], "texts": [{"isAttribute": true}], "backgroundImage": "bg.png", "fontUrl": "f.css"}`},
		{"text in both modes", `{"elements": [], "texts": [{"isAttribute": true, "attribute": "a", "text": "b"}], "backgroundImage": "bg.png", "fontUrl": "f.css"}`},
		{"string number", `{"elements": [], "texts": [{"text": "a", "top": "10px"}], "backgroundImage": "bg.png", "fontUrl": "f.css"}`},
		{"null number", `{"elements": [], "texts": [{"text": "a", "fontWeight": null}], "backgroundImage": "bg.png", "fontUrl": "f.css"}`},
		{"trailing data", `{"elements": [], "texts": [], "backgroundImage": "bg.png", "fontUrl": "f.css"} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := certificate.Unmarshal([]byte(tt.data))
			if !errors.Is(err, common.ErrMalformedTemplate) {
				t.Errorf("expected malformed template error, got %v", err)
			}
		})
	}
}

func TestUnmarshal_LiteralEmptyText(t *testing.T) {
	tmpl, err := certificate.Unmarshal([]byte(`{"elements": [], "texts": [{"text": ""}], "backgroundImage": "bg.png", "fontUrl": "f.css"}`))
	if err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if tmpl.Texts[0].Text == nil || *tmpl.Texts[0].Text != "" {
		t.Errorf("expected empty literal text to survive, got %+v", tmpl.Texts[0])
	}
	if tmpl.Texts[0].Top != nil {
		t.Error("absent property must stay unset")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "template.json")

	if err := certificate.Save(path, sample()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading saved template: %v", err)
	}
	if string(data) != sampleJSON {
		t.Errorf("unexpected saved content:\n%s", data)
	}

	loaded, err := certificate.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Texts) != 2 || len(loaded.Elements) != 2 {
		t.Errorf("unexpected loaded template: %s", loaded)
	}
}

func TestSave_InvalidLeavesNoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "template.json")

	tmpl := sample()
	tmpl.BackgroundImage = ""
	if err := certificate.Save(path, tmpl); !errors.Is(err, common.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no output file, stat returned %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := certificate.Load(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, common.ErrInputNotFound) {
		t.Errorf("expected input not found error, got %v", err)
	}
}

func TestTemplate_String(t *testing.T) {
	s := sample().String()
	for _, want := range []string{
		"Texts: 2",
		"  Text[0] attribute=\"name\"",
		"    fontFamily = \"Roboto\"",
		"    width = <unset>",
		"  Element[0] logo",
		"    url = \"https://example.com/seal.png\"",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in debug output:\n%s", want, s)
		}
	}
}
