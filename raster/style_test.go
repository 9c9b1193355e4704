package raster

import (
	"math"
	"testing"

	"go.uber.org/zap/zaptest"

	"tmplgen/css"
)

func TestMetrics_Box(t *testing.T) {
	m := metrics{pageW: 1000, pageH: 500}
	p := css.NewParser(zaptest.NewLogger(t))

	tests := []struct {
		style string
		want  box
	}{
		{"top: 10px; left: 20px", box{top: 10, left: 20}},
		{"top: 10%; left: 50%; width: 10%; height: 20%", box{top: 50, left: 500, width: 100, height: 100}},
		{"top: 1em; left: 2rem", box{top: 16, left: 32}},
		{"top: 3pt; width: 10vw; height: 10vh", box{top: 4, width: 100, height: 50}},
		{"top: auto; left: 0", box{}},
		{"", box{}},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			got := m.box(p.ParseInline(tt.style))
			if math.Abs(got.top-tt.want.top) > 1e-9 || math.Abs(got.left-tt.want.left) > 1e-9 ||
				math.Abs(got.width-tt.want.width) > 1e-9 || math.Abs(got.height-tt.want.height) > 1e-9 {
				t.Errorf("box(%q) = %+v, want %+v", tt.style, got, tt.want)
			}
		})
	}
}

func TestMetrics_Text(t *testing.T) {
	m := metrics{pageW: 1000, pageH: 500}
	p := css.NewParser(zaptest.NewLogger(t))

	s := m.text("h2", p.ParseInline(""))
	if s.size != 24 || !s.bold || s.align != "L" {
		t.Errorf("unexpected h2 defaults: %+v", s)
	}

	s = m.text("h2", p.ParseInline(`font-size: 30px; font-weight: 400; font-family: "Open Sans", serif; color: #ff0000; text-align: center; font-style: italic`))
	if s.size != 30 {
		t.Errorf("expected size 30, got %v", s.size)
	}
	if s.bold || !s.italic || s.fontStyle() != "I" {
		t.Errorf("unexpected style: bold %v italic %v", s.bold, s.italic)
	}
	if s.family != "Open Sans" {
		t.Errorf("expected Open Sans family, got %q", s.family)
	}
	if r, g, b := s.color.RGB255(); r != 255 || g != 0 || b != 0 {
		t.Errorf("expected red, got %d %d %d", r, g, b)
	}
	if s.align != "C" {
		t.Errorf("expected center alignment, got %q", s.align)
	}

	s = m.text("p", p.ParseInline("font-weight: 700; font-size: 1.5em"))
	if !s.bold || s.size != 24 || s.fontStyle() != "B" {
		t.Errorf("unexpected paragraph style: %+v", s)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		r, g, b uint8
		ok      bool
	}{
		{"#333", 0x33, 0x33, 0x33, true},
		{"#00ff7f", 0x00, 0xff, 0x7f, true},
		{"#00ff7f80", 0x00, 0xff, 0x7f, true},
		{"Navy", 0x00, 0x00, 0x80, true},
		{"rgb(10, 20, 30)", 10, 20, 30, true},
		{"rgba(255,0,0,0.5)", 255, 0, 0, true},
		{"rgb(100% 0% 0%)", 255, 0, 0, true},
		{"rgb(300, 0, 0)", 255, 0, 0, true},
		{"currentcolor", 0, 0, 0, false},
		{"rgb(1, 2)", 0, 0, 0, false},
		{"#12", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, ok := parseColor(tt.in)
			if ok != tt.ok {
				t.Fatalf("parseColor(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if r, g, b := c.RGB255(); r != tt.r || g != tt.g || b != tt.b {
				t.Errorf("parseColor(%q) = %d %d %d, want %d %d %d", tt.in, r, g, b, tt.r, tt.g, tt.b)
			}
		})
	}
}

func TestFirstFamily(t *testing.T) {
	for in, want := range map[string]string{
		`Open Sans`:           "Open Sans",
		`"Open Sans", serif`:  "Open Sans",
		`'Roboto Slab',serif`: "Roboto Slab",
		``:                    "",
	} {
		if got := firstFamily(in); got != want {
			t.Errorf("firstFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestShrinkAndDrawSize(t *testing.T) {
	if w, h := shrink(400, 200, 100, 0); w != 100 || h != 50 {
		t.Errorf("shrink by width = %dx%d", w, h)
	}
	if w, h := shrink(400, 200, 0, 100); w != 200 || h != 100 {
		t.Errorf("shrink by height = %dx%d", w, h)
	}
	if w, h := shrink(40, 20, 100, 100); w != 0 || h != 0 {
		t.Errorf("expected no enlargement, got %dx%d", w, h)
	}
	if w, h := shrink(400, 200, 0, 0); w != 0 || h != 0 {
		t.Errorf("expected no resampling without box, got %dx%d", w, h)
	}

	e := &embedded{width: 200, height: 100}
	tests := []struct {
		b    box
		w, h float64
	}{
		{box{}, 200, 100},
		{box{width: 50}, 50, 25},
		{box{height: 50}, 100, 50},
		{box{width: 10, height: 10}, 10, 10},
	}
	for _, tt := range tests {
		if w, h := drawSize(e, tt.b); w != tt.w || h != tt.h {
			t.Errorf("drawSize(%+v) = %vx%v, want %vx%v", tt.b, w, h, tt.w, tt.h)
		}
	}
}

func TestFaceStyle(t *testing.T) {
	tests := []struct {
		ff   css.FontFace
		want string
	}{
		{css.FontFace{}, ""},
		{css.FontFace{Weight: "700"}, "B"},
		{css.FontFace{Weight: "bold", Style: "italic"}, "BI"},
		{css.FontFace{Weight: "100 900"}, ""},
		{css.FontFace{Weight: "400", Style: "oblique"}, "I"},
	}
	for _, tt := range tests {
		if got := faceStyle(tt.ff); got != tt.want {
			t.Errorf("faceStyle(%+v) = %q, want %q", tt.ff, got, tt.want)
		}
	}
}
