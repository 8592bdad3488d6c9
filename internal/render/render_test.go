package render

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/bladebalance/internal/balance"
	"github.com/san-kum/bladebalance/internal/scene"
	"github.com/san-kum/bladebalance/internal/theme"
)

func testScene(t *testing.T, demo bool) *scene.Scene {
	t.Helper()
	m := balance.Measurements{Name: "Test Sword", Mass: 1200, GripRef: 100, CogRef: 130, HiltExt: 95, BladeExt: 900, LeverRef: 140}
	s, err := balance.NewSpecimen(m, []balance.Pair{{Near: 100, Far: 180}, {Near: 110, Far: 200}}, balance.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	d := balance.NewCalculator(balance.DefaultConfig()).Derive(s)
	opts := scene.DefaultOptions()
	opts.Demo = demo
	sc, err := scene.Build(s, d, opts)
	if err != nil {
		t.Fatal(err)
	}
	return sc
}

func TestWriteTo_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, testScene(t, false), theme.Default, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("expected PNG signature")
	}
}

func TestWriteTo_PaperAndPlotArea(t *testing.T) {
	var buf bytes.Buffer
	th := theme.Default
	if err := WriteTo(&buf, testScene(t, false), th, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}

	paper, bg := th.Color(theme.Paper), th.Color(theme.Background)
	if sameColor(paper, bg) {
		t.Fatal("theme must distinguish paper from background")
	}
	b := img.Bounds()
	if c := img.At(b.Min.X, b.Min.Y); !sameColor(c, paper) {
		t.Errorf("corner pixel %v, want paper %v", c, paper)
	}
	if n := countColor(img, bg); n < b.Dx()*b.Dy()/10 {
		t.Errorf("expected the plot area in the background color, found %d pixels", n)
	}
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	near := func(x, y uint32) bool {
		x, y = x>>8, y>>8
		return x == y || x+1 == y || y+1 == x
	}
	return near(ar, br) && near(ag, bg) && near(ab, bb)
}

func countColor(img image.Image, c color.Color) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if sameColor(img.At(x, y), c) {
				n++
			}
		}
	}
	return n
}

func TestWriteTo_SVG(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	opts.Format = "svg"
	if err := WriteTo(&buf, testScene(t, true), theme.ThemePrint, opts); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("expected svg document")
	}
}

func TestWriteTo_Unsupported(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = "bmp"
	err := WriteTo(&bytes.Buffer{}, testScene(t, true), theme.Default, opts)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestOptions_Validate(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 0
	if err := opts.Validate(); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name, format, want string
	}{
		{"Test Sword", "png", "test_sword_sword_plot.png"},
		{"  Crecy Type XV ", "svg", "crecy_type_xv_sword_plot.svg"},
		{"Specimen_1", "pdf", "specimen_1_sword_plot.pdf"},
	}
	for _, tt := range tests {
		if got := FileName(tt.name, tt.format); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := Save(dir, testScene(t, false), theme.Default, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "test_sword_sword_plot.png" {
		t.Errorf("unexpected file name %s", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty file")
	}
}
