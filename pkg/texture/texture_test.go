package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// quadrants returns a 2x2 image: red, green on top; blue, white below.
func quadrants() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, green)
	img.SetNRGBA(0, 1, blue)
	img.SetNRGBA(1, 1, white)
	return img
}

func TestFromImageFlipsVertically(t *testing.T) {
	tex := FromImage(quadrants())
	if tex.Width() != 2 || tex.Height() != 2 {
		t.Fatalf("size = %dx%d, want 2x2", tex.Width(), tex.Height())
	}
	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, blue},
		{1, 0, white},
		{0, 1, red},
		{1, 1, green},
		{-5, 9, red}, // clamped
	}
	for _, tt := range tests {
		if got := tex.At(tt.x, tt.y); got != tt.want {
			t.Errorf("At(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestFromImageHonoursBoundsOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(10, 20, 11, 22))
	img.SetNRGBA(10, 20, red)
	img.SetNRGBA(10, 21, blue)
	tex := FromImage(img)
	if got := tex.At(0, 0); got != blue {
		t.Errorf("bottom texel = %v, want blue", got)
	}
	if got := tex.At(0, 1); got != red {
		t.Errorf("top texel = %v, want red", got)
	}
}

func TestSample(t *testing.T) {
	tex := FromImage(quadrants())
	tests := []struct {
		name string
		u, v float64
		want color.NRGBA
	}{
		{"bottom left corner", 0, 0, blue},
		{"top right corner", 1, 1, green},
		{"outside clamps", -3, 7, red},
		{"texel centre", 0.75, 0.25, white},
		{"centre blends all four", 0.5, 0.5, color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tex.Sample(tt.u, tt.v); got != tt.want {
				t.Errorf("Sample(%g, %g) = %v, want %v", tt.u, tt.v, got, tt.want)
			}
		})
	}
}

func TestMean(t *testing.T) {
	tex := FromImage(quadrants())
	if got := tex.Mean([2]float64{0, 0}, [2]float64{0.5, 0.5}, 1); got != tex.Sample(0.25, 0.25) {
		t.Errorf("single-sample Mean = %v, want %v", got, tex.Sample(0.25, 0.25))
	}
	if got := tex.Mean([2]float64{0.75, 0}, [2]float64{1, 0.25}, 4); got != white {
		t.Errorf("Mean over white quadrant = %v, want white", got)
	}
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, quadrants()); err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(&bmpBuf, quadrants()); err != nil {
		t.Fatal(err)
	}

	files := map[string][]byte{
		"a.png":     pngBuf.Bytes(),
		"b.BMP":     bmpBuf.Bytes(),
		"c.texture": pngBuf.Bytes(), // detected from content
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatal(err)
		}
		tex, err := Load(path)
		if err != nil {
			t.Errorf("Load(%s): %v", name, err)
			continue
		}
		if got := tex.At(0, 1); got != red {
			t.Errorf("Load(%s): top-left texel = %v, want red", name, got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.dat")
	if err := os.WriteFile(junk, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(junk); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(junk) = %v, want ErrUnsupportedFormat", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.png")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) = %v, want ErrNotExist", err)
	}
	if _, err := LoadBytes(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("LoadBytes(nil) = %v, want ErrEmptyData", err)
	}
}
