// Package texture loads the surface texture and samples it the way the
// quads are textured: v = 0 at the bottom row, clamp-to-edge addressing
// and bilinear filtering.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

var (
	// ErrUnsupportedFormat is returned when the image format is not supported.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")

	// ErrEmptyData is returned when image data is empty.
	ErrEmptyData = errors.New("texture: empty data")
)

// decoders by lower-case file extension.
var decoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".bmp":  bmp.Decode,
	".tif":  tiff.Decode,
	".tiff": tiff.Decode,
	".webp": webp.Decode,
}

// Texture is an RGBA image stored bottom row first, so that texel row r
// covers v in [r/h, (r+1)/h].
type Texture struct {
	img *image.NRGBA
}

// Load reads a texture from path. The format is chosen by extension, or
// detected from the content for unknown extensions.
func Load(path string) (*Texture, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("texture: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if dec, ok := decoders[strings.ToLower(filepath.Ext(path))]; ok {
		img, err := dec(f)
		if err != nil {
			return nil, fmt.Errorf("texture: decode %s: %w", filepath.Base(path), err)
		}
		return FromImage(img), nil
	}
	return Decode(f)
}

// LoadBytes decodes a texture from memory, detecting the format.
func LoadBytes(data []byte) (*Texture, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}
	return Decode(bytes.NewReader(data))
}

// Decode decodes a texture, detecting the format from the content.
func Decode(r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, fmt.Errorf("texture: decode: %w", err)
	}
	return FromImage(img), nil
}

// FromImage converts img to a texture, flipping it vertically.
func FromImage(img image.Image) *Texture {
	b := img.Bounds()
	src := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(src, src.Bounds(), img, b.Min, xdraw.Src)

	dst := image.NewNRGBA(src.Rect)
	rowBytes := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		from := src.Pix[y*src.Stride : y*src.Stride+rowBytes]
		to := (b.Dy() - 1 - y) * dst.Stride
		copy(dst.Pix[to:to+rowBytes], from)
	}
	return &Texture{img: dst}
}

// Width returns the width in texels.
func (t *Texture) Width() int {
	return t.img.Rect.Dx()
}

// Height returns the height in texels.
func (t *Texture) Height() int {
	return t.img.Rect.Dy()
}

// Image returns the texel storage, bottom row first. Pixel (u·w, v·h) of
// the returned image is texture coordinate (u, v).
func (t *Texture) Image() *image.NRGBA {
	return t.img
}

// At returns the texel at column x and row y (row 0 at the bottom),
// clamped to the edge.
func (t *Texture) At(x, y int) color.NRGBA {
	x = min(max(x, 0), t.Width()-1)
	y = min(max(y, 0), t.Height()-1)
	return t.img.NRGBAAt(x, y)
}

// Sample returns the bilinearly filtered color at texture coordinate
// (u, v). Coordinates outside [0, 1] clamp to the edge.
func (t *Texture) Sample(u, v float64) color.NRGBA {
	x := u*float64(t.Width()) - 0.5
	y := v*float64(t.Height()) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	c00 := t.At(ix, iy)
	c10 := t.At(ix+1, iy)
	c01 := t.At(ix, iy+1)
	c11 := t.At(ix+1, iy+1)

	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bot := float64(c)*(1-fx) + float64(d)*fx
		return uint8(math.Round(top*(1-fy) + bot*fy))
	}
	return color.NRGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

// Mean returns the average color over the texture rectangle spanned by two
// corner coordinates, sampled on an n x n grid.
func (t *Texture) Mean(uv0, uv1 [2]float64, n int) color.NRGBA {
	if n < 1 {
		n = 1
	}
	var r, g, b, a float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fu := (float64(i) + 0.5) / float64(n)
			fv := (float64(j) + 0.5) / float64(n)
			c := t.Sample(uv0[0]+(uv1[0]-uv0[0])*fu, uv0[1]+(uv1[1]-uv0[1])*fv)
			r += float64(c.R)
			g += float64(c.G)
			b += float64(c.B)
			a += float64(c.A)
		}
	}
	k := float64(n * n)
	return color.NRGBA{
		R: uint8(math.Round(r / k)),
		G: uint8(math.Round(g / k)),
		B: uint8(math.Round(b / k)),
		A: uint8(math.Round(a / k)),
	}
}
