package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"
)

// Wrap modes
const (
	WrapClamp = iota
	WrapRepeat
)

// Filter modes
const (
	FilterLinear = iota
	FilterNearest
)

// Texture holds CPU-side pixel data for a 2D texture plus its sampling state.
// GLID is set by the OpenGL backend after upload; do not access directly.
type Texture struct {
	Name   string
	Width  int
	Height int
	// Pixels in RGBA8 format (4 bytes per pixel, row-major, bottom-to-top).
	Pixels []byte

	WrapS     int
	WrapT     int
	MagFilter int
	// Repeat scales texture coordinates; (5, 5) tiles the image five times per axis.
	Repeat mgl32.Vec2

	// GLID is the OpenGL texture object ID, set on upload.
	GLID uint32
}

// LoadTexture reads a PNG or JPEG file and returns a CPU-side Texture.
// Rows are flipped so UV (0,0) addresses the bottom-left corner of the image.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	tex, err := DecodeTexture(f, path, true)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", path, err)
	}
	return tex, nil
}

// DecodeTexture decodes any registered image format into an RGBA8 Texture.
func DecodeTexture(r io.Reader, name string, flipY bool) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty image")
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	pixels := rgba.Pix
	if flipY {
		pixels = flipRows(rgba.Pix, w*4, h)
	}

	return &Texture{
		Name:   name,
		Width:  w,
		Height: h,
		Pixels: pixels,
		Repeat: mgl32.Vec2{1, 1},
	}, nil
}

// NewSolidTexture creates a 1x1 texture with the given RGBA color values (0–255).
func NewSolidTexture(name string, r, g, b, a uint8) *Texture {
	return &Texture{
		Name:   name,
		Width:  1,
		Height: 1,
		Pixels: []byte{r, g, b, a},
		Repeat: mgl32.Vec2{1, 1},
	}
}

// SetRepeatAxis replaces one component (0=U, 1=V) of the repeat factor.
func (t *Texture) SetRepeatAxis(axis int, v float32) {
	t.Repeat[axis] = v
}

func flipRows(pix []byte, stride, rows int) []byte {
	out := make([]byte, len(pix))
	for y := 0; y < rows; y++ {
		copy(out[(rows-1-y)*stride:(rows-y)*stride], pix[y*stride:(y+1)*stride])
	}
	return out
}
