package texture

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/chewxy/math32"
	"github.com/meridian-render/meridian/types"
)

// A texture image and its metadata. Texel data is always stored as RGBA8
// regardless of the source image format.
type Texture struct {
	Width  uint32
	Height uint32

	Data []byte
}

// Create a new texture from a decoded image.
func New(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Data:   make([]byte, bounds.Dx()*bounds.Dy()*4),
	}

	wOffset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			tex.Data[wOffset] = byte(r >> 8)
			tex.Data[wOffset+1] = byte(g >> 8)
			tex.Data[wOffset+2] = byte(b >> 8)
			tex.Data[wOffset+3] = byte(a >> 8)
			wOffset += 4
		}
	}

	return tex
}

// Create a new texture from an image file.
func ReadFile(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", path, err.Error())
	}

	return New(img), nil
}

// Sample the texture at the given uv coordinates using nearest filtering.
// Coordinates outside [0,1) wrap around. V grows upwards per the wavefront
// convention, so it is flipped before addressing texel rows.
func (t *Texture) Sample(uv types.Vec2) types.Vec3 {
	u := uv[0] - math32.Floor(uv[0])
	v := uv[1] - math32.Floor(uv[1])

	x := uint32(u * float32(t.Width))
	y := uint32((1 - v) * float32(t.Height))
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}

	offset := (y*t.Width + x) * 4
	return types.Vec3{
		float32(t.Data[offset]) / 255.0,
		float32(t.Data[offset+1]) / 255.0,
		float32(t.Data[offset+2]) / 255.0,
	}
}
