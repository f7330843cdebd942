package render

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// MaxTextureSize is the largest edge length the software device stores.
// Larger images are downsampled on upload.
const MaxTextureSize = 1024

// WrapMode determines how texture coordinates outside [0,1] are handled.
type WrapMode int

const (
	WrapRepeat WrapMode = iota // Tile the texture
	WrapClamp                  // Clamp to edge
)

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

// Texture is an uploaded image held by the software device.
type Texture struct {
	Width  int
	Height int
	Pixels []color.RGBA // Row-major, y down
	Wrap   WrapMode
	Filter FilterMode
}

// NewTexture converts img into a texture, downsampling it with bilinear
// filtering if either edge exceeds maxSize.
func NewTexture(img image.Image, maxSize int) *Texture {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		s := float64(maxSize) / float64(max(w, h))
		w, h = max(1, int(float64(w)*s)), max(1, int(float64(h)*s))
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		draw.BiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	}

	tex := &Texture{Width: w, Height: h, Pixels: make([]color.RGBA, w*h)}
	for i := range tex.Pixels {
		o := i * 4
		tex.Pixels[i] = color.RGBA{dst.Pix[o], dst.Pix[o+1], dst.Pix[o+2], dst.Pix[o+3]}
	}
	return tex
}

// CheckerImage returns a checkerboard of size×size pixels with squares of
// edge check.
func CheckerImage(size, check int, c1, c2 color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	check = max(check, 1)
	for y := range size {
		for x := range size {
			if (x/check+y/check)%2 == 0 {
				img.Set(x, y, c1)
			} else {
				img.Set(x, y, c2)
			}
		}
	}
	return img
}

// GetPixel returns the pixel at (x, y), or transparent black out of bounds.
func (t *Texture) GetPixel(x, y int) color.RGBA {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return color.RGBA{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at uv. v = 0 is the bottom row of the image.
func (t *Texture) Sample(u, v float64) color.RGBA {
	if t.Width == 0 || t.Height == 0 {
		return color.RGBA{255, 255, 255, 255}
	}
	u = wrapCoord(u, t.Wrap)
	v = 1 - wrapCoord(v, t.Wrap)

	if t.Filter == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.GetPixel(x, y)
}

func wrapCoord(c float64, mode WrapMode) float64 {
	if mode == WrapRepeat {
		return c - math.Floor(c)
	}
	return math.Max(0, math.Min(1, c))
}

func (t *Texture) sampleBilinear(u, v float64) color.RGBA {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	x1 := t.wrapPixel(x0+1, t.Width)
	y1 := t.wrapPixel(y0+1, t.Height)
	x0 = t.wrapPixel(x0, t.Width)
	y0 = t.wrapPixel(y0, t.Height)

	top := lerpRGBA(t.GetPixel(x0, y0), t.GetPixel(x1, y0), tx)
	bot := lerpRGBA(t.GetPixel(x0, y1), t.GetPixel(x1, y1), tx)
	return lerpRGBA(top, bot, ty)
}

func (t *Texture) wrapPixel(x, size int) int {
	if t.Wrap == WrapRepeat {
		x %= size
		if x < 0 {
			x += size
		}
		return x
	}
	return min(max(x, 0), size-1)
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	l := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{l(a.R, b.R), l(a.G, b.G), l(a.B, b.B), l(a.A, b.A)}
}
