package transformation

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	// Decoders register themselves with the image package; imaging.Decode
	// goes through image.Decode so every format listed here is accepted.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

const DefaultJPEGQuality = 80

var ErrResize = errors.New("resize failed")

// Padding colour for the area the scaled image does not cover.
var background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Resizer produces "contain" derivatives encoded as JPEG. It holds no
// mutable state and can be shared between goroutines.
type Resizer struct {
	quality int
}

func NewResizer(quality int) *Resizer {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return &Resizer{quality: quality}
}

// Resize decodes buffer, fits it inside res.Width x res.Height keeping the
// aspect ratio, centres it on a white canvas of exactly that size and
// returns the JPEG encoding.
func (r *Resizer) Resize(buffer []byte, res types.Resolution) ([]byte, error) {
	if res.Width <= 0 || res.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid target size %s", ErrResize, res)
	}

	img, err := imaging.Decode(bytes.NewReader(buffer), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode image: %v", ErrResize, err)
	}
	if img.Bounds().Dx() == 0 || img.Bounds().Dy() == 0 {
		return nil, fmt.Errorf("%w: empty source image", ErrResize)
	}

	newImage := Contain(img, res.Width, res.Height)

	buf := new(bytes.Buffer)
	if err = imaging.Encode(buf, newImage, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
		return nil, fmt.Errorf("%w: error while encoding: %v", ErrResize, err)
	}
	return buf.Bytes(), nil
}

// Contain scales img up or down to the largest size that fits in
// width x height and composites it over an opaque white canvas. Transparent
// pixels end up white.
func Contain(img image.Image, width int, height int) *image.NRGBA {
	srcW, srcH := img.Bounds().Dx(), img.Bounds().Dy()
	scale := math.Min(float64(width)/float64(srcW), float64(height)/float64(srcH))

	w := clamp(int(math.Round(float64(srcW)*scale)), 1, width)
	h := clamp(int(math.Round(float64(srcH)*scale)), 1, height)

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	canvas := imaging.New(width, height, background)
	return imaging.Overlay(canvas, resized, image.Pt((width-w)/2, (height-h)/2), 1.0)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
