package transformation

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err, "output must be a JPEG")
	return img
}

func assertNear(t *testing.T, img image.Image, x, y int, want color.NRGBA) {
	t.Helper()
	r, g, b, _ := img.At(x, y).RGBA()
	got := [3]int{int(r >> 8), int(g >> 8), int(b >> 8)}
	exp := [3]int{int(want.R), int(want.G), int(want.B)}
	for i := range got {
		diff := got[i] - exp[i]
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, 12, "pixel (%d,%d) = %v, want about %v", x, y, got, exp)
	}
}

var (
	red   = color.NRGBA{R: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestResize_OutputMatchesTargetSize(t *testing.T) {
	resizer := NewResizer(0)
	sources := map[string][]byte{
		"wide":   solidPNG(t, 400, 100, red),
		"tall":   solidPNG(t, 90, 300, red),
		"square": solidPNG(t, 64, 64, red),
		"tiny":   solidPNG(t, 1, 1, red),
	}
	targets := []types.Resolution{
		{Width: 1280, Height: 720},
		{Width: 1920, Height: 1080},
		{Width: 3840, Height: 2160},
		{Width: 100, Height: 300},
	}

	for name, src := range sources {
		for _, res := range targets {
			t.Run(name+"/"+res.String(), func(t *testing.T) {
				out, err := resizer.Resize(src, res)
				require.NoError(t, err)

				cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
				require.NoError(t, err)
				assert.Equal(t, "jpeg", format)
				assert.Equal(t, res.Width, cfg.Width)
				assert.Equal(t, res.Height, cfg.Height)
			})
		}
	}
}

func TestResize_PadsWideImageTopAndBottom(t *testing.T) {
	// 200x100 scales by 6.4 to 1280x640, leaving 40px bands above and below.
	out, err := NewResizer(90).Resize(solidPNG(t, 200, 100, red), types.Resolution{Width: 1280, Height: 720})
	require.NoError(t, err)
	img := decodeJPEG(t, out)

	assertNear(t, img, 640, 5, white)
	assertNear(t, img, 640, 714, white)
	assertNear(t, img, 640, 360, red)
	assertNear(t, img, 5, 360, red)
}

func TestResize_PadsTallImageLeftAndRight(t *testing.T) {
	// 100x200 scales by 3.6 to 360x720, centred with 460px on each side.
	out, err := NewResizer(90).Resize(solidPNG(t, 100, 200, red), types.Resolution{Width: 1280, Height: 720})
	require.NoError(t, err)
	img := decodeJPEG(t, out)

	assertNear(t, img, 10, 360, white)
	assertNear(t, img, 1270, 360, white)
	assertNear(t, img, 640, 360, red)
	assertNear(t, img, 640, 5, red)
}

func TestResize_TransparencyBecomesWhite(t *testing.T) {
	out, err := NewResizer(90).Resize(solidPNG(t, 50, 50, color.NRGBA{}), types.Resolution{Width: 160, Height: 90})
	require.NoError(t, err)
	img := decodeJPEG(t, out)

	assertNear(t, img, 80, 45, white)
	assertNear(t, img, 0, 0, white)
}

func TestResize_CorruptInput(t *testing.T) {
	src := solidPNG(t, 20, 20, red)

	_, err := NewResizer(0).Resize(src[:len(src)/2], types.Resolution{Width: 1280, Height: 720})
	assert.ErrorIs(t, err, ErrResize)

	_, err = NewResizer(0).Resize([]byte("definitely not an image"), types.Resolution{Width: 1280, Height: 720})
	assert.ErrorIs(t, err, ErrResize)
}

func TestResize_InvalidTarget(t *testing.T) {
	src := solidPNG(t, 20, 20, red)

	_, err := NewResizer(0).Resize(src, types.Resolution{Width: 0, Height: 720})
	assert.ErrorIs(t, err, ErrResize)

	_, err = NewResizer(0).Resize(src, types.Resolution{Width: 1280, Height: -1})
	assert.ErrorIs(t, err, ErrResize)
}

func TestResize_ConcurrentCallsAreIndependent(t *testing.T) {
	resizer := NewResizer(0)
	src := solidPNG(t, 120, 80, red)
	res := types.Resolution{Width: 320, Height: 180}

	want, err := resizer.Resize(src, res)
	require.NoError(t, err)

	const n = 8
	results := make([][]byte, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = resizer.Resize(src, res)
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}

func TestNewResizer_QualityBounds(t *testing.T) {
	assert.Equal(t, DefaultJPEGQuality, NewResizer(0).quality)
	assert.Equal(t, DefaultJPEGQuality, NewResizer(101).quality)
	assert.Equal(t, 95, NewResizer(95).quality)
}
