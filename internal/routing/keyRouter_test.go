package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahirjain10/image-resolution-worker/internal/types"
)

func TestDecodeKey(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"images/original/cat+photo.png", "images/original/cat photo.png"},
		{"images/original/cat%20photo.png", "images/original/cat photo.png"},
		{"images/original/a%2Bb.png", "images/original/a+b.png"},
		{"images/original/caf%C3%A9.jpg", "images/original/café.jpg"},
		{"images/original/plain.jpg", "images/original/plain.jpg"},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := DecodeKey(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeKey_InvalidEscape(t *testing.T) {
	_, err := DecodeKey("images/original/100%.png")
	assert.Error(t, err)
}

func TestRouter_IsInScope(t *testing.T) {
	r := NewRouter("")

	assert.Equal(t, DefaultIncomingPrefix, r.IncomingPrefix())
	assert.True(t, r.IsInScope("images/original/cat photo.png"))
	assert.True(t, r.IsInScope("images/original/nested/dir/x.jpg"))
	assert.False(t, r.IsInScope("thumbnails/x.png"))
	assert.False(t, r.IsInScope("images/formatted/1280x720/x.jpg"))
	assert.False(t, r.IsInScope("images/originals.png"))
	assert.False(t, r.IsInScope(""))
}

func TestRouter_CustomPrefix(t *testing.T) {
	r := NewRouter("uploads/")

	assert.True(t, r.IsInScope("uploads/x.png"))
	assert.False(t, r.IsInScope("images/original/x.png"))
}

func TestDestinationKey(t *testing.T) {
	res := types.Resolution{Width: 1920, Height: 1080, DestinationPrefix: "images/formatted/1920x1080"}

	key := DestinationKey(res, "3f1c1a52-8f4e-4d0e-9b7a-2a0f1f3b9c11")

	assert.Equal(t, "images/formatted/1920x1080/3f1c1a52-8f4e-4d0e-9b7a-2a0f1f3b9c11.jpg", key)
	assert.Equal(t, key, DestinationKey(res, "3f1c1a52-8f4e-4d0e-9b7a-2a0f1f3b9c11"))
}

func TestOriginalFileName(t *testing.T) {
	assert.Equal(t, "cat photo.png", OriginalFileName("images/original/cat photo.png"))
	assert.Equal(t, "x.jpg", OriginalFileName("images/original/a/b/x.jpg"))
}
