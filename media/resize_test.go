package media_test

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/SajalTalukder/photoflow-backend/media"
	"github.com/stretchr/testify/assert"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()

	img, err := jpeg.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestNormalizeJPEG(t *testing.T) {
	tests := []struct {
		name  string
		w, h  int
		wantW int
		wantH int
	}{
		{"small image untouched", 400, 300, 400, 300},
		{"wide image capped by width", 1600, 800, 800, 400},
		{"tall image capped by height", 600, 2400, 200, 800},
		{"exact bound untouched", 800, 800, 800, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := media.NormalizeJPEG(makePNG(t, tt.w, tt.h))
			assert.NoError(t, err)

			gotW, gotH := decodeDims(t, out)
			assert.Equal(t, tt.wantW, gotW)
			assert.Equal(t, tt.wantH, gotH)
		})
	}
}

func TestNormalizeJPEGRejectsGarbage(t *testing.T) {
	_, err := media.NormalizeJPEG([]byte("definitely not an image"))
	assert.Error(t, err)
}
