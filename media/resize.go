package media

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/goliatone/go-errors"
	"golang.org/x/image/draw"
)

const (
	// MaxDimension bounds the longest edge of stored images.
	MaxDimension = 800
	jpegQuality  = 80
)

// NormalizeJPEG decodes an uploaded image (JPEG, PNG, or GIF), scales it down
// so neither edge exceeds MaxDimension, and re-encodes it as JPEG. Images
// already within bounds are re-encoded without scaling.
func NormalizeJPEG(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "unsupported or corrupt image").
			WithCode(errors.CodeBadRequest).
			WithTextCode("BAD_IMAGE")
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > MaxDimension || h > MaxDimension {
		scale := float64(MaxDimension) / float64(w)
		if h > w {
			scale = float64(MaxDimension) / float64(h)
		}

		dw := int(float64(w) * scale)
		dh := int(float64(h) * scale)
		if dw < 1 {
			dw = 1
		}
		if dh < 1 {
			dh = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to encode image")
	}

	return buf.Bytes(), nil
}
