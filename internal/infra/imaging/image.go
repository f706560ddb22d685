// File: internal/infra/imaging/image.go
package imaging

import (
	"bytes"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
)

const jpegQuality = 90

// PrepareCoverArt normalizes downloaded artwork for ID3 embedding:
// decode, scale down to fit maxDim x maxDim preserving aspect ratio,
// re-encode as JPEG. Images already within bounds are only re-encoded.
func PrepareCoverArt(data []byte, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width > maxDim || height > maxDim {
		ratio := float64(width) / float64(height)
		if ratio > 1 {
			width = maxDim
			height = int(float64(maxDim) / ratio)
		} else {
			height = maxDim
			width = int(float64(maxDim) * ratio)
		}
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
