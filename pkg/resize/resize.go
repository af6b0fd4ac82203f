// Package resize scales uploaded images while preserving aspect ratio.
package resize

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// jpegQuality matches the original service's output quality.
const jpegQuality = 85

// Result is the encoded output of a resize operation.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Resize decodes an image, scales it, and re-encodes it.
//
// Dimension rules: both width and height set means exact dimensions; only
// one set means the other scales to preserve aspect ratio; neither set means
// the image is scaled, up or down, to the limiting default dimension out of
// (maxWidth, maxHeight). PNG input stays PNG;
// everything else is encoded as JPEG with transparency flattened onto white.
func Resize(data []byte, width, height, maxWidth, maxHeight int) (*Result, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	var resized *image.NRGBA
	switch {
	case width > 0 || height > 0:
		// imaging preserves aspect ratio when one dimension is zero.
		resized = imaging.Resize(img, width, height, imaging.Lanczos)
	default:
		// Scale by the limiting ratio. The ratio is applied even when above
		// 1, so images smaller than the defaults are grown to meet them.
		b := img.Bounds()
		ratio := math.Min(
			float64(maxWidth)/float64(b.Dx()),
			float64(maxHeight)/float64(b.Dy()),
		)
		resized = imaging.Resize(img,
			int(float64(b.Dx())*ratio), int(float64(b.Dy())*ratio), imaging.Lanczos)
	}

	bounds := resized.Bounds()
	out := &Result{Width: bounds.Dx(), Height: bounds.Dy()}

	var buf bytes.Buffer
	if format == "png" {
		if err := imaging.Encode(&buf, resized, imaging.PNG); err != nil {
			return nil, fmt.Errorf("encode png: %w", err)
		}
		out.ContentType = "image/png"
	} else {
		// JPEG has no alpha channel; flatten onto white.
		flat := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
		flat = imaging.Overlay(flat, resized, image.Pt(0, 0), 1.0)
		if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		out.ContentType = "image/jpeg"
	}

	out.Data = buf.Bytes()
	return out, nil
}
