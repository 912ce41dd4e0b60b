package imgproc

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

const (
	// DefaultMaxDimension bounds the longer side of a stored image.
	DefaultMaxDimension = 800
	// DefaultQuality is the JPEG quality of the re-encoded output.
	DefaultQuality = 85
)

// Normalizer downscales images to fit within MaxDimension on the longer
// side and re-encodes them as JPEG. The transform is lossy and one-way:
// original bytes are never kept.
type Normalizer struct {
	MaxDimension int
	Quality      int
}

// NewNormalizer creates a normalizer with the default bounds
func NewNormalizer() *Normalizer {
	return &Normalizer{
		MaxDimension: DefaultMaxDimension,
		Quality:      DefaultQuality,
	}
}

// Normalize decodes, resizes, and re-encodes the image. Images already
// within bounds are not upscaled but are still re-encoded, so the stored
// format is uniform. Undecodable input is an error.
func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	// Fit preserves aspect ratio and never upscales.
	img = imaging.Fit(img, n.MaxDimension, n.MaxDimension, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(n.Quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	return buf.Bytes(), nil
}
