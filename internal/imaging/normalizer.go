package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

// Normalizer prepares captured images for a vision provider: decode,
// scale to a fixed square, re-encode as JPEG
type Normalizer struct {
	size    int
	quality int
	logger  *zap.Logger
}

// NewNormalizer creates a normalizer producing size x size JPEG output
func NewNormalizer(size int, quality int, logger *zap.Logger) *Normalizer {
	return &Normalizer{
		size:    size,
		quality: quality,
		logger:  logger,
	}
}

// Normalize decodes the image and re-encodes it at the target square size.
// Undecodable input returns an error; the caller decides how to surface it.
func (n *Normalizer) Normalize(data []byte) ([]byte, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, n.size, n.size))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: n.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode normalized image: %w", err)
	}

	n.logger.Debug("Normalized image",
		zap.String("format", format),
		zap.Int("original_width", src.Bounds().Dx()),
		zap.Int("original_height", src.Bounds().Dy()),
		zap.Int("target_size", n.size),
		zap.Int("output_bytes", buf.Len()))

	return buf.Bytes(), nil
}
