package recipon

import (
	"bytes"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ImageDims probes the pixel dimensions of an encoded image without decoding
// the full bitmap. Returns zeros for formats the registered decoders (jpeg,
// png, gif, webp) don't recognize.
func ImageDims(data []byte) (width, height int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
