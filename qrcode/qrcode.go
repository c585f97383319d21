// Package qrcode renders file ids as scannable images for the upload
// response.
package qrcode

import (
	"encoding/base64"
	"fmt"

	qr "github.com/skip2/go-qrcode"
)

const imageSize = 256

// DataURL encodes id into a PNG QR code and returns it as a data URL
// suitable for direct embedding in an <img> tag
func DataURL(id string) (string, error) {
	png, err := qr.Encode(id, qr.Medium, imageSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
