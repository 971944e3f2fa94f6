package perception

import (
	"fmt"
	"image"

	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// QRCode renders url as a PNG of size x size pixels.
func QRCode(url string, size int) ([]byte, error) {
	png, err := qrcode.Encode(url, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr for %s: %w", url, err)
	}
	return png, nil
}

// QRImage renders url as an image for drawing in the game window.
func QRImage(url string, size int) (image.Image, error) {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr for %s: %w", url, err)
	}
	return code.Image(size), nil
}
