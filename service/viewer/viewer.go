// Package viewer builds the shareable link of a memory and its QR code.
package viewer

import (
	"encoding/base64"
	"fmt"
	"image/color"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// DefaultQRSize is the QR code edge length in pixels.
const DefaultQRSize = 300

var (
	qrForeground = color.RGBA{R: 0x06, G: 0xB6, B: 0xD4, A: 0xFF}
	qrBackground = color.White
)

// ShareURL returns <origin>/memory/<id>.
func ShareURL(origin, id string) string {
	return strings.TrimRight(origin, "/") + "/memory/" + url.PathEscape(id)
}

// QRCode renders link as a PNG of size x size pixels.
func QRCode(link string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	q, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	q.ForegroundColor = qrForeground
	q.BackgroundColor = qrBackground

	png, err := q.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

// QRCodeDataURL renders link as an inline data:image/png URL.
func QRCodeDataURL(link string) (string, error) {
	png, err := QRCode(link, DefaultQRSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// QRFilename is the download name of the QR code for id.
func QRFilename(id string) string {
	return "memorylove-" + id + ".png"
}
