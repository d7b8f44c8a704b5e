package utils

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QREncoder turns text into PNG bytes.
type QREncoder func(content string) ([]byte, error)

// NewQREncoder fixes the recovery level and pixel size for every certificate.
func NewQREncoder(level qrcode.RecoveryLevel, size int) QREncoder {
	return func(content string) ([]byte, error) {
		return GenerateQRCodePNG(content, level, size)
	}
}

func GenerateQRCodePNG(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, level, size)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}
	return png, nil
}
