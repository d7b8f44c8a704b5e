package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmadqo/club-certificate-engine/internal/config"
	"github.com/ahmadqo/club-certificate-engine/internal/model"
	"github.com/jung-kurt/gofpdf"
)

// ErrRenderingFailed wraps any PDF composition or QR encoding failure.
var ErrRenderingFailed = errors.New("certificate rendering failed")

const (
	pageWidth  = 297.0
	pageHeight = 210.0
	qrImageMM  = 32.0
)

type rgb struct{ r, g, b int }

var templatePalette = map[model.TemplateType]rgb{
	model.TemplateGold:    {191, 149, 63},
	model.TemplateSilver:  {150, 150, 160},
	model.TemplateBronze:  {176, 112, 64},
	model.TemplateDefault: {0, 51, 102},
}

// CertificateRenderer produces a single landscape page per certificate.
type CertificateRenderer struct {
	encodeQR       QREncoder
	clubName       string
	signatoryLeft  string
	signatoryRight string
}

func NewCertificateRenderer(cfg config.CertificateConfig, encodeQR QREncoder) *CertificateRenderer {
	return &CertificateRenderer{
		encodeQR:       encodeQR,
		clubName:       cfg.ClubName,
		signatoryLeft:  cfg.SignatoryLeft,
		signatoryRight: cfg.SignatoryRight,
	}
}

// AchievementLine prefixes the ordinal rank when present, e.g. "1st - WINNER".
func AchievementLine(cert *model.Certificate) string {
	if cert.Rank == nil {
		return cert.Achievement
	}
	ordinal := Ordinal(*cert.Rank)
	if strings.HasPrefix(cert.Achievement, ordinal) {
		return cert.Achievement
	}
	return fmt.Sprintf("%s - %s", ordinal, cert.Achievement)
}

// Render is read-only with respect to cert. Any failure returns ErrRenderingFailed and no bytes.
func (r *CertificateRenderer) Render(cert *model.Certificate, competitionName string) ([]byte, error) {
	qrPNG, err := r.encodeQR(cert.ValidationURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	accent, ok := templatePalette[cert.TemplateType]
	if !ok {
		accent = templatePalette[model.TemplateDefault]
	}

	// Border
	pdf.SetDrawColor(accent.r, accent.g, accent.b)
	pdf.SetLineWidth(2.5)
	pdf.Rect(8, 8, pageWidth-16, pageHeight-16, "D")
	pdf.SetLineWidth(0.6)
	pdf.Rect(13, 13, pageWidth-26, pageHeight-26, "D")

	// Title block
	pdf.SetY(24)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 7, tr(strings.ToUpper(r.clubName)), "", 1, "C", false, 0, "")

	pdf.SetFont("Times", "B", 34)
	pdf.SetTextColor(accent.r, accent.g, accent.b)
	pdf.CellFormat(0, 16, "CERTIFICATE OF ACHIEVEMENT", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(60, 60, 60)
	pdf.CellFormat(0, 8, "This certificate is proudly presented to", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// Recipient
	pdf.SetFont("Times", "BI", 30)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 15, tr(cert.RecipientName), "", 1, "C", false, 0, "")

	nameLineY := pdf.GetY() + 1
	pdf.SetDrawColor(accent.r, accent.g, accent.b)
	pdf.SetLineWidth(0.4)
	pdf.Line(pageWidth/2-70, nameLineY, pageWidth/2+70, nameLineY)
	pdf.Ln(5)

	// Achievement, category, competition
	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(accent.r, accent.g, accent.b)
	pdf.CellFormat(0, 9, tr(AchievementLine(cert)), "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	pdf.SetTextColor(40, 40, 40)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Category: %s", cert.Category)), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("in %s", competitionName)), "", 1, "C", false, 0, "")

	if cert.TotalScore != nil {
		pdf.SetFont("Arial", "I", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("Score: %s", formatScore(*cert.TotalScore)), "", 1, "C", false, 0, "")
	}

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(0, 7, fmt.Sprintf("Given on %s", cert.IssuedAt.Format("02 January 2006")), "", 1, "C", false, 0, "")

	// Signatures
	sigY := pageHeight - 45
	sigWidth := 70.0
	for i, title := range []string{r.signatoryLeft, r.signatoryRight} {
		x := 35.0
		if i == 1 {
			x = pageWidth - 35 - sigWidth
		}
		pdf.SetDrawColor(60, 60, 60)
		pdf.SetLineWidth(0.3)
		pdf.Line(x, sigY, x+sigWidth, sigY)
		pdf.SetXY(x, sigY+1)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(sigWidth, 6, tr(title), "", 0, "C", false, 0, "")
	}

	// QR code with its validation code
	qrX := pageWidth/2 - qrImageMM/2
	qrY := pageHeight - 20 - qrImageMM - 6
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qrcode", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qrcode", qrX, qrY, qrImageMM, qrImageMM, false, opts, 0, "")
	pdf.SetXY(qrX-10, qrY+qrImageMM)
	pdf.SetFont("Courier", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(qrImageMM+20, 5, cert.ValidationCode, "", 0, "C", false, 0, "")

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailed, pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderingFailed, err)
	}
	return buf.Bytes(), nil
}

func formatScore(score float64) string {
	if score == float64(int64(score)) {
		return fmt.Sprintf("%d", int64(score))
	}
	return fmt.Sprintf("%.2f", score)
}
