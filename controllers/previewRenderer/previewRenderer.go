package previewRenderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/png"
	"strings"

	"certdesk/apperr"
	"certdesk/models"

	"github.com/common-nighthawk/go-figure"
)

const (
	PanelTitle         = "Certificate Preview"
	PlaceholderMessage = "Generate a certificate to see the preview"
	DocumentTitle      = "CERTIFICATE OF ACHIEVEMENT"
)

// Document is the rendered view of a certificate
type Document struct {
	Placeholder     bool        `json:"placeholder" yaml:"placeholder"`
	Message         string      `json:"message,omitempty" yaml:"message,omitempty"`
	Title           string      `json:"title,omitempty" yaml:"title,omitempty"`
	CertificateID   string      `json:"certificate_id,omitempty" yaml:"certificate_id,omitempty"`
	RecipientName   string      `json:"recipient_name,omitempty" yaml:"recipient_name,omitempty"`
	CourseName      string      `json:"course_name,omitempty" yaml:"course_name,omitempty"`
	IssueDate       string      `json:"issue_date,omitempty" yaml:"issue_date,omitempty"`
	Paragraphs      []string    `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	QRCode          image.Image `json:"-" yaml:"-"`
	HasQRCode       bool        `json:"has_qr_code" yaml:"has_qr_code"`
	QRCodeURL       string      `json:"qr_code_url,omitempty" yaml:"qr_code_url,omitempty"`
	QRError         string      `json:"qr_error,omitempty" yaml:"qr_error,omitempty"`
	DownloadEnabled bool        `json:"download_enabled" yaml:"download_enabled"`
}

// Render projects a certificate onto a document. A nil certificate yields the placeholder.
// The QR code is decoded from the inline payload only; qr_code_url is passed through, never fetched.
func Render(cert *models.Certificate) Document {
	if cert == nil {
		return Document{Placeholder: true, Message: PlaceholderMessage}
	}

	doc := Document{
		Title:           DocumentTitle,
		CertificateID:   cert.CertificateID,
		RecipientName:   cert.RecipientName,
		CourseName:      cert.CourseName,
		IssueDate:       cert.IssueDate,
		Paragraphs:      Paragraphs(cert.Content),
		QRCodeURL:       cert.QRCodeURL,
		DownloadEnabled: cert.IsIssued(),
	}
	if strings.TrimSpace(cert.QRCode) != "" {
		img, err := DecodeQRCode(cert.QRCode)
		if err != nil {
			doc.QRError = err.Error()
		} else {
			doc.QRCode = img
			doc.HasQRCode = true
		}
	}
	return doc
}

// Paragraphs splits content on newlines, keeping blank lines so the layout matches the source text
func Paragraphs(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	return lines
}

// DecodeQRCode decodes a base64 image payload, with or without a data URL prefix
func DecodeQRCode(payload string) (image.Image, error) {
	payload = strings.TrimSpace(payload)
	if i := strings.Index(payload, ";base64,"); strings.HasPrefix(payload, "data:") && i >= 0 {
		payload = payload[i+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode qr code: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode qr code image: %w", err)
	}
	return img, nil
}

// Text lays the document out as plain text
func (d Document) Text() string {
	var b strings.Builder
	b.WriteString(PanelTitle)
	b.WriteString("\n\n")
	if d.Placeholder {
		b.WriteString(d.Message)
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(figure.NewFigure("Certificate", "", true).String())
	b.WriteString("\n")
	b.WriteString(d.Title + "\n\n")
	b.WriteString("This is to certify that\n")
	b.WriteString(d.RecipientName + "\n")
	b.WriteString("has successfully completed the course\n")
	b.WriteString(d.CourseName + "\n")
	if len(d.Paragraphs) > 0 {
		b.WriteString("\n")
		for _, p := range d.Paragraphs {
			b.WriteString(p + "\n")
		}
	}
	b.WriteString("\nIssued on: " + d.IssueDate + "\n")
	switch {
	case d.HasQRCode:
		bounds := d.QRCode.Bounds()
		fmt.Fprintf(&b, "[QR code %dx%d]\n", bounds.Dx(), bounds.Dy())
	case d.QRCodeURL != "":
		b.WriteString("QR code: " + d.QRCodeURL + "\n")
	}
	if d.CertificateID != "" {
		b.WriteString("Certificate ID: " + d.CertificateID + "\n")
	}
	return b.String()
}

// PDFFetcher retrieves the rendered document of an issued certificate
type PDFFetcher interface {
	FetchPDF(ctx context.Context, certificateID string) ([]byte, error)
}

// DownloadPDF is the preview's download action. It is only enabled for issued certificates.
func DownloadPDF(ctx context.Context, fetcher PDFFetcher, cert *models.Certificate) ([]byte, string, error) {
	if !cert.IsIssued() {
		return nil, "", fmt.Errorf("download pdf without an issued certificate: %w", apperr.ErrInvalidState)
	}
	body, err := fetcher.FetchPDF(ctx, cert.CertificateID)
	if err != nil {
		return nil, "", err
	}
	return body, models.CertificateFileName(cert.CertificateID), nil
}
