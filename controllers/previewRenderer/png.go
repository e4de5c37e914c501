package previewRenderer

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"
)

const (
	pngWidth   = 800
	pngHeight  = 600
	qrSize     = 128
	lineHeight = 22.0
	wrapWidth  = 640.0

	textTop     = 70.0
	borderInset = 20.0
	qrCenterY   = pngHeight - 40 - qrSize/2 - 10
	qrTop       = qrCenterY - qrSize/2
	ellipsis    = "..."
)

type placedLine struct {
	Text string
	Y    float64
}

// layoutLines positions the certificate text top down. Content lines that would run into the
// QR code or the border are dropped and the last kept one becomes an ellipsis.
func layoutLines(doc Document, wrap func(string) []string) []placedLine {
	bottom := float64(pngHeight) - borderInset - lineHeight/2
	if doc.HasQRCode {
		bottom = qrTop - lineHeight/2
	}

	var out []placedLine
	y := textTop
	add := func(s string) {
		out = append(out, placedLine{Text: s, Y: y})
		y += lineHeight
	}
	add(doc.Title)
	y += lineHeight / 2
	add("This is to certify that")
	add(doc.RecipientName)
	add("has successfully completed the course")
	add(doc.CourseName)

	if len(doc.Paragraphs) > 0 {
		y += lineHeight / 2
		var body []string
		for _, p := range doc.Paragraphs {
			wrapped := wrap(p)
			if len(wrapped) == 0 {
				body = append(body, "")
				continue
			}
			body = append(body, wrapped...)
		}

		// room left for the issued-on line below the content
		last := bottom - lineHeight - lineHeight/2 - lineHeight/2
		kept := 0
		for _, l := range body {
			if y+lineHeight/2 > last {
				break
			}
			add(l)
			kept++
		}
		if kept < len(body) && kept > 0 {
			out[len(out)-1].Text = ellipsis
		}
	}
	y += lineHeight / 2
	add("Issued on: " + doc.IssueDate)
	return out
}

// EncodePNG draws the document as a raster image
func EncodePNG(doc Document, w io.Writer) error {
	dc := gg.NewContext(pngWidth, pngHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)
	cx := float64(pngWidth) / 2

	if doc.Placeholder {
		dc.SetRGB(0.6, 0.6, 0.6)
		dc.SetDash(8, 6)
		dc.SetLineWidth(2)
		dc.DrawRectangle(24, 24, pngWidth-48, pngHeight-48)
		dc.Stroke()
		dc.DrawStringAnchored(doc.Message, cx, pngHeight/2, 0.5, 0.5)
		return dc.EncodePNG(w)
	}

	dc.SetRGB(0.15, 0.15, 0.2)
	dc.SetLineWidth(4)
	dc.DrawRectangle(borderInset, borderInset, pngWidth-2*borderInset, pngHeight-2*borderInset)
	dc.Stroke()

	wrap := func(s string) []string { return dc.WordWrap(s, wrapWidth) }
	for _, l := range layoutLines(doc, wrap) {
		if l.Text != "" {
			dc.DrawStringAnchored(l.Text, cx, l.Y, 0.5, 0.5)
		}
	}

	if doc.HasQRCode && doc.QRCode != nil {
		qr := image.NewRGBA(image.Rect(0, 0, qrSize, qrSize))
		draw.NearestNeighbor.Scale(qr, qr.Bounds(), doc.QRCode, doc.QRCode.Bounds(), draw.Over, nil)
		dc.DrawImageAnchored(qr, pngWidth/2, qrCenterY, 0.5, 0.5)
	}
	return dc.EncodePNG(w)
}
