package extraction

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/gen2brain/go-fitz"
)

// pdfToImage renders the first page of a PDF as PNG
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// Receipts and invoices are expected to fit on one page
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// imagePayload returns a payload a vision-only model can read: PDFs are
// rasterized, images pass through untouched
func imagePayload(payload Payload) (Payload, error) {
	if payload.MIMEType != "application/pdf" {
		return payload, nil
	}
	data, err := pdfToImage(payload.Data)
	if err != nil {
		return Payload{}, fmt.Errorf("converting PDF to image: %w", err)
	}
	return Payload{MIMEType: "image/png", Data: data}, nil
}
