package report

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/gen2brain/go-fitz"
	"github.com/nfnt/resize"
)

const previewWidth uint = 200
const previewHeight uint = 300

// GeneratePreview rasterizes the first page of a rendered report,
// resizes it to thumbnail dimensions, encodes it as a Base64 JPEG, and
// returns it as a data URI string for direct use in an <img> tag.
func GeneratePreview(pdfData []byte) (string, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF for preview: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return "", fmt.Errorf("failed to rasterize first page: %w", err)
	}

	// Get image dimensions
	imgHeight := img.Bounds().Dy()
	imgWidth := img.Bounds().Dx()

	var resizedImg image.Image
	if imgHeight > imgWidth {
		resizedImg = resize.Resize(0, previewHeight, img, resize.Lanczos3)
	} else {
		resizedImg = resize.Resize(previewWidth, 0, img, resize.Lanczos3)
	}

	var buf bytes.Buffer
	// Encode the resized image as a JPEG. Quality 75 is a good balance.
	if err := jpeg.Encode(&buf, resizedImg, &jpeg.Options{Quality: 75}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}

	// Encode the byte buffer to a Base64 string.
	base64Str := base64.StdEncoding.EncodeToString(buf.Bytes())

	// Format as a Data URI.
	return fmt.Sprintf("data:image/jpeg;base64,%s", base64Str), nil
}
