// Package reading extracts meter readings from uploaded photos and validates
// them against the equipment's recorded history.
package reading

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/api"
)

var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Extraction is what OCR pulled out of one gauge photo.
type Extraction struct {
	Raw    string
	Value  *float64
	Faulty bool
}

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract OCRs the photo. Preprocessing mirrors what works on stamped serial
// stickers: grayscale, contrast boost, sharpen. A photo with no digits at all
// is reported as a faulty (unreadable) gauge rather than an error.
func (e *Extractor) Extract(imageBytes []byte) (*Extraction, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	processed := imaging.Grayscale(img)
	processed = imaging.AdjustContrast(processed, 20)
	processed = imaging.Sharpen(processed, 0.5)

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, processed, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("failed to encode processed image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image for OCR: %w", err)
	}
	_ = client.SetWhitelist("0123456789.")

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	ex := &Extraction{Raw: strings.TrimSpace(text)}
	match := numberPattern.FindString(ex.Raw)
	if match == "" {
		ex.Faulty = true
		return ex, nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		ex.Faulty = true
		return ex, nil
	}
	ex.Value = &v
	return ex, nil
}

// Validate applies the monotonicity rule: a fresh meter reading must exceed
// the last accepted reading for the same equipment and question.
func Validate(ex *Extraction, lastReading *float64) api.ReadingValidationDTO {
	out := api.ReadingValidationDTO{LastReading: lastReading}

	if ex.Faulty {
		out.IsValid = true
		out.IsFaulty = true
		return out
	}
	if ex.Value == nil {
		out.IsValid = true
		return out
	}
	if lastReading != nil && *ex.Value <= *lastReading {
		out.IsValid = false
		out.RejectionReason = fmt.Sprintf("reading %s must exceed previous reading %s",
			strconv.FormatFloat(*ex.Value, 'f', -1, 64),
			strconv.FormatFloat(*lastReading, 'f', -1, 64))
		return out
	}
	out.IsValid = true
	out.ParsedValue = ex.Value
	return out
}
