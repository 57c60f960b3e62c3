// Package receipt extracts a suggested monetary amount from uploaded
// receipt images using light image preprocessing and Tesseract OCR. The
// suggestion is advisory; it never overwrites a transaction amount.
package receipt

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

const ocrWhitelist = "0123456789$.,:()/- ABDEGLPRSTUabcdeilmnoprstu"

// ExtractAmount OCRs the image at path and returns the most plausible
// amount in the smallest unit of the given currency, together with the raw
// matched figure. Returns ErrNoAmount when nothing plausible is found.
func ExtractAmount(path, currency string) (int64, string, error) {
	prepped, cleanup, err := preprocess(path)
	if err != nil {
		return 0, "", fmt.Errorf("preprocess %s: %w", path, err)
	}
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage("eng")
	_ = client.SetWhitelist(ocrWhitelist)
	if err := client.SetImage(prepped); err != nil {
		return 0, "", err
	}
	text, err := client.Text()
	if err != nil {
		return 0, "", err
	}
	return BestAmount(text, currency)
}
