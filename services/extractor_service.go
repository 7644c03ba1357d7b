package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
)

// InitPDFLicense registers the UniPDF metered license key. Called once from
// main before any extraction; without a valid key PDF processing will fail.
func InitPDFLicense(key string) {
	if err := license.SetMeteredKey(key); err != nil {
		log.Error().Err(err).Msg("failed to set unipdf license key, pdf extraction will fail")
	}
}

// ExtractPDFText returns the page-ordered text content of the PDF at path.
// Pages are separated by a blank line. Unreadable or unparseable files
// surface as ExtractionError.
func ExtractPDFText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &ExtractionError{Err: err}
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", &ExtractionError{Err: fmt.Errorf("reading pdf: %w", err)}
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", &ExtractionError{Err: fmt.Errorf("counting pages: %w", err)}
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", &ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", &ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", &ExtractionError{Err: fmt.Errorf("page %d: %w", i, err)}
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}
