// Package extract turns raw resume bytes into a bounded, cleaned text
// excerpt suitable for prompting. Hosted completion APIs charge by token and
// degrade on binary noise, so the excerpt trades recall for reliability.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
)

const (
	// MaxExcerptLen caps the excerpt handed to the completion endpoint.
	MaxExcerptLen = 4000
	// minTextLen below which a document is treated as unreadable.
	minTextLen = 10
)

// ErrEmptyDocument means the document decoded to no usable text. Terminal:
// the caller must record a parse failure, not retry.
var ErrEmptyDocument = errors.New("document contains no extractable text")

// Document-container artifacts that survive naive text decoding of PDFs.
var (
	pdfStreamRe   = regexp.MustCompile(`(?s)stream.*?endstream`)
	pdfArtifactRe = regexp.MustCompile(`%PDF-\d\.\d|%%EOF|\bendobj\b|\bobj\b|\bxref\b|\btrailer\b|\bstartxref\b`)
	unsafeCharRe  = regexp.MustCompile(`[^\w\s@._-]`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// richTextTypes maps declared content types that docconv can convert.
var richTextTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/msword":                       true,
	"application/rtf":                          true,
	"application/vnd.oasis.opendocument.text":  true,
}

// Excerpt decodes raw document bytes per the declared content type and
// returns a cleaned excerpt of at most MaxExcerptLen characters.
func Excerpt(data []byte, contentType string) (string, error) {
	text, err := decode(data, contentType)
	if err != nil {
		return "", err
	}
	return CleanText(text)
}

func decode(data []byte, contentType string) (string, error) {
	mime := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(mime, ";"); i != -1 {
		mime = strings.TrimSpace(mime[:i])
	}

	if richTextTypes[mime] {
		res, err := docconv.Convert(bytes.NewReader(data), mime, true)
		if err != nil {
			// Fall back to treating the bytes as text; the artifact
			// stripping in CleanText handles the leftover noise.
			return string(data), nil
		}
		return res.Body, nil
	}
	return string(data), nil
}

// CleanText strips container artifacts, collapses unsafe characters to
// whitespace, collapses whitespace runs and truncates to MaxExcerptLen.
// Returns ErrEmptyDocument when the result is shorter than the minimum.
func CleanText(text string) (string, error) {
	cleaned := pdfStreamRe.ReplaceAllString(text, " ")
	cleaned = pdfArtifactRe.ReplaceAllString(cleaned, " ")
	cleaned = unsafeCharRe.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) < minTextLen {
		return "", fmt.Errorf("extracted %d characters: %w", len(runes), ErrEmptyDocument)
	}
	if len(runes) > MaxExcerptLen {
		cleaned = string(runes[:MaxExcerptLen])
	}
	return cleaned, nil
}
