package types

import "errors"

// Sentinel errors for the extraction pipeline, chunker and LLM gateway.
// Callers match them with errors.Is; wrapped messages carry the detail.
var (
	// ErrInvalidFormat means the input does not begin with the %PDF
	// signature, or a data URI is malformed.
	ErrInvalidFormat = errors.New("invalid PDF format")

	// ErrEmptyFile means the input buffer was zero length.
	ErrEmptyFile = errors.New("empty file")

	// ErrExtractionFailed means every extraction method was exhausted
	// without reaching the minimum text threshold.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrOCRFailed means the OCR fallback produced no text.
	ErrOCRFailed = errors.New("ocr produced no text")

	// ErrInvalidConfiguration means the chunker was given an overlap
	// greater than or equal to the chunk size.
	ErrInvalidConfiguration = errors.New("invalid chunker configuration")

	// ErrGatewayUnavailable means no LLM provider has credentials
	// configured.
	ErrGatewayUnavailable = errors.New("no AI provider configured")

	// ErrGatewayError means every configured LLM provider returned a
	// non-success status or a malformed payload.
	ErrGatewayError = errors.New("AI provider request failed")

	// ErrDocumentNotFound means no document with the requested ID is held
	// in the store.
	ErrDocumentNotFound = errors.New("document not found")
)
