package service

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/docqa/docqa-be/types"
)

// ocrDPI renders pages at twice the PDF base resolution of 72 DPI before
// handing them to the OCR engine.
const ocrDPI = 144

// PageSource is a page-oriented view of an open PDF document. Pages are
// zero-indexed. Close releases the underlying document resources.
type PageSource interface {
	NumPage() int
	Text(page int) (string, error)
	ImageDPI(page int, dpi float64) (image.Image, error)
	Close() error
}

// OCRRunner recognizes text in a rendered page image.
type OCRRunner interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RasterService is the page-oriented extraction pipeline: it walks the
// embedded text layer page by page and, only when that layer is too thin
// to be trusted, re-renders every page and runs OCR over the images. OCR
// is expensive, so the trigger threshold is much higher than the server
// pipeline's minimum.
type RasterService struct {
	ocr             OCRRunner
	ocrTriggerChars int
}

func NewRasterService(ocr OCRRunner, cfg types.ExtractionConfig) *RasterService {
	trigger := cfg.OCRTriggerChars
	if trigger <= 0 {
		trigger = types.DefaultExtractionConfig.OCRTriggerChars
	}
	return &RasterService{ocr: ocr, ocrTriggerChars: trigger}
}

// ExtractFile opens path with MuPDF and runs the page pipeline.
func (s *RasterService) ExtractFile(ctx context.Context, path string, progress types.ProgressFunc) (*types.ExtractionResult, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidFormat, err)
	}
	return s.extract(ctx, &fitzSource{doc: doc}, progress)
}

// ExtractBytes runs the page pipeline over an in-memory PDF buffer.
func (s *RasterService) ExtractBytes(ctx context.Context, data []byte, progress types.ProgressFunc) (*types.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data provided", types.ErrEmptyFile)
	}
	if len(data) < len(pdfSignature) || string(data[:len(pdfSignature)]) != pdfSignature {
		return nil, fmt.Errorf("%w: file does not start with %%PDF signature", types.ErrInvalidFormat)
	}
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidFormat, err)
	}
	return s.extract(ctx, &fitzSource{doc: doc}, progress)
}

// Extract runs the page pipeline over an already open page source. The
// source is closed before Extract returns, whether OCR succeeds or fails.
func (s *RasterService) Extract(ctx context.Context, src PageSource, progress types.ProgressFunc) (*types.ExtractionResult, error) {
	return s.extract(ctx, src, progress)
}

func (s *RasterService) extract(ctx context.Context, src PageSource, progress types.ProgressFunc) (*types.ExtractionResult, error) {
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("failed to close document", "error", err)
		}
	}()

	totalPages := src.NumPage()

	var b strings.Builder
	for page := 0; page < totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := src.Text(page)
		if err != nil {
			slog.Warn("failed to extract page text layer", "page", page+1, "error", err)
		} else {
			b.WriteString(strings.Join(strings.Fields(text), " "))
			b.WriteString("\n")
		}
		reportProgress(progress, types.ProgressUpdate{
			Page:       page + 1,
			TotalPages: totalPages,
			Mode:       types.ProgressModeText,
		})
	}

	cleaned := CleanText(b.String())
	if len(cleaned) > s.ocrTriggerChars {
		return &types.ExtractionResult{
			Text:     cleaned,
			UsedOCR:  false,
			Metadata: types.DocumentMetadata{PageCount: totalPages},
		}, nil
	}

	ocrText, err := s.runOCR(ctx, src, totalPages, progress)
	if err != nil {
		return nil, err
	}
	return &types.ExtractionResult{
		Text:     ocrText,
		UsedOCR:  true,
		Metadata: types.DocumentMetadata{PageCount: totalPages},
	}, nil
}

func (s *RasterService) runOCR(ctx context.Context, src PageSource, totalPages int, progress types.ProgressFunc) (string, error) {
	if s.ocr == nil {
		return "", fmt.Errorf("%w: text layer is too sparse and no OCR engine is available", types.ErrOCRFailed)
	}

	var b strings.Builder
	for page := 0; page < totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		img, err := src.ImageDPI(page, ocrDPI)
		if err != nil {
			slog.Warn("failed to render page for OCR", "page", page+1, "error", err)
			continue
		}
		text, err := s.ocr.Recognize(ctx, img)
		if err != nil {
			slog.Warn("ocr failed on page", "page", page+1, "error", err)
		} else {
			b.WriteString(text)
			b.WriteString("\n")
		}
		reportProgress(progress, types.ProgressUpdate{
			Page:       page + 1,
			TotalPages: totalPages,
			Mode:       types.ProgressModeOCR,
		})
	}

	cleaned := CleanText(b.String())
	if cleaned == "" {
		return "", fmt.Errorf("%w: the document appears to contain no recognizable text", types.ErrOCRFailed)
	}
	return cleaned, nil
}

// reportProgress invokes the callback without letting it take down the
// extraction.
func reportProgress(progress types.ProgressFunc, update types.ProgressUpdate) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("progress callback panicked", "error", r)
		}
	}()
	progress(update)
}

// fitzSource adapts a MuPDF document to PageSource.
type fitzSource struct {
	doc *fitz.Document
}

func (s *fitzSource) NumPage() int { return s.doc.NumPage() }

func (s *fitzSource) Text(page int) (string, error) { return s.doc.Text(page) }

func (s *fitzSource) ImageDPI(page int, dpi float64) (image.Image, error) {
	return s.doc.ImageDPI(page, dpi)
}

func (s *fitzSource) Close() error { return s.doc.Close() }
