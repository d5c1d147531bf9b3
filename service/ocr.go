package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// TesseractOCR shells out to the tesseract binary. Each Recognize call
// owns a scratch directory that is removed before the call returns,
// success or not.
type TesseractOCR struct {
	languages string
}

// NewTesseractOCR returns an OCR runner backed by the tesseract CLI, or an
// error when the binary is not on PATH. languages is a tesseract -l value,
// e.g. "eng" or "eng+fra".
func NewTesseractOCR(languages string) (*TesseractOCR, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return nil, fmt.Errorf("tesseract binary not found: %w", err)
	}
	if languages == "" {
		languages = "eng"
	}
	return &TesseractOCR{languages: languages}, nil
}

func (t *TesseractOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	tmpDir, err := os.MkdirTemp("", "docqa-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	imagePath := filepath.Join(tmpDir, "page.png")
	f, err := os.Create(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to create page image: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to encode page image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, "tesseract",
		imagePath,
		"stdout",
		"-l", t.languages,
		"--oem", "3", // LSTM engine
		"--psm", "3", // automatic page segmentation
	)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to run tesseract: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}
