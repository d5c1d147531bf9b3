package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docqa/docqa-be/types"
)

const pdfSignature = "%PDF"

// PDFService turns raw PDF bytes into extracted text. It tries a real PDF
// parser first and degrades to a ladder of byte-pattern heuristics, tried
// strictly in order, each only when the previous one came up short. The
// ladder is deliberately crude: it trades precision for the chance of
// salvaging text from malformed or exotic PDFs without a native rendering
// dependency.
type PDFService struct {
	minTextChars int
}

func NewPDFService(cfg types.ExtractionConfig) *PDFService {
	minChars := cfg.MinTextChars
	if minChars <= 0 {
		minChars = types.DefaultExtractionConfig.MinTextChars
	}
	return &PDFService{minTextChars: minChars}
}

// Fallback patterns, in ladder order.
var (
	// a. parenthesized literals shown inside BT..ET content-stream blocks
	contentStreamBlockRe = regexp.MustCompile(`(?s)BT(.*?)ET`)
	textShowRe           = regexp.MustCompile(`\(((?:\\.|[^\\()])+)\)\s*T[jJ]`)

	// b. arbitrary parenthesized runs
	parenRunRe   = regexp.MustCompile(`\(((?:\\.|[^\\()]){2,})\)`)
	coordinateRe = regexp.MustCompile(`^[\d\s.,+-]+$`)

	// c. /Text object literals
	textObjectRe = regexp.MustCompile(`/Text\s*\(([^)]+)\)`)

	// d. line scan
	alphaRunRe   = regexp.MustCompile(`[A-Za-z]{3,}`)
	parenAlphaRe = regexp.MustCompile(`\(([A-Za-z][^)]*)\)`)

	// e. last resort
	readableRunRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9 ]{9,}`)
)

// ExtractFromDataURI decodes a data:application/pdf;base64,<...> URI (or a
// bare base64 payload) and extracts its text.
func (s *PDFService) ExtractFromDataURI(uri, title string) (*types.ExtractionResult, error) {
	payload := uri
	if strings.HasPrefix(uri, "data:") {
		idx := strings.Index(uri, ",")
		if idx < 0 {
			return nil, fmt.Errorf("%w: data URI has no base64 payload", types.ErrInvalidFormat)
		}
		payload = uri[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload: %v", types.ErrInvalidFormat, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: decoded payload is empty", types.ErrEmptyFile)
	}
	return s.Extract(data, title)
}

// Extract validates the buffer and runs the extraction ladder. The result
// is cleaned text plus whatever metadata the primary parser supplied; a
// result under the minimum threshold is a failure, never an empty success.
func (s *PDFService) Extract(data []byte, title string) (*types.ExtractionResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: no data provided", types.ErrEmptyFile)
	}
	if len(data) < len(pdfSignature) || string(data[:len(pdfSignature)]) != pdfSignature {
		return nil, fmt.Errorf("%w: file does not start with %%PDF signature", types.ErrInvalidFormat)
	}

	text, metadata, primaryErr := s.extractWithParser(data)
	if primaryErr != nil {
		slog.Debug("primary PDF parse failed, trying fallback heuristics", "error", primaryErr)
	}

	if len(CleanText(text)) < s.minTextChars {
		text = s.extractWithHeuristics(data)
	}

	cleaned := CleanText(text)
	if len(cleaned) < s.minTextChars {
		if primaryErr != nil {
			return nil, fmt.Errorf("%w: %v; the file may be image-based, password-protected, or corrupted",
				types.ErrExtractionFailed, primaryErr)
		}
		return nil, fmt.Errorf("%w: the file may be image-based, password-protected, or corrupted",
			types.ErrExtractionFailed)
	}

	return &types.ExtractionResult{
		Title:    title,
		Text:     cleaned,
		Metadata: metadata,
	}, nil
}

// extractWithParser runs the primary parser over the buffer, page by page
// in order, and collects document info from the trailer.
func (s *PDFService) extractWithParser(data []byte) (text string, metadata types.DocumentMetadata, err error) {
	// The parser panics on some malformed cross-reference tables; a panic
	// here means "primary method unavailable", not a crash.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", metadata, fmt.Errorf("open pdf: %w", err)
	}

	metadata.PageCount = reader.NumPage()
	fillDocumentInfo(&metadata, reader)

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			slog.Debug("failed to read page text", "page", i, "error", err)
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}

	return b.String(), metadata, nil
}

func fillDocumentInfo(metadata *types.DocumentMetadata, reader *pdf.Reader) {
	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return
	}
	metadata.Title = info.Key("Title").Text()
	metadata.Author = info.Key("Author").Text()
	metadata.Subject = info.Key("Subject").Text()
	metadata.Creator = info.Key("Creator").Text()
	metadata.Producer = info.Key("Producer").Text()
	metadata.CreationDate = info.Key("CreationDate").RawString()
	metadata.ModDate = info.Key("ModDate").RawString()
}

// extractWithHeuristics applies the byte-pattern ladder to the buffer
// interpreted as text. Rungs run strictly in order and the first one that
// clears the minimum threshold wins.
func (s *PDFService) extractWithHeuristics(data []byte) string {
	raw := string(data)

	for _, method := range []func(string) string{
		extractContentStreamText,
		extractParenthesizedText,
		extractTextObjects,
		extractLineScanText,
		extractReadableRuns,
	} {
		if text := CleanText(method(raw)); len(text) >= s.minTextChars {
			return text
		}
	}
	return ""
}

func extractContentStreamText(raw string) string {
	var parts []string
	for _, block := range contentStreamBlockRe.FindAllStringSubmatch(raw, -1) {
		for _, m := range textShowRe.FindAllStringSubmatch(block[1], -1) {
			parts = append(parts, unescapePDFString(m[1]))
		}
	}
	return strings.Join(parts, " ")
}

func extractParenthesizedText(raw string) string {
	var parts []string
	for _, m := range parenRunRe.FindAllStringSubmatch(raw, -1) {
		literal := unescapePDFString(m[1])
		if coordinateRe.MatchString(literal) {
			continue
		}
		parts = append(parts, literal)
	}
	return strings.Join(parts, " ")
}

func extractTextObjects(raw string) string {
	var parts []string
	for _, m := range textObjectRe.FindAllStringSubmatch(raw, -1) {
		parts = append(parts, m[1])
	}
	return strings.Join(parts, " ")
}

func extractLineScanText(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		if !alphaRunRe.MatchString(line) || !strings.Contains(line, "(") || !strings.Contains(line, ")") {
			continue
		}
		for _, m := range parenAlphaRe.FindAllStringSubmatch(line, -1) {
			parts = append(parts, m[1])
		}
	}
	return strings.Join(parts, " ")
}

func extractReadableRuns(raw string) string {
	return strings.Join(readableRunRe.FindAllString(raw, -1), " ")
}

// unescapePDFString resolves the escape sequences allowed in PDF literal
// strings: \( \) \\ and the \n \r \t family.
func unescapePDFString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	replacer := strings.NewReplacer(
		`\(`, "(",
		`\)`, ")",
		`\\`, `\`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return replacer.Replace(s)
}
