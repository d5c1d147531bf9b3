package types

// DocumentMetadata contains descriptive attributes discovered by the
// primary PDF parser. Absence of any field is not an error.
type DocumentMetadata struct {
	PageCount    int    `json:"page_count"`
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Producer     string `json:"producer,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
	ModDate      string `json:"mod_date,omitempty"`
}

// DocumentStructure holds lines of the extracted text classified by shape.
// It is derived from the text and recomputed on every analysis call.
type DocumentStructure struct {
	Headings   []string `json:"headings"`
	Paragraphs []string `json:"paragraphs"`
	Lists      []string `json:"lists"`
	Tables     []string `json:"tables"`
}

// ContentAnalysis is a derived summary of the document content.
type ContentAnalysis struct {
	DocumentType      string   `json:"document_type"`
	KeyTopics         []string `json:"key_topics"`
	ImportantSections []string `json:"important_sections"`
	ReadabilityScore  float64  `json:"readability_score"`
}

// Chunk is a contiguous word-window substring of the extracted text.
// Chunks are independent, may overlap in content, and are never mutated
// after creation.
type Chunk struct {
	Index     int    `json:"index"`
	Content   string `json:"content"`
	WordStart int    `json:"word_start"`
}

// ExtractionResult is the extraction pipeline's terminal output. It is
// created once per upload and held as session state until a new upload
// replaces it.
type ExtractionResult struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Text      string            `json:"text"`
	UsedOCR   bool              `json:"used_ocr"`
	Metadata  DocumentMetadata  `json:"metadata"`
	Structure DocumentStructure `json:"structure"`
	CreatedAt int64             `json:"created_at"`
}

// ProgressMode values identify which extraction phase a progress update
// belongs to.
const (
	ProgressModeText = "text"
	ProgressModeOCR  = "ocr"
)

// ProgressUpdate reports per-page extraction progress.
type ProgressUpdate struct {
	Page       int    `json:"page"`
	TotalPages int    `json:"total_pages"`
	Mode       string `json:"mode"`
}

// ProgressFunc receives per-page progress updates. It is best-effort from
// the pipeline's perspective: a failing callback must not abort extraction.
type ProgressFunc func(ProgressUpdate)

// ExtractionConfig contains configuration options for the extraction and
// chunking services.
type ExtractionConfig struct {
	MinTextChars    int // minimum cleaned length for a successful extraction
	OCRTriggerChars int // text-layer length below which the raster path commits to OCR
	ChunkSize       int // words per chunk
	ChunkOverlap    int // overlapping words between consecutive chunks
}

// DefaultExtractionConfig mirrors the thresholds the pipeline was tuned
// with: the server path accepts anything over 10 cleaned characters, while
// the raster path holds out for 120 characters before paying for OCR.
var DefaultExtractionConfig = ExtractionConfig{
	MinTextChars:    10,
	OCRTriggerChars: 120,
	ChunkSize:       512,
	ChunkOverlap:    128,
}
