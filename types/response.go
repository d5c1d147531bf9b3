package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type UploadResponse struct {
	DocumentID string           `json:"document_id"`
	Title      string           `json:"title"`
	UsedOCR    bool             `json:"used_ocr"`
	ChunkCount int              `json:"chunk_count"`
	Metadata   DocumentMetadata `json:"metadata"`
}

type AskResponse struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Provider   string `json:"provider"`
}

type ProcessingDocumentStatus struct {
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Progress       float64 `json:"progress"`
	TotalPages     int     `json:"total_pages"`
	ProcessedPages int     `json:"processed_pages"`
	Mode           string  `json:"mode,omitempty"`
}
