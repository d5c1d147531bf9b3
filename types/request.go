package types

// UploadRequest carries metadata sent alongside a multipart upload.
type UploadRequest struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

// UploadBase64Request is the JSON-body upload variant. Data holds either a
// data:application/pdf;base64,<...> URI or a bare base64 payload.
type UploadBase64Request struct {
	Title string `json:"title"`
	Data  string `json:"data"`
}

// AskRequest asks a question about a previously uploaded document.
type AskRequest struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

// RestructureRequest asks the gateway to reformat a document's text.
type RestructureRequest struct {
	DocumentID string `json:"document_id"`
}
