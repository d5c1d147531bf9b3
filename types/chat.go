package types

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketAsk   = "ask"
	TypeWebsocketError = "error"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketAskPayload struct {
	DocumentID string `json:"document_id"`
	Question   string `json:"question"`
}

type WebsocketAskResponse struct {
	Answer   string `json:"answer"`
	Provider string `json:"provider"`
}

type WebsocketErrorResponse struct {
	Message string `json:"message"`
}
