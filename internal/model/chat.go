package model

import "time"

// ChatRequest represents an incoming chat turn
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatMessage represents a single message in conversation history
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OutcomeStatus tags the terminal state of a processed turn
type OutcomeStatus string

const (
	StatusOK         OutcomeStatus = "ok"
	StatusNeedsInfo  OutcomeStatus = "needs_info"
	StatusOutOfScope OutcomeStatus = "out_of_scope"
	StatusError      OutcomeStatus = "error"
)

// Error codes for collaborator failures
const (
	ErrorLLMFailed       = "LLM_API_FAILED"
	ErrorRetrievalFailed = "RETRIEVAL_FAILED"
	ErrorParseError      = "PARSE_ERROR"
)

// ChatResponse represents the assistant's reply for one turn
type ChatResponse struct {
	SessionID    string            `json:"session_id"`
	Message      string            `json:"message"`
	Intent       Intent            `json:"intent"`
	Status       OutcomeStatus     `json:"status"`
	Slots        map[string]string `json:"slots,omitempty"`
	MissingSlots []string          `json:"missing_slots,omitempty"`
	Sources      []string          `json:"sources,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
	Took         int64             `json:"took_ms"`
	Timestamp    time.Time         `json:"timestamp"`
}

// FeedbackRequest represents user feedback on an assistant answer
type FeedbackRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	MessageID int64  `json:"message_id"`
	Action    string `json:"action" binding:"required"` // helpful, unhelpful, clicked_suggestion
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// EmbeddingBatchRequest represents a batch embedding update request
type EmbeddingBatchRequest struct {
	Embeddings []EmbeddingItem `json:"embeddings" binding:"required"`
}

// EmbeddingItem carries one document embedding
type EmbeddingItem struct {
	DocumentID int64     `json:"document_id" binding:"required"`
	Embedding  []float32 `json:"embedding" binding:"required"`
	Text       string    `json:"text,omitempty"`
}

// EmbeddingBatchResponse represents the response for batch embedding update
type EmbeddingBatchResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
