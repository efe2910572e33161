package models

// AskResponse is the answer to a question together with its provenance.
type AskResponse struct {
	Answer         string   `json:"answer"`
	Sources        []string `json:"sources"`
	ConversationID string   `json:"conversation_id"`
}

// Status summarizes the state of the knowledge base.
type Status struct {
	Documents      int    `json:"documents"`
	Chunks         int    `json:"chunks"`
	IndexedVectors int    `json:"indexed_vectors"`
	Configured     bool   `json:"configured"`
	EmbeddingModel string `json:"embedding_model"`
	LLMModel       string `json:"llm_model"`
	DiskUsageBytes int64  `json:"disk_usage_bytes"`
}
