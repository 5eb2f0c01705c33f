package dto

type QueryRequest struct {
	Query     string `json:"query" validate:"required,max=1000"`
	AgentType string `json:"agent_type" validate:"omitempty,oneof=lightweight chat document multimodal research"`
	SessionId string `json:"session_id" validate:"omitempty,uuid"`
}

type DocumentQueryRequest struct {
	Query      string `json:"query" validate:"required,max=1000"`
	MaxResults int    `json:"max_results" validate:"omitempty,min=1,max=20"`
}

type AutoQueryRequest struct {
	Query     string `json:"query" validate:"required,max=1000"`
	SessionId string `json:"session_id" validate:"omitempty,uuid"`
}

type AgentSelectionResponse struct {
	SelectedAgent string             `json:"selected_agent"`
	Confidence    float64            `json:"confidence"`
	Scores        map[string]float64 `json:"scores"`
}

type SourceResponse struct {
	DocumentName string  `json:"document_name"`
	ChunkIndex   int     `json:"chunk_index"`
	Similarity   float64 `json:"similarity"`
	Snippet      string  `json:"snippet"`
}
