package constant

// Agent types known to the platform. Must match the values the selector
// reports in agent_selection.selected_agent.
const (
	AgentLightweight = "lightweight"
	AgentChat        = "chat"
	AgentDocument    = "document"
	AgentMultimodal  = "multimodal"
	AgentResearch    = "research"
)

// Document processing lifecycle.
const (
	DocumentStatusProcessing = "processing"
	DocumentStatusCompleted  = "completed"
	DocumentStatusFailed     = "failed"
)

// Document kinds. Image uploads are indexed as captioned stub entries so
// the multimodal agent can still surface them.
const (
	DocumentKindText  = "text"
	DocumentKindImage = "image"
)

// Chat message senders accepted by the chat API.
const (
	SenderUser = "user"
	SenderAI   = "ai"
)

// Upload constraints.
const (
	MaxUploadBytes = 16 * 1024 * 1024
	MaxQueryChars  = 1000
)

// AllowedUploadExtensions are the file extensions the upload endpoint
// accepts (lowercase, without the dot).
var AllowedUploadExtensions = map[string]bool{
	"txt":  true,
	"md":   true,
	"pdf":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"doc":  true,
	"docx": true,
}

// Chunking parameters for document indexing.
const (
	ChunkSize    = 1500
	ChunkOverlap = 200
)
