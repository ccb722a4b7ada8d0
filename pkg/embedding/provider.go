package embedding

// Task types hint the backend at how the vector will be used. Gemini
// tunes the embedding per task; Ollama ignores the hint.
const (
	TaskDocument = "RETRIEVAL_DOCUMENT"
	TaskQuery    = "RETRIEVAL_QUERY"
)

// Provider generates fixed-dimension embeddings for text.
type Provider interface {
	Generate(text string, taskType string) ([]float32, error)

	// Dimension is the vector width this provider emits. Stored rows
	// share one column width, so a mismatch is fatal, not a skip.
	Dimension() int
}
