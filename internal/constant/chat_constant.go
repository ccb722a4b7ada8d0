package constant

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"

	// DefaultTopK bounds how many retrieved records feed generation
	// when the caller does not specify one.
	DefaultTopK = 5

	// SessionTitleMaxChars truncates the derived session title.
	SessionTitleMaxChars = 64
)
