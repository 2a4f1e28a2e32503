package invoice

import (
	"time"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

// Record is the history entry for one extraction. It never holds file content.
type Record struct {
	ID         string          `json:"id"`
	Filename   string          `json:"filename"`  // as uploaded
	StoredAs   string          `json:"stored_as"` // sanitized name
	MIMEType   string          `json:"mime_type,omitempty"`
	Size       int64           `json:"size"`
	Outcome    extraction.Kind `json:"outcome"`
	JSONValid  bool            `json:"json_valid"`
	Error      string          `json:"error,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Outcome is what the service hands back to the HTTP layer
type Outcome struct {
	ID       string
	Filename string
	Result   extraction.Result
}
