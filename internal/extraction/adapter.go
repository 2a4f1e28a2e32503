package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Adapter turns a staged document into model output
type Adapter struct {
	generator Generator
	timeout   time.Duration
}

// NewAdapter creates an Adapter. A zero timeout leaves the model call bounded
// only by ctx.
func NewAdapter(generator Generator, timeout time.Duration) *Adapter {
	return &Adapter{
		generator: generator,
		timeout:   timeout,
	}
}

// Process reads the file at path, sends it to the model with the receipt
// prompt and returns the outcome. It never returns a bare error; failures are
// carried in the Result with their kind.
func (a *Adapter) Process(ctx context.Context, path string) Result {
	payload, err := LoadPayload(path)
	if err != nil {
		return failure(err)
	}

	if sniffed := SniffMIME(payload.Data); sniffed != "" && sniffed != payload.MIMEType {
		slog.WarnContext(ctx, "File content does not match its extension",
			"path", path,
			"mime_type", payload.MIMEType,
			"sniffed", sniffed,
		)
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.generator.Generate(ctx, NewPrompt(payload))
	if err != nil {
		result := failure(fmt.Errorf("generating content: %w", err))
		result.MIMEType = payload.MIMEType
		return result
	}

	if strings.TrimSpace(text) == "" {
		text = NoResponseText
	}

	return Result{
		Kind:     KindSuccess,
		Text:     text,
		MIMEType: payload.MIMEType,
	}
}
