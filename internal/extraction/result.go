package extraction

import (
	"context"
	"errors"
)

// Kind classifies the outcome of an extraction
type Kind string

const (
	KindSuccess           Kind = "success"
	KindUnsupportedFormat Kind = "unsupported_format"
	KindNotFound          Kind = "not_found"
	KindUpstream          Kind = "upstream"
	KindTimeout           Kind = "timeout"
)

// NoResponseText is returned as the result when the model produced no text
const NoResponseText = "No response from the model."

// Result is the outcome of Adapter.Process
type Result struct {
	Kind     Kind
	Text     string
	Err      error
	MIMEType string
}

// OK reports whether the model answered
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Message flattens the result to plain text: the model output on success,
// the error description otherwise
func (r Result) Message() string {
	if r.Kind == KindSuccess {
		return r.Text
	}
	if r.Err == nil {
		return string(r.Kind)
	}
	return r.Err.Error()
}

func failure(err error) Result {
	var unsupported *UnsupportedFormatError
	switch {
	case errors.As(err, &unsupported):
		return Result{Kind: KindUnsupportedFormat, Err: err}
	case errors.Is(err, ErrFileNotFound):
		return Result{Kind: KindNotFound, Err: err}
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Result{Kind: KindTimeout, Err: err}
	default:
		return Result{Kind: KindUpstream, Err: err}
	}
}
