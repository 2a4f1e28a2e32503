package invoice

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

// Response messages that clients match on
const (
	msgNoFileProvided = "No file provided"
	msgNoFileSelected = "No file selected"
	msgParseError     = "Error parsing form"
	msgTooLarge       = "File is too large. Please compress or resize your image."
)

// outcomeHeader exposes the extraction kind, which the legacy body hides
const outcomeHeader = "X-Extraction-Outcome"

// writeJSON writes v as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeError writes {"error": message}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// clientMessage is err's text with any file path cut down to its base name,
// so responses never reveal the upload directory
func clientMessage(err error) string {
	msg := err.Error()
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Path != "" {
		msg = strings.ReplaceAll(msg, pathErr.Path, filepath.Base(pathErr.Path))
	}
	return msg
}

// fileName returns the filename parameter of a part and whether it was sent.
// Part.FileName cannot tell an empty filename from a missing one.
func fileName(part *multipart.Part) (string, bool) {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return "", false
	}
	name, ok := params["filename"]
	return name, ok
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleExtract streams the "file" part of a multipart upload into the service
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		slog.WarnContext(r.Context(), "Request is not a multipart upload", "error", err)
		writeError(w, http.StatusBadRequest, msgNoFileProvided)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, msgNoFileProvided)
			return
		}
		if err != nil {
			slog.WarnContext(r.Context(), "Error parsing multipart form", "error", err)
			if isTooLarge(err) {
				writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
				return
			}
			writeError(w, http.StatusBadRequest, msgParseError)
			return
		}

		if part.FormName() != "file" {
			part.Close()
			continue
		}
		name, ok := fileName(part)
		if !ok {
			// A plain form field named "file" is not an upload
			part.Close()
			continue
		}
		if name == "" {
			part.Close()
			writeError(w, http.StatusBadRequest, msgNoFileSelected)
			return
		}

		s.extract(w, r, name, part)
		part.Close()
		return
	}
}

// extract runs one upload through the service and writes the response
func (s *Server) extract(w http.ResponseWriter, r *http.Request, filename string, content io.Reader) {
	outcome, err := s.service.Extract(r.Context(), filename, content)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFilename):
			writeError(w, http.StatusBadRequest, err.Error())
		case isTooLarge(err):
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
		default:
			slog.ErrorContext(r.Context(), "Error extracting invoice", "filename", filename, "error", err)
			writeError(w, http.StatusInternalServerError, clientMessage(err))
		}
		return
	}

	w.Header().Set(outcomeHeader, string(outcome.Result.Kind))
	if outcome.Result.OK() || !s.strictErrors {
		writeJSON(w, http.StatusOK, map[string]string{"result": outcome.Result.Message()})
		return
	}
	writeError(w, statusForKind(outcome.Result.Kind), outcome.Result.Message())
}

// statusForKind maps a failed extraction to an HTTP status in strict mode
func statusForKind(kind extraction.Kind) int {
	switch kind {
	case extraction.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case extraction.KindUpstream:
		return http.StatusBadGateway
	case extraction.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// handleListExtractions returns the extraction history
func (s *Server) handleListExtractions(w http.ResponseWriter, r *http.Request) {
	records, err := s.service.ListRecords()
	if err != nil {
		if errors.Is(err, ErrHistoryDisabled) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Error listing extractions", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Ensure we always return an array, not nil
	if records == nil {
		records = []*Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleGetExtraction returns a single extraction record
func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	record, err := s.service.GetRecord(id)
	if err != nil {
		switch {
		case errors.Is(err, ErrHistoryDisabled):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrRecordNotFound):
			writeError(w, http.StatusNotFound, "Extraction not found")
		default:
			slog.ErrorContext(r.Context(), "Error getting extraction", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	writeJSON(w, http.StatusOK, record)
}
