package web

// errors.go maps pipeline errors to HTTP responses.
//
// Every error is logged with its technical detail and request ID, and the
// client receives a JSON body with a stable code, a user-facing message and
// a suggested action.
//
// Codes:
//
//	FILE001 - Unsupported file type (415)
//	FILE002 - File could not be read as a table (400)
//	FILE003 - File is empty (400)
//	FILE004 - Upload too large (413)
//	VAL001  - Selected column does not exist (400)
//	VAL002  - Nothing numeric to chart (422)
//	VAL003  - Column selected twice (400)
//	IMG001  - Not a readable image (415)
//	IMG002  - Image cannot be saved in the chosen format (422)
//	REQ001  - Malformed request (400)
//	SYS001  - Unexpected error (500)

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nconklindev/sweeper/internal/chart"
	"github.com/nconklindev/sweeper/internal/converter"
	"github.com/nconklindev/sweeper/internal/imaging"
	"github.com/nconklindev/sweeper/internal/logging"
)

// errBadRequest marks request-shape problems found by the handlers.
var errBadRequest = errors.New("bad request")

// UserMessage is the client-facing description of an error.
type UserMessage struct {
	Status  int
	Code    string
	Message string
	Action  string
}

// ErrorResponse is the JSON body for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// MapError classifies err into a user message and status code.
func MapError(err error) UserMessage {
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		return UserMessage{http.StatusRequestEntityTooLarge, "FILE004",
			"Upload is too large", "Upload fewer or smaller files"}
	case errors.Is(err, converter.ErrUnsupportedFormat):
		return UserMessage{http.StatusUnsupportedMediaType, "FILE001",
			"Unsupported file type", "Upload a .csv or .xlsx file, or a PNG, JPEG, BMP or GIF image"}
	case errors.Is(err, converter.ErrEmptyFile):
		return UserMessage{http.StatusBadRequest, "FILE003",
			"The file is empty", "Make sure the file has a header row"}
	case errors.Is(err, converter.ErrMalformed):
		return UserMessage{http.StatusBadRequest, "FILE002",
			"The file could not be read as a table", "Check that rows have no more fields than the header"}
	case errors.Is(err, converter.ErrUnknownColumn):
		return UserMessage{http.StatusBadRequest, "VAL001",
			"A selected column does not exist", "Choose columns from the preview"}
	case errors.Is(err, converter.ErrDuplicateColumn):
		return UserMessage{http.StatusBadRequest, "VAL003",
			"A column was selected twice", "Select each column once"}
	case errors.Is(err, chart.ErrNoNumericData):
		return UserMessage{http.StatusUnprocessableEntity, "VAL002",
			"There are no numeric columns to chart", "Keep at least one numeric column"}
	case errors.Is(err, imaging.ErrUnsupportedImage):
		return UserMessage{http.StatusUnsupportedMediaType, "IMG001",
			"The image could not be read", "Upload a PNG, JPEG, BMP or GIF image"}
	case errors.Is(err, imaging.ErrEncoding):
		return UserMessage{http.StatusUnprocessableEntity, "IMG002",
			"The image cannot be saved in that format", "Pick a different output format"}
	case errors.Is(err, errBadRequest):
		return UserMessage{http.StatusBadRequest, "REQ001",
			"The request is missing a file or has invalid options", ""}
	case errors.Is(err, context.DeadlineExceeded):
		return UserMessage{http.StatusGatewayTimeout, "SYS002",
			"Processing took too long", "Try again with a smaller file"}
	}
	return UserMessage{http.StatusInternalServerError, "SYS001",
		"Something went wrong", "Please try again"}
}

// errorBody builds the JSON body for err. Technical detail is only shown
// for client errors.
func errorBody(err error, msg UserMessage) ErrorResponse {
	detail := msg.Message
	if msg.Status < http.StatusInternalServerError {
		detail = err.Error()
	}
	return ErrorResponse{Error: detail, Message: msg.Message, Action: msg.Action, Code: msg.Code}
}

// respondError logs err and writes the mapped JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := MapError(err)

	level := slog.LevelWarn
	if msg.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"status", msg.Status,
		"code", msg.Code,
		"error", err.Error(),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(msg.Status)
	json.NewEncoder(w).Encode(errorBody(err, msg))
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}
