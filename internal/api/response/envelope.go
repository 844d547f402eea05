package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Meta holds metadata for every API response.
type Meta struct {
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp"`
}

// PageMeta extends Meta with pagination of a filtered listing.
type PageMeta struct {
	Meta
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Error represents a structured API error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Envelope is the standard API response wrapper. Data and Error may both be
// set: a rejected form submission carries its result alongside the error.
type Envelope struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
	Meta  any    `json:"meta"`
}

// Page describes one page of a listing for SuccessPage.
type Page struct {
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// NewMeta creates a Meta with the given request ID and current timestamp.
// An empty requestID is replaced with a fresh UUID.
func NewMeta(requestID string) Meta {
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return Meta{
		RequestID: requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// JSON writes a JSON response with the given status code and envelope.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Success writes a successful JSON response.
func Success(w http.ResponseWriter, status int, data any, requestID string) {
	JSON(w, status, Envelope{Data: data, Meta: NewMeta(requestID)})
}

// SuccessPage writes one page of a listing with pagination metadata.
func SuccessPage(w http.ResponseWriter, data any, p Page, requestID string) {
	JSON(w, http.StatusOK, Envelope{
		Data: data,
		Meta: PageMeta{
			Meta:       NewMeta(requestID),
			Total:      p.Total,
			Page:       p.Page,
			Limit:      p.Limit,
			TotalPages: p.TotalPages,
		},
	})
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, code string, message string, requestID string) {
	JSON(w, status, Envelope{
		Error: &Error{Code: code, Message: message},
		Meta:  NewMeta(requestID),
	})
}

// ErrWithData writes an error JSON response that still carries data, such as
// the field errors and echoed values of a rejected form.
func ErrWithData(w http.ResponseWriter, status int, code string, message string, data any, requestID string) {
	JSON(w, status, Envelope{
		Data:  data,
		Error: &Error{Code: code, Message: message},
		Meta:  NewMeta(requestID),
	})
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
