// file: internal/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"letsconnect/internal/contextutils"
	"letsconnect/internal/services"

	"go.uber.org/zap"
)

// ===============================
// RESPONSE CONFIGURATION
// ===============================

// Config holds configuration for the response system
type Config struct {
	PrettyJSON         bool
	IncludeRequestID   bool
	MaskInternalErrors bool
}

// DefaultConfig returns production-ready response configuration
func DefaultConfig() *Config {
	return &Config{
		PrettyJSON:         false,
		IncludeRequestID:   true,
		MaskInternalErrors: true,
	}
}

// ===============================
// RESPONSE TYPES
// ===============================

// MessageBody is the body of every mutation
type MessageBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DataBody wraps a single entity
type DataBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// CreatedBody is returned when an entity is created
type CreatedBody struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListBody is one page of a listing
type ListBody struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	TotalPages int         `json:"totalPages"`
}

// CommentsBody is one page of an entity's comments
type CommentsBody struct {
	Success       bool        `json:"success"`
	Comments      interface{} `json:"comments"`
	TotalComments int         `json:"totalComments"`
	TotalPages    int         `json:"totalPages"`
	Page          int         `json:"page"`
}

// AttendanceBody is one page of an event's attendance
type AttendanceBody struct {
	Success         bool        `json:"success"`
	Attendance      interface{} `json:"attendance"`
	TotalAttendance int         `json:"totalAttendance"`
	TotalPages      int         `json:"totalPages"`
	Page            int         `json:"page"`
}

// ErrorBody is returned for every failed request
type ErrorBody struct {
	Success   bool                  `json:"success"`
	Message   string                `json:"message"`
	Code      string                `json:"code,omitempty"`
	Fields    []services.FieldError `json:"fields,omitempty"`
	RequestID string                `json:"requestId,omitempty"`
}

// ===============================
// RESPONSE BUILDER
// ===============================

// Builder writes the JSON envelopes and maps service errors to statuses
type Builder struct {
	config *Config
	logger *zap.Logger
}

// NewBuilder creates a new response builder
func NewBuilder(config *Config, logger *zap.Logger) *Builder {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		config: config,
		logger: logger,
	}
}

// WriteJSON writes body with the given status
func (b *Builder) WriteJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if b.config.PrettyJSON {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(body); err != nil {
		contextutils.Logger(r.Context(), b.logger).Error("Failed to encode JSON response", zap.Error(err))
	}
}

// WriteMessage writes {success, message}
func (b *Builder) WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	b.WriteJSON(w, r, status, MessageBody{Success: true, Message: msg})
}

// WriteData writes {success, data}
func (b *Builder) WriteData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	b.WriteJSON(w, r, status, DataBody{Success: true, Data: data})
}

// WriteCreated writes 201 {success, message, data}
func (b *Builder) WriteCreated(w http.ResponseWriter, r *http.Request, msg string, data interface{}) {
	b.WriteJSON(w, r, http.StatusCreated, CreatedBody{Success: true, Message: msg, Data: data})
}

// WriteComments writes a page of comments
func (b *Builder) WriteComments(w http.ResponseWriter, r *http.Request, page *services.CommentsPage) {
	b.WriteJSON(w, r, http.StatusOK, CommentsBody{
		Success:       true,
		Comments:      page.Comments,
		TotalComments: page.TotalComments,
		TotalPages:    page.TotalPages,
		Page:          page.Page,
	})
}

// WriteAttendance writes a page of event attendance
func (b *Builder) WriteAttendance(w http.ResponseWriter, r *http.Request, page *services.AttendancePage) {
	b.WriteJSON(w, r, http.StatusOK, AttendanceBody{
		Success:         true,
		Attendance:      page.Attendance,
		TotalAttendance: page.TotalAttendance,
		TotalPages:      page.TotalPages,
		Page:            page.Page,
	})
}

// WriteList writes one page of a listing
func WriteList[T any](b *Builder, w http.ResponseWriter, r *http.Request, res *services.ListResult[T]) {
	b.WriteJSON(w, r, http.StatusOK, ListBody{
		Success:    true,
		Data:       res.Data,
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
	})
}

// ===============================
// ERROR RESPONSES
// ===============================

// WriteError maps err to its status and writes {success: false, message}.
// Internal errors are logged and their detail masked.
func (b *Builder) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)
	status := serviceErr.GetStatusCode()
	body := ErrorBody{
		Message: serviceErr.Message,
		Code:    serviceErr.Code,
	}
	if b.config.IncludeRequestID {
		body.RequestID = contextutils.GetRequestID(r.Context())
	}

	var valErr *services.ValidationError
	if errors.As(err, &valErr) {
		body.Fields = valErr.Fields
	}

	logger := contextutils.Logger(r.Context(), b.logger)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed",
			zap.Int("status", status),
			zap.String("error_type", serviceErr.Type),
			zap.Error(err),
		)
		if b.config.MaskInternalErrors {
			body.Message = "Internal Server Error"
			body.Code = ""
		}
	default:
		logger.Debug("Request rejected",
			zap.Int("status", status),
			zap.String("error_type", serviceErr.Type),
			zap.String("error_message", serviceErr.Message),
		)
	}

	b.WriteJSON(w, r, status, body)
}

// WriteStatus writes an error body for a status produced outside the
// services, such as a missing token or an exhausted rate limit.
func (b *Builder) WriteStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	body := ErrorBody{Message: msg}
	if b.config.IncludeRequestID {
		body.RequestID = contextutils.GetRequestID(r.Context())
	}
	b.WriteJSON(w, r, status, body)
}
