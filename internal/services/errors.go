package services

import (
	"errors"
	"fmt"
	"net/http"

	"letsconnect/internal/engagement"
	"letsconnect/internal/repositories"
	"letsconnect/internal/validation"

	"go.uber.org/zap"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError represents a structured service error
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error. Used for gated mutations such
// as commenting while comments are off.
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "CONFLICT",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusConflict,
	}
}

// NewRateLimitError creates a rate limit error
func NewRateLimitError(message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Type:       "RATE_LIMIT",
		Message:    message,
		Details:    details,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// ===============================
// SPECIALIZED ERRORS
// ===============================

// AuthorizationError is returned when an authenticated caller is not allowed
// to act on a resource.
type AuthorizationError struct {
	*ServiceError
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// NewAuthorizationError creates an authorization error
func NewAuthorizationError(message, resource, action, userID string) *AuthorizationError {
	return &AuthorizationError{
		ServiceError: &ServiceError{
			Type:       "AUTHORIZATION_ERROR",
			Message:    message,
			StatusCode: http.StatusForbidden,
		},
		UserID:   userID,
		Resource: resource,
		Action:   action,
	}
}

// ValidationError represents detailed validation errors
type ValidationError struct {
	*ServiceError
	Fields []FieldError `json:"fields,omitempty"`
}

// FieldError represents a single field validation error
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewDetailedValidationError creates a validation error with field details
func NewDetailedValidationError(message string, fields []FieldError) *ValidationError {
	return &ValidationError{
		ServiceError: &ServiceError{
			Type:       "VALIDATION_ERROR",
			Message:    message,
			StatusCode: http.StatusBadRequest,
		},
		Fields: fields,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// GetServiceError extracts a ServiceError from an error, or creates a generic one
func GetServiceError(err error) *ServiceError {
	var authzErr *AuthorizationError
	if errors.As(err, &authzErr) {
		return authzErr.ServiceError
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.ServiceError
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	internal := NewInternalError("Internal Server Error")
	internal.Cause = err
	return internal
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType string) bool {
	if err == nil {
		return false
	}
	return GetServiceError(err).Type == errorType
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return IsErrorType(err, "NOT_FOUND")
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return IsErrorType(err, "VALIDATION_ERROR")
}

// IsAuthorizationError checks if an error is an authorization error
func IsAuthorizationError(err error) bool {
	return IsErrorType(err, "AUTHORIZATION_ERROR")
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return IsErrorType(err, "CONFLICT")
}

// ===============================
// ERROR CONTEXT
// ===============================

// ErrorContext provides additional context for errors
type ErrorContext struct {
	UserID    string                 `json:"user_id,omitempty"`
	Operation string                 `json:"operation,omitempty"`
	Resource  string                 `json:"resource,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// WithContext adds context to a service error
func (e *ServiceError) WithContext(ctx *ErrorContext) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	if ctx.UserID != "" {
		e.Details["user_id"] = ctx.UserID
	}
	if ctx.Operation != "" {
		e.Details["operation"] = ctx.Operation
	}
	if ctx.Resource != "" {
		e.Details["resource"] = ctx.Resource
	}
	for k, v := range ctx.Metadata {
		e.Details[k] = v
	}
	return e
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	return NewNotFoundError(fmt.Sprintf("%s Not Found", entityType)).WithContext(&ErrorContext{
		Resource: entityType,
		Metadata: map[string]interface{}{
			"id": id,
		},
	})
}

// InvalidIDError reports a malformed identifier
func InvalidIDError(entityType string) *ServiceError {
	return NewValidationError(fmt.Sprintf("Invalid %s ID", entityType), nil)
}

// mapEngagementError converts aggregate errors into service errors.
func mapEngagementError(err error, kind engagement.Kind, action, userID string) error {
	label := kind.Label()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engagement.ErrCommentNotFound):
		return NewNotFoundError("Comment Not Found")
	case errors.Is(err, engagement.ErrReplyNotFound):
		return NewNotFoundError("Reply Not Found")
	case errors.Is(err, engagement.ErrCommentsDisabled):
		return NewForbiddenError(fmt.Sprintf("Comments are Off for This %s", label))
	case errors.Is(err, engagement.ErrSharesDisabled):
		return NewForbiddenError(fmt.Sprintf("Sharing are Off for This %s", label))
	case errors.Is(err, engagement.ErrEmptyContent):
		return NewValidationError("Please Enter a Valid Content", err)
	case errors.Is(err, engagement.ErrContentTooLong):
		return NewValidationError(fmt.Sprintf("Content must be at most %d characters", engagement.PolicyFor(kind).MaxCommentLength), err)
	case errors.Is(err, engagement.ErrNotOwner):
		return NewAuthorizationError("Only the owner can update this", string(kind), action, userID)
	case errors.Is(err, engagement.ErrNotAllowed):
		return NewAuthorizationError("You Are Not Authorized For This Action", string(kind), action, userID)
	}
	return err
}

// validateRequest runs struct validation and converts failures into a
// ValidationError carrying every failed field.
func validateRequest(req interface{}) error {
	err := validation.ValidateStruct(req)
	if err == nil {
		return nil
	}
	var verr *validation.Errors
	if !errors.As(err, &verr) {
		return NewValidationError("Invalid input", err)
	}
	fields := make([]FieldError, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, FieldError{Field: f.Field, Message: f.Message, Code: f.Tag})
	}
	return NewDetailedValidationError(verr.First(), fields)
}

// checkContentID rejects ids that cannot address a content document.
func checkContentID(kind engagement.Kind, id string) error {
	if !validation.IsObjectID(id) {
		return InvalidIDError(kind.Label())
	}
	return nil
}

// storeError maps store sentinels to service errors. Anything unknown is
// returned as-is so the caller can log it before answering with Internal.
func storeError(err error, entity string, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return EntityNotFoundError(entity, id)
	case errors.Is(err, repositories.ErrDuplicate):
		return NewConflictError(fmt.Sprintf("%s Already Exists", entity), "DUPLICATE")
	}
	return err
}

// isServiceError reports whether err already carries a status for the client.
func isServiceError(err error) bool {
	var serviceErr *ServiceError
	var authzErr *AuthorizationError
	var valErr *ValidationError
	return errors.As(err, &serviceErr) || errors.As(err, &authzErr) || errors.As(err, &valErr)
}

// failure maps err for the client. Errors without a mapping are logged and
// replaced by an internal error so their detail never leaves the service.
func failure(logger *zap.Logger, action string, err error, entity, id string) error {
	if err == nil {
		return nil
	}
	mapped := storeError(err, entity, id)
	if isServiceError(mapped) {
		return mapped
	}
	logger.Error("Failed to "+action,
		zap.Error(err),
		zap.String("entity", entity),
		zap.String("id", id),
	)
	internal := NewInternalError(fmt.Sprintf("Failed to %s", action))
	internal.Cause = err
	return internal
}
