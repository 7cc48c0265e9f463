package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"letsconnect/internal/contextutils"
	"letsconnect/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestBuilder_WriteError(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zap.NewNop())

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", services.NewValidationError("Content is required", nil), http.StatusBadRequest, "Content is required"},
		{"authorization", services.NewAuthorizationError("You Are Not Authorized For This Action", "post", "delete", "u1"), http.StatusForbidden, "You Are Not Authorized For This Action"},
		{"forbidden", services.NewForbiddenError("Comments are Off for This Post"), http.StatusForbidden, "Comments are Off for This Post"},
		{"not found", services.NewNotFoundError("Post Not Found"), http.StatusNotFound, "Post Not Found"},
		{"conflict", services.NewConflictError("Already Reported", "DUPLICATE"), http.StatusConflict, "Already Reported"},
		{"internal is masked", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(contextutils.WithRequestID(req.Context(), "req-1"))
			rec := httptest.NewRecorder()

			b.WriteError(rec, req, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, "req-1", body["requestId"])
		})
	}
}

func TestBuilder_WriteErrorFields(t *testing.T) {
	b := NewBuilder(nil, nil)
	err := services.NewDetailedValidationError("Email is required", []services.FieldError{
		{Field: "email", Message: "Email is required", Code: "required"},
	})

	rec := httptest.NewRecorder()
	b.WriteError(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields, ok := decode(t, rec)["fields"].([]interface{})
	require.True(t, ok)
	assert.Len(t, fields, 1)
}

func TestBuilder_Envelopes(t *testing.T) {
	b := NewBuilder(DefaultConfig(), zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	rec := httptest.NewRecorder()
	b.WriteMessage(rec, req, http.StatusOK, "Liked")
	assert.Equal(t, map[string]interface{}{"success": true, "message": "Liked"}, decode(t, rec))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	b.WriteComments(rec, req, &services.CommentsPage{TotalComments: 5, TotalPages: 3, Page: 2})
	body := decode(t, rec)
	assert.Equal(t, float64(5), body["totalComments"])
	assert.Equal(t, float64(3), body["totalPages"])

	rec = httptest.NewRecorder()
	WriteList(b, rec, req, &services.ListResult[string]{Data: []string{"a"}, Total: 11, Page: 2, TotalPages: 2})
	body = decode(t, rec)
	assert.Equal(t, []interface{}{"a"}, body["data"])
	assert.Equal(t, float64(11), body["total"])
	assert.Equal(t, float64(2), body["totalPages"])
}

func TestParseListQuery(t *testing.T) {
	req, err := ParseListQuery(url.Values{"page": {"3"}, "limit": {"15"}})
	require.NoError(t, err)
	assert.Equal(t, services.ListRequest{Page: 3, Limit: 15}, req)

	req, err = ParseListQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, services.ListRequest{}, req)

	_, err = ParseListQuery(url.Values{"page": {"0"}})
	assert.True(t, services.IsValidationError(err))

	_, err = ParseListQuery(url.Values{"limit": {"ten"}})
	assert.True(t, services.IsValidationError(err))
}
