// file: internal/handlers/api/v1/apiutil/request.go
package apiutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"letsconnect/internal/contextutils"
	"letsconnect/internal/engagement"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
)

// multipartMemory is the part of a multipart body kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// ===============================
// CALLER
// ===============================

// Principal returns the authenticated caller placed in the context by the
// auth middleware.
func Principal(r *http.Request) (engagement.Principal, error) {
	pr, ok := contextutils.GetPrincipal(r.Context())
	if !ok {
		return engagement.Principal{}, services.NewUnauthorizedError("Authentication Required")
	}
	return pr, nil
}

// Param returns a chi URL parameter
func Param(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// ===============================
// BODIES
// ===============================

// DecodeJSON decodes a JSON body into dst. An empty body leaves dst unchanged.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return bodyError(err)
	}
	return nil
}

// ParseForm parses a multipart or urlencoded body, bounded by maxBytes
func ParseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(multipartMemory)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return bodyError(err)
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return services.NewValidationError("Request Body Too Large", err)
	}
	return services.NewValidationError("Invalid request body", err)
}

// ===============================
// FORM FIELDS
// ===============================

// FormString returns a trimmed form value, or nil when the field is absent
func FormString(r *http.Request, key string) *string {
	if r.PostForm == nil {
		return nil
	}
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

// FormValue returns a trimmed form value, or "" when absent
func FormValue(r *http.Request, key string) string {
	if v := FormString(r, key); v != nil {
		return *v
	}
	return ""
}

// YesNo reads a "yes"/"no" flag. Any other value leaves the flag unset.
func YesNo(r *http.Request, key string) *bool {
	v := FormString(r, key)
	if v == nil {
		return nil
	}
	switch strings.ToLower(*v) {
	case "yes", "true":
		b := true
		return &b
	case "no", "false":
		b := false
		return &b
	}
	return nil
}

// FlagOr resolves an unset flag to def
func FlagOr(flag *bool, def bool) bool {
	if flag == nil {
		return def
	}
	return *flag
}

// FormFloat parses an optional float field
func FormFloat(r *http.Request, key string) (*float64, error) {
	v := FormString(r, key)
	if v == nil || *v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(*v, 64)
	if err != nil {
		return nil, services.NewValidationError("Invalid "+key, err)
	}
	return &f, nil
}

// FormTime parses an optional RFC 3339 time field
func FormTime(r *http.Request, key string) (*time.Time, error) {
	v := FormString(r, key)
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, services.NewValidationError("Invalid "+key+", expected RFC 3339", err)
	}
	t = t.UTC()
	return &t, nil
}

// ===============================
// FILES
// ===============================

// FormFile reads one uploaded file, or nil when none was sent
func FormFile(r *http.Request, field string) (*services.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	return readUpload(headers[0])
}

// FormFiles reads every file uploaded under field
func FormFiles(r *http.Request, field string) ([]services.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	uploads := make([]services.Upload, 0, len(headers))
	for _, h := range headers {
		u, err := readUpload(h)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, *u)
	}
	return uploads, nil
}

func readUpload(h *multipart.FileHeader) (*services.Upload, error) {
	f, err := h.Open()
	if err != nil {
		return nil, services.NewValidationError("Could Not Read Uploaded File", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, services.NewValidationError("Could Not Read Uploaded File", err)
	}
	return &services.Upload{Name: h.Filename, Data: data}, nil
}

// ===============================
// QUERY
// ===============================

// Query returns a trimmed query value
func Query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
