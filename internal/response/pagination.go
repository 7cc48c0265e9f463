// file: internal/response/pagination.go
package response

import (
	"net/http"
	"net/url"
	"strconv"

	"letsconnect/internal/services"
)

// Query parameter names for page pagination
const (
	PageParam  = "page"
	LimitParam = "limit"
)

// ParseListRequest reads page and limit from the query string. Missing
// values are left zero so the service applies its defaults.
func ParseListRequest(r *http.Request) (services.ListRequest, error) {
	return ParseListQuery(r.URL.Query())
}

// ParseListQuery parses pagination parameters from query values
func ParseListQuery(query url.Values) (services.ListRequest, error) {
	var req services.ListRequest

	if pageStr := query.Get(PageParam); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return req, services.NewValidationError("Page must be a positive number", err)
		}
		req.Page = page
	}

	if limitStr := query.Get(LimitParam); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			return req, services.NewValidationError("Limit must be a positive number", err)
		}
		req.Limit = limit
	}

	return req, nil
}
