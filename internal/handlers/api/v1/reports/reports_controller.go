// file: internal/handlers/api/v1/reports/reports_controller.go
package reports

import (
	"net/http"

	"letsconnect/internal/handlers/api/v1/apiutil"
	"letsconnect/internal/response"
	"letsconnect/internal/services"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxReportBody = 8 << 10

// ReportController handles abuse reports. Role checks live in the service.
type ReportController struct {
	reports         services.ReportService
	logger          *zap.Logger
	responseBuilder *response.Builder
}

// NewReportController creates a new report API controller
func NewReportController(
	serviceCollection *services.ServiceCollection,
	logger *zap.Logger,
	responseBuilder *response.Builder,
) *ReportController {
	return &ReportController{
		reports:         serviceCollection.Report,
		logger:          logger,
		responseBuilder: responseBuilder,
	}
}

// Routes registers the report endpoints
func (c *ReportController) Routes(r chi.Router) {
	r.Post("/", c.CreateReport)
	r.Get("/", c.SearchReports)
	r.Get("/{id}", c.GetReport)
	r.Put("/{id}/process", c.ProcessReport)
	r.Delete("/{id}", c.DeleteReport)
}

// CreateReport handles POST /api/v1/reports
func (c *ReportController) CreateReport(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	var req services.CreateReportRequest
	if err := apiutil.DecodeJSON(w, r, &req, maxReportBody); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	report, err := c.reports.CreateReport(r.Context(), pr, &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteCreated(w, r, "Report Submitted Successfully", report)
}

// SearchReports handles GET /api/v1/reports?reason=&status=&page=&limit=
func (c *ReportController) SearchReports(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	page, err := response.ParseListRequest(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	result, err := c.reports.SearchReports(r.Context(), pr, &services.ReportSearchRequest{
		ListRequest: page,
		Reason:      apiutil.Query(r, "reason"),
		Status:      apiutil.Query(r, "status"),
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	response.WriteList(c.responseBuilder, w, r, result)
}

// GetReport handles GET /api/v1/reports/{id}
func (c *ReportController) GetReport(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	detail, err := c.reports.GetReport(r.Context(), pr, apiutil.Param(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteData(w, r, http.StatusOK, detail)
}

// ProcessReport handles PUT /api/v1/reports/{id}/process
func (c *ReportController) ProcessReport(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	var req services.ProcessReportRequest
	if err := apiutil.DecodeJSON(w, r, &req, maxReportBody); err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.reports.ProcessReport(r.Context(), pr, apiutil.Param(r, "id"), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}

// DeleteReport handles DELETE /api/v1/reports/{id}
func (c *ReportController) DeleteReport(w http.ResponseWriter, r *http.Request) {
	pr, err := apiutil.Principal(r)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	msg, err := c.reports.DeleteReport(r.Context(), pr, apiutil.Param(r, "id"))
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}
	c.responseBuilder.WriteMessage(w, r, http.StatusOK, msg.Message)
}
