// file: internal/services/report_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"letsconnect/internal/config"
	"letsconnect/internal/engagement"
	"letsconnect/internal/models"
	"letsconnect/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

var reportHandlerRoles = []string{engagement.RoleAdmin, engagement.RoleReportHandler}

// reportService implements ReportService
type reportService struct {
	reports repositories.ReportRepository
	posts   repositories.PostStore
	logger  *zap.Logger
	config  config.PaginationConfig
}

// NewReportService creates a new report service
func NewReportService(
	reports repositories.ReportRepository,
	posts repositories.PostStore,
	logger *zap.Logger,
	cfg config.PaginationConfig,
) ReportService {
	return &reportService{
		reports: reports,
		posts:   posts,
		logger:  logger,
		config:  cfg,
	}
}

func (s *reportService) authorize(pr engagement.Principal, action string) error {
	if !slices.Contains(reportHandlerRoles, pr.Role) {
		return NewAuthorizationError("You Are Not Authorized For This Action", "report", action, pr.ID)
	}
	return nil
}

// CreateReport files a report on a post. A user reports a post at most once.
func (s *reportService) CreateReport(ctx context.Context, pr engagement.Principal, req *CreateReportRequest) (*models.Report, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPost(ctx, req.PostID); err != nil {
		return nil, failure(s.logger, "create report", err, "Post", req.PostID)
	}

	rep := &models.Report{
		PostID:      req.PostID,
		ReporterID:  pr.ID,
		Reason:      req.Reason,
		Description: strings.TrimSpace(req.Description),
		Status:      models.DefaultReportStatus,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, NewConflictError("You Have Already Reported This Post", "ALREADY_REPORTED")
		}
		return nil, failure(s.logger, "create report", err, "Report", "")
	}

	s.logger.Info("Report created",
		zap.String("report_id", rep.ID),
		zap.String("post_id", rep.PostID),
		zap.String("reason", rep.Reason),
	)
	return rep, nil
}

// GetReport returns a report with the reported post, falling back to the
// archived copy when the post has been deleted.
func (s *reportService) GetReport(ctx context.Context, pr engagement.Principal, id string) (*ReportDetail, error) {
	if err := s.authorize(pr, "read"); err != nil {
		return nil, err
	}
	if err := checkUUID(id, "Report"); err != nil {
		return nil, err
	}
	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "get report", err, "Report", id)
	}

	detail := &ReportDetail{Report: rep}
	post, err := s.posts.GetPost(ctx, rep.PostID)
	switch {
	case err == nil:
		post.Comments = nil
		detail.Post = post
		return detail, nil
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, failure(s.logger, "get reported post", err, "Post", rep.PostID)
	}

	archived, err := s.posts.GetDeletedPost(ctx, rep.PostID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, failure(s.logger, "get archived post", err, "Post", rep.PostID)
	}
	if archived != nil {
		archived.Comments = nil
		detail.DeletedPost = archived
	}
	return detail, nil
}

// ProcessReport moves a report to a new status
func (s *reportService) ProcessReport(ctx context.Context, pr engagement.Principal, id string, req *ProcessReportRequest) (*MessageResponse, error) {
	if err := s.authorize(pr, "process"); err != nil {
		return nil, err
	}
	if err := checkUUID(id, "Report"); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	rep, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, failure(s.logger, "process report", err, "Report", id)
	}
	if rep.Status == req.Status {
		return nil, NewValidationError(fmt.Sprintf("Report Is Already %s", rep.Status), nil)
	}
	if err := s.reports.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, failure(s.logger, "process report", err, "Report", id)
	}

	s.logger.Info("Report processed",
		zap.String("report_id", id),
		zap.String("handler_id", pr.ID),
		zap.String("from", rep.Status),
		zap.String("to", req.Status),
	)
	return message("Report Status Updated Successfully"), nil
}

// DeleteReport removes a report
func (s *reportService) DeleteReport(ctx context.Context, pr engagement.Principal, id string) (*MessageResponse, error) {
	if err := s.authorize(pr, "delete"); err != nil {
		return nil, err
	}
	if err := checkUUID(id, "Report"); err != nil {
		return nil, err
	}
	if err := s.reports.Delete(ctx, id); err != nil {
		return nil, failure(s.logger, "delete report", err, "Report", id)
	}
	return message("Report Deleted Successfully"), nil
}

// SearchReports lists reports by reason and status, newest first
func (s *reportService) SearchReports(ctx context.Context, pr engagement.Principal, req *ReportSearchRequest) (*ListResult[*models.Report], error) {
	if err := s.authorize(pr, "search"); err != nil {
		return nil, err
	}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	params := req.params(s.config)
	items, total, err := s.reports.Search(ctx, models.ReportFilter{Reason: req.Reason, Status: req.Status}, params)
	if err != nil {
		return nil, failure(s.logger, "search reports", err, "Report", "")
	}
	return newListResult(items, total, params), nil
}
