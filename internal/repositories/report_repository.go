// file: internal/repositories/report_repository.go
package repositories

import (
	"context"
	"fmt"
	"strings"

	"letsconnect/internal/database"
	"letsconnect/internal/models"

	"go.uber.org/zap"
)

// reportRepository implements ReportRepository on Postgres
type reportRepository struct {
	*BaseRepository
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.Manager, logger *zap.Logger) ReportRepository {
	return &reportRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const reportColumns = `id, post_id, reporter_id, reason, description, status, created_at, updated_at`

func scanReport(row rowScanner) (*models.Report, error) {
	var rep models.Report
	err := row.Scan(
		&rep.ID, &rep.PostID, &rep.ReporterID, &rep.Reason,
		&rep.Description, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// Create stores a report; a second report by the same user on the same post is a duplicate
func (r *reportRepository) Create(ctx context.Context, rep *models.Report) error {
	query := `
		INSERT INTO reports (post_id, reporter_id, reason, description, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		rep.PostID, rep.ReporterID, rep.Reason, rep.Description, rep.Status,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if mapped := mapError(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create report",
			zap.Error(err),
			zap.String("post_id", rep.PostID),
			zap.String("reporter_id", rep.ReporterID),
		)
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// GetByID retrieves a report
func (r *reportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	rep, err := scanReport(r.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
	if err != nil {
		if mapped := mapError(err); mapped == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return rep, nil
}

// UpdateStatus sets the moderation status of a report
func (r *reportRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.ExecContext(ctx,
		`UPDATE reports SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a report
func (r *reportRepository) Delete(ctx context.Context, id string) error {
	res, err := r.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Search lists reports matching filter, newest first
func (r *reportRepository) Search(ctx context.Context, filter models.ReportFilter, params models.ListParams) ([]*models.Report, int64, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		conds = append(conds, fmt.Sprintf("reason = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM reports`+where, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	query, pageArgs := appendPage(`SELECT `+reportColumns+` FROM reports`+where+` ORDER BY created_at DESC`, args, params)
	rows, err := r.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search reports: %w", err)
	}
	defer rows.Close()

	out := []*models.Report{}
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, rep)
	}
	return out, total, rows.Err()
}
