// file: internal/repositories/user_repository.go
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"letsconnect/internal/database"
	"letsconnect/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// userRepository implements UserRepository on Postgres
type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	u.id, u.name, u.username, u.email, u.password_hash, u.phone_number,
	u.gender, u.role, u.bio, u.photo_file_id, u.photo_file_name, u.photo_url,
	u.points, u.show_points, u.show_badges, u.is_banned,
	(SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id) AS followers_count,
	(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id) AS following_count,
	u.created_at, u.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user                      models.User
		fileID, fileName, fileURL string
	)
	err := row.Scan(
		&user.ID, &user.Name, &user.Username, &user.Email, &user.PasswordHash, &user.PhoneNumber,
		&user.Gender, &user.Role, &user.Bio, &fileID, &fileName, &fileURL,
		&user.Points, &user.ShowPoints, &user.ShowBadges, &user.IsBanned,
		&user.FollowersCount, &user.FollowingCount,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if fileURL != "" {
		user.Photo = &models.Media{FileID: fileID, FileName: fileName, URL: fileURL}
	}
	return &user, nil
}

func photoColumns(m *models.Media) (string, string, string) {
	if m == nil {
		return "", "", ""
	}
	return m.FileID, m.FileName, m.URL
}

// ===============================
// BASIC CRUD OPERATIONS
// ===============================

// Create inserts a user and fills its generated fields
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			name, username, email, password_hash, phone_number, gender, role, bio,
			photo_file_id, photo_file_name, photo_url, show_points, show_badges
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, points, is_banned, created_at, updated_at`

	fileID, fileName, fileURL := photoColumns(user.Photo)
	err := r.QueryRowContext(
		ctx, query,
		user.Name, user.Username, user.Email, user.PasswordHash, user.PhoneNumber,
		user.Gender, user.Role, user.Bio,
		fileID, fileName, fileURL, user.ShowPoints, user.ShowBadges,
	).Scan(&user.ID, &user.Points, &user.IsBanned, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if mapped := mapError(err); mapped == ErrDuplicate {
			return ErrDuplicate
		}
		r.logger.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
			zap.String("username", user.Username),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("User created successfully",
		zap.String("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(r.QueryRowContext(ctx, query, id))
	if err != nil {
		if mapped := mapError(err); mapped == ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE LOWER(u.email) = LOWER($1)`

	user, err := scanUser(r.QueryRowContext(ctx, query, email))
	if err != nil {
		if r.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByIDs retrieves every user in ids; missing ids are skipped
func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id::text = ANY($1)`
	rows, err := r.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to get users by IDs: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateProfile writes the editable profile fields
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			name = $2, username = $3, phone_number = $4, gender = $5, bio = $6,
			photo_file_id = $7, photo_file_name = $8, photo_url = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	fileID, fileName, fileURL := photoColumns(user.Photo)
	err := r.QueryRowContext(ctx, query,
		user.ID, user.Name, user.Username, user.PhoneNumber, user.Gender, user.Bio,
		fileID, fileName, fileURL,
	).Scan(&user.UpdatedAt)
	if err != nil {
		mapped := mapError(err)
		if mapped == ErrNotFound || mapped == ErrDuplicate {
			return mapped
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// flagColumns whitelists the columns ToggleFlag may touch.
var flagColumns = map[models.UserFlag]string{
	models.FlagShowPoints: "show_points",
	models.FlagShowBadges: "show_badges",
	models.FlagIsBanned:   "is_banned",
}

// ToggleFlag flips a boolean column in one statement
func (r *userRepository) ToggleFlag(ctx context.Context, id string, flag models.UserFlag) (bool, error) {
	column, ok := flagColumns[flag]
	if !ok {
		return false, fmt.Errorf("unknown user flag %q", flag)
	}

	query := fmt.Sprintf(
		`UPDATE users SET %[1]s = NOT %[1]s, updated_at = NOW() WHERE id = $1 RETURNING %[1]s`,
		column,
	)

	var value bool
	if err := r.QueryRowContext(ctx, query, id).Scan(&value); err != nil {
		if mapped := mapError(err); mapped == ErrNotFound {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle %s: %w", column, err)
	}
	return value, nil
}

// SetRole changes a user's role
func (r *userRepository) SetRole(ctx context.Context, id, role string) error {
	res, err := r.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats counts users
func (r *userRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	var stats models.UserStats
	err := r.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_banned) FROM users`,
	).Scan(&stats.Total, &stats.Banned)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return &stats, nil
}

// ===============================
// FOLLOWS
// ===============================

// followRepository implements FollowRepository on Postgres
type followRepository struct {
	*BaseRepository
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *database.Manager, logger *zap.Logger) FollowRepository {
	return &followRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

// Toggle follows or unfollows inside one transaction
func (r *followRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	var following bool
	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
			followerID, followeeID,
		)
		if err != nil {
			return mapError(err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			following = false
			return nil
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, followeeID,
		).Scan(&exists); err != nil {
			return mapError(err)
		}
		if !exists {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)`,
			followerID, followeeID,
		); err != nil {
			return mapError(err)
		}
		following = true
		return nil
	})
	return following, err
}

func (r *followRepository) listUsers(ctx context.Context, joinOn, whereCol, userID string, params models.ListParams) ([]models.UserSummary, int64, error) {
	total, err := r.GetTotalCount(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM follows WHERE %s = $1`, whereCol), userID)
	if err != nil {
		return nil, 0, mapError(err)
	}

	query := fmt.Sprintf(`
		SELECT u.id, u.name, u.username, u.photo_file_id, u.photo_file_name, u.photo_url
		FROM follows f JOIN users u ON u.id = f.%s
		WHERE f.%s = $1
		ORDER BY f.created_at DESC`, joinOn, whereCol)
	query, args := appendPage(query, []interface{}{userID}, params)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list follows: %w", err)
	}
	defer rows.Close()

	out := []models.UserSummary{}
	for rows.Next() {
		var (
			s                         models.UserSummary
			fileID, fileName, fileURL string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Username, &fileID, &fileName, &fileURL); err != nil {
			return nil, 0, fmt.Errorf("failed to scan follow: %w", err)
		}
		if fileURL != "" {
			s.Photo = &models.Media{FileID: fileID, FileName: fileName, URL: fileURL}
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

// Followers lists users following userID
func (r *followRepository) Followers(ctx context.Context, userID string, params models.ListParams) ([]models.UserSummary, int64, error) {
	return r.listUsers(ctx, "follower_id", "followee_id", userID, params)
}

// Following lists users userID follows
func (r *followRepository) Following(ctx context.Context, userID string, params models.ListParams) ([]models.UserSummary, int64, error) {
	return r.listUsers(ctx, "followee_id", "follower_id", userID, params)
}

// FollowingIDs returns the ids userID follows
func (r *followRepository) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT followee_id::text FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list following ids: %w", mapError(err))
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
