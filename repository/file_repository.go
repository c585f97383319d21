package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"filedrop-backend/models"
)

// FileRepository handles database operations for file records
type FileRepository struct {
	db *pgxpool.Pool
}

// NewFileRepository creates a new file repository
func NewFileRepository(db *pgxpool.Pool) *FileRepository {
	return &FileRepository{db: db}
}

// EnsureSchema creates the files table if it does not exist
func (r *FileRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			filename TEXT NOT NULL,
			filepath TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create files table: %w", err)
	}
	return nil
}

// Create inserts a new file record. Returns models.ErrConflict if the id is
// already taken, which callers resolve by regenerating the id.
func (r *FileRepository) Create(ctx context.Context, file *models.FileRecord) error {
	query := `
		INSERT INTO files (id, filename, filepath, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		file.ID,
		file.Filename,
		file.StoragePath,
		file.ExpiresAt,
	).Scan(&file.CreatedAt)

	if isUniqueViolation(err) {
		return models.ErrConflict
	}
	return err
}

// GetByID retrieves a file record by id
func (r *FileRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	file := &models.FileRecord{}
	query := `
		SELECT id, filename, filepath, expires_at, created_at
		FROM files
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&file.ID,
		&file.Filename,
		&file.StoragePath,
		&file.ExpiresAt,
		&file.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return file, nil
}

// DeleteByID deletes a file record and reports whether a row was actually
// removed. Concurrent consumers race on this: exactly one caller sees true.
func (r *FileRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	query := `DELETE FROM files WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExpired removes every record whose expiry has passed and returns the
// removed rows. Read and delete happen in a single statement, so overlapping
// sweeps partition the expired set instead of double-processing it.
func (r *FileRepository) DeleteExpired(ctx context.Context, now time.Time) ([]*models.FileRecord, error) {
	query := `
		DELETE FROM files
		WHERE expires_at < $1
		RETURNING id, filename, filepath, expires_at, created_at`

	rows, err := r.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*models.FileRecord
	for rows.Next() {
		file := &models.FileRecord{}
		err := rows.Scan(
			&file.ID,
			&file.Filename,
			&file.StoragePath,
			&file.ExpiresAt,
			&file.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (duplicate primary key on insert)
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
