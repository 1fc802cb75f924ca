// Package repository implements the short link registry on top of Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/storage"
)

const linkColumns = `id, code, target_url, is_active, expires_at, total_clicks, last_used_at, created_at`

// Resolvable rows sort first so an expired row is only returned when no
// live one shares the code.
const findResolvableQuery = `SELECT ` + linkColumns + ` FROM short_links
WHERE upper(code) = upper($1) AND is_active = true
ORDER BY (expires_at IS NULL OR expires_at > $2) DESC, created_at DESC, id DESC
LIMIT 1;`

const findByCodeQuery = `SELECT ` + linkColumns + ` FROM short_links
WHERE upper(code) = upper($1)
ORDER BY created_at DESC, id DESC
LIMIT 1;`

const incrementClickQuery = `UPDATE short_links SET total_clicks = total_clicks + 1, last_used_at = $2 WHERE id = $1;`

const importQuery = `INSERT INTO short_links (` + linkColumns + `)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, $4, $5, $6, $7, COALESCE($8, now()))
RETURNING id, created_at;`

type ShortLinkRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

func CreateShortLinkRepository(db *sql.DB, logger *zap.Logger) *ShortLinkRepository {
	return &ShortLinkRepository{
		db:     db,
		logger: logger,
	}
}

func scanLink(row interface{ Scan(...any) error }) (*storage.ShortLink, error) {
	var (
		link       storage.ShortLink
		expiresAt  sql.NullTime
		lastUsedAt sql.NullTime
	)

	err := row.Scan(&link.ID, &link.Code, &link.TargetURL, &link.IsActive, &expiresAt, &link.TotalClicks, &lastUsedAt, &link.CreatedAt)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		link.ExpiresAt = &expiresAt.Time
	}
	if lastUsedAt.Valid {
		link.LastUsedAt = &lastUsedAt.Time
	}
	return &link, nil
}

func (r *ShortLinkRepository) FindResolvable(ctx context.Context, code string, now time.Time) (*storage.ShortLink, error) {
	link, err := scanLink(r.db.QueryRowContext(ctx, findResolvableQuery, code, now))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		r.logger.Error("FindResolvable", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

func (r *ShortLinkRepository) FindByCode(ctx context.Context, code string) (*storage.ShortLink, error) {
	link, err := scanLink(r.db.QueryRowContext(ctx, findByCodeQuery, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		r.logger.Error("FindByCode", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to find link: %w", err)
	}
	return link, nil
}

// IncrementClick adds one click in a single UPDATE, so concurrent clicks
// are serialized by the row lock.
func (r *ShortLinkRepository) IncrementClick(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, incrementClickQuery, id, at)
	if err != nil {
		return fmt.Errorf("failed to increment clicks: %w", err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Import inserts fixture records in one transaction. A duplicate id rolls
// the whole batch back with storage.ErrConflict.
func (r *ShortLinkRepository) Import(ctx context.Context, links []storage.ShortLink) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for _, l := range links {
		var createdAt any
		if !l.CreatedAt.IsZero() {
			createdAt = l.CreatedAt
		}

		var id string
		var created time.Time
		err = tx.QueryRowContext(ctx, importQuery,
			l.ID, l.Code, l.TargetURL, l.IsActive, l.ExpiresAt, l.TotalClicks, l.LastUsedAt, createdAt,
		).Scan(&id, &created)
		if err != nil {
			_ = tx.Rollback()

			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return storage.ErrConflict
			}
			return fmt.Errorf("failed to import link %q: %w", l.Code, err)
		}
		r.logger.Debug("imported link", zap.String("id", id), zap.String("code", l.Code), zap.Time("created_at", created))
	}

	return tx.Commit()
}

func (r *ShortLinkRepository) PingContext(c context.Context) error {
	return r.db.PingContext(c)
}
