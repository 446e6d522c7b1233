package mapping

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labfeed/labfeed/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type entryRepoPG struct{ pool *pgxpool.Pool }

func NewEntryRepoPG(pool *pgxpool.Pool) EntryRepository {
	return &entryRepoPG{pool: pool}
}

func (r *entryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const entryCols = `id, scope_id, scope_kind, source_name, short_code, method, confidence,
	last_confirmed_at, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.ScopeID, &e.ScopeKind, &e.SourceName, &e.ShortCode, &e.Method,
		&e.Confidence, &e.LastConfirmedAt, &e.CreatedAt, &e.UpdatedAt)
	return &e, err
}

func (r *entryRepoPG) GetByName(ctx context.Context, scopeID uuid.UUID, sourceName string) (*Entry, error) {
	e, err := scanEntry(r.conn(ctx).QueryRow(ctx,
		`SELECT `+entryCols+` FROM mapping_entry WHERE scope_id = $1 AND source_name = $2`,
		scopeID, strings.ToLower(strings.TrimSpace(sourceName))))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *entryRepoPG) Upsert(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.SourceName = strings.ToLower(strings.TrimSpace(e.SourceName))
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO mapping_entry (id, scope_id, scope_kind, source_name, short_code, method, confidence, last_confirmed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (scope_id, source_name) DO UPDATE SET
			short_code = EXCLUDED.short_code,
			method = EXCLUDED.method,
			confidence = EXCLUDED.confidence,
			last_confirmed_at = EXCLUDED.last_confirmed_at,
			updated_at = NOW()`,
		e.ID, e.ScopeID, e.ScopeKind, e.SourceName, e.ShortCode, e.Method, e.Confidence, e.LastConfirmedAt)
	return err
}

func (r *entryRepoPG) ListByScope(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*Entry, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM mapping_entry WHERE scope_id = $1`, scopeID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+entryCols+` FROM mapping_entry WHERE scope_id = $1 ORDER BY source_name LIMIT $2 OFFSET $3`,
		scopeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *entryRepoPG) Delete(ctx context.Context, scopeID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM mapping_entry WHERE scope_id = $1 AND id = $2`, scopeID, id)
	return err
}
