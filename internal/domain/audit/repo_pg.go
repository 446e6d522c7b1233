package audit

import (
	"context"

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const recordCols = `id, report_id, scope_id, result_count, review_task_count, parsing_version, outcome, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.ReportID, &rec.ScopeID, &rec.ResultCount,
		&rec.ReviewTaskCount, &rec.ParsingVersion, &rec.Outcome, &rec.CreatedAt)
	return &rec, err
}

func (r *repoPG) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ingestion_audit (id, report_id, scope_id, result_count, review_task_count, parsing_version, outcome)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.ID, rec.ReportID, rec.ScopeID, rec.ResultCount, rec.ReviewTaskCount, rec.ParsingVersion, rec.Outcome)
	return err
}

func (r *repoPG) ListByReport(ctx context.Context, reportID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ingestion_audit WHERE report_id = $1`, reportID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM ingestion_audit WHERE report_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		reportID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rec)
	}
	return items, total, rows.Err()
}
