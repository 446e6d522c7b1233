package review

import (
	"context"
	"errors"

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

const taskCols = `id, report_id, field_path, reason, status, created_at, resolved_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.ReportID, &t.FieldPath, &t.Reason, &t.Status, &t.CreatedAt, &t.ResolvedAt)
	return &t, err
}

func (r *repoPG) ReplaceForReport(ctx context.Context, reportID uuid.UUID, tasks []*Task) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM review_task WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, t := range tasks {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		t.ReportID = reportID
		if t.Status == "" {
			t.Status = StatusOpen
		}
		if _, err := c.Exec(ctx, `
			INSERT INTO review_task (id, report_id, field_path, reason, status)
			VALUES ($1,$2,$3,$4,$5)`,
			t.ID, t.ReportID, t.FieldPath, t.Reason, t.Status); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Task, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+taskCols+` FROM review_task WHERE report_id = $1 ORDER BY created_at, field_path`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r *repoPG) ListOpenForScope(ctx context.Context, scopeID uuid.UUID, limit, offset int) ([]*Task, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `
		SELECT COUNT(*) FROM review_task t
		JOIN report rp ON rp.id = t.report_id
		WHERE rp.scope_id = $1 AND t.status IN ($2, $3)`,
		scopeID, StatusOpen, StatusInReview).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT t.id, t.report_id, t.field_path, t.reason, t.status, t.created_at, t.resolved_at
		FROM review_task t
		JOIN report rp ON rp.id = t.report_id
		WHERE rp.scope_id = $1 AND t.status IN ($2, $3)
		ORDER BY t.created_at DESC LIMIT $4 OFFSET $5`,
		scopeID, StatusOpen, StatusInReview, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	t, err := scanTask(r.conn(ctx).QueryRow(ctx,
		`SELECT `+taskCols+` FROM review_task WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status == StatusResolved {
		_, err := r.conn(ctx).Exec(ctx,
			`UPDATE review_task SET status = $2, resolved_at = NOW() WHERE id = $1`, id, status)
		return err
	}
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE review_task SET status = $2, resolved_at = NULL WHERE id = $1`, id, status)
	return err
}
