package report

import (
	"context"
	"errors"
	"fmt"

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

const reportCols = `id, patient_id, scope_id, source_file, parsing_status, parsing_version, created_at, updated_at`

func scanReport(row pgx.Row) (*Report, error) {
	var rp Report
	err := row.Scan(&rp.ID, &rp.PatientID, &rp.ScopeID, &rp.SourceFile,
		&rp.ParsingStatus, &rp.ParsingVersion, &rp.CreatedAt, &rp.UpdatedAt)
	return &rp, err
}

func (r *repoPG) Create(ctx context.Context, rp *Report) error {
	if rp.ID == uuid.Nil {
		rp.ID = uuid.New()
	}
	if rp.ParsingStatus == "" {
		rp.ParsingStatus = StatusPending
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO report (id, patient_id, scope_id, source_file, parsing_status, parsing_version)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		rp.ID, rp.PatientID, rp.ScopeID, rp.SourceFile, rp.ParsingStatus, rp.ParsingVersion)
	return err
}

func (r *repoPG) GetForScope(ctx context.Context, scopeID, id uuid.UUID) (*Report, error) {
	rp, err := scanReport(r.conn(ctx).QueryRow(ctx,
		`SELECT `+reportCols+` FROM report WHERE id = $1 AND scope_id = $2`, id, scopeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rp, nil
}

func (r *repoPG) List(ctx context.Context, scopeID uuid.UUID, status string, limit, offset int) ([]*Report, int, error) {
	where := `WHERE scope_id = $1`
	args := []interface{}{scopeID}
	if status != "" {
		where += ` AND parsing_status = $2`
		args = append(args, status)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM report `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := fmt.Sprintf(`SELECT %s FROM report %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		reportCols, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Report
	for rows.Next() {
		rp, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rp)
	}
	return items, total, rows.Err()
}

func (r *repoPG) UpdateParsingStatus(ctx context.Context, id uuid.UUID, status string, parsingVersion *string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE report SET parsing_status = $2,
			parsing_version = COALESCE($3, parsing_version),
			updated_at = NOW()
		WHERE id = $1`, id, status, parsingVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("report %s not found", id)
	}
	return nil
}

func (r *repoPG) ReplaceComments(ctx context.Context, reportID uuid.UUID, comments []*Comment) error {
	c := r.conn(ctx)
	if _, err := c.Exec(ctx, `DELETE FROM report_comment WHERE report_id = $1`, reportID); err != nil {
		return err
	}
	for _, cm := range comments {
		if cm.ID == uuid.Nil {
			cm.ID = uuid.New()
		}
		cm.ReportID = reportID
		if _, err := c.Exec(ctx,
			`INSERT INTO report_comment (id, report_id, scope, body) VALUES ($1,$2,$3,$4)`,
			cm.ID, cm.ReportID, cm.Scope, cm.Body); err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) ListComments(ctx context.Context, reportID uuid.UUID) ([]*Comment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, report_id, scope, body FROM report_comment WHERE report_id = $1 ORDER BY id`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Comment
	for rows.Next() {
		var cm Comment
		if err := rows.Scan(&cm.ID, &cm.ReportID, &cm.Scope, &cm.Body); err != nil {
			return nil, err
		}
		items = append(items, &cm)
	}
	return items, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, scopeID, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM report WHERE id = $1 AND scope_id = $2`, id, scopeID)
	return err
}
