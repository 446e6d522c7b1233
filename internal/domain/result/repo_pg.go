package result

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

const resultCols = `id, report_id, patient_id, analyte_name, short_code,
	resolution_method, resolution_confidence, kind,
	value_numeric, value_text, unit_original, unit_normalized,
	censored, censor_operator, abnormal_flag, abnormal_severity,
	specimen, organism, detection_status, comment,
	collected_at, reported_at, source_anchor, confidence_tag, overall_confidence,
	created_at`

func scanResult(row pgx.Row) (*Result, error) {
	var rs Result
	err := row.Scan(&rs.ID, &rs.ReportID, &rs.PatientID, &rs.AnalyteName, &rs.ShortCode,
		&rs.ResolutionMethod, &rs.ResolutionConfidence, &rs.Kind,
		&rs.ValueNumeric, &rs.ValueText, &rs.UnitOriginal, &rs.UnitNormalized,
		&rs.Censored, &rs.CensorOperator, &rs.AbnormalFlag, &rs.AbnormalSeverity,
		&rs.Specimen, &rs.Organism, &rs.DetectionStatus, &rs.Comment,
		&rs.CollectedAt, &rs.ReportedAt, &rs.SourceAnchor, &rs.ConfidenceTag, &rs.OverallConfidence,
		&rs.CreatedAt)
	return &rs, err
}

func (r *repoPG) DeleteByReport(ctx context.Context, reportID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM result WHERE report_id = $1`, reportID)
	return err
}

func (r *repoPG) InsertBatch(ctx context.Context, results []*Result) error {
	c := r.conn(ctx)
	for _, rs := range results {
		if rs.ID == uuid.Nil {
			rs.ID = uuid.New()
		}
		if _, err := c.Exec(ctx, `
			INSERT INTO result (id, report_id, patient_id, analyte_name, short_code,
				resolution_method, resolution_confidence, kind,
				value_numeric, value_text, unit_original, unit_normalized,
				censored, censor_operator, abnormal_flag, abnormal_severity,
				specimen, organism, detection_status, comment,
				collected_at, reported_at, source_anchor, confidence_tag, overall_confidence)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)`,
			rs.ID, rs.ReportID, rs.PatientID, rs.AnalyteName, rs.ShortCode,
			rs.ResolutionMethod, rs.ResolutionConfidence, rs.Kind,
			rs.ValueNumeric, rs.ValueText, rs.UnitOriginal, rs.UnitNormalized,
			rs.Censored, rs.CensorOperator, rs.AbnormalFlag, rs.AbnormalSeverity,
			rs.Specimen, rs.Organism, rs.DetectionStatus, rs.Comment,
			rs.CollectedAt, rs.ReportedAt, rs.SourceAnchor, rs.ConfidenceTag, rs.OverallConfidence); err != nil {
			return err
		}

		for _, rr := range rs.Ranges {
			if rr.ID == uuid.Nil {
				rr.ID = uuid.New()
			}
			rr.ResultID = rs.ID
			if _, err := c.Exec(ctx, `
				INSERT INTO reference_range (id, result_id, low, high, text, context)
				VALUES ($1,$2,$3,$4,$5,$6)`,
				rr.ID, rr.ResultID, rr.Low, rr.High, rr.Text, rr.Context); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *repoPG) ListByReport(ctx context.Context, reportID uuid.UUID) ([]*Result, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+resultCols+` FROM result WHERE report_id = $1 ORDER BY created_at, id`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Result
	for rows.Next() {
		rs, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, r.attachRanges(ctx, items)
}

func (r *repoPG) attachRanges(ctx context.Context, results []*Result) error {
	byID := make(map[uuid.UUID]*Result, len(results))
	ids := make([]uuid.UUID, 0, len(results))
	for _, rs := range results {
		byID[rs.ID] = rs
		ids = append(ids, rs.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, result_id, low, high, text, context FROM reference_range WHERE result_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var rr ReferenceRange
		if err := rows.Scan(&rr.ID, &rr.ResultID, &rr.Low, &rr.High, &rr.Text, &rr.Context); err != nil {
			return err
		}
		if rs, ok := byID[rr.ResultID]; ok {
			rs.Ranges = append(rs.Ranges, &rr)
		}
	}
	return rows.Err()
}

func (r *repoPG) HistoryByPatient(ctx context.Context, scopeID, patientID uuid.UUID) ([]*Result, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+resultCols+` FROM result
		 WHERE patient_id = $1
		   AND report_id IN (SELECT id FROM report WHERE scope_id = $2)
		 ORDER BY reported_at ASC NULLS LAST, created_at ASC`, patientID, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Result
	for rows.Next() {
		rs, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rs)
	}
	return items, rows.Err()
}

func (r *repoPG) Series(ctx context.Context, scopeID, patientID uuid.UUID, shortCode string) ([]*SeriesPoint, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT report_id, value_numeric, COALESCE(unit_normalized, unit_original), reported_at
		FROM result
		WHERE patient_id = $1 AND short_code = $2 AND value_numeric IS NOT NULL
		  AND report_id IN (SELECT id FROM report WHERE scope_id = $3)
		ORDER BY reported_at ASC NULLS LAST, created_at ASC`, patientID, shortCode, scopeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*SeriesPoint
	for rows.Next() {
		var p SeriesPoint
		if err := rows.Scan(&p.ReportID, &p.ValueNumeric, &p.Unit, &p.ReportedAt); err != nil {
			return nil, err
		}
		points = append(points, &p)
	}
	return points, rows.Err()
}
