package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labfeed/labfeed/internal/domain/audit"
	"github.com/labfeed/labfeed/internal/domain/extraction"
	"github.com/labfeed/labfeed/internal/domain/mapping"
	"github.com/labfeed/labfeed/internal/domain/report"
	"github.com/labfeed/labfeed/internal/domain/result"
	"github.com/labfeed/labfeed/internal/domain/review"
	"github.com/labfeed/labfeed/internal/platform/db"
)

// Summary is what an ingestion reports back to its caller.
type Summary struct {
	ResultCount     int    `json:"result_count"`
	ReviewTaskCount int    `json:"review_task_count"`
	ParsingStatus   string `json:"parsing_status"`
}

// Service orchestrates one report ingestion: validate, resolve, normalize,
// flag, then atomically replace the report's entire result set. It holds no
// state between calls; the mapping dictionary and the report's rows are the
// only durable things it touches.
type Service struct {
	reports  report.Repository
	results  result.Repository
	reviews  review.Repository
	audits   audit.Repository
	resolver *mapping.Resolver
	builder  *review.Builder
	tx       db.TxRunner
	logger   zerolog.Logger
}

func NewService(
	reports report.Repository,
	results result.Repository,
	reviews review.Repository,
	audits audit.Repository,
	resolver *mapping.Resolver,
	builder *review.Builder,
	tx db.TxRunner,
	logger zerolog.Logger,
) *Service {
	return &Service{
		reports:  reports,
		results:  results,
		reviews:  reviews,
		audits:   audits,
		resolver: resolver,
		builder:  builder,
		tx:       tx,
		logger:   logger,
	}
}

// Ingest replaces a report's normalized result set with the given extraction
// document. The replace is all-or-nothing: results, reference ranges, review
// tasks, comments and the parsing status commit in one transaction or the
// report stays exactly as it was. Ingesting the same document twice leaves
// the same rows both times.
func (s *Service) Ingest(ctx context.Context, scopeID, reportID uuid.UUID, doc *extraction.Document) (*Summary, error) {
	rp, err := s.reports.GetForScope(ctx, scopeID, reportID)
	if err != nil {
		return nil, fmt.Errorf("look up report: %w", err)
	}
	if rp == nil {
		return nil, ErrReportNotFound
	}

	if err := doc.Validate(); err != nil {
		// The payload can never be ingested as-is; the report is parked in
		// failed rather than left pending forever. This is the only write a
		// rejected payload causes.
		if serr := s.reports.UpdateParsingStatus(ctx, reportID, report.StatusFailed, nil); serr != nil {
			s.logger.Warn().Err(serr).Str("report_id", reportID.String()).Msg("failed to mark report failed")
		}
		return nil, &StructuralError{Cause: err}
	}

	results := make([]*result.Result, 0, len(doc.Results))
	tasks := s.builder.Build(doc, reportID)

	for i := range doc.Results {
		raw := &doc.Results[i]

		supplied := ""
		if raw.ShortCode != nil {
			supplied = *raw.ShortCode
		}
		unit := ""
		if raw.UnitOriginal != nil {
			unit = *raw.UnitOriginal
		}

		res := s.resolver.Resolve(ctx, scopeID, raw.AnalyteName, supplied, unit)
		if res.RequiresReview {
			tasks = append(tasks, &review.Task{
				ReportID:  reportID,
				FieldPath: fmt.Sprintf("results[%d].short_code", i),
				Reason:    review.ReasonUnconfirmedMapping,
				Status:    review.StatusOpen,
			})
		}

		results = append(results, s.normalize(raw, rp, res))
	}

	comments := make([]*report.Comment, 0, len(doc.Comments))
	for _, rc := range doc.Comments {
		comments = append(comments, &report.Comment{Scope: rc.Scope, Body: rc.Text})
	}

	status := report.StatusCompleted
	if len(tasks) > 0 {
		status = report.StatusNeedsReview
	}

	var parsingVersion *string
	if doc.ParsingVersion != "" {
		parsingVersion = &doc.ParsingVersion
	}

	err = s.tx.Atomically(ctx, func(ctx context.Context) error {
		if err := s.results.DeleteByReport(ctx, reportID); err != nil {
			return fmt.Errorf("delete prior results: %w", err)
		}
		if err := s.results.InsertBatch(ctx, results); err != nil {
			return fmt.Errorf("insert results: %w", err)
		}
		if err := s.reviews.ReplaceForReport(ctx, reportID, tasks); err != nil {
			return fmt.Errorf("replace review tasks: %w", err)
		}
		if err := s.reports.ReplaceComments(ctx, reportID, comments); err != nil {
			return fmt.Errorf("replace comments: %w", err)
		}
		if err := s.reports.UpdateParsingStatus(ctx, reportID, status, parsingVersion); err != nil {
			return fmt.Errorf("update parsing status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Cause: err}
	}

	s.writeAudit(ctx, rp, doc.ParsingVersion, len(results), len(tasks), status)

	return &Summary{
		ResultCount:     len(results),
		ReviewTaskCount: len(tasks),
		ParsingStatus:   status,
	}, nil
}

// normalize assembles one persisted Result from a raw row and its resolution.
func (s *Service) normalize(raw *extraction.RawResult, rp *report.Report, res mapping.Resolution) *result.Result {
	rs := &result.Result{
		ReportID:             rp.ID,
		PatientID:            rp.PatientID,
		AnalyteName:          raw.AnalyteName,
		ShortCode:            res.ShortCode,
		ResolutionMethod:     res.Method,
		ResolutionConfidence: res.Confidence,
		Kind:                 raw.Kind,
		ValueNumeric:         raw.ValueNumeric,
		ValueText:            raw.ValueText,
		UnitOriginal:         raw.UnitOriginal,
		Censored:             raw.Censored,
		CensorOperator:       raw.CensorOperator,
		AbnormalFlag:         raw.AbnormalFlag,
		AbnormalSeverity:     raw.AbnormalSeverity,
		Specimen:             raw.Specimen,
		Organism:             raw.Organism,
		DetectionStatus:      raw.DetectionStatus,
		Comment:              raw.Comment,
		CollectedAt:          raw.CollectedAt,
		ReportedAt:           raw.ReportedAt,
		SourceAnchor:         raw.SourceAnchor,
		ConfidenceTag:        raw.ConfidenceTag,
		OverallConfidence:    raw.OverallConfidence,
	}

	// The producer's pre-normalized unit wins over ours when present.
	if raw.UnitNormalized != nil && *raw.UnitNormalized != "" {
		canon := mapping.NormalizeUnit(*raw.UnitNormalized)
		rs.UnitNormalized = &canon
	} else if raw.UnitOriginal != nil && *raw.UnitOriginal != "" {
		canon := mapping.NormalizeUnit(*raw.UnitOriginal)
		rs.UnitNormalized = &canon
	}

	for _, rr := range raw.Ranges() {
		rs.Ranges = append(rs.Ranges, &result.ReferenceRange{
			Low:     rr.Low,
			High:    rr.High,
			Text:    rr.Text,
			Context: rr.Context,
		})
	}

	return rs
}

// writeAudit records the ingestion. Best-effort: audit failure is logged and
// swallowed, never surfaced to the caller.
func (s *Service) writeAudit(ctx context.Context, rp *report.Report, parsingVersion string, resultCount, taskCount int, outcome string) {
	rec := &audit.Record{
		ReportID:        rp.ID,
		ScopeID:         rp.ScopeID,
		ResultCount:     resultCount,
		ReviewTaskCount: taskCount,
		ParsingVersion:  parsingVersion,
		Outcome:         outcome,
	}
	if err := s.audits.Insert(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("report_id", rp.ID.String()).Msg("ingestion audit write failed")
	}
}
