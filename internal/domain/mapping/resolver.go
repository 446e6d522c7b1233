package mapping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/labfeed/labfeed/internal/platform/suggest"
)

// Resolver runs the short-code resolution chain. Resolve is read-only: the
// only write path into the dictionary is Confirm, which is how the mapping UI
// promotes a resolution into a durable entry.
type Resolver struct {
	entries   EntryRepository
	suggester suggest.CodeSuggester
	logger    zerolog.Logger
}

func NewResolver(entries EntryRepository, suggester suggest.CodeSuggester, logger zerolog.Logger) *Resolver {
	if suggester == nil {
		suggester = suggest.Disabled{}
	}
	return &Resolver{entries: entries, suggester: suggester, logger: logger}
}

// Resolve picks a short code for an analyte name. First match wins:
//
//  1. dictionary entry in the caller's scope
//  2. code already supplied by the extraction payload
//  3. suggestion service answer (always flagged for review)
//  4. deterministic fallback code
//
// A dictionary lookup failure or an unreachable suggestion service falls
// through to the next tier rather than failing the caller; resolution always
// produces a code.
func (r *Resolver) Resolve(ctx context.Context, scopeID uuid.UUID, analyteName, suppliedCode, unit string) Resolution {
	entry, err := r.entries.GetByName(ctx, scopeID, analyteName)
	if err != nil {
		r.logger.Warn().Err(err).Str("analyte", analyteName).Msg("dictionary lookup failed, falling through")
	} else if entry != nil {
		return Resolution{
			ShortCode:      entry.ShortCode,
			Method:         MethodDictionary,
			Confidence:     entry.Confidence,
			RequiresReview: false,
		}
	}

	if code := clampCode(suppliedCode); code != "" {
		return Resolution{
			ShortCode:      code,
			Method:         MethodSourceProvided,
			Confidence:     ConfidenceHigh,
			RequiresReview: false,
		}
	}

	if s, err := r.suggester.SuggestCode(ctx, analyteName, unit); err != nil {
		r.logger.Warn().Err(err).Str("analyte", analyteName).Msg("code suggestion unavailable, falling through")
	} else if s != nil && s.ShortCode != "" {
		return Resolution{
			ShortCode:      clampCode(s.ShortCode),
			Method:         MethodAIGenerated,
			Confidence:     ConfidenceTagFromScore(s.Confidence),
			RequiresReview: true,
		}
	}

	return Resolution{
		ShortCode:      DeterministicShortCode(analyteName),
		Method:         MethodDeterministic,
		Confidence:     ConfidenceLow,
		RequiresReview: true,
	}
}

// Confirm promotes a (name, code) pair into the scope's dictionary. The entry
// is written with method=user-confirmed regardless of how the code was first
// produced, and the confirmation timestamp is refreshed on every call. The
// name does not need a prior entry.
func (r *Resolver) Confirm(ctx context.Context, scopeID uuid.UUID, scopeKind, sourceName, shortCode, confidence string) (*Entry, error) {
	sourceName = strings.TrimSpace(sourceName)
	if sourceName == "" {
		return nil, fmt.Errorf("source name is required")
	}
	shortCode = strings.TrimSpace(shortCode)
	if shortCode == "" {
		return nil, fmt.Errorf("short code is required")
	}
	if len(shortCode) < MinShortCodeLen || len(shortCode) > MaxShortCodeLen {
		return nil, fmt.Errorf("short code must be %d to %d characters, got %d",
			MinShortCodeLen, MaxShortCodeLen, len(shortCode))
	}
	if confidence == "" {
		confidence = ConfidenceHigh
	}

	now := time.Now().UTC()
	entry := &Entry{
		ScopeID:         scopeID,
		ScopeKind:       scopeKind,
		SourceName:      sourceName,
		ShortCode:       shortCode,
		Method:          MethodUserConfirmed,
		Confidence:      confidence,
		LastConfirmedAt: &now,
	}
	if err := r.entries.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("upsert mapping entry: %w", err)
	}
	return entry, nil
}
