package repository

import (
	"errors"
	"testing"

	"angebot_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

func uniqueViolation() error {
	return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "quote_versions_quote_id_version_number_key"}
}

func TestRetryOnUniqueViolation_SucceedsAfterConflicts(t *testing.T) {
	calls := 0
	err := retryOnUniqueViolation(versionInsertRetries, func() error {
		calls++
		if calls < 3 {
			return uniqueViolation()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestRetryOnUniqueViolation_ExhaustionIsConflict(t *testing.T) {
	calls := 0
	err := retryOnUniqueViolation(versionInsertRetries, func() error {
		calls++
		return uniqueViolation()
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != versionInsertRetries {
		t.Fatalf("expected %d attempts, got %d", versionInsertRetries, calls)
	}
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict kind, got %v", apperr.GetKind(err))
	}
}

func TestRetryOnUniqueViolation_OtherErrorsDoNotRetry(t *testing.T) {
	boom := errors.New("connection reset")
	calls := 0
	err := retryOnUniqueViolation(versionInsertRetries, func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
}

func TestRetryOnUniqueViolation_NotFoundPassesThrough(t *testing.T) {
	err := retryOnUniqueViolation(versionInsertRetries, func() error {
		return apperr.NotFound(quoteNotFoundMsg)
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found kind, got %v", apperr.GetKind(err))
	}
}
