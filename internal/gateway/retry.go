package gateway

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nethalo/indexwright/internal/core"
)

// verboseRetryLogging gates [DEBUG] tracing for every retry attempt; it is
// off by default and flipped on by the gateway's own verbose flag through
// EnableDebugLogging, since WithRetry has no core.Options in scope.
var verboseRetryLogging = false

// EnableDebugLogging turns on [DEBUG] log.Printf tracing for WithRetry,
// mirroring the gateway and cache layers' verbose flag.
func EnableDebugLogging(enabled bool) {
	verboseRetryLogging = enabled
}

const maxConnectionAttempts = 3

// nonTransientSQLStates are SQLSTATE codes that will never succeed on
// retry (the query itself is wrong), mirroring the 42703 short-circuit in
// the teacher's ExecWithRetry.
var nonTransientSQLStates = map[string]bool{
	"42703": true, // undefined_column
	"42P01": true, // undefined_table
	"42601": true, // syntax_error
	"28000": true, // invalid_authorization_specification
	"28P01": true, // invalid_password
}

// transientSQLStatePrefixes classifies SQLSTATE connection-exception and
// admin-shutdown classes as retryable (spec's ConnectionFailure).
var transientSQLStatePrefixes = []string{"08", "57P01", "57P02", "57P03"}

// isConnectionError reports whether err represents a transient gateway
// failure that should be retried, following the teacher's
// pgconn.PgError.Code classification with a string-keyword fallback for
// errors that never reach the wire (dial failures, DNS, timeouts).
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if nonTransientSQLStates[pgErr.Code] {
			return false
		}
		for _, prefix := range transientSQLStatePrefixes {
			if strings.HasPrefix(pgErr.Code, prefix) {
				return true
			}
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range []string{"connection refused", "connection reset", "broken pipe", "no such host", "i/o timeout", "eof"} {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// WithRetry runs fn up to maxConnectionAttempts times, applying an
// exponential backoff between attempts and aborting immediately on a
// non-transient error or context cancellation (spec §7: ConnectionFailure
// "retried with backoff up to three attempts").
func WithRetry(ctx context.Context, stage, sql string, fn func() error) error {
	var lastErr error
	backoff := 100 * time.Millisecond

	for attempt := 1; attempt <= maxConnectionAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isConnectionError(lastErr) {
			return lastErr
		}
		if verboseRetryLogging {
			log.Printf("[DEBUG] %s: attempt %d/%d failed: %v", stage, attempt, maxConnectionAttempts, lastErr)
		}
		if attempt == maxConnectionAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return core.NewError(core.KindConnectionFailure, stage, sql, lastErr.Error(), lastErr)
}
