package store

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsPgUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505", ConstraintName: "subscribers_email_key"}, want: true},
		{name: "wrapped unique violation", err: fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "not null violation", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "plain error", err: errors.New("connection refused"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPgUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("isPgUniqueViolation(%v) = %t, want %t", tt.err, got, tt.want)
			}
		})
	}
}

func TestPostgresQueriesUseDollarPlaceholders(t *testing.T) {
	if strings.Contains(pgSelectSubscriberByEmail, "?") || !strings.Contains(pgSelectSubscriberByEmail, "$1") {
		t.Fatalf("select query not rebound: %s", pgSelectSubscriberByEmail)
	}
	if strings.Contains(pgInsertSubscriber, "?") || !strings.Contains(pgInsertSubscriber, "$9") {
		t.Fatalf("insert query not rebound: %s", pgInsertSubscriber)
	}
}
