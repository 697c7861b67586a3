package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/duckcross/waitlist-service/internal/domain"
)

// SQLiteRepository is the SQLite implementation of Repository, used for local
// development and single-node deployments.
type SQLiteRepository struct {
	db *sqlx.DB
}

// NewSQLiteRepository creates a new SQLiteRepository.
func NewSQLiteRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// FindSubscriberByEmail retrieves the subscriber with exactly this email.
func (r *SQLiteRepository) FindSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	if err := r.db.GetContext(ctx, &sub, selectSubscriberByEmail, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("querying subscriber: %w", err)
	}
	return &sub, nil
}

// CreateSubscriber inserts a new subscriber record.
func (r *SQLiteRepository) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	_, err := r.db.ExecContext(ctx, insertSubscriber,
		sub.ID,
		sub.Email,
		sub.Timezone,
		sub.Language,
		sub.PrivacyPolicyVersion,
		sub.SubscribedAt,
		sub.IPAddress,
		sub.UserAgent,
		sub.Referrer,
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting subscriber: %w", err)
	}
	return nil
}

// CountSubscribers returns the total number of stored subscribers.
func (r *SQLiteRepository) CountSubscribers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, countSubscribers); err != nil {
		return 0, fmt.Errorf("counting subscribers: %w", err)
	}
	return count, nil
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
		strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
}
