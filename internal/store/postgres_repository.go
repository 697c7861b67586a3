package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duckcross/waitlist-service/internal/domain"
)

// pgUniqueViolation is the SQLSTATE raised when a unique constraint rejects a write.
const pgUniqueViolation = "23505"

// PostgresRepository is the PostgreSQL implementation of Repository.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindSubscriberByEmail retrieves the subscriber with exactly this email.
func (r *PostgresRepository) FindSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var sub domain.Subscriber
	err := r.db.QueryRow(ctx, pgSelectSubscriberByEmail, email).Scan(
		&sub.ID,
		&sub.Email,
		&sub.Timezone,
		&sub.Language,
		&sub.PrivacyPolicyVersion,
		&sub.SubscribedAt,
		&sub.IPAddress,
		&sub.UserAgent,
		&sub.Referrer,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("querying subscriber: %w", err)
	}
	return &sub, nil
}

// CreateSubscriber inserts a new subscriber record.
func (r *PostgresRepository) CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error {
	_, err := r.db.Exec(ctx, pgInsertSubscriber,
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
		if isPgUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("inserting subscriber: %w", err)
	}
	return nil
}

// CountSubscribers returns the total number of stored subscribers.
func (r *PostgresRepository) CountSubscribers(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countSubscribers).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting subscribers: %w", err)
	}
	return count, nil
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
