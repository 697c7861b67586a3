/**
 * @description
 * This file implements the data access layer for the waitlist-service.
 * Both repository implementations expose the same contract: find a subscriber
 * by exact email, and create a subscriber, failing with ErrDuplicateEmail when
 * the unique constraint on email rejects the write.
 */
package store

import (
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	// ErrSubscriberNotFound is returned when no record matches the lookup.
	ErrSubscriberNotFound = errors.New("subscriber not found")
	// ErrDuplicateEmail is returned when the email unique constraint rejects an insert.
	ErrDuplicateEmail = errors.New("subscriber email already exists")
)

// Queries are written with '?' bind variables and rebound per driver.
const (
	selectSubscriberByEmail = `
        SELECT id, email, timezone, language, privacy_policy_version, subscribed_at, ip_address, user_agent, referrer
        FROM subscribers
        WHERE email = ?
    `
	insertSubscriber = `
        INSERT INTO subscribers (id, email, timezone, language, privacy_policy_version, subscribed_at, ip_address, user_agent, referrer)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	countSubscribers = `SELECT COUNT(*) FROM subscribers`
)

var (
	pgSelectSubscriberByEmail = sqlx.Rebind(sqlx.DOLLAR, selectSubscriberByEmail)
	pgInsertSubscriber        = sqlx.Rebind(sqlx.DOLLAR, insertSubscriber)
)
