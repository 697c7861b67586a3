/**
 * @description
 * This file defines the core domain models for the waitlist-service.
 * It includes the Subscriber struct that maps to the subscribers table,
 * the request metadata captured from the transport layer, and the
 * form submitted by the landing page.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Subscriber represents one waitlist signup as stored in the database.
// Records are written once and never updated by this service.
type Subscriber struct {
	ID                   uuid.UUID `json:"id" db:"id"`
	Email                string    `json:"email" db:"email"`
	Timezone             *string   `json:"timezone,omitempty" db:"timezone"`
	Language             *string   `json:"language,omitempty" db:"language"`
	PrivacyPolicyVersion string    `json:"privacy_policy_version" db:"privacy_policy_version"`
	SubscribedAt         time.Time `json:"subscribed_at" db:"subscribed_at"`
	IPAddress            string    `json:"ip_address" db:"ip_address"`
	UserAgent            string    `json:"user_agent" db:"user_agent"`
	Referrer             string    `json:"referrer" db:"referrer"`
}

// RequestMetadata holds the server-derived values extracted from request headers.
// Missing headers are represented by empty strings.
type RequestMetadata struct {
	IPAddress string
	UserAgent string
	Referrer  string
}

// SubscribeForm is the validated shape of a signup request body.
type SubscribeForm struct {
	Email    string  `json:"email" validate:"required,waitlist_email"`
	Timezone *string `json:"timezone,omitempty"`
	Language *string `json:"language,omitempty"`
}

// SubscriberStats is returned to operators by the admin stats endpoint.
type SubscriberStats struct {
	TotalSubscribers int64 `json:"total_subscribers"`
}
