package domain

import "time"

const (
	// SubscriberCreatedRoutingKey is the routing key used when a new subscriber is persisted.
	SubscriberCreatedRoutingKey = "subscriber.created"
)

// SubscriberCreatedEvent is published after a subscriber record has been written.
type SubscriberCreatedEvent struct {
	SubscriberID         string    `json:"subscriber_id"`
	Email                string    `json:"email"`
	Timezone             string    `json:"timezone,omitempty"`
	Language             string    `json:"language,omitempty"`
	PrivacyPolicyVersion string    `json:"privacy_policy_version"`
	SubscribedAt         time.Time `json:"subscribed_at"`
}

// NewSubscriberCreatedEvent builds the event payload for a persisted subscriber.
func NewSubscriberCreatedEvent(sub *Subscriber) SubscriberCreatedEvent {
	event := SubscriberCreatedEvent{
		SubscriberID:         sub.ID.String(),
		Email:                sub.Email,
		PrivacyPolicyVersion: sub.PrivacyPolicyVersion,
		SubscribedAt:         sub.SubscribedAt,
	}
	if sub.Timezone != nil {
		event.Timezone = *sub.Timezone
	}
	if sub.Language != nil {
		event.Language = *sub.Language
	}
	return event
}
