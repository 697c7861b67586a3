/**
 * @description
 * This file contains the core business logic for the waitlist-service.
 * The Service turns a raw signup request into a persisted subscriber record:
 * parse the body, check presence, check for an existing record, validate the
 * schema, then write. The storage unique constraint on email is the final
 * authority on duplicates; the lookup only produces the friendlier error in
 * the common case.
 */
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/duckcross/waitlist-service/internal/domain"
	"github.com/duckcross/waitlist-service/internal/store"
)

// Repository defines the interface for database operations that the service needs.
type Repository interface {
	FindSubscriberByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	CreateSubscriber(ctx context.Context, sub *domain.Subscriber) error
	CountSubscribers(ctx context.Context) (int64, error)
}

// Publisher is implemented by types that can publish domain events.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// defaultPublishTimeout bounds how long a signup waits on the event publisher.
const defaultPublishTimeout = 3 * time.Second

// Options configures the server-set values stamped on each record.
type Options struct {
	PrivacyPolicyVersion string
	Exchange             string
	// PublishTimeout defaults to defaultPublishTimeout when zero.
	PublishTimeout time.Duration
}

// Service provides the subscription intake logic.
type Service struct {
	repo      Repository
	publisher Publisher
	validate  *validator.Validate
	opts      Options
	logger    *slog.Logger

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService creates a new intake service. publisher may be nil.
func NewService(repo Repository, publisher Publisher, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		validate:  newValidator(),
		opts:      opts,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.New,
	}
}

// Submit validates a raw signup payload and persists a new subscriber.
func (s *Service) Submit(ctx context.Context, payload []byte, meta domain.RequestMetadata) (*domain.Subscriber, error) {
	fields, err := decodeFields(payload)
	if err != nil {
		return nil, err
	}

	rawEmail := fields["email"]
	if isBlank(rawEmail) {
		return nil, ErrMissingFields
	}

	// Duplicate detection runs ahead of schema validation, so a stored
	// address is reported as a duplicate even if it would no longer validate.
	if email, ok := rawEmail.(string); ok {
		existing, err := s.repo.FindSubscriberByEmail(ctx, email)
		switch {
		case err == nil && existing != nil:
			return nil, ErrDuplicateSubscriber
		case err != nil && !errors.Is(err, store.ErrSubscriberNotFound):
			return nil, fmt.Errorf("looking up subscriber: %w", err)
		}
	}

	form, err := s.validateForm(fields)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscriber{
		ID:                   s.newID(),
		Email:                form.Email,
		Timezone:             form.Timezone,
		Language:             form.Language,
		PrivacyPolicyVersion: s.opts.PrivacyPolicyVersion,
		SubscribedAt:         s.now(),
		IPAddress:            meta.IPAddress,
		UserAgent:            meta.UserAgent,
		Referrer:             meta.Referrer,
	}

	if err := s.repo.CreateSubscriber(ctx, sub); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			s.logger.Warn("unique constraint rejected subscriber insert", "subscriber_id", sub.ID.String())
			return nil, ErrDuplicateSubscriber
		}
		return nil, fmt.Errorf("creating subscriber: %w", err)
	}

	s.logger.Info("subscriber created", "subscriber_id", sub.ID.String())
	s.publishCreated(ctx, sub)
	return sub, nil
}

// Stats reports aggregate numbers about the waitlist.
func (s *Service) Stats(ctx context.Context) (*domain.SubscriberStats, error) {
	count, err := s.repo.CountSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SubscriberStats{TotalSubscribers: count}, nil
}

func (s *Service) validateForm(fields map[string]interface{}) (*domain.SubscribeForm, error) {
	email, ok := fields["email"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: email must be a string", ErrValidationFailed)
	}
	form := &domain.SubscribeForm{Email: email}

	var err error
	if form.Timezone, err = optionalString(fields, "timezone"); err != nil {
		return nil, err
	}
	if form.Language, err = optionalString(fields, "language"); err != nil {
		return nil, err
	}

	if err := s.validate.Struct(form); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}
	return form, nil
}

func (s *Service) publishCreated(ctx context.Context, sub *domain.Subscriber) {
	if s.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, s.opts.PublishTimeout)
	defer cancel()

	event := domain.NewSubscriberCreatedEvent(sub)
	if err := s.publisher.Publish(ctx, s.opts.Exchange, domain.SubscriberCreatedRoutingKey, event); err != nil {
		s.logger.Warn("failed to publish subscriber.created event",
			"subscriber_id", sub.ID.String(),
			"error", err,
		)
	}
}

// decodeFields parses the body as JSON. Any well-formed JSON value is accepted;
// values other than objects simply carry no fields.
func decodeFields(payload []byte) (map[string]interface{}, error) {
	var body interface{}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRequest, err)
	}
	fields, _ := body.(map[string]interface{})
	return fields, nil
}

// isBlank reports whether a decoded JSON value counts as not provided.
func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case float64:
		return val == 0
	default:
		return false
	}
}

func optionalString(fields map[string]interface{}, key string) (*string, error) {
	raw, present := fields[key]
	if !present {
		return nil, nil
	}
	str, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s must be a string", ErrValidationFailed, key)
	}
	return &str, nil
}
