/**
 * @description
 * This package provides a client for the waitlist-service signup endpoint.
 * It submits the same payload as the landing page form and resolves error
 * responses into the messages shown to end users.
 */
package waitlistclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultLanguage is the locale the landing page reports for every signup.
const DefaultLanguage = "en-US"

const duplicatePhrase = "Email is already in mailing list"

// SubscribeRequest is the body posted to /subscribe.
type SubscribeRequest struct {
	Email    string `json:"email"`
	Timezone string `json:"timezone,omitempty"`
	Language string `json:"language,omitempty"`
}

// APIError is returned when the service responds with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("waitlist service returned status %d: %s", e.StatusCode, e.Message)
}

// IsDuplicate reports whether the service rejected the email as already subscribed.
func (e *APIError) IsDuplicate() bool {
	return strings.Contains(e.Message, duplicatePhrase)
}

// UserMessage returns the text to show an end user for this error.
func (e *APIError) UserMessage() string {
	if e.IsDuplicate() {
		return "This email is already in the mailing list."
	}
	return e.Message
}

// Client provides methods to interact with the waitlist service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new waitlist service client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Subscribe posts a signup. Language defaults to DefaultLanguage and Timezone
// to the local IANA zone name when they are not set.
func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) error {
	if req.Language == "" {
		req.Language = DefaultLanguage
	}
	if req.Timezone == "" {
		req.Timezone = localTimezone()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscribe", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call waitlist service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &payload); err != nil || payload.Error == "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    "An unexpected error has occurred. Please try again later.",
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: payload.Error}
}

func localTimezone() string {
	name := time.Local.String()
	if name == "Local" {
		return ""
	}
	return name
}
