package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duckcross/waitlist-service/internal/app"
	"github.com/duckcross/waitlist-service/internal/store"
)

func newSQLiteRouter(t *testing.T) (http.Handler, *store.SQLiteRepository) {
	t.Helper()

	db, err := store.NewSQLiteDB(filepath.Join(t.TempDir(), "waitlist.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.MigrateSQLite(db))

	repo := store.NewSQLiteRepository(db)
	service := app.NewService(repo, nil, app.Options{PrivacyPolicyVersion: "25w29a", Exchange: "waitlist_events"}, discardLogger())
	return NewRouter(NewHandler(service, discardLogger()), RouterOptions{AllowedOrigins: []string{"https://*"}}), repo
}

func postSubscribe(router http.Handler, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestSubscribeEndToEnd(t *testing.T) {
	router, repo := newSQLiteRouter(t)
	ctx := context.Background()
	headers := map[string]string{
		"X-Forwarded-For": "203.0.113.5",
		"User-Agent":      "TestAgent/1.0",
		"Referer":         "https://example.com",
	}

	rec := postSubscribe(router, `{"email":"a@example.com","timezone":"America/New_York","language":"en-US"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Subscribed successfully"}`, rec.Body.String())

	rec = postSubscribe(router, `{"email":"a@example.com"}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email is already in mailing list"}`, rec.Body.String())

	sub, err := repo.FindSubscriberByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.5", sub.IPAddress)
	assert.Equal(t, "TestAgent/1.0", sub.UserAgent)
	assert.Equal(t, "https://example.com", sub.Referrer)
	assert.Equal(t, "25w29a", sub.PrivacyPolicyVersion)
	assert.False(t, sub.SubscribedAt.IsZero())
	require.NotNil(t, sub.Timezone)
	assert.Equal(t, "America/New_York", *sub.Timezone)

	count, err := repo.CountSubscribers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSubscribeEndToEndFailuresWriteNothing(t *testing.T) {
	router, repo := newSQLiteRouter(t)

	tests := []struct {
		body     string
		wantText string
	}{
		{body: `{`, wantText: `{"error":"Missing or invalid request body"}`},
		{body: `{}`, wantText: `{"error":"Missing fields"}`},
		{body: `{"email":"not-an-email"}`, wantText: `{"error":"One or more fields failed validation"}`},
		{body: `{"email":"a@b"}`, wantText: `{"error":"One or more fields failed validation"}`},
		{body: `{"email":"a@example.com."}`, wantText: `{"error":"One or more fields failed validation"}`},
		{body: `{"email":"a@example.com","timezone":42}`, wantText: `{"error":"One or more fields failed validation"}`},
	}

	for i := 0; i < 3; i++ {
		for _, tt := range tests {
			rec := postSubscribe(router, tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code, tt.body)
			assert.JSONEq(t, tt.wantText, rec.Body.String(), tt.body)
		}
	}

	count, err := repo.CountSubscribers(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestSubscribePreflight(t *testing.T) {
	router, _ := newSQLiteRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/subscribe", nil)
	req.Header.Set("Origin", "https://duckcross.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://duckcross.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
