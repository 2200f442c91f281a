package waitlist

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/launchlist/config/router"
	"github.com/akeren/launchlist/internal/log"
	"github.com/akeren/launchlist/internal/models"
	apperrors "github.com/akeren/launchlist/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestRouter(t *testing.T, requestsPerWindow int) (*MockWaitlistRepository, *router.RouterService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)
	mockRepo := NewMockWaitlistRepository(ctrl)

	logger := log.NewLoggerWithJSONOutput()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})

	service := NewWaitlistService(logger, mockRepo)
	rs.MountController(NewWaitlistControllerWithService(service, logger, nil, requestsPerWindow))

	return mockRepo, rs
}

func postWaitlist(rs *router.RouterService, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/waitlist", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)
	return w
}

func TestJoinWaitlistHandler_Created(t *testing.T) {
	mockRepo, rs := newTestRouter(t, 1000)

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoEntry)

	w := postWaitlist(rs, `{"name":"Alice","email":"alice@example.com"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"name":"Alice","email":"alice@example.com"}`, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestJoinWaitlistHandler_RequiredFields(t *testing.T) {
	bodies := []string{
		`{"email":"alice@example.com"}`,
		`{"name":"Alice"}`,
		`{"name":"","email":""}`,
		`{}`,
		`{"email":"not-an-email"}`,
		`[]`,
		`[{"name":"Alice","email":"alice@example.com"}]`,
		`"Alice"`,
		`42`,
		` true `,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, rs := newTestRouter(t, 1000)

			w := postWaitlist(rs, body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Name and email are required"}`, w.Body.String())
		})
	}
}

func TestJoinWaitlistHandler_InvalidEmail(t *testing.T) {
	for _, email := range []string{"foo", "foo@bar", "@bar.com", "a\u00a0b@c.de", "a\u2028b@c.de", "\ufeffa@c.de"} {
		t.Run(email, func(t *testing.T) {
			_, rs := newTestRouter(t, 1000)

			w := postWaitlist(rs, `{"name":"Alice","email":"`+email+`"}`, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid email format"}`, w.Body.String())
		})
	}
}

func TestJoinWaitlistHandler_RepositoryFailure(t *testing.T) {
	mockRepo, rs := newTestRouter(t, 1000)

	mockRepo.EXPECT().
		CreateEntry(gomock.Any(), gomock.Any()).
		Return(nil, apperrors.NewDatabaseError("unable to create waitlist entry", context.DeadlineExceeded))

	w := postWaitlist(rs, `{"name":"Alice","email":"alice@example.com"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to add user"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "deadline")
}

func TestJoinWaitlistHandler_MalformedJSON(t *testing.T) {
	bodies := []string{
		`{"name":"Alice",`,
		`not json`,
		`{"name":42,"email":"alice@example.com"}`,
		``,
		`null`,
		"  null\n",
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			_, rs := newTestRouter(t, 1000)

			w := postWaitlist(rs, body, nil)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"error":"Failed to add user"}`, w.Body.String())
		})
	}
}

func TestJoinWaitlistHandler_ForwardedForIP(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{name: "single hop", header: "198.51.100.4", want: "198.51.100.4"},
		{name: "proxy chain", header: " 198.51.100.4 , 10.0.0.1", want: "198.51.100.4"},
		{name: "absent", header: "", want: "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockRepo, rs := newTestRouter(t, 1000)

			mockRepo.EXPECT().
				CreateEntry(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, entry *models.WaitlistEntry) (*models.WaitlistEntry, error) {
					assert.Equal(t, tc.want, entry.IPAddress)
					return echoEntry(ctx, entry)
				})

			headers := map[string]string{}
			if tc.header != "" {
				headers["X-Forwarded-For"] = tc.header
			}

			w := postWaitlist(rs, `{"name":"Alice","email":"alice@example.com"}`, headers)
			require.Equal(t, http.StatusCreated, w.Code)
		})
	}
}

func TestJoinWaitlistHandler_RateLimited(t *testing.T) {
	mockRepo, rs := newTestRouter(t, 1)

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoEntry).Times(1)

	first := postWaitlist(rs, `{"name":"Alice","email":"alice@example.com"}`, nil)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postWaitlist(rs, `{"name":"Alice","email":"alice@example.com"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestJoinWaitlistHandler_CountsOutcomesOnMetrics(t *testing.T) {
	mockRepo, rs := newTestRouter(t, 1000)

	mockRepo.EXPECT().CreateEntry(gomock.Any(), gomock.Any()).DoAndReturn(echoEntry)

	postWaitlist(rs, `{"name":"Alice","email":"alice@example.com"}`, nil)
	postWaitlist(rs, `{"name":"Alice","email":"nope"}`, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `waitlist_submissions_total{outcome="created"} 1`)
	assert.Contains(t, w.Body.String(), `waitlist_submissions_total{outcome="invalid"} 1`)
}
