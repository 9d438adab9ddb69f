package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/event-calendar-backend/internal/eventstore"
)

type fakeRepo struct {
	mu      sync.Mutex
	entries []AuditLog
	err     error
	filter  AuditLogFilter
}

func (f *fakeRepo) Create(ctx context.Context, log *AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	log.ID = uint(len(f.entries) + 1)
	f.entries = append(f.entries, *log)
	return nil
}

func (f *fakeRepo) GetByFilter(ctx context.Context, filter AuditLogFilter) ([]AuditLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	return f.entries, int64(len(f.entries)), f.err
}

func (f *fakeRepo) GetByID(ctx context.Context, id uint) (*AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, errors.New("record not found")
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func TestService_RecordOutcome(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.RecordOutcome(ctx, eventstore.Outcome{
		RequestID: "r1", Op: eventstore.OpCreate, EventID: "e1", Title: "Team Sync", Origin: "10.0.0.1", Attempts: 1,
	}))
	require.NoError(t, svc.RecordOutcome(ctx, eventstore.Outcome{
		RequestID: "r2", Op: eventstore.OpDelete, EventID: "e2", Attempts: 3, Err: errors.New("unavailable"),
	}))

	require.Len(t, repo.entries, 2)
	ok := repo.entries[0]
	assert.Equal(t, "EVENT_CREATED", ok.Action)
	assert.Equal(t, StatusSuccess, ok.Status)
	assert.Equal(t, "10.0.0.1", ok.IPAddress)
	assert.JSONEq(t, `{"op":"create","title":"Team Sync"}`, string(ok.Details))

	failed := repo.entries[1]
	assert.Equal(t, "EVENT_DELETED", failed.Action)
	assert.Equal(t, StatusFailure, failed.Status)
	assert.Equal(t, 3, failed.Attempts)
	assert.JSONEq(t, `{"op":"delete","error":"unavailable"}`, string(failed.Details))
}

func TestService_WatchRecordsOnlyOutcomes(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)

	ch := make(chan eventstore.Notification, 4)
	ch <- eventstore.Notification{Kind: eventstore.KindSnapshot}
	ch <- eventstore.Notification{Kind: eventstore.KindWriteApplied, Outcome: &eventstore.Outcome{RequestID: "r1", Op: eventstore.OpUpdate}}
	ch <- eventstore.Notification{Kind: eventstore.KindStreamError, Err: errors.New("lost")}
	close(ch)

	done := make(chan struct{})
	go func() {
		svc.Watch(context.Background(), ch)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after the channel closed")
	}
	assert.Equal(t, 1, repo.count())
}

func TestService_WatchSurvivesRepositoryErrors(t *testing.T) {
	repo := &fakeRepo{err: errors.New("db down")}
	svc := NewService(repo)

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan eventstore.Notification, 1)
	ch <- eventstore.Notification{Kind: eventstore.KindWriteFailed, Outcome: &eventstore.Outcome{RequestID: "r1", Op: eventstore.OpCreate, Err: errors.New("x")}}

	done := make(chan struct{})
	go func() {
		svc.Watch(ctx, ch)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not stop on cancel")
	}
}

func TestService_GetAuditLogsPagination(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo)
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.LogAction(context.Background(), "r", "e", "EVENT_UPDATED", nil, "", StatusSuccess, 1))
	}

	page, err := svc.GetAuditLogs(context.Background(), AuditLogFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.JSONEq(t, `{}`, string(repo.entries[0].Details))
}

func TestHandler_GetAuditLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &fakeRepo{}
	svc := NewService(repo)
	require.NoError(t, svc.RecordOutcome(context.Background(), eventstore.Outcome{RequestID: "r1", Op: eventstore.OpCreate, EventID: "e1"}))

	h := NewHandler(svc)
	r := gin.New()
	r.GET("/api/v1/auditlogs", h.GetAuditLogs)
	r.GET("/api/v1/auditlogs/stats", h.GetAuditLogStats)
	r.GET("/api/v1/auditlogs/:id", h.GetAuditLogByID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auditlogs?event_id=e1&status=success&limit=500", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var page PaginatedAuditLogs
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "e1", repo.filter.EventID)
	assert.Equal(t, StatusSuccess, repo.filter.Status)
	assert.Equal(t, 20, repo.filter.Limit)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auditlogs?from_date=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auditlogs/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auditlogs/99", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auditlogs/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success_count":1`)
}
