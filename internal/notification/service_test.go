package notification

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharath018/event-calendar-backend/internal/collection"
	"github.com/sharath018/event-calendar-backend/internal/event"
	"github.com/sharath018/event-calendar-backend/internal/eventstore"
	"github.com/sharath018/event-calendar-backend/middleware"
)

type fakeChannel struct {
	name string
	err  error

	mu   sync.Mutex
	sent []Change
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, change Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, change)
	return f.err
}

func (f *fakeChannel) changes() []Change {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Change(nil), f.sent...)
}

type fakeMessenger struct {
	messages []*messaging.Message
	err      error
}

func (f *fakeMessenger) Send(_ context.Context, m *messaging.Message) (string, error) {
	f.messages = append(f.messages, m)
	return "projects/demo/messages/1", f.err
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func applied(op eventstore.Op, id string) eventstore.Notification {
	return eventstore.Notification{
		Kind: eventstore.KindWriteApplied,
		Outcome: &eventstore.Outcome{
			RequestID: "req-" + id,
			Op:        op,
			EventID:   id,
			Origin:    "10.0.0.1",
			Attempts:  1,
		},
	}
}

func snapshot(events ...event.Event) eventstore.Notification {
	return eventstore.Notification{Kind: eventstore.KindSnapshot, Events: events}
}

func TestWatch_PublishesAppliedWritesWithTitles(t *testing.T) {
	fcm := &fakeChannel{name: "fcm"}
	feed := &fakeChannel{name: "kafka"}
	svc := NewService(fcm, feed)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	ch := make(chan eventstore.Notification, 8)
	ch <- snapshot(event.Event{ID: "a", Title: "Team Sync"})
	ch <- applied(eventstore.OpCreate, "a")
	ch <- eventstore.Notification{Kind: eventstore.KindWriteFailed, Outcome: &eventstore.Outcome{Op: eventstore.OpUpdate, EventID: "a", Err: errors.New("boom")}}
	ch <- eventstore.Notification{Kind: eventstore.KindStreamError, Err: errors.New("stream")}
	close(ch)

	svc.Watch(context.Background(), ch)

	require.Len(t, fcm.changes(), 1)
	require.Len(t, feed.changes(), 1)
	got := fcm.changes()[0]
	assert.Equal(t, "EVENT_CREATED", got.Action)
	assert.Equal(t, "Team Sync", got.Title)
	assert.Equal(t, "10.0.0.1", got.Origin)
	assert.Equal(t, "Event added: Team Sync", got.Body())
}

func TestWatch_DeleteKeepsTitleFromPreviousSnapshot(t *testing.T) {
	ch := &fakeChannel{name: "fcm"}
	svc := NewService(ch)

	notes := make(chan eventstore.Notification, 4)
	notes <- snapshot(event.Event{ID: "a", Title: "Team Sync"})
	notes <- snapshot()
	notes <- applied(eventstore.OpDelete, "a")
	close(notes)

	svc.Watch(context.Background(), notes)

	require.Len(t, ch.changes(), 1)
	assert.Equal(t, "Team Sync", ch.changes()[0].Title)
	assert.Equal(t, "Event deleted: Team Sync", ch.changes()[0].Body())
}

func TestWatch_NamesCreateBeforeItsSnapshot(t *testing.T) {
	fcm := &fakeChannel{name: "fcm"}
	svc := NewService(fcm)

	store := eventstore.New(collection.NewMemory())
	notes, cancelNotes := store.Subscribe()
	defer cancelNotes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		svc.Watch(ctx, notes)
		close(done)
	}()

	require.NoError(t, store.Start(ctx))
	require.Eventually(t, func() bool { return !store.Loading() }, time.Second, 5*time.Millisecond)

	_, err := store.AddEvent(middleware.WithClientIP(ctx, "10.0.0.9"), event.Fields{Title: "Team Sync", Start: "2024-06-10"})
	require.NoError(t, err)
	store.Wait()

	require.Eventually(t, func() bool { return len(fcm.changes()) == 1 }, time.Second, 5*time.Millisecond)
	got := fcm.changes()[0]
	assert.Equal(t, "EVENT_CREATED", got.Action)
	assert.Equal(t, "Team Sync", got.Title)
	assert.Equal(t, "10.0.0.9", got.Origin)
	assert.Equal(t, "Event added: Team Sync", got.Body())

	store.Stop()
	<-done
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	svc := NewService()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Watch(ctx, make(chan eventstore.Notification))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestPublish_FailingChannelDoesNotStopOthers(t *testing.T) {
	broken := &fakeChannel{name: "fcm", err: errors.New("unavailable")}
	ok := &fakeChannel{name: "kafka"}
	svc := NewService(broken, ok)

	svc.Publish(context.Background(), Change{RequestID: "r1", Action: "EVENT_UPDATED", EventID: "a"})

	assert.Len(t, broken.changes(), 1)
	assert.Len(t, ok.changes(), 1)
	assert.Len(t, svc.Recent(0), 1)
}

func TestRecent_NewestFirstAndBounded(t *testing.T) {
	svc := NewService()
	svc.limit = 3
	for _, id := range []string{"a", "b", "c", "d"} {
		svc.Publish(context.Background(), Change{EventID: id})
	}

	all := svc.Recent(0)
	require.Len(t, all, 3)
	assert.Equal(t, "d", all[0].EventID)
	assert.Equal(t, "b", all[2].EventID)

	assert.Len(t, svc.Recent(2), 2)
}

func TestFCMChannel_SendsTopicMessage(t *testing.T) {
	client := &fakeMessenger{}
	ch := NewFCMChannel(client, "calendar")

	err := ch.Send(context.Background(), Change{RequestID: "r1", Action: "EVENT_UPDATED", EventID: "a", Title: "Standup"})
	require.NoError(t, err)

	require.Len(t, client.messages, 1)
	msg := client.messages[0]
	assert.Equal(t, "calendar", msg.Topic)
	assert.Equal(t, "Event updated", msg.Notification.Title)
	assert.Equal(t, "Event updated: Standup", msg.Notification.Body)
	assert.Equal(t, "a", msg.Data["event_id"])
}

func TestFCMChannel_Errors(t *testing.T) {
	err := NewFCMChannel(nil, "calendar").Send(context.Background(), Change{})
	assert.Error(t, err)

	client := &fakeMessenger{err: errors.New("quota")}
	err = NewFCMChannel(client, "calendar").Send(context.Background(), Change{})
	assert.ErrorContains(t, err, "quota")
}

func TestKafkaChannel_KeysByEventID(t *testing.T) {
	w := &fakeWriter{}
	ch := NewKafkaChannel(w)
	change := Change{RequestID: "r1", Action: "EVENT_CREATED", EventID: "evt-1", Title: "Team Sync"}

	require.NoError(t, ch.Send(context.Background(), change))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "evt-1", string(w.msgs[0].Key))

	var decoded Change
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "Team Sync", decoded.Title)
	assert.Equal(t, "EVENT_CREATED", string(w.msgs[0].Headers[0].Value))

	w.err = errors.New("leader not available")
	assert.Error(t, ch.Send(context.Background(), change))
}

func TestHandler_GetRecent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewService(&fakeChannel{name: "kafka"})
	svc.Publish(context.Background(), Change{EventID: "a"})
	svc.Publish(context.Background(), Change{EventID: "b"})

	r := gin.New()
	r.GET("/api/v1/notifications/recent", NewHandler(svc).GetRecent)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/recent?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp RecentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"kafka"}, resp.Channels)
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "b", resp.Changes[0].EventID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/notifications/recent?limit=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
