package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/schedule-app/backend/internal/model"
	"github.com/schedule-app/backend/internal/service"
	"github.com/schedule-app/backend/internal/token"
	"github.com/sirupsen/logrus"
)

type memScheduleStore struct {
	events map[string]*model.Event
}

func newMemScheduleStore() *memScheduleStore {
	return &memScheduleStore{events: map[string]*model.Event{}}
}

func (m *memScheduleStore) ListEvents(ctx context.Context, userID string) ([]model.Event, error) {
	var out []model.Event
	for _, e := range m.events {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memScheduleStore) GetEvent(ctx context.Context, userID, eventID string) (*model.Event, error) {
	e, ok := m.events[eventID]
	if !ok || e.UserID != userID {
		return nil, service.ErrEventNotFound
	}
	copied := *e
	return &copied, nil
}

func (m *memScheduleStore) CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	copied := *event
	m.events[event.ID] = &copied
	result := copied
	return &result, nil
}

func (m *memScheduleStore) UpdateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	stored, ok := m.events[event.ID]
	if !ok || stored.UserID != event.UserID {
		return nil, service.ErrEventNotFound
	}
	*stored = *event
	copied := *stored
	return &copied, nil
}

func (m *memScheduleStore) DeleteEvent(ctx context.Context, userID, eventID string) error {
	e, ok := m.events[eventID]
	if !ok || e.UserID != userID {
		return service.ErrEventNotFound
	}
	delete(m.events, eventID)
	return nil
}

func newScheduleRouter(t *testing.T) (*gin.Engine, *token.Codec) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	codec := testCodec(t)
	scheduleService := service.NewScheduleService(newMemScheduleStore(), log)
	scheduleHandler := NewScheduleHandler(scheduleService, log)

	r := gin.New()
	schedule := r.Group("/api/schedule")
	schedule.Use(AuthMiddleware(codec, log))
	{
		schedule.GET("/events", scheduleHandler.ListEvents)
		schedule.POST("/events", scheduleHandler.CreateEvent)
		schedule.GET("/events/:id", scheduleHandler.GetEvent)
		schedule.PUT("/events/:id", scheduleHandler.UpdateEvent)
		schedule.DELETE("/events/:id", scheduleHandler.DeleteEvent)
	}
	return r, codec
}

func bearerFor(t *testing.T, codec *token.Codec, id, username string) string {
	t.Helper()
	signed, _, err := codec.Issue(&model.User{ID: id, Username: username, Email: username + "@b.com"})
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func eventBody(title string) string {
	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(2 * time.Hour).UTC().Format(time.RFC3339)
	return fmt.Sprintf(`{"title":%q,"startsAt":%q,"endsAt":%q}`, title, start, end)
}

func TestScheduleRequiresAuth(t *testing.T) {
	r, _ := newScheduleRouter(t)
	if w := doJSON(r, http.MethodGet, "/api/schedule/events", "", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestScheduleCRUD(t *testing.T) {
	r, codec := newScheduleRouter(t)
	bearer := bearerFor(t, codec, "u1", "cvsu08")

	w := doJSON(r, http.MethodPost, "/api/schedule/events", eventBody("Standup"), bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var created model.EventResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Event.ID == "" {
		t.Fatal("expected an event id")
	}

	w = doJSON(r, http.MethodGet, "/api/schedule/events", "", bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	var listed model.EventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatal(err)
	}
	if listed.Count != 1 {
		t.Fatalf("count = %d", listed.Count)
	}

	w = doJSON(r, http.MethodPut, "/api/schedule/events/"+created.Event.ID, eventBody("Retro"), bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodDelete, "/api/schedule/events/"+created.Event.ID, "", bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/api/schedule/events/"+created.Event.ID, "", bearer)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestScheduleOwnershipIsolation(t *testing.T) {
	r, codec := newScheduleRouter(t)
	owner := bearerFor(t, codec, "u1", "cvsu08")
	other := bearerFor(t, codec, "u2", "other01")

	w := doJSON(r, http.MethodPost, "/api/schedule/events", eventBody("Private"), owner)
	if w.Code != http.StatusOK {
		t.Fatalf("create failed: %d", w.Code)
	}
	var created model.EventResponse
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	if w := doJSON(r, http.MethodGet, "/api/schedule/events/"+created.Event.ID, "", other); w.Code != http.StatusNotFound {
		t.Fatalf("foreign get: expected 404, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/schedule/events", "", other); w.Code != http.StatusOK {
		t.Fatalf("foreign list: expected 200, got %d", w.Code)
	}
}

func TestScheduleValidationResponse(t *testing.T) {
	r, codec := newScheduleRouter(t)
	bearer := bearerFor(t, codec, "u1", "cvsu08")

	start := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	end := time.Now().Add(30 * time.Minute).UTC().Format(time.RFC3339)
	body := fmt.Sprintf(`{"title":"","startsAt":%q,"endsAt":%q}`, start, end)

	w := doJSON(r, http.MethodPost, "/api/schedule/events", body, bearer)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Errors) == 0 {
		t.Fatalf("expected field errors, got %s", w.Body.String())
	}
}
