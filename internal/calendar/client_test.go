package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/teemow/gcalendar-mcp/internal/google"
	"github.com/teemow/gcalendar-mcp/internal/toolerr"
)

// fakeAPI is an in-memory stand-in for the Calendar REST API. It records the
// last request so tests can assert on what the client sent.
type fakeAPI struct {
	mu       sync.Mutex
	lastPath string
	lastQ    url.Values
	lastBody map[string]any
	lastAuth string
	deleted  map[string]bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	api := &fakeAPI{deleted: map[string]bool{}}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /calendar/v3/users/me/calendarList", api.record(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": "primary@example.com", "summary": "Me", "primary": true},
			{"id": "team@example.com", "summary": "Team"},
		}})
	}))
	mux.HandleFunc("GET /calendar/v3/calendars/{calendarId}", api.record(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"id": r.PathValue("calendarId"), "summary": "Work", "timeZone": "America/Chicago"})
	}))
	mux.HandleFunc("GET /calendar/v3/calendars/{calendarId}/events", api.record(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("calendarId") == "empty" {
			writeJSON(w, map[string]any{"kind": "calendar#events"})
			return
		}
		writeJSON(w, map[string]any{"items": []map[string]any{
			{"id": "ev1", "summary": "Standup"},
			{"id": "ev2", "summary": "Retro"},
		}})
	}))
	mux.HandleFunc("GET /calendar/v3/calendars/{calendarId}/events/{eventId}", api.record(func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("eventId") == "missing" {
			writeNotFound(w)
			return
		}
		writeJSON(w, map[string]any{"id": r.PathValue("eventId"), "summary": "Standup"})
	}))
	mux.HandleFunc("POST /calendar/v3/calendars/{calendarId}/events", api.record(func(w http.ResponseWriter, r *http.Request) {
		body := api.body()
		body["id"] = "created-1"
		writeJSON(w, body)
	}))
	mux.HandleFunc("PATCH /calendar/v3/calendars/{calendarId}/events/{eventId}", api.record(func(w http.ResponseWriter, r *http.Request) {
		body := api.body()
		body["id"] = r.PathValue("eventId")
		writeJSON(w, body)
	}))
	mux.HandleFunc("DELETE /calendar/v3/calendars/{calendarId}/events/{eventId}", api.record(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		defer api.mu.Unlock()
		id := r.PathValue("eventId")
		if api.deleted[id] {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusGone)
			_, _ = io.WriteString(w, `{"error":{"code":410,"message":"Resource has been deleted","errors":[{"reason":"deleted","message":"Resource has been deleted"}]}}`)
			return
		}
		api.deleted[id] = true
		w.WriteHeader(http.StatusNoContent)
	}))
	mux.HandleFunc("GET /calendar/v3/colors", api.record(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"kind":     "calendar#colors",
			"calendar": map[string]any{"1": map[string]any{"background": "#ac725e", "foreground": "#1d1d1d"}},
			"event":    map[string]any{"1": map[string]any{"background": "#a4bdfc", "foreground": "#1d1d1d"}},
		})
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) record(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			if len(raw) > 0 {
				_ = json.Unmarshal(raw, &body)
			}
		}
		a.mu.Lock()
		a.lastPath = r.URL.Path
		a.lastQ = r.URL.Query()
		a.lastBody = body
		a.lastAuth = r.Header.Get("Authorization")
		a.mu.Unlock()
		next(w, r)
	}
}

func (a *fakeAPI) body() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := map[string]any{}
	for k, v := range a.lastBody {
		out[k] = v
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, `{"error":{"code":404,"message":"Not Found","errors":[{"reason":"notFound","message":"Not Found"}]}}`)
}

func newTestClient(t *testing.T) (*Client, *fakeAPI) {
	t.Helper()
	api, srv := newFakeAPI(t)
	tokens := google.StaticTokenProvider{Token: &oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}}
	client, err := NewClient(tokens, WithEndpoint(srv.URL+"/calendar/v3/"))
	require.NoError(t, err)
	return client, api
}

func TestNewClient_NilProvider(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)
}

func TestClient_ListCalendars(t *testing.T) {
	client, api := newTestClient(t)

	calendars, err := client.ListCalendars(context.Background())
	require.NoError(t, err)
	require.Len(t, calendars, 2)
	assert.Equal(t, "primary@example.com", calendars[0].Id)
	assert.True(t, calendars[0].Primary)
	assert.Equal(t, "Bearer test-token", api.lastAuth)
}

func TestClient_GetCalendar(t *testing.T) {
	client, api := newTestClient(t)

	cal, err := client.GetCalendar(context.Background(), "work@example.com")
	require.NoError(t, err)
	assert.Equal(t, "work@example.com", cal.Id)
	assert.Equal(t, "/calendar/v3/calendars/work@example.com", api.lastPath)
}

func TestClient_ListEvents(t *testing.T) {
	t.Run("bounds omitted when absent", func(t *testing.T) {
		client, api := newTestClient(t)

		events, err := client.ListEvents(context.Background(), EventQuery{CalendarID: PrimaryCalendar, MaxResults: 10})
		require.NoError(t, err)
		assert.Len(t, events, 2)

		assert.Equal(t, "true", api.lastQ.Get("singleEvents"))
		assert.Equal(t, "startTime", api.lastQ.Get("orderBy"))
		assert.Equal(t, "10", api.lastQ.Get("maxResults"))
		assert.False(t, api.lastQ.Has("timeMin"))
		assert.False(t, api.lastQ.Has("timeMax"))
	})

	t.Run("bounds sent when supplied", func(t *testing.T) {
		client, api := newTestClient(t)

		_, err := client.ListEvents(context.Background(), EventQuery{
			CalendarID: PrimaryCalendar,
			TimeMin:    "2024-01-01T00:00:00Z",
			TimeMax:    "2024-01-31T23:59:59Z",
			MaxResults: 5,
		})
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01T00:00:00Z", api.lastQ.Get("timeMin"))
		assert.Equal(t, "2024-01-31T23:59:59Z", api.lastQ.Get("timeMax"))
		assert.Equal(t, "5", api.lastQ.Get("maxResults"))
	})

	t.Run("no items yields empty slice", func(t *testing.T) {
		client, _ := newTestClient(t)

		events, err := client.ListEvents(context.Background(), EventQuery{CalendarID: "empty", MaxResults: 10})
		require.NoError(t, err)
		assert.NotNil(t, events)
		assert.Empty(t, events)
	})
}

func TestClient_GetEvent_NotFound(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetEvent(context.Background(), PrimaryCalendar, "missing")
	require.Error(t, err)
	assert.Equal(t, toolerr.UpstreamFailure, toolerr.KindOf(err))
	assert.Equal(t, "failed to get event: Not Found (HTTP 404)", err.Error())
}

func TestClient_CreateEvent(t *testing.T) {
	client, api := newTestClient(t)

	created, err := client.CreateEvent(context.Background(), EventSpec{
		CalendarID: PrimaryCalendar,
		Summary:    "Standup",
		Start:      "2024-01-01T09:00:00",
		End:        "2024-01-01T09:15:00",
		TimeZone:   "America/Chicago",
		Attendees:  []string{"a@example.com", "b@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "created-1", created.Id)
	assert.Equal(t, "/calendar/v3/calendars/primary/events", api.lastPath)

	body := api.lastBody
	assert.Equal(t, "Standup", body["summary"])
	assert.Equal(t, map[string]any{"dateTime": "2024-01-01T09:00:00", "timeZone": "America/Chicago"}, body["start"])
	assert.Equal(t, map[string]any{"dateTime": "2024-01-01T09:15:00", "timeZone": "America/Chicago"}, body["end"])
	assert.Equal(t, []any{
		map[string]any{"email": "a@example.com"},
		map[string]any{"email": "b@example.com"},
	}, body["attendees"])
	assert.NotContains(t, body, "location")
	assert.NotContains(t, body, "description")
}

func TestClient_UpdateEvent_SendsOnlyPresentFields(t *testing.T) {
	client, api := newTestClient(t)

	summary := "Renamed"
	start := "2024-01-02T10:00:00"
	_, err := client.UpdateEvent(context.Background(), EventPatch{
		CalendarID: PrimaryCalendar,
		EventID:    "ev1",
		Summary:    &summary,
		Start:      &start,
		TimeZone:   "Europe/Berlin",
	})
	require.NoError(t, err)

	assert.Equal(t, "/calendar/v3/calendars/primary/events/ev1", api.lastPath)
	assert.Equal(t, map[string]any{
		"summary": "Renamed",
		"start":   map[string]any{"dateTime": "2024-01-02T10:00:00", "timeZone": "Europe/Berlin"},
	}, api.lastBody)
}

func TestClient_UpdateEvent_ClearsAttendees(t *testing.T) {
	client, api := newTestClient(t)

	_, err := client.UpdateEvent(context.Background(), EventPatch{
		CalendarID: PrimaryCalendar,
		EventID:    "ev1",
		Attendees:  []string{},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"attendees": []any{}}, api.lastBody)
}

func TestClient_DeleteEvent(t *testing.T) {
	client, api := newTestClient(t)

	err := client.DeleteEvent(context.Background(), PrimaryCalendar, "ev1", SendUpdatesAll)
	require.NoError(t, err)
	assert.Equal(t, "all", api.lastQ.Get("sendUpdates"))

	err = client.DeleteEvent(context.Background(), PrimaryCalendar, "ev1", SendUpdatesAll)
	require.Error(t, err, "second delete must surface the upstream failure")
	assert.Equal(t, toolerr.UpstreamFailure, toolerr.KindOf(err))
	assert.Contains(t, err.Error(), "Resource has been deleted")
}

func TestClient_ListColors(t *testing.T) {
	client, _ := newTestClient(t)

	colors, err := client.ListColors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#ac725e", colors.Calendar["1"].Background)
	assert.Equal(t, "#a4bdfc", colors.Event["1"].Background)
}

func TestClient_TokenFailureSkipsAPI(t *testing.T) {
	api, srv := newFakeAPI(t)
	tokenErr := toolerr.New(toolerr.AuthFailure, "failed to refresh access token")
	client, err := NewClient(google.StaticTokenProvider{Err: tokenErr}, WithEndpoint(srv.URL+"/calendar/v3/"))
	require.NoError(t, err)

	_, err = client.ListColors(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, toolerr.ErrAuthFailure))
	assert.Empty(t, api.lastPath)
}

func TestClient_CancelledContext(t *testing.T) {
	client, _ := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetEvent(ctx, PrimaryCalendar, "ev1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, toolerr.UpstreamFailure, toolerr.KindOf(err))
}
