package oddsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/domain/rawodds"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/platform/resilience"
	"github.com/riskibarqy/propline/internal/usecase"
)

const chiefsBillsJSON = `{
	"eventID": "evt-kc-buf",
	"leagueID": "NFL",
	"status": {"startsAt": "2025-09-08T00:20:00Z"},
	"teams": {
		"home": {"teamID": "KANSAS_CITY_CHIEFS_NFL", "names": {"long": "Kansas City Chiefs", "medium": "Chiefs", "short": "KC"}},
		"away": {"teamID": "BUFFALO_BILLS_NFL", "names": {"long": "Buffalo Bills", "medium": "Bills", "short": "BUF"}}
	},
	"odds": {
		"passing_yards-PATRICK_MAHOMES_1_NFL-game-ou-over": {
			"oddID": "passing_yards-PATRICK_MAHOMES_1_NFL-game-ou-over",
			"playerID": "PATRICK_MAHOMES_1_NFL",
			"statID": "passing_yards",
			"sideID": "over",
			"fairOverUnder": 265.5,
			"bookOverUnder": "265.5",
			"bookOdds": "-110",
			"byBookmaker": {"draftkings": {"odds": -110, "overUnder": "265.5", "available": true}}
		}
	},
	"players": {
		"PATRICK_MAHOMES_1_NFL": {"playerID": "PATRICK_MAHOMES_1_NFL", "name": "Patrick Mahomes", "teamID": "KANSAS_CITY_CHIEFS_NFL"}
	}
}`

func newTestClient(baseURL string, maxRetries int) *Client {
	return NewClient(ClientConfig{
		BaseURL:      baseURL,
		APIKey:       "secret-key",
		Timeout:      2 * time.Second,
		MaxRetries:   maxRetries,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
	})
}

func TestFetchEvents_DecodesEveryEnvelopeShape(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
	}{
		{name: "bare array", body: "[" + chiefsBillsJSON + "]"},
		{name: "data array", body: `{"data":[` + chiefsBillsJSON + `]}`},
		{name: "events array", body: `{"events":[` + chiefsBillsJSON + `]}`},
		{name: "nested events", body: `{"success":true,"data":{"events":[` + chiefsBillsJSON + `]}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			events, err := newTestClient(server.URL, 0).FetchEvents(context.Background(), rawodds.Query{League: "nfl"})
			if err != nil {
				t.Fatalf("fetch events: %v", err)
			}
			if len(events) != 1 {
				t.Fatalf("expected one event, got=%d", len(events))
			}

			event := events[0]
			if event.ID != "evt-kc-buf" || event.League != "NFL" {
				t.Fatalf("unexpected event header: %+v", event)
			}
			if !event.StartsAt.Equal(time.Date(2025, 9, 8, 0, 20, 0, 0, time.UTC)) {
				t.Fatalf("unexpected start time: %s", event.StartsAt)
			}
			if event.Home.Abbreviation != "KC" || event.Away.ShortName != "Bills" {
				t.Fatalf("unexpected teams: home=%+v away=%+v", event.Home, event.Away)
			}

			odd, ok := event.Odds["passing_yards-PATRICK_MAHOMES_1_NFL-game-ou-over"]
			if !ok {
				t.Fatalf("odd missing from event: %+v", event.Odds)
			}
			if odd.FairLine != "265.5" || odd.BookLine != "265.5" || odd.BookOdds != "-110" || odd.Side != "over" {
				t.Fatalf("numeric fields should survive as text: %+v", odd)
			}
			if book := odd.ByBookmaker["draftkings"]; book.Odds != "-110" || !book.Available {
				t.Fatalf("unexpected bookmaker price: %+v", book)
			}
			if meta := event.Players["PATRICK_MAHOMES_1_NFL"]; meta.Name != "Patrick Mahomes" {
				t.Fatalf("unexpected player meta: %+v", meta)
			}
		})
	}
}

func TestFetchEvents_SendsQueryAndKey(t *testing.T) {
	t.Parallel()

	var gotQuery, gotKey, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotKey = r.Header.Get("X-Api-Key")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	after := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	before := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)
	_, err := newTestClient(server.URL, 0).FetchEvents(context.Background(), rawodds.Query{
		League:       "nfl",
		Season:       2025,
		StartsAfter:  &after,
		StartsBefore: &before,
		OddIDs:       []string{"passing_yards", "receptions"},
		Limit:        25,
	})
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}

	if gotPath != "/events" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "secret-key" {
		t.Fatalf("api key header missing, got=%q", gotKey)
	}
	for _, want := range []string{
		"leagueID=NFL",
		"season=2025",
		"startsAfter=2025-08-31T00%3A00%3A00Z",
		"startsBefore=2025-09-14T00%3A00%3A00Z",
		"oddIDs=passing_yards%2Creceptions",
		"limit=25",
	} {
		if !strings.Contains(gotQuery, want) {
			t.Fatalf("query %q is missing %q", gotQuery, want)
		}
	}
}

func TestFetchEvents_FollowsCursor(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("cursor") == "" {
			_, _ = w.Write([]byte(`{"data":[` + chiefsBillsJSON + `],"nextCursor":"page-2"}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[` + strings.Replace(chiefsBillsJSON, "evt-kc-buf", "evt-2", 1) + `]}`))
	}))
	defer server.Close()

	events, err := newTestClient(server.URL, 0).FetchEvents(context.Background(), rawodds.Query{League: "nfl"})
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}
	if calls.Load() != 2 || len(events) != 2 {
		t.Fatalf("expected two pages, calls=%d events=%d", calls.Load(), len(events))
	}
	if events[1].ID != "evt-2" {
		t.Fatalf("unexpected second page event: %s", events[1].ID)
	}
}

func TestFetchEvents_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`upstream down`))
			return
		}
		_, _ = w.Write([]byte("[" + chiefsBillsJSON + "]"))
	}))
	defer server.Close()

	events, err := newTestClient(server.URL, 2).FetchEvents(context.Background(), rawodds.Query{League: "nfl"})
	if err != nil {
		t.Fatalf("fetch events: %v", err)
	}
	if calls.Load() != 3 || len(events) != 1 {
		t.Fatalf("expected success on third attempt, calls=%d events=%d", calls.Load(), len(events))
	}
}

func TestFetchEvents_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 3).FetchEvents(context.Background(), rawodds.Query{League: "nfl"})
	if err == nil {
		t.Fatalf("expected error for 401")
	}
	if errors.Is(err, errTransient) {
		t.Fatalf("4xx should not be transient: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("4xx should not be retried, calls=%d", calls.Load())
	}
}

func TestFetchEvents_ReportedFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"league not available"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 0).FetchEvents(context.Background(), rawodds.Query{League: "nfl"})
	if err == nil || !strings.Contains(err.Error(), "league not available") {
		t.Fatalf("expected reported failure, got %v", err)
	}
}

func TestFetchEvents_OpenBreakerRejects(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{
		BaseURL:      server.URL,
		RetryBackoff: time.Millisecond,
		Logger:       logging.NewNop(),
		CircuitBreaker: resilience.BreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	if _, err := client.FetchEvents(context.Background(), rawodds.Query{League: "nfl"}); !errors.Is(err, errTransient) {
		t.Fatalf("expected transient error on first call, got %v", err)
	}
	_, err := client.FetchEvents(context.Background(), rawodds.Query{League: "nfl"})
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once open, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("open breaker should not reach the server, calls=%d", calls.Load())
	}
}

func TestFlexString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{raw: `"-110"`, want: "-110"},
		{raw: `-110`, want: "-110"},
		{raw: `265.5`, want: "265.5"},
		{raw: `null`, want: ""},
		{raw: `"EVEN"`, want: "EVEN"},
	}
	for _, tc := range cases {
		var got flexString
		if err := got.UnmarshalJSON([]byte(tc.raw)); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if string(got) != tc.want {
			t.Fatalf("raw=%s expected=%q got=%q", tc.raw, tc.want, got)
		}
	}
}

func TestDecodeEventPage_Empty(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "   ", `{}`, `{"data":null}`} {
		page, err := decodeEventPage([]byte(body))
		if err != nil {
			t.Fatalf("decode %q: %v", body, err)
		}
		if page.Kind != kindEmpty || len(page.Events) != 0 {
			t.Fatalf("body %q should decode as empty, got=%+v", body, page)
		}
	}
}
