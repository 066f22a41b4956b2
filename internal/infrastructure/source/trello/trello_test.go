package trello_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/sprintlens/sprintlens/internal/infrastructure/source/trello"
)

const cardsJSON = `[
  {"id": "c1", "name": "Implement login", "idList": "l1",
   "due": "2025-04-01T12:00:00.000Z", "dueComplete": false,
   "labels": [{"name": "Blocker", "color": "red"}],
   "idMembers": ["m1"],
   "actions": [{"id": "a1", "type": "commentCard", "date": "2025-03-20T10:00:00.000Z",
                "data": {"text": "waiting on API keys"}}],
   "attachments": [{"name": "spec.pdf", "url": "https://example.com/spec.pdf"}]},
  {"id": "c2", "name": "Ship dashboard", "idList": "l2", "dueComplete": true}
]`

const listsJSON = `[
  {"id": "l1", "name": "In Progress", "closed": false, "pos": 1},
  {"id": "l2", "name": "Done", "closed": false, "pos": 2}
]`

const membersJSON = `[
  {"id": "m1", "fullName": "Alice Johnson", "username": "alice"}
]`

// newBoardServer serves the three board endpoints and records the query
// of every request by path suffix.
func newBoardServer(t *testing.T, queries map[string]url.Values) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/cards"):
			queries["cards"] = r.URL.Query()
			fmt.Fprint(w, cardsJSON)
		case strings.HasSuffix(r.URL.Path, "/lists"):
			queries["lists"] = r.URL.Query()
			fmt.Fprint(w, listsJSON)
		case strings.HasSuffix(r.URL.Path, "/members"):
			queries["members"] = r.URL.Query()
			fmt.Fprint(w, membersJSON)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClient_Fetch(t *testing.T) {
	queries := map[string]url.Values{}
	srv := newBoardServer(t, queries)
	defer srv.Close()

	client := trello.New(trello.Config{
		APIKey:   "key-1",
		APIToken: "token-1",
		BoardID:  "b1",
		BaseURL:  srv.URL,
	}, nil)

	snap, err := client.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if snap.BoardID != "b1" {
		t.Errorf("BoardID = %q, want b1", snap.BoardID)
	}
	if snap.Status != "success" {
		t.Errorf("Status = %q, want success", snap.Status)
	}
	if snap.Timestamp <= 0 {
		t.Errorf("Timestamp = %v, want > 0", snap.Timestamp)
	}
	if len(snap.Cards) != 2 || len(snap.Lists) != 2 || len(snap.Members) != 1 {
		t.Fatalf("got %d cards, %d lists, %d members",
			len(snap.Cards), len(snap.Lists), len(snap.Members))
	}

	card := snap.Cards[0]
	if card.Labels[0].Color != "red" {
		t.Errorf("label color = %q, want red", card.Labels[0].Color)
	}
	if card.Actions[0].Data.Text != "waiting on API keys" {
		t.Errorf("comment text = %q", card.Actions[0].Data.Text)
	}
	if card.Attachments[0].Name != "spec.pdf" {
		t.Errorf("attachment name = %q", card.Attachments[0].Name)
	}
	if snap.Members[0].FullName != "Alice Johnson" {
		t.Errorf("member name = %q", snap.Members[0].FullName)
	}
}

func TestClient_Fetch_QueryParameters(t *testing.T) {
	queries := map[string]url.Values{}
	srv := newBoardServer(t, queries)
	defer srv.Close()

	client := trello.New(trello.Config{
		APIKey:   "key-1",
		APIToken: "token-1",
		BoardID:  "b1",
		BaseURL:  srv.URL,
	}, nil)

	if _, err := client.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	for _, endpoint := range []string{"cards", "lists", "members"} {
		q := queries[endpoint]
		if q.Get("key") != "key-1" || q.Get("token") != "token-1" {
			t.Errorf("%s: credentials missing from query %v", endpoint, q)
		}
	}

	cards := queries["cards"]
	if got := cards.Get("fields"); !strings.Contains(got, "dueComplete") {
		t.Errorf("cards fields = %q, want dueComplete included", got)
	}
	if cards.Get("attachments") != "true" || cards.Get("actions") != "commentCard" {
		t.Errorf("cards query = %v, want attachments and comment actions", cards)
	}
	if got := queries["lists"].Get("fields"); got != "name,closed,pos" {
		t.Errorf("lists fields = %q", got)
	}
	if got := queries["members"].Get("fields"); got != "fullName,username,avatarUrl" {
		t.Errorf("members fields = %q", got)
	}
}

func TestClient_Fetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "invalid key")
	}))
	defer srv.Close()

	client := trello.New(trello.Config{
		APIKey:   "bad",
		APIToken: "bad",
		BoardID:  "b1",
		BaseURL:  srv.URL,
	}, nil)

	_, err := client.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch succeeded with rejected credentials")
	}
	if !strings.Contains(err.Error(), "trello API error (401)") {
		t.Errorf("error = %q, want status code surfaced", err)
	}
	if !strings.Contains(err.Error(), "invalid key") {
		t.Errorf("error = %q, want response body surfaced", err)
	}
}

func TestClient_Fetch_MissingCredentials(t *testing.T) {
	client := trello.New(trello.Config{BoardID: "b1"}, nil)

	_, err := client.Fetch(context.Background())
	if !errors.Is(err, trello.ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestClient_Name(t *testing.T) {
	if got := trello.New(trello.Config{}, nil).Name(); got != "trello" {
		t.Errorf("Name() = %q", got)
	}
}
