package jira_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sprintlens/sprintlens/internal/infrastructure/source/jira"
	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

const searchJSON = `{
  "startAt": 0, "maxResults": 100, "total": 2,
  "issues": [
    {"id": "10101", "key": "SL-1",
     "fields": {
       "summary": "Write docs",
       "status": {"id": "10000", "name": "To Do", "statusCategory": {"key": "new"}},
       "duedate": "2025-04-01",
       "labels": ["blocker"]}},
    {"id": "10102", "key": "SL-2",
     "fields": {
       "summary": "Release v1",
       "status": {"id": "10002", "name": "Done", "statusCategory": {"key": "done"}},
       "assignee": {"accountId": "acc-7", "displayName": "Bob Smith"},
       "updated": "2025-03-20T10:00:00.000+0000"}}
  ]
}`

type recordedSearch struct {
	auth string
	jql  string
}

func newJiraServer(t *testing.T, rec *recordedSearch) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/rest/api/3/search" {
			http.NotFound(w, r)
			return
		}
		rec.auth = r.Header.Get("Authorization")

		var req struct {
			JQL string `json:"jql"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode search request: %v", err)
		}
		rec.jql = req.JQL

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, searchJSON)
	}))
}

func newTestClient(srv *httptest.Server) *jira.Client {
	return jira.New(jira.Config{
		Domain:     srv.URL,
		Email:      "dev@example.com",
		APIToken:   "tkn",
		ProjectKey: "SL",
	}, nil)
}

func TestClient_Fetch(t *testing.T) {
	var rec recordedSearch
	srv := newJiraServer(t, &rec)
	defer srv.Close()

	snap, err := newTestClient(srv).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("dev@example.com:tkn"))
	if rec.auth != wantAuth {
		t.Errorf("Authorization = %q, want %q", rec.auth, wantAuth)
	}
	if rec.jql != "project = SL" {
		t.Errorf("jql = %q", rec.jql)
	}

	if snap.BoardID != "SL" {
		t.Errorf("BoardID = %q", snap.BoardID)
	}
	if snap.Status != "success" {
		t.Errorf("Status = %q", snap.Status)
	}
	if len(snap.Cards) != 2 {
		t.Fatalf("got %d cards", len(snap.Cards))
	}
}

func TestClient_Fetch_IssueMapping(t *testing.T) {
	var rec recordedSearch
	srv := newJiraServer(t, &rec)
	defer srv.Close()

	snap, err := newTestClient(srv).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	byName := map[string]board.RawCard{}
	for _, card := range snap.Cards {
		byName[card.Name] = card
	}

	docs := byName["Write docs"]
	if docs.ListID != "10000" {
		t.Errorf("ListID = %q, want the status id", docs.ListID)
	}
	if docs.Due != "2025-04-01" {
		t.Errorf("Due = %q", docs.Due)
	}
	if docs.DueComplete {
		t.Error("open issue marked due-complete")
	}
	if len(docs.Labels) != 1 || docs.Labels[0].Name != "blocker" {
		t.Errorf("Labels = %v", docs.Labels)
	}
	if docs.URL != srv.URL+"/browse/SL-1" {
		t.Errorf("URL = %q", docs.URL)
	}

	release := byName["Release v1"]
	if !release.DueComplete {
		t.Error("done-category issue not marked due-complete")
	}
	if release.DateLastActivity != "2025-03-20T10:00:00Z" {
		t.Errorf("DateLastActivity = %q, want RFC 3339 rewrite", release.DateLastActivity)
	}
	if len(release.MemberIDs) != 1 || release.MemberIDs[0] != "acc-7" {
		t.Errorf("MemberIDs = %v", release.MemberIDs)
	}
}

func TestClient_Fetch_ListsAndMembersFromIssues(t *testing.T) {
	var rec recordedSearch
	srv := newJiraServer(t, &rec)
	defer srv.Close()

	snap, err := newTestClient(srv).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(snap.Lists) != 2 {
		t.Fatalf("got %d lists", len(snap.Lists))
	}
	if snap.Lists[0].Name != "To Do" || snap.Lists[1].Name != "Done" {
		t.Errorf("lists = %v, want appearance order", snap.Lists)
	}

	if len(snap.Members) != 1 {
		t.Fatalf("got %d members", len(snap.Members))
	}
	if snap.Members[0].ID != "acc-7" || snap.Members[0].FullName != "Bob Smith" {
		t.Errorf("member = %+v", snap.Members[0])
	}
}

func TestClient_Fetch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "expired token")
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch succeeded with rejected credentials")
	}
	if !strings.Contains(err.Error(), "jira api error (401)") {
		t.Errorf("error = %q", err)
	}
}

func TestClient_Fetch_MissingConfig(t *testing.T) {
	client := jira.New(jira.Config{Domain: "acme.atlassian.net"}, nil)
	if _, err := client.Fetch(context.Background()); !errors.Is(err, jira.ErrMissingConfig) {
		t.Fatalf("err = %v, want ErrMissingConfig", err)
	}
}
