// Package jira adapts Jira issues into board snapshots.
//
// Issues map to cards, issue statuses become the board's lists, and
// assignees become members.
package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

// DefaultTimeout bounds each Jira API call.
const DefaultTimeout = 30 * time.Second

const searchPageSize = 100

// ErrMissingConfig reports that one of the required connection settings
// is unset.
var ErrMissingConfig = errors.New("Jira configuration missing (domain, email, api_token, project_key required)")

// Config carries the credentials and target project for a Jira client.
type Config struct {
	// Domain is the Jira site, with or without the https:// prefix.
	Domain     string
	Email      string
	APIToken   string
	ProjectKey string

	// Timeout bounds each API call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client fetches the issues of a single Jira project.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Jira client. Credentials are validated on Fetch.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Domain != "" && !strings.HasPrefix(cfg.Domain, "http") {
		cfg.Domain = "https://" + cfg.Domain
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		now:    time.Now,
	}
}

// Name implements source.Source.
func (c *Client) Name() string { return "jira" }

type searchRequest struct {
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields"`
	MaxResults int      `json:"maxResults"`
	StartAt    int      `json:"startAt"`
}

type searchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []issue `json:"issues"`
}

type issue struct {
	ID     string `json:"id"`
	Key    string `json:"key"`
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Category struct {
				Key string `json:"key"`
			} `json:"statusCategory"`
		} `json:"status"`
		Assignee *struct {
			AccountID   string `json:"accountId"`
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		DueDate string   `json:"duedate"`
		Updated string   `json:"updated"`
		Labels  []string `json:"labels"`
	} `json:"fields"`
}

// Fetch retrieves every issue of the configured project and assembles a
// snapshot. Lists are derived from issue statuses in order of first
// appearance.
func (c *Client) Fetch(ctx context.Context) (*board.RawSnapshot, error) {
	if c.cfg.Domain == "" || c.cfg.Email == "" || c.cfg.APIToken == "" || c.cfg.ProjectKey == "" {
		return nil, ErrMissingConfig
	}

	c.logger.Info("fetching project issues", "project", c.cfg.ProjectKey)

	issues, err := c.search(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}

	var (
		cards      []board.RawCard
		lists      []board.RawList
		members    []board.RawMember
		seenList   = map[string]bool{}
		seenMember = map[string]bool{}
	)
	for _, is := range issues {
		cards = append(cards, c.rawCard(is))

		if st := is.Fields.Status; st.ID != "" && !seenList[st.ID] {
			seenList[st.ID] = true
			lists = append(lists, board.RawList{
				ID:   st.ID,
				Name: st.Name,
				Pos:  float64(len(lists) + 1),
			})
		}
		if a := is.Fields.Assignee; a != nil && a.AccountID != "" && !seenMember[a.AccountID] {
			seenMember[a.AccountID] = true
			members = append(members, board.RawMember{
				ID:       a.AccountID,
				FullName: a.DisplayName,
			})
		}
	}

	c.logger.Info("fetched project issues",
		"cards", len(cards),
		"lists", len(lists),
		"members", len(members))

	return &board.RawSnapshot{
		BoardID:   c.cfg.ProjectKey,
		Cards:     cards,
		Lists:     lists,
		Members:   members,
		Timestamp: float64(c.now().Unix()),
		Status:    "success",
	}, nil
}

func (c *Client) search(ctx context.Context) ([]issue, error) {
	var all []issue
	startAt := 0
	for {
		body, err := c.post(ctx, "/rest/api/3/search", searchRequest{
			JQL:        fmt.Sprintf("project = %s", c.cfg.ProjectKey),
			Fields:     []string{"summary", "status", "assignee", "duedate", "updated", "labels"},
			MaxResults: searchPageSize,
			StartAt:    startAt,
		})
		if err != nil {
			return nil, err
		}

		var page searchResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decode search response: %w", err)
		}
		all = append(all, page.Issues...)

		startAt += len(page.Issues)
		if len(page.Issues) == 0 || startAt >= page.Total {
			return all, nil
		}
	}
}

func (c *Client) rawCard(is issue) board.RawCard {
	card := board.RawCard{
		ID:               is.ID,
		Name:             is.Fields.Summary,
		URL:              fmt.Sprintf("%s/browse/%s", c.cfg.Domain, is.Key),
		ListID:           is.Fields.Status.ID,
		Due:              is.Fields.DueDate,
		DueComplete:      is.Fields.Status.Category.Key == "done",
		DateLastActivity: isoTimestamp(is.Fields.Updated),
	}
	for _, lbl := range is.Fields.Labels {
		card.Labels = append(card.Labels, board.RawLabel{Name: lbl})
	}
	if a := is.Fields.Assignee; a != nil && a.AccountID != "" {
		card.MemberIDs = []string{a.AccountID}
	}
	return card
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Domain+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.cfg.Email + ":" + c.cfg.APIToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("jira api error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// jiraTimestamp is the zone form Jira emits, RFC 3339 except for the
// missing colon in the offset.
const jiraTimestamp = "2006-01-02T15:04:05.999-0700"

// isoTimestamp rewrites a Jira timestamp into RFC 3339 so downstream
// parsing treats every source alike. Unparsable values pass through.
func isoTimestamp(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(jiraTimestamp, s)
	if err != nil {
		return s
	}
	return t.Format(time.RFC3339)
}
