// Package github adapts GitHub Issues into board snapshots.
//
// Issues map to cards and their states bucket into three fixed lists so
// the same analysis pipeline applies regardless of tracker: closed
// issues land in Done, open assigned issues in In Progress, the rest in
// To Do. Pull requests are excluded.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

const (
	listToDo       = "To Do"
	listInProgress = "In Progress"
	listDone       = "Done"
)

// ErrMissingConfig reports that the repository coordinates are unset.
var ErrMissingConfig = errors.New("GitHub configuration missing (owner, repo required)")

// Config carries the credentials and target repository for a GitHub client.
type Config struct {
	// Token authenticates API calls. Empty means anonymous access,
	// which works for public repositories.
	Token string
	Owner string
	Repo  string

	// BaseURL overrides the public API endpoint, for tests and GitHub
	// Enterprise.
	BaseURL string
}

// Client fetches the issues of a single repository.
type Client struct {
	cfg    Config
	api    *gh.Client
	logger *slog.Logger
	now    func() time.Time
}

// New builds a GitHub client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var ts oauth2.TokenSource
	if cfg.Token != "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	}
	api := gh.NewClient(oauth2.NewClient(context.Background(), ts))

	if cfg.BaseURL != "" {
		// go-github requires a trailing slash on the base URL.
		u, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse base URL: %w", err)
		}
		api.BaseURL = u
	}

	return &Client{
		cfg:    cfg,
		api:    api,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Name implements source.Source.
func (c *Client) Name() string { return "github" }

// Fetch retrieves every issue of the configured repository and
// assembles a snapshot.
func (c *Client) Fetch(ctx context.Context) (*board.RawSnapshot, error) {
	if c.cfg.Owner == "" || c.cfg.Repo == "" {
		return nil, ErrMissingConfig
	}

	c.logger.Info("fetching repository issues", "owner", c.cfg.Owner, "repo", c.cfg.Repo)

	issues, err := c.listIssues(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch issues: %w", err)
	}

	var (
		cards   []board.RawCard
		members []board.RawMember
		seen    = map[string]bool{}
	)
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		cards = append(cards, rawCard(issue))
		for _, user := range issue.Assignees {
			login := user.GetLogin()
			if login == "" || seen[login] {
				continue
			}
			seen[login] = true
			members = append(members, board.RawMember{
				ID:       login,
				FullName: memberName(user),
				Username: login,
			})
		}
	}

	c.logger.Info("fetched repository issues", "cards", len(cards), "members", len(members))

	return &board.RawSnapshot{
		BoardID:   c.cfg.Owner + "/" + c.cfg.Repo,
		Cards:     cards,
		Lists:     statusLists(),
		Members:   members,
		Timestamp: float64(c.now().Unix()),
		Status:    "success",
	}, nil
}

func (c *Client) listIssues(ctx context.Context) ([]*gh.Issue, error) {
	opt := &gh.IssueListByRepoOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	var all []*gh.Issue
	for {
		issues, resp, err := c.api.Issues.ListByRepo(ctx, c.cfg.Owner, c.cfg.Repo, opt)
		if err != nil {
			return nil, err
		}
		all = append(all, issues...)
		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}
	return all, nil
}

func rawCard(issue *gh.Issue) board.RawCard {
	card := board.RawCard{
		ID:          strconv.FormatInt(issue.GetID(), 10),
		Name:        issue.GetTitle(),
		Desc:        issue.GetBody(),
		URL:         issue.GetHTMLURL(),
		ListID:      listIDFor(issue),
		DueComplete: issue.GetState() == "closed",
	}
	if updated := issue.GetUpdatedAt(); !updated.IsZero() {
		card.DateLastActivity = updated.Format(time.RFC3339)
	}
	if ms := issue.GetMilestone(); ms != nil && ms.DueOn != nil {
		card.Due = ms.GetDueOn().Format(time.RFC3339)
	}
	for _, lbl := range issue.Labels {
		card.Labels = append(card.Labels, rawLabel(lbl))
	}
	for _, user := range issue.Assignees {
		if login := user.GetLogin(); login != "" {
			card.MemberIDs = append(card.MemberIDs, login)
		}
	}
	return card
}

func listIDFor(issue *gh.Issue) string {
	switch {
	case issue.GetState() == "closed":
		return "done"
	case len(issue.Assignees) > 0:
		return "in-progress"
	default:
		return "todo"
	}
}

// statusLists returns the fixed lists issue states bucket into.
func statusLists() []board.RawList {
	return []board.RawList{
		{ID: "todo", Name: listToDo, Pos: 1},
		{ID: "in-progress", Name: listInProgress, Pos: 2},
		{ID: "done", Name: listDone, Pos: 3},
	}
}

// rawLabel passes the hex label color through lowercased. A label
// literally named "red" gets the color "red" so it flags as a blocker
// the way a red Trello label would.
func rawLabel(l *gh.Label) board.RawLabel {
	color := strings.ToLower(l.GetColor())
	if strings.EqualFold(l.GetName(), "red") {
		color = "red"
	}
	return board.RawLabel{Name: l.GetName(), Color: color}
}

func memberName(u *gh.User) string {
	if name := u.GetName(); name != "" {
		return name
	}
	return u.GetLogin()
}
