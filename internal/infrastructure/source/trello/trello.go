// Package trello fetches board data from the Trello REST API.
package trello

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/sprintlens/sprintlens/pkg/domain/board"
)

const defaultBaseURL = "https://api.trello.com/1"

// DefaultTimeout bounds each Trello API call.
const DefaultTimeout = 30 * time.Second

// cardFields lists the card attributes the analysis pipeline consumes.
const cardFields = "name,idList,idBoard,desc,due,dueComplete,dateLastActivity,labels,url"

// ErrMissingCredentials reports that the API key, token, or board ID is
// unset. The message crosses the output boundary verbatim when a fetch
// failure is recorded in a snapshot envelope.
var ErrMissingCredentials = errors.New("Missing API credentials or board ID")

// Config carries the credentials and target board for a Trello client.
type Config struct {
	APIKey   string
	APIToken string
	BoardID  string

	// BaseURL overrides the public Trello API endpoint.
	BaseURL string
	// Timeout bounds each API call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Client fetches cards, lists, and members for a single Trello board.
type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Trello client. Credentials are validated on Fetch, not
// here, so wiring stays infallible.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
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
func (c *Client) Name() string { return "trello" }

// Fetch retrieves the cards, lists, and members of the configured board
// and assembles them into a snapshot.
func (c *Client) Fetch(ctx context.Context) (*board.RawSnapshot, error) {
	if c.cfg.APIKey == "" || c.cfg.APIToken == "" || c.cfg.BoardID == "" {
		return nil, ErrMissingCredentials
	}

	c.logger.Info("fetching board data", "board_id", c.cfg.BoardID)

	cards, err := c.Cards(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := c.Lists(ctx)
	if err != nil {
		return nil, err
	}
	members, err := c.Members(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Info("fetched board data",
		"cards", len(cards),
		"lists", len(lists),
		"members", len(members))

	return &board.RawSnapshot{
		BoardID:   c.cfg.BoardID,
		Cards:     cards,
		Lists:     lists,
		Members:   members,
		Timestamp: float64(c.now().Unix()),
		Status:    "success",
	}, nil
}

// Cards fetches every card on the board, including attachments, member
// references, and comment actions.
func (c *Client) Cards(ctx context.Context) ([]board.RawCard, error) {
	params := map[string]string{
		"fields":            cardFields,
		"attachments":       "true",
		"attachment_fields": "name,url,date",
		"members":           "true",
		"member_fields":     "fullName,username",
		"actions":           "commentCard",
		"action_fields":     "data,date,type",
		"customFieldItems":  "true",
	}
	body, err := c.get(ctx, "/boards/"+c.cfg.BoardID+"/cards", params)
	if err != nil {
		return nil, fmt.Errorf("fetch cards: %w", err)
	}
	var cards []board.RawCard
	if err := json.Unmarshal(body, &cards); err != nil {
		return nil, fmt.Errorf("decode cards: %w", err)
	}
	return cards, nil
}

// Lists fetches the board's lists.
func (c *Client) Lists(ctx context.Context) ([]board.RawList, error) {
	params := map[string]string{"fields": "name,closed,pos"}
	body, err := c.get(ctx, "/boards/"+c.cfg.BoardID+"/lists", params)
	if err != nil {
		return nil, fmt.Errorf("fetch lists: %w", err)
	}
	var lists []board.RawList
	if err := json.Unmarshal(body, &lists); err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	return lists, nil
}

// Members fetches the board's members.
func (c *Client) Members(ctx context.Context) ([]board.RawMember, error) {
	params := map[string]string{"fields": "fullName,username,avatarUrl"}
	body, err := c.get(ctx, "/boards/"+c.cfg.BoardID+"/members", params)
	if err != nil {
		return nil, fmt.Errorf("fetch members: %w", err)
	}
	var members []board.RawMember
	if err := json.Unmarshal(body, &members); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return members, nil
}

// get performs one API call under the configured timeout.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	t := timeout.New[[]byte](timeout.Config{
		DefaultTimeout: c.cfg.Timeout,
	})
	return t.Execute(ctx, c.cfg.Timeout, func(ctx context.Context) ([]byte, error) {
		return c.doGet(ctx, c.buildURL(endpoint, params))
	})
}

func (c *Client) buildURL(endpoint string, params map[string]string) string {
	values := url.Values{}
	values.Set("key", c.cfg.APIKey)
	values.Set("token", c.cfg.APIToken)
	for k, v := range params {
		values.Set(k, v)
	}
	return fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, endpoint, values.Encode())
}

func (c *Client) doGet(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("trello API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
