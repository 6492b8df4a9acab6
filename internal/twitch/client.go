package twitch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher defines the queries the orchestrator issues against the API.
// Every method returns the decoded JSON document for the normalizer.
type Fetcher interface {
	FetchTopGames(ctx context.Context, limit int) (any, error)
	FetchStreamsForGame(ctx context.Context, gameID string, limit int) (any, error)
	FetchStreamsFollowed(ctx context.Context, userID string, limit int) (any, error)
	FetchCurrentUser(ctx context.Context) (any, error)
	FetchGameByName(ctx context.Context, name string) (any, error)
	FetchChannel(ctx context.Context, name string) (any, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Doer is the transport contract the client needs. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Twitch HTTP API.
type Client struct {
	baseURL  *url.URL
	http     Doer
	token    string
	clientID string
	log      *slog.Logger
}

const (
	// DefaultBaseURL is the Helix API root.
	DefaultBaseURL = "https://api.twitch.tv/helix"

	acceptHeader   = "application/vnd.twitchtv.v3+json"
	requestTimeout = 10 * time.Second
)

// Options configure a Client.
type Options struct {
	BaseURL  string // empty uses DefaultBaseURL
	Token    string
	ClientID string
	HTTP     Doer         // nil uses an *http.Client with a 10s timeout
	Logger   *slog.Logger // nil uses slog.Default()
}

// NewClient builds a Client. Blank credentials are rejected here so callers
// never issue unauthenticated requests.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("%w: access token is empty", ErrMissingCredentials)
	}
	if strings.TrimSpace(opts.ClientID) == "" {
		return nil, fmt.Errorf("%w: client id is empty", ErrMissingCredentials)
	}
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	doer := opts.HTTP
	if doer == nil {
		doer = &http.Client{Timeout: requestTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:  base,
		http:     doer,
		token:    strings.TrimSpace(opts.Token),
		clientID: strings.TrimSpace(opts.ClientID),
		log:      logger,
	}, nil
}

// FetchTopGames retrieves the most watched categories.
func (c *Client) FetchTopGames(ctx context.Context, limit int) (any, error) {
	return c.get(ctx, "games/top", limitValues(nil, limit))
}

// FetchStreamsForGame retrieves live streams in one category.
func (c *Client) FetchStreamsForGame(ctx context.Context, gameID string, limit int) (any, error) {
	values := url.Values{}
	values.Set("game_id", gameID)
	return c.get(ctx, "streams", limitValues(values, limit))
}

// FetchStreamsFollowed retrieves live streams followed by userID.
func (c *Client) FetchStreamsFollowed(ctx context.Context, userID string, limit int) (any, error) {
	values := url.Values{}
	values.Set("user_id", userID)
	return c.get(ctx, "streams/followed", limitValues(values, limit))
}

// FetchCurrentUser resolves the user owning the bearer token.
func (c *Client) FetchCurrentUser(ctx context.Context) (any, error) {
	return c.get(ctx, "users", nil)
}

// FetchGameByName searches a category by exact name.
func (c *Client) FetchGameByName(ctx context.Context, name string) (any, error) {
	values := url.Values{}
	values.Set("name", name)
	return c.get(ctx, "games", values)
}

// FetchChannel looks up the live stream of one channel.
func (c *Client) FetchChannel(ctx context.Context, name string) (any, error) {
	values := url.Values{}
	values.Set("user_login", name)
	return c.get(ctx, "streams", values)
}

func limitValues(values url.Values, limit int) url.Values {
	if values == nil {
		values = url.Values{}
	}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	return values
}

func (c *Client) get(ctx context.Context, endpoint string, values url.Values) (any, error) {
	rel := &url.URL{Path: endpoint, RawQuery: values.Encode()}
	reqURL := c.baseURL.ResolveReference(rel).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Client-ID", c.clientID)

	c.log.Debug("twitch request", "url", reqURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: fmt.Errorf("read body: %w", err)}
	}
	c.log.Debug("twitch response", "url", reqURL, "status", resp.StatusCode, "bytes", len(body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(reqURL, resp.StatusCode, body)
	}

	doc, err := decode(body)
	if err != nil {
		return nil, &DecodeError{URL: reqURL, Err: err}
	}
	return doc, nil
}

// errorEnvelope is the body Twitch sends alongside 4xx statuses.
type errorEnvelope struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func statusError(reqURL string, status int, body []byte) error {
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	rejected := &RequestRejectedError{URL: reqURL, Status: status}
	if status != http.StatusNotFound {
		return rejected
	}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return rejected
	}
	// The name is the second word of "Channel <name> does not exist". This
	// breaks if upstream rewords the message.
	if strings.Contains(envelope.Message, "Channel") {
		words := strings.Fields(envelope.Message)
		if len(words) >= 2 {
			return &UnknownChannelError{Name: words[1]}
		}
	}
	return rejected
}

func decode(body []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, err
	}
	if decoder.More() {
		return nil, fmt.Errorf("unexpected data after JSON document")
	}
	return doc, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", raw, err)
	}
	// ResolveReference drops the last path segment unless it ends in a slash.
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
