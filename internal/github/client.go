// Package github fetches a user's event feed from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v74/github"
	"golang.org/x/time/rate"

	"github.com/Afrawles/ghactivity/internal/activity"
	"github.com/Afrawles/ghactivity/internal/logger"
)

const (
	defaultPerPage   = 30
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ghactivity"
	maxPerPage       = 100
)

// Options configures the Client
type Options struct {
	// BaseURL overrides the API root, e.g. for GitHub Enterprise.
	BaseURL   string
	Token     string
	UserAgent string
	PerPage   int
	Timeout   time.Duration

	// RequestsPerSecond paces page requests; zero or less means unpaced.
	RequestsPerSecond float64
}

// Client reads user event feeds one page at a time.
type Client struct {
	gh      *gh.Client
	opts    Options
	limiter *rate.Limiter
	log     *logger.Logger
}

var _ activity.Fetcher = (*Client)(nil)

func NewClient(o Options) (*Client, error) {
	if o.PerPage <= 0 {
		o.PerPage = defaultPerPage
	}
	if o.PerPage > maxPerPage {
		o.PerPage = maxPerPage
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}

	client := gh.NewClient(&http.Client{Timeout: o.Timeout})
	if o.Token != "" {
		client = client.WithAuthToken(o.Token)
	}
	client.UserAgent = o.UserAgent

	if o.BaseURL != "" {
		base := o.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("invalid base url %q: %w", o.BaseURL, err)
		}
		client.BaseURL = u
	}

	limit := rate.Inf
	if o.RequestsPerSecond > 0 {
		limit = rate.Limit(o.RequestsPerSecond)
	}

	return &Client{
		gh:      client,
		opts:    o,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.Named("github"),
	}, nil
}

// FetchPage returns one page of user's events. Private feeds need a token
// that belongs to user; otherwise GitHub silently serves public events only.
func (c *Client) FetchPage(ctx context.Context, user string, page int, private bool) ([]activity.RawEvent, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: "wait", Err: err}
	}

	start := time.Now()
	events, resp, err := c.gh.Activity.ListEventsPerformedByUser(ctx, user, !private, &gh.ListOptions{
		Page:    page,
		PerPage: c.opts.PerPage,
	})
	if err != nil {
		return nil, classify(err)
	}

	ev := c.log.Debug().
		Str("user", user).
		Int("page", page).
		Bool("private", private).
		Int("events", len(events)).
		Dur("latency", time.Since(start))
	if resp != nil {
		ev = ev.Int("status", resp.StatusCode).Int("rate_remaining", resp.Rate.Remaining)
	}
	ev.Msg("github events page")

	out := make([]activity.RawEvent, 0, len(events))
	for _, e := range events {
		out = append(out, toRawEvent(e))
	}
	return out, nil
}

func toRawEvent(e *gh.Event) activity.RawEvent {
	var payload json.RawMessage
	if e.RawPayload != nil {
		payload = *e.RawPayload
	}
	return activity.RawEvent{
		ID:        e.GetID(),
		Type:      e.GetType(),
		RepoName:  e.GetRepo().GetName(),
		CreatedAt: e.GetCreatedAt().Time.UTC(),
		Payload:   payload,
	}
}

// classify splits go-github failures into decode and transport errors.
func classify(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		timeErr   *time.ParseError
	)
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.As(err, &timeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return &DecodeError{Err: err}
	}

	var respErr *gh.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		return &TransportError{Op: "list events", Status: respErr.Response.StatusCode, Err: err}
	}
	return &TransportError{Op: "list events", Err: err}
}
