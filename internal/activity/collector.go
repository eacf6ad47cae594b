package activity

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Afrawles/ghactivity/internal/logger"
)

// DefaultMaxPages matches the depth GitHub serves for user event feeds.
const DefaultMaxPages = 10

// eventNamespace seeds synthetic keys for events that arrive without an id.
var eventNamespace = uuid.MustParse("6f0d9b1c-3a51-4c8e-9b57-2f4c1e7a9d30")

// Fetcher retrieves one page of a user's event feed.
type Fetcher interface {
	FetchPage(ctx context.Context, user string, page int, private bool) ([]RawEvent, error)
}

// SkipReason says why an event did not reach the index.
type SkipReason string

const (
	SkipUnknownType SkipReason = "unknown_type"
	SkipOutOfRange  SkipReason = "out_of_range"
	SkipDuplicate   SkipReason = "duplicate"
	SkipMalformed   SkipReason = "malformed"
)

// Recorder observes a collection run.
type Recorder interface {
	PageFetched(page, events int)
	EventApplied(eventType string)
	EventSkipped(eventType string, reason SkipReason)
}

// Options tunes a Collector.
type Options struct {
	// MaxPages bounds pagination; zero means DefaultMaxPages.
	MaxPages int
	// Strict aborts the collection on the first malformed event instead of
	// skipping it.
	Strict   bool
	Logger   *logger.Logger
	Recorder Recorder
	// OnPage is called after each page with the number of events that
	// passed the type and date filters.
	OnPage func(page, kept int)
}

// Collector pages through a user's feed and builds an Index.
type Collector struct {
	fetcher Fetcher
	opts    Options
	log     *logger.Logger
}

func NewCollector(f Fetcher, opts Options) *Collector {
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("collector")
	}
	return &Collector{fetcher: f, opts: opts, log: log}
}

// Collect fetches every supported event of user created within [from, to]
// and groups them. Fetch errors abort the run and no index is returned.
func (c *Collector) Collect(ctx context.Context, user string, from, to time.Time, includePrivate bool) (*Index, error) {
	from, to = from.UTC(), to.UTC()
	idx := NewIndex()
	seen := make(map[string]struct{})

	c.log.Debug().
		Str("user", user).
		Time("from", from).
		Time("to", to).
		Bool("private", includePrivate).
		Msg("collecting events")

	for page := 1; page <= c.opts.MaxPages; page++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		events, err := c.fetcher.FetchPage(ctx, user, page, includePrivate)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		c.recordPage(page, len(events))

		kept := 0
		for _, ev := range events {
			if !Supports(ev.Type) {
				c.skip(ev, SkipUnknownType)
				continue
			}
			if ev.CreatedAt.IsZero() {
				if err := c.reject(ev, &MalformedEventError{Type: ev.Type, Field: "created_at"}); err != nil {
					return nil, err
				}
				continue
			}
			if ev.CreatedAt.Before(from) || ev.CreatedAt.After(to) {
				c.skip(ev, SkipOutOfRange)
				continue
			}
			kept++

			key := eventKey(ev)
			if _, dup := seen[key]; dup {
				c.skip(ev, SkipDuplicate)
				continue
			}

			parsed, err := Parse(ev)
			if err != nil {
				if err := c.reject(ev, err); err != nil {
					return nil, err
				}
				continue
			}

			seen[key] = struct{}{}
			idx.Apply(parsed.Repo, parsed.ID, parsed.Object, parsed.Activity)
			if c.opts.Recorder != nil {
				c.opts.Recorder.EventApplied(ev.Type)
			}
		}

		if c.opts.OnPage != nil {
			c.opts.OnPage(page, kept)
		}
		c.log.Debug().Int("page", page).Int("events", len(events)).Int("kept", kept).Msg("page processed")

		if kept == 0 {
			break
		}
	}

	c.log.Info().
		Int("repositories", len(idx.Repositories())).
		Int("objects", idx.Len()).
		Int("activities", idx.ActivityCount()).
		Msg("collection complete")

	return idx, nil
}

// reject skips a malformed event with a warning, or returns it as the
// collection error in strict mode. Any other error is always returned.
func (c *Collector) reject(ev RawEvent, err error) error {
	var malformed *MalformedEventError
	if c.opts.Strict || !errors.As(err, &malformed) {
		return fmt.Errorf("event %s: %w", ev.ID, err)
	}
	c.log.Warn().
		Err(err).
		Str("event_id", ev.ID).
		Str("repo", ev.RepoName).
		Msg("skipping malformed event")
	c.skip(ev, SkipMalformed)
	return nil
}

func (c *Collector) recordPage(page, events int) {
	if c.opts.Recorder != nil {
		c.opts.Recorder.PageFetched(page, events)
	}
}

func (c *Collector) skip(ev RawEvent, reason SkipReason) {
	c.log.Trace().Str("event_id", ev.ID).Str("type", ev.Type).Str("reason", string(reason)).Msg("event skipped")
	if c.opts.Recorder != nil {
		c.opts.Recorder.EventSkipped(ev.Type, reason)
	}
}

// eventKey identifies an event for deduplication. Feed events carry an id;
// anything without one gets a stable key derived from its content.
func eventKey(ev RawEvent) string {
	if ev.ID != "" {
		return ev.ID
	}
	var b bytes.Buffer
	b.WriteString(ev.Type)
	b.WriteByte(0)
	b.WriteString(ev.RepoName)
	b.WriteByte(0)
	b.WriteString(ev.CreatedAt.UTC().Format(time.RFC3339Nano))
	b.WriteByte(0)
	b.Write(ev.Payload)
	return uuid.NewSHA1(eventNamespace, b.Bytes()).String()
}
