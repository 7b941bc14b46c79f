package slack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"slackdigest/internal/commontypes"
)

const historyOp = "conversations.history"

// DefaultPageInterval paces history pages. Slack Tier 3 allows ~50 requests/min.
const DefaultPageInterval = 1200 * time.Millisecond

// SlackAPI is the subset of the Slack Web API used here. *slack.Client satisfies it.
type SlackAPI interface {
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

// NewClient builds a Slack client whose requests all carry
// "Authorization: Bearer <token>". apiURL overrides the API base when set.
func NewClient(token, apiURL string) *slack.Client {
	opts := []slack.Option{
		slack.OptionHTTPClient(&http.Client{Transport: &bearerTransport{token: token}}),
	}
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return slack.New(token, opts...)
}

type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.token)
	return base.RoundTrip(req)
}

// Fetcher pages through a channel's history.
type Fetcher struct {
	api     SlackAPI
	limiter *rate.Limiter
	logger  *zap.Logger
	now     func() time.Time
	loc     *time.Location
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRateLimiter overrides the pacing between history pages. nil disables pacing.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(f *Fetcher) { f.limiter = l }
}

// WithPageInterval paces history pages at one request per d. Zero disables pacing.
func WithPageInterval(d time.Duration) Option {
	return func(f *Fetcher) {
		if d <= 0 {
			f.limiter = nil
			return
		}
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithClock overrides the clock used for default date ranges.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// WithLocation sets the location in which range dates are interpreted.
func WithLocation(loc *time.Location) Option {
	return func(f *Fetcher) {
		if loc != nil {
			f.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher constructs a Fetcher.
func NewFetcher(api SlackAPI, opts ...Option) *Fetcher {
	f := &Fetcher{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(DefaultPageInterval), 1),
		logger:  zap.NewNop(),
		now:     time.Now,
		loc:     time.Local,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns every message of channelID between startDate and endDate
// (YYYY-MM-DD, both inclusive). Empty or invalid dates default to the
// current month. Any failure aborts the whole fetch; no partial result is
// returned.
func (f *Fetcher) Fetch(ctx context.Context, channelID, startDate, endDate string) ([]commontypes.Message, error) {
	r := ResolveRange(startDate, endDate, f.now(), f.loc)
	f.logger.Info("Fetching messages from Slack",
		zap.String("channel_id", channelID),
		zap.String("range", r.String()),
		zap.Int64("oldest", r.Oldest()),
		zap.Int64("latest", r.Latest()))

	var (
		messages []commontypes.Message
		cursor   string
		pages    int
	)
	for {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return nil, &commontypes.FetchError{Op: historyOp, Err: err}
			}
		}

		params := &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Oldest:    fmt.Sprintf("%d", r.Oldest()),
			Latest:    fmt.Sprintf("%d", r.Latest()),
			Inclusive: true,
			Cursor:    cursor,
		}
		history, err := f.api.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, wrapHistoryError(err)
		}
		if history == nil {
			return nil, &commontypes.FetchError{Op: historyOp, Message: "empty response"}
		}
		if !history.Ok {
			msg := history.Error
			if msg == "" {
				msg = "failed to fetch messages"
			}
			return nil, &commontypes.FetchError{Op: historyOp, Message: msg}
		}

		pages++
		for _, msg := range history.Messages {
			messages = append(messages, toMessage(msg))
		}
		f.logger.Debug("Received message batch",
			zap.String("channel_id", channelID),
			zap.Int("page", pages),
			zap.Int("count", len(history.Messages)),
			zap.Bool("has_more", history.HasMore))

		cursor = history.ResponseMetaData.NextCursor
		if cursor == "" {
			break
		}
	}

	f.logger.Info("Finished fetching channel history",
		zap.String("channel_id", channelID),
		zap.Int("pages", pages),
		zap.Int("messages", len(messages)))
	return messages, nil
}

func wrapHistoryError(err error) error {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return &commontypes.FetchError{Op: historyOp, Message: apiErr.Err, Err: err}
	}
	return &commontypes.FetchError{Op: historyOp, Err: err}
}

func toMessage(msg slack.Message) commontypes.Message {
	return commontypes.Message{
		Timestamp:       msg.Timestamp,
		Text:            msg.Text,
		User:            msg.User,
		ThreadTimestamp: msg.ThreadTimestamp,
	}
}

// ListChannels prints the channels visible to the token, sorted by name.
func ListChannels(ctx context.Context, api SlackAPI, w io.Writer, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	params := &slack.GetConversationsParameters{
		ExcludeArchived: true,
		Types:           []string{"public_channel", "private_channel"},
		Limit:           1000,
	}
	logger.Info("Fetching channel list from Slack")

	var chans []slack.Channel
	for {
		pageChans, nextCursor, err := api.GetConversationsContext(ctx, params)
		if err != nil {
			return &commontypes.FetchError{Op: "conversations.list", Err: err}
		}
		chans = append(chans, pageChans...)
		if nextCursor == "" {
			break
		}
		params.Cursor = nextCursor
	}

	sort.Slice(chans, func(i, j int) bool { return chans[i].Name < chans[j].Name })
	fmt.Fprintln(w, "Available Channels:")
	for _, ch := range chans {
		typeStr := "Public"
		if ch.IsPrivate {
			typeStr = "Private"
		}
		fmt.Fprintf(w, "- %s (ID: %s, Type: %s)\n", ch.Name, ch.ID, typeStr)
	}
	logger.Info("Listed channels", zap.Int("count", len(chans)))
	return nil
}
