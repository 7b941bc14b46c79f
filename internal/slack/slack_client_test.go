package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"slackdigest/internal/commontypes"
)

type mockSlackAPI struct {
	historyFunc       func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	conversationsFunc func(params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
}

func (m *mockSlackAPI) GetConversationHistoryContext(_ context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
	if m.historyFunc != nil {
		return m.historyFunc(params)
	}
	return nil, errors.New("not implemented")
}

func (m *mockSlackAPI) GetConversationsContext(_ context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
	if m.conversationsFunc != nil {
		return m.conversationsFunc(params)
	}
	return nil, "", nil
}

func newChannel(id, name string, private bool) slack.Channel {
	return slack.Channel{
		GroupConversation: slack.GroupConversation{
			Conversation: slack.Conversation{ID: id, IsPrivate: private},
			Name:         name,
		},
	}
}

func page(next string, msgs ...slack.Message) *slack.GetConversationHistoryResponse {
	resp := &slack.GetConversationHistoryResponse{
		SlackResponse: slack.SlackResponse{Ok: true},
		Messages:      msgs,
		HasMore:       next != "",
	}
	resp.ResponseMetaData.NextCursor = next
	return resp
}

func msg(ts, text, user string) slack.Message {
	return slack.Message{Msg: slack.Msg{Timestamp: ts, Text: text, User: user}}
}

func fixedClock() time.Time {
	return time.Date(2024, time.February, 14, 10, 30, 0, 0, time.UTC)
}

func newTestFetcher(t *testing.T, api SlackAPI) *Fetcher {
	return NewFetcher(api,
		WithRateLimiter(nil),
		WithClock(fixedClock),
		WithLocation(time.UTC),
		WithLogger(zaptest.NewLogger(t)),
	)
}

func TestFetcher_PaginatesInOrder(t *testing.T) {
	pages := []*slack.GetConversationHistoryResponse{
		page("c1", msg("1700000000.0", "hello", "U1")),
		page("c2", msg("1700000100.0", "a", "U2"), msg("1700000200.0", "b", "U3")),
		page("", msg("1700003600.0", "world", "SELF")),
	}

	var calls []*slack.GetConversationHistoryParameters
	mock := &mockSlackAPI{
		historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
			cp := *params
			calls = append(calls, &cp)
			return pages[len(calls)-1], nil
		},
	}

	messages, err := newTestFetcher(t, mock).Fetch(context.Background(), "C123", "2023-11-01", "2023-11-30")
	require.NoError(t, err)

	require.Len(t, calls, 3)
	assert.Equal(t, "", calls[0].Cursor)
	assert.Equal(t, "c1", calls[1].Cursor)
	assert.Equal(t, "c2", calls[2].Cursor)
	for _, c := range calls {
		assert.Equal(t, "C123", c.ChannelID)
		assert.True(t, c.Inclusive)
		assert.Equal(t, "1698796800", c.Oldest) // 2023-11-01T00:00:00Z
		assert.Equal(t, "1701388799", c.Latest) // 2023-11-30T23:59:59Z
	}

	assert.Equal(t, []commontypes.Message{
		{Timestamp: "1700000000.0", Text: "hello", User: "U1"},
		{Timestamp: "1700000100.0", Text: "a", User: "U2"},
		{Timestamp: "1700000200.0", Text: "b", User: "U3"},
		{Timestamp: "1700003600.0", Text: "world", User: "SELF"},
	}, messages)
}

func TestFetcher_StopsWhenCursorMissingEvenIfHasMore(t *testing.T) {
	calls := 0
	mock := &mockSlackAPI{
		historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
			calls++
			resp := page("", msg("1700000000.0", "only", "U1"))
			resp.HasMore = true
			return resp, nil
		},
	}

	messages, err := newTestFetcher(t, mock).Fetch(context.Background(), "C1", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, messages, 1)
}

func TestFetcher_NotOkAbortsWithoutPartialResults(t *testing.T) {
	calls := 0
	mock := &mockSlackAPI{
		historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
			calls++
			if calls == 1 {
				return page("c1", msg("1700000000.0", "hello", "U1")), nil
			}
			return &slack.GetConversationHistoryResponse{
				SlackResponse: slack.SlackResponse{Ok: false, Error: "channel_not_found"},
			}, nil
		},
	}

	messages, err := newTestFetcher(t, mock).Fetch(context.Background(), "C1", "", "")
	require.Error(t, err)
	assert.Nil(t, messages)
	assert.Equal(t, 2, calls)

	var fetchErr *commontypes.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "channel_not_found", fetchErr.Message)
}

func TestFetcher_NotOkWithoutMessageUsesGenericText(t *testing.T) {
	mock := &mockSlackAPI{
		historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
			return &slack.GetConversationHistoryResponse{}, nil
		},
	}

	_, err := newTestFetcher(t, mock).Fetch(context.Background(), "C1", "", "")
	var fetchErr *commontypes.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "failed to fetch messages", fetchErr.Message)
}

func TestFetcher_WrapsClientErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		mock := &mockSlackAPI{
			historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
				return nil, slack.SlackErrorResponse{Err: "invalid_auth"}
			},
		}
		_, err := newTestFetcher(t, mock).Fetch(context.Background(), "C1", "", "")
		var fetchErr *commontypes.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, "invalid_auth", fetchErr.Message)
	})

	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("connection refused")
		mock := &mockSlackAPI{
			historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
				return nil, boom
			},
		}
		_, err := newTestFetcher(t, mock).Fetch(context.Background(), "C1", "", "")
		var fetchErr *commontypes.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.ErrorIs(t, err, boom)
	})
}

func TestFetcher_DefaultsToCurrentMonth(t *testing.T) {
	for _, tc := range []struct {
		name       string
		start, end string
	}{
		{name: "absent", start: "", end: ""},
		{name: "invalid", start: "not-a-date", end: "not-a-date"},
		{name: "wrong layout", start: "02/01/2024", end: "2024-2-29"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var got *slack.GetConversationHistoryParameters
			mock := &mockSlackAPI{
				historyFunc: func(params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error) {
					got = params
					return page(""), nil
				},
			}
			_, err := newTestFetcher(t, mock).Fetch(context.Background(), "C1", tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, "1706745600", got.Oldest) // 2024-02-01T00:00:00Z
			assert.Equal(t, "1709251199", got.Latest) // 2024-02-29T23:59:59Z
		})
	}
}

func TestResolveRange(t *testing.T) {
	r := ResolveRange("", "", fixedClock(), time.UTC)
	assert.Equal(t, "2024-02-01", r.Start.Format(commontypes.DateLayout))
	assert.Equal(t, "2024-02-29", r.End.Format(commontypes.DateLayout))
	assert.Equal(t, "2024-02-01..2024-02-29", r.String())

	invalid := ResolveRange("not-a-date", "not-a-date", fixedClock(), time.UTC)
	assert.Equal(t, r, invalid)

	explicit := ResolveRange("2023-12-24", "2024-01-03", fixedClock(), time.UTC)
	assert.Equal(t, "2023-12-24", explicit.Start.Format(commontypes.DateLayout))
	assert.Equal(t, "2024-01-03", explicit.End.Format(commontypes.DateLayout))

	mixed := ResolveRange("2024-02-10", "bogus", fixedClock(), time.UTC)
	assert.Equal(t, "2024-02-10", mixed.Start.Format(commontypes.DateLayout))
	assert.Equal(t, "2024-02-29", mixed.End.Format(commontypes.DateLayout))

	tokyo := time.FixedZone("JST", 9*60*60)
	// 2024-02-29T20:00Z is already March in Tokyo
	jst := ResolveRange("", "", time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC), tokyo)
	assert.Equal(t, "2024-03-01", jst.Start.Format(commontypes.DateLayout))
	assert.Equal(t, int64(1709218800), jst.Oldest()) // 2024-03-01T00:00:00+09:00
}

func TestNewClient_SendsBearerTokenOverHTTP(t *testing.T) {
	var (
		mu      sync.Mutex
		auths   []string
		cursors []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		mu.Lock()
		auths = append(auths, r.Header.Get("Authorization"))
		cursors = append(cursors, r.Form.Get("cursor"))
		n := len(cursors)
		mu.Unlock()

		assert.Equal(t, "/conversations.history", r.URL.Path)
		assert.Equal(t, "C42", r.Form.Get("channel"))

		body := map[string]any{
			"ok":       true,
			"messages": []map[string]string{{"ts": "1700000000.000100", "text": "page", "user": "U1"}},
		}
		if n == 1 {
			body["has_more"] = true
			body["response_metadata"] = map[string]string{"next_cursor": "next-1"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	client := NewClient("xoxb-test", srv.URL)
	messages, err := newTestFetcher(t, client).Fetch(context.Background(), "C42", "2023-11-01", "2023-11-30")
	require.NoError(t, err)

	assert.Len(t, messages, 2)
	assert.Equal(t, []string{"Bearer xoxb-test", "Bearer xoxb-test"}, auths)
	assert.Equal(t, []string{"", "next-1"}, cursors)
}

func TestNewClient_NotOkResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"not_in_channel"}`))
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, NewClient("xoxb-test", srv.URL+"/")).Fetch(context.Background(), "C42", "", "")
	var fetchErr *commontypes.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "not_in_channel", fetchErr.Message)
}

func TestListChannels(t *testing.T) {
	calls := 0
	mock := &mockSlackAPI{
		conversationsFunc: func(params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
			calls++
			if calls == 1 {
				assert.Empty(t, params.Cursor)
				return []slack.Channel{newChannel("C2", "random", false)}, "cur", nil
			}
			assert.Equal(t, "cur", params.Cursor)
			return []slack.Channel{newChannel("C1", "alpha", true)}, "", nil
		},
	}

	var out bytes.Buffer
	require.NoError(t, ListChannels(context.Background(), mock, &out, zaptest.NewLogger(t)))
	assert.Equal(t, "Available Channels:\n"+
		"- alpha (ID: C1, Type: Private)\n"+
		"- random (ID: C2, Type: Public)\n", out.String())
}

func TestListChannels_Error(t *testing.T) {
	mock := &mockSlackAPI{
		conversationsFunc: func(params *slack.GetConversationsParameters) ([]slack.Channel, string, error) {
			return nil, "", errors.New("boom")
		},
	}
	err := ListChannels(context.Background(), mock, &bytes.Buffer{}, nil)
	var fetchErr *commontypes.FetchError
	require.ErrorAs(t, err, &fetchErr)
}
