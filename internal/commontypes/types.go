package commontypes

import "strings"

// UnknownDate is the bucket key for messages whose timestamp cannot be parsed.
const UnknownDate = "unknown"

// DateLayout is the calendar-day format used for bucket keys and date flags.
const DateLayout = "2006-01-02"

// Message represents a single channel message as returned by conversations.history.
type Message struct {
	Timestamp       string `json:"ts"`
	Text            string `json:"text"`
	User            string `json:"user"`
	ThreadTimestamp string `json:"thread_ts,omitempty"`
}

// Entry is one stored item of a date bucket.
type Entry struct {
	Text     string // text as exported, prefixed for self messages
	Original string // text as received
	Self     bool
}

// Record is one CSV row.
type Record struct {
	Date    string `csv:"DATE"`
	Message string `csv:"MESSAGE"`
}

// MessagesByDate maps calendar dates to their entries, keeping the order in
// which dates were first seen.
type MessagesByDate struct {
	dates   []string
	buckets map[string][]Entry
}

// NewMessagesByDate returns an empty mapping.
func NewMessagesByDate() *MessagesByDate {
	return &MessagesByDate{buckets: make(map[string][]Entry)}
}

// Append adds an entry to the bucket for date, creating the bucket on first use.
func (m *MessagesByDate) Append(date string, e Entry) {
	if _, ok := m.buckets[date]; !ok {
		m.dates = append(m.dates, date)
	}
	m.buckets[date] = append(m.buckets[date], e)
}

// Dates returns bucket keys in first-seen order.
func (m *MessagesByDate) Dates() []string {
	out := make([]string, len(m.dates))
	copy(out, m.dates)
	return out
}

// Entries returns the entries stored for date.
func (m *MessagesByDate) Entries(date string) []Entry {
	src := m.buckets[date]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Texts returns the stored texts for date in arrival order.
func (m *MessagesByDate) Texts(date string) []string {
	src := m.buckets[date]
	out := make([]string, 0, len(src))
	for _, e := range src {
		out = append(out, e.Text)
	}
	return out
}

// Len returns the total number of entries across all buckets.
func (m *MessagesByDate) Len() int {
	n := 0
	for _, entries := range m.buckets {
		n += len(entries)
	}
	return n
}

// Records flattens the mapping into CSV records, dates in first-seen order.
func (m *MessagesByDate) Records() []Record {
	records := make([]Record, 0, m.Len())
	for _, date := range m.dates {
		for _, e := range m.buckets[date] {
			records = append(records, Record{Date: date, Message: e.Text})
		}
	}
	return records
}

// String renders the mapping for debug logs.
func (m *MessagesByDate) String() string {
	var sb strings.Builder
	for _, date := range m.dates {
		sb.WriteString(date)
		sb.WriteString(": ")
		sb.WriteString(strings.Join(m.Texts(date), " | "))
		sb.WriteString("\n")
	}
	return sb.String()
}
