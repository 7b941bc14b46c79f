// Package organizer groups channel messages into calendar-day buckets.
package organizer

import (
	"fmt"

	"slackdigest/internal/commontypes"
)

// Organize buckets messages by the UTC date of their timestamp. Messages
// authored by selfUserID are stored as "<prefix>: <text>". The input slice is
// not modified, so organizing the same messages twice yields the same result.
func Organize(messages []commontypes.Message, selfUserID, prefix string) *commontypes.MessagesByDate {
	grouped := commontypes.NewMessagesByDate()
	for _, msg := range messages {
		entry := commontypes.Entry{Text: msg.Text, Original: msg.Text}
		if msg.User == selfUserID {
			entry.Self = true
			entry.Text = PrefixText(prefix, msg.Text)
		}
		grouped.Append(commontypes.DateOf(msg.Timestamp), entry)
	}
	return grouped
}

// PrefixText marks a self-authored message.
func PrefixText(prefix, text string) string {
	return fmt.Sprintf("%s: %s", prefix, text)
}
