package session

import (
	"strings"
	"time"

	"github.com/chasedut/chatter/internal/api"
)

type Bucket string

const (
	Today      Bucket = "Today"
	Yesterday  Bucket = "Yesterday"
	Last7Days  Bucket = "Last 7 Days"
	Last30Days Bucket = "Last 30 Days"
	Older      Bucket = "Older"
)

// Buckets lists every bucket in display order.
var Buckets = []Bucket{Today, Yesterday, Last7Days, Last30Days, Older}

// DateLayout is the short date shown next to each chat and matched by Filter.
const DateLayout = "1/2/2006"

// Group is one non-empty section of the chat list.
type Group struct {
	Bucket Bucket
	Chats  []api.ChatSummary
}

// BucketFor places created relative to now by calendar day in now's location,
// not by elapsed hours: anything dated yesterday is Yesterday even if it is
// only minutes old. Timestamps in the future count as Today.
func BucketFor(created, now time.Time) Bucket {
	days := dayNumber(now) - dayNumber(created.In(now.Location()))
	switch {
	case days <= 0:
		return Today
	case days == 1:
		return Yesterday
	case days <= 7:
		return Last7Days
	case days <= 30:
		return Last30Days
	default:
		return Older
	}
}

// dayNumber counts calendar days since the epoch for t's wall-clock date.
// Building the date in UTC keeps DST transitions from shifting the count.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// GroupChats buckets chats relative to now. Empty buckets are omitted and
// entries keep their input order within a bucket.
func GroupChats(chats []api.ChatSummary, now time.Time) []Group {
	byBucket := make(map[Bucket][]api.ChatSummary, len(Buckets))
	for _, c := range chats {
		b := BucketFor(c.CreatedAt, now)
		byBucket[b] = append(byBucket[b], c)
	}
	var groups []Group
	for _, b := range Buckets {
		if len(byBucket[b]) == 0 {
			continue
		}
		groups = append(groups, Group{Bucket: b, Chats: byBucket[b]})
	}
	return groups
}

// FormatDate renders the creation date the way the list displays it.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Filter keeps chats whose title or formatted creation date contains query,
// ignoring case. An empty query keeps everything.
func Filter(chats []api.ChatSummary, query string, loc *time.Location) []api.ChatSummary {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return chats
	}
	var out []api.ChatSummary
	for _, c := range chats {
		if strings.Contains(strings.ToLower(c.Title), query) ||
			strings.Contains(FormatDate(c.CreatedAt, loc), query) {
			out = append(out, c)
		}
	}
	return out
}
