// Package feed watches the remote published-posts endpoint and reports when the
// number of live posts for a platform grows.
package feed

import (
	"slices"
	"time"
)

// DefaultPlatform is the mock social network the dashboard publishes to.
const DefaultPlatform = "instaclone"

// StatusPublished marks a post the scheduler has already sent.
const StatusPublished = "published"

// Post is one entry of GET /posts/published.
type Post struct {
	ID          string    `json:"_id"`
	Content     string    `json:"content"`
	Platforms   []string  `json:"platforms"`
	Status      string    `json:"status"`
	IsEvergreen bool      `json:"isEvergreen"`
	ScheduledAt time.Time `json:"scheduledAt"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
}

// Live reports whether the post is visible on platform: it targets the platform
// and is either published or evergreen.
func (p Post) Live(platform string) bool {
	if !slices.Contains(p.Platforms, platform) {
		return false
	}
	return p.Status == StatusPublished || p.IsEvergreen
}

// Published returns the live posts for platform, newest ScheduledAt first.
// The input slice is not modified.
func Published(posts []Post, platform string) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p.Live(platform) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b Post) int {
		return b.ScheduledAt.Compare(a.ScheduledAt)
	})
	return out
}
