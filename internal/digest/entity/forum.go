package entity

import (
	"strings"
	"time"
)

type ThreadType string

const (
	ThreadTypeDiscussion ThreadType = "discussion"
	ThreadTypeQuestion   ThreadType = "question"
)

type Thread struct {
	ID                  string
	Type                ThreadType
	Title               string
	Body                string
	AuthorID            int64
	AuthorUsername      string
	CommentCount        int64
	UnreadCommentCount  int64
	Read                bool
	LastActivityAt      time.Time
	EndorsedResponses   []Comment
	UnendorsedResponses []Comment
	Children            []Comment
}

// Unread reports whether the thread still has content the user has not
// seen. Legacy digests only include unread threads.
func (t Thread) Unread() bool {
	return !t.Read || t.UnreadCommentCount > 0
}

type Comment struct {
	ID              string
	ParentCommentID string
	ThreadID        string
	AuthorID        int64
	AuthorUsername  string
	Body            string
	Endorsed        bool
	CreatedAt       time.Time
	Children        []Comment
}

type ThreadPage struct {
	Threads []Thread
	Total   int64
}

// ContentItem is one flattened entry of a legacy digest snapshot.
type ContentItem struct {
	ThreadID       string
	ThreadTitle    string
	CommentID      string
	AuthorID       int64
	AuthorUsername string
	Body           string
}

// DiscussionSnapshot is the shared legacy fetch result for one
// discussion: every unread thread with its full response tree flattened
// into a content index, plus per-author contribution counts.
type DiscussionSnapshot struct {
	Threads       []Thread
	ContentIndex  []ContentItem
	Contributions map[int64]int64
}

type Course struct {
	ID       string
	Name     string
	ImageURL string
	EndsAt   *time.Time
}

// Archived reports whether the course has ended.
func (c Course) Archived(now time.Time) bool {
	return c.EndsAt != nil && c.EndsAt.Before(now)
}

type Placement struct {
	DiscussionID string
	DisplayName  string
	ParentName   string
}

// Path renders the placement breadcrumb shown in digest bodies.
func (p Placement) Path() string {
	parts := make([]string, 0, 2)
	if p.ParentName != "" {
		parts = append(parts, p.ParentName)
	}
	if p.DisplayName != "" {
		parts = append(parts, p.DisplayName)
	}

	return strings.Join(parts, " / ")
}
