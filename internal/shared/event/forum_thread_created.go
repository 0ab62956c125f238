package event

const ForumThreadCreatedDestination string = "forum_thread_created"
const ForumThreadCreatedConsumerDigest string = "forum_thread_created_digest"

type ForumThreadCreatedMessage struct {
	EventID        string `json:"event_id"`
	ThreadID       string `json:"thread_id"`
	DiscussionID   string `json:"discussion_id"`
	CourseID       string `json:"course_id"`
	AuthorID       int64  `json:"author_id"`
	AuthorUsername string `json:"author_username"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}
