package event

const ForumCommentCreatedDestination string = "forum_comment_created"
const ForumCommentCreatedConsumerDigest string = "forum_comment_created_digest"

type ForumCommentCreatedMessage struct {
	EventID         string `json:"event_id"`
	CommentID       string `json:"comment_id"`
	ParentCommentID string `json:"parent_comment_id,omitempty"`
	ThreadID        string `json:"thread_id"`
	ThreadAuthorID  int64  `json:"thread_author_id"`
	DiscussionID    string `json:"discussion_id"`
	CourseID        string `json:"course_id"`
	AuthorID        int64  `json:"author_id"`
	AuthorUsername  string `json:"author_username"`
	Body            string `json:"body"`
}
