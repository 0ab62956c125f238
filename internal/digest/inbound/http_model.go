package inbound

type SavePreferenceRequest struct {
	UserID            int64  `json:"user_id,string"`
	DiscussionID      string `json:"discussion_id"`
	CourseID          string `json:"course_id"`
	Cadence           string `json:"how_often"`
	ThreadCreated     bool   `json:"thread_created"`
	CommentCreated    bool   `json:"comment_created"`
	OwnCommentCreated bool   `json:"own_comment_created"`
}

type PreferenceResponse struct {
	UserID            int64  `json:"user_id,string"`
	DiscussionID      string `json:"discussion_id"`
	CourseID          string `json:"course_id"`
	Cadence           string `json:"how_often"`
	ThreadCreated     bool   `json:"thread_created"`
	CommentCreated    bool   `json:"comment_created"`
	OwnCommentCreated bool   `json:"own_comment_created"`
	LastSentAt        string `json:"last_sent_at,omitempty"`
}

type CycleStatsResponse struct {
	Cadence     string `json:"cadence"`
	Discussions int64  `json:"discussions"`
	Dispatched  int64  `json:"dispatched"`
	Skipped     int64  `json:"skipped"`
	Failed      int64  `json:"failed"`
}
