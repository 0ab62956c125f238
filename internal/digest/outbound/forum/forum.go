package forum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/config"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client reads threads and comments from the forum service API.
type Client struct {
	http       *http.Client
	baseURL    string
	retryDelay time.Duration
	maxRetries uint64
	ins        instrument.Instrumentation
}

func NewClient(cfg config.Config, ins instrument.Instrumentation) *Client {
	return &Client{
		http:       &http.Client{Timeout: cfg.GetSecond("outbound.forum.timeout")},
		baseURL:    cfg.GetString("outbound.forum.base_url"),
		retryDelay: cfg.GetSecond("outbound.forum.retry_delay"),
		maxRetries: cfg.GetUint64("outbound.forum.max_retries"),
		ins:        ins,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("digest.outbound.forum").Start(ctx, name)
}

func (c *Client) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.retryDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return goerror.ErrNotFound
		case resp.StatusCode >= http.StatusInternalServerError:
			return retry.RetryableError(fmt.Errorf("forum api status %d for %s", resp.StatusCode, path))
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("forum api status %d for %s", resp.StatusCode, path)
		}

		return json.NewDecoder(resp.Body).Decode(out)
	})
}

type threadModel struct {
	ID                   string         `json:"id"`
	Type                 string         `json:"thread_type"`
	Title                string         `json:"title"`
	Body                 string         `json:"body"`
	UserID               int64          `json:"user_id"`
	Username             string         `json:"username"`
	CommentsCount        int64          `json:"comments_count"`
	UnreadCommentsCount  int64          `json:"unread_comments_count"`
	Read                 bool           `json:"read"`
	LastActivityAt       time.Time      `json:"last_activity_at"`
	Children             []commentModel `json:"children"`
	EndorsedResponses    []commentModel `json:"endorsed_responses"`
	NonEndorsedResponses []commentModel `json:"non_endorsed_responses"`
	RespTotal            int64          `json:"resp_total"`
}

type commentModel struct {
	ID        string         `json:"id"`
	ParentID  string         `json:"parent_id"`
	ThreadID  string         `json:"thread_id"`
	UserID    int64          `json:"user_id"`
	Username  string         `json:"username"`
	Body      string         `json:"body"`
	Endorsed  bool           `json:"endorsed"`
	CreatedAt time.Time      `json:"created_at"`
	Children  []commentModel `json:"children"`
}

type threadListModel struct {
	Collection  []threadModel `json:"collection"`
	ThreadCount int64         `json:"thread_count"`
}

func toComments(models []commentModel) []entity.Comment {
	if len(models) == 0 {
		return nil
	}

	out := make([]entity.Comment, 0, len(models))
	for _, m := range models {
		out = append(out, entity.Comment{
			ID:              m.ID,
			ParentCommentID: m.ParentID,
			ThreadID:        m.ThreadID,
			AuthorID:        m.UserID,
			AuthorUsername:  m.Username,
			Body:            m.Body,
			Endorsed:        m.Endorsed,
			CreatedAt:       m.CreatedAt,
			Children:        toComments(m.Children),
		})
	}

	return out
}

func toThread(m threadModel) entity.Thread {
	return entity.Thread{
		ID:                  m.ID,
		Type:                entity.ThreadType(m.Type),
		Title:               m.Title,
		Body:                m.Body,
		AuthorID:            m.UserID,
		AuthorUsername:      m.Username,
		CommentCount:        m.CommentsCount,
		UnreadCommentCount:  m.UnreadCommentsCount,
		Read:                m.Read,
		LastActivityAt:      m.LastActivityAt,
		Children:            toComments(m.Children),
		EndorsedResponses:   toComments(m.EndorsedResponses),
		UnendorsedResponses: toComments(m.NonEndorsedResponses),
	}
}

// ListThreads fetches the user-scoped thread list of one discussion,
// sorted by most recent activity.
func (c *Client) ListThreads(ctx context.Context, discussionID, courseID string, userID int64) (_ entity.ThreadPage, err error) {
	ctx, span := c.startSpan(ctx, "ListThreads")
	defer func() { c.endSpan(span, err) }()

	q := url.Values{}
	q.Set("course_id", courseID)
	q.Set("user_id", strconv.FormatInt(userID, 10))
	q.Set("sort_key", "activity")
	q.Set("page", "1")
	q.Set("per_page", "1000")

	var model threadListModel
	if err = c.getJSON(ctx, "/api/v1/discussions/"+url.PathEscape(discussionID)+"/threads", q, &model); err != nil {
		return entity.ThreadPage{}, err
	}

	threads := make([]entity.Thread, 0, len(model.Collection))
	for _, t := range model.Collection {
		threads = append(threads, toThread(t))
	}

	return entity.ThreadPage{Threads: threads, Total: model.ThreadCount}, nil
}

// GetThread fetches one page of a thread's responses. respTotal is the
// server-reported total used to drive the pagination loop.
func (c *Client) GetThread(ctx context.Context, threadID string, skip, limit int64) (_ *entity.Thread, respTotal int64, err error) {
	ctx, span := c.startSpan(ctx, "GetThread")
	defer func() { c.endSpan(span, err) }()

	q := url.Values{}
	q.Set("resp_skip", strconv.FormatInt(skip, 10))
	q.Set("resp_limit", strconv.FormatInt(limit, 10))

	var model threadModel
	if err = c.getJSON(ctx, "/api/v1/threads/"+url.PathEscape(threadID), q, &model); err != nil {
		return nil, 0, err
	}

	thread := toThread(model)
	return &thread, model.RespTotal, nil
}

// GetComment fetches one comment by id, used to resolve the parent of a
// reply.
func (c *Client) GetComment(ctx context.Context, commentID string) (_ *entity.Comment, err error) {
	ctx, span := c.startSpan(ctx, "GetComment")
	defer func() { c.endSpan(span, err) }()

	var model commentModel
	if err = c.getJSON(ctx, "/api/v1/comments/"+url.PathEscape(commentID), url.Values{}, &model); err != nil {
		return nil, err
	}

	comments := toComments([]commentModel{model})
	return &comments[0], nil
}
