package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/campushq/forumdigest/internal/digest/entity"
	"github.com/campushq/forumdigest/internal/pkg/config"
	"github.com/campushq/forumdigest/internal/pkg/goerror"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Client reads course and placement display metadata from the catalog
// service, caching lookups in redis for the duration of a cycle.
type Client struct {
	http     *http.Client
	redis    *redis.Client
	baseURL  string
	cacheTTL time.Duration
	ins      instrument.Instrumentation
}

func NewClient(cfg config.Config, rdb *redis.Client, ins instrument.Instrumentation) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.GetSecond("outbound.catalog.timeout")},
		redis:    rdb,
		baseURL:  cfg.GetString("outbound.catalog.base_url"),
		cacheTTL: cfg.GetMinute("outbound.catalog.cache_ttl"),
		ins:      ins,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("digest.outbound.catalog").Start(ctx, name)
}

func (c *Client) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (c *Client) getJSON(ctx context.Context, path, cacheKey string, out any) error {
	if c.redis != nil {
		if raw, err := c.redis.Get(ctx, cacheKey).Bytes(); err == nil {
			return json.Unmarshal(raw, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return goerror.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog api status %d for %s", resp.StatusCode, path)
	}

	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return err
	}

	if c.redis != nil {
		if err := c.redis.Set(ctx, cacheKey, []byte(raw), c.cacheTTL).Err(); err != nil {
			slog.WarnContext(ctx, "failed to cache catalog response", "key", cacheKey, "error", err)
		}
	}

	return json.Unmarshal(raw, out)
}

type courseModel struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	ImageURL string     `json:"image_url"`
	EndsAt   *time.Time `json:"ends_at"`
}

type placementModel struct {
	DiscussionID string `json:"discussion_id"`
	DisplayName  string `json:"display_name"`
	ParentName   string `json:"parent_name"`
}

func (c *Client) GetCourse(ctx context.Context, courseID string) (_ *entity.Course, err error) {
	ctx, span := c.startSpan(ctx, "GetCourse")
	defer func() { c.endSpan(span, err) }()

	var model courseModel
	path := "/api/v1/courses/" + url.PathEscape(courseID)
	if err = c.getJSON(ctx, path, "digest:catalog:course:"+courseID, &model); err != nil {
		return nil, err
	}

	return &entity.Course{
		ID:       model.ID,
		Name:     model.Name,
		ImageURL: model.ImageURL,
		EndsAt:   model.EndsAt,
	}, nil
}

// GetPlacement resolves where a discussion lives inside its course. A
// not-found here means the discussion block was removed from the course
// outline.
func (c *Client) GetPlacement(ctx context.Context, courseID, discussionID string) (_ *entity.Placement, err error) {
	ctx, span := c.startSpan(ctx, "GetPlacement")
	defer func() { c.endSpan(span, err) }()

	var model placementModel
	path := "/api/v1/courses/" + url.PathEscape(courseID) + "/placements/" + url.PathEscape(discussionID)
	if err = c.getJSON(ctx, path, "digest:catalog:placement:"+courseID+":"+discussionID, &model); err != nil {
		return nil, err
	}

	return &entity.Placement{
		DiscussionID: model.DiscussionID,
		DisplayName:  model.DisplayName,
		ParentName:   model.ParentName,
	}, nil
}
