package entity

import (
	"time"

	"github.com/campushq/forumdigest/internal/pkg/valueobject"
)

type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusQueued  DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 2
	DeliveryStatusFailed  DeliveryStatus = 3
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusQueued:
		return "queued"
	case DeliveryStatusSent:
		return "sent"
	case DeliveryStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type DigestKind int16

const (
	DigestKindUnknown   DigestKind = 0
	DigestKindImmediate DigestKind = 1
	DigestKindBatch     DigestKind = 2
)

func (k DigestKind) String() string {
	switch k {
	case DigestKindImmediate:
		return "immediate"
	case DigestKindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

type CreateDigest struct {
	ID           int64
	UserID       int64
	DiscussionID string
	CourseID     string
	Kind         DigestKind
	Cadence      Cadence
	Data         valueobject.JSONMap
}

type CreateDeliveryLog struct {
	DigestID int64
	Status   DeliveryStatus
}

type UpdateDeliveryLog struct {
	ID               int64
	Status           DeliveryStatus
	ProviderResponse valueobject.JSONMap
	NextRetryAt      *time.Time
}

// DigestPayload is the per-user body of one batch digest in the
// lightweight mode: aggregated counts plus display metadata, no thread
// snapshot.
type DigestPayload struct {
	UserID         int64
	Email          string
	DiscussionID   string
	CourseID       string
	Cadence        Cadence
	NewThreads     int64
	NewComments    int64
	CourseName     string
	CourseImageURL string
	PlacementName  string
	PlacementPath  string
	PlatformName   string
	SiteURL        string
	PreferencesURL string
}

// CycleStats summarizes one batch cycle run.
type CycleStats struct {
	Discussions int64 `json:"discussions"`
	Dispatched  int64 `json:"dispatched"`
	Skipped     int64 `json:"skipped"`
	Failed      int64 `json:"failed"`
}
