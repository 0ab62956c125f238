package archive

import (
	"context"
	"fmt"
	"strings"

	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/campushq/forumdigest/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
)

// Archive copies rendered digest bodies to object storage for audit.
type Archive struct {
	store  storage.Storage
	bucket string
	ins    instrument.Instrumentation
}

func New(store storage.Storage, bucket string, ins instrument.Instrumentation) *Archive {
	return &Archive{store: store, bucket: bucket, ins: ins}
}

// Put stores one rendered digest body under a per-user key.
func (a *Archive) Put(ctx context.Context, digestID, userID int64, htmlBody string) error {
	ctx, span := a.ins.Tracer("digest.outbound.archive").Start(ctx, "Put")
	defer span.End()

	key := fmt.Sprintf("digests/%d/%d.html", userID, digestID)
	_, err := a.store.PutObject(ctx, a.bucket, key, strings.NewReader(htmlBody), storage.PutOptions{
		Size:        int64(len(htmlBody)),
		ContentType: "text/html; charset=utf-8",
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
