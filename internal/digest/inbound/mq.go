package inbound

import (
	"context"
	"log/slog"
	"slices"

	"github.com/campushq/forumdigest/internal/pkg/config"
	"github.com/campushq/forumdigest/internal/pkg/goroutine"
	"github.com/campushq/forumdigest/internal/pkg/instrument"
	"github.com/campushq/forumdigest/internal/pkg/messaging"
	"github.com/campushq/forumdigest/internal/pkg/uid"
	"github.com/campushq/forumdigest/internal/shared/event"
)

func RegisterMQConsumer(
	ctx context.Context,
	cfg config.Config,
	routine *goroutine.Manager,
	messenger messaging.Messaging,
	uuid uid.StringID,
	uc uc,
	ins instrument.Instrumentation,
) {
	mqHandler := &MQHandler{uc: uc, uuid: uuid, ins: ins}

	enableConsumerNames := cfg.GetArray("modules.digest.consumer_names")

	var consumers = []struct {
		name               string
		topic              string // destination where publisher sent message
		nsqConsumerName    string // for nsq
		natsConsumerName   string // for nats
		kafkaConsumerName  string // for kafka
		pubsubConsumerName string // for google pubusb
		handler            messaging.Handler
	}{
		{
			name:               event.ForumThreadCreatedConsumerDigest,
			topic:              event.ForumThreadCreatedDestination,
			nsqConsumerName:    event.ForumThreadCreatedConsumerDigest,
			natsConsumerName:   event.ForumThreadCreatedConsumerDigest,
			kafkaConsumerName:  event.ForumThreadCreatedConsumerDigest,
			pubsubConsumerName: event.ForumThreadCreatedConsumerDigest,
			handler:            mqHandler.ThreadCreated,
		},
		{
			name:               event.ForumCommentCreatedConsumerDigest,
			topic:              event.ForumCommentCreatedDestination,
			nsqConsumerName:    event.ForumCommentCreatedConsumerDigest,
			natsConsumerName:   event.ForumCommentCreatedConsumerDigest,
			kafkaConsumerName:  event.ForumCommentCreatedConsumerDigest,
			pubsubConsumerName: event.ForumCommentCreatedConsumerDigest,
			handler:            mqHandler.CommentCreated,
		},
		{
			name:               event.DigestEmailConsumerDigest,
			topic:              event.DigestEmailDestination,
			nsqConsumerName:    event.DigestEmailConsumerDigest,
			natsConsumerName:   event.DigestEmailConsumerDigest,
			kafkaConsumerName:  event.DigestEmailConsumerDigest,
			pubsubConsumerName: event.DigestEmailConsumerDigest,
			handler:            mqHandler.DigestEmail,
		},
	}

	for _, consumer := range consumers {
		if len(enableConsumerNames) > 0 && slices.Contains(enableConsumerNames, consumer.name) {
			routine.Go(ctx, func(pCtx context.Context) error {
				slog.InfoContext(ctx, "Running job for handling consumer", "consumer", consumer.name)
				return messenger.Consume(pCtx,
					consumer.topic,
					consumer.handler,
					messaging.WithChannel(consumer.nsqConsumerName),
					messaging.WithQueueGroup(consumer.natsConsumerName),
					messaging.WithGroup(consumer.kafkaConsumerName),
					messaging.WithSubscription(consumer.pubsubConsumerName),
					messaging.WithAutoAck(true),
					messaging.WithConcurrency(10),
					messaging.WithMaxInFlight(10),
				)
			})
		}
	}
}
