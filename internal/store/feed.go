package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/questx-lab/prizechest/pkg/pubsub"
	"github.com/questx-lab/prizechest/pkg/xcontext"
)

// ChangeEvent tells other processes which part of the document changed.
type ChangeEvent struct {
	Catalog bool `json:"catalog"`
	Winners bool `json:"winners"`
}

// ChangeFeed carries change events between processes sharing a backend.
type ChangeFeed interface {
	Broadcast(ctx context.Context, event ChangeEvent) error
}

// pubsubFeed broadcasts events over a pubsub topic. Every message is keyed by
// the sending node so a node can skip its own events.
type pubsubFeed struct {
	nodeID    string
	topic     string
	publisher pubsub.Publisher
}

func NewPubSubFeed(nodeID, topic string, publisher pubsub.Publisher) *pubsubFeed {
	return &pubsubFeed{
		nodeID:    nodeID,
		topic:     topic,
		publisher: publisher,
	}
}

func (f *pubsubFeed) Broadcast(ctx context.Context, event ChangeEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return f.publisher.Publish(ctx, f.topic, &pubsub.Pack{
		Key: []byte(f.nodeID),
		Msg: b,
	})
}

// Handler returns a subscribe handler which passes events published by other
// nodes to apply.
func (f *pubsubFeed) Handler(apply func(context.Context, ChangeEvent)) pubsub.SubscribeHandler {
	return func(ctx context.Context, pack *pubsub.Pack, t time.Time) {
		if bytes.Equal(pack.Key, []byte(f.nodeID)) {
			return
		}

		var event ChangeEvent
		if err := json.Unmarshal(pack.Msg, &event); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot decode change event: %v", err)
			return
		}

		apply(ctx, event)
	}
}
