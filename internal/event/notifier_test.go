package event

import (
	"context"
	"errors"
	"testing"

	"github.com/keystorm-labs/buffercore/internal/event/topic"
)

type testEvent struct {
	t topic.Topic
}

func (e testEvent) EventTopic() topic.Topic { return e.t }

func TestNotifier_PublishRunsSubscribersInOrder(t *testing.T) {
	n := NewNotifier()
	top := topic.Topic("document.buffer.changed")

	var order []int
	n.Subscribe(top, func(ctx context.Context, ev any) error {
		order = append(order, 1)
		return nil
	})
	n.Subscribe(top, func(ctx context.Context, ev any) error {
		order = append(order, 2)
		return nil
	})

	if err := n.Publish(context.Background(), testEvent{t: top}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("handlers ran in order %v, want [1 2]", order)
	}
}

func TestNotifier_PublishStopsAtFirstError(t *testing.T) {
	n := NewNotifier()
	top := topic.Topic("document.buffer.changed")

	wantErr := errors.New("boom")
	var secondRan bool
	n.Subscribe(top, func(ctx context.Context, ev any) error { return wantErr })
	n.Subscribe(top, func(ctx context.Context, ev any) error {
		secondRan = true
		return nil
	})

	if err := n.Publish(context.Background(), testEvent{t: top}); !errors.Is(err, wantErr) {
		t.Errorf("Publish() error = %v, want %v", err, wantErr)
	}
	if secondRan {
		t.Error("second handler ran after first returned an error")
	}
}

func TestNotifier_UnsubscribeRemovesHandler(t *testing.T) {
	n := NewNotifier()
	top := topic.Topic("document.overlays.invalidated")

	var ran bool
	unsubscribe := n.Subscribe(top, func(ctx context.Context, ev any) error {
		ran = true
		return nil
	})
	unsubscribe()
	unsubscribe() // must be safe to call twice

	if err := n.Publish(context.Background(), testEvent{t: top}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if ran {
		t.Error("unsubscribed handler still ran")
	}
}

func TestNotifier_PublishIgnoresEventsWithoutTopic(t *testing.T) {
	n := NewNotifier()
	if err := n.Publish(context.Background(), "not a TopicProvider"); err != nil {
		t.Errorf("Publish() error = %v, want nil", err)
	}
}

func TestNotifier_NilNotifierPublishIsNoop(t *testing.T) {
	var n *Notifier
	if err := n.Publish(context.Background(), testEvent{t: topic.Topic("x")}); err != nil {
		t.Errorf("Publish() on nil Notifier error = %v, want nil", err)
	}
}
