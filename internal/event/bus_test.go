package event

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishDeliversInOrder(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(func(_ context.Context, evt any) {
		got = append(got, "first:"+evt.(string))
	})
	bus.Subscribe(func(_ context.Context, evt any) {
		got = append(got, "second:"+evt.(string))
	})

	bus.Publish(context.Background(), "a")
	bus.Publish(context.Background(), "b")

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, got)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), struct{}{})
	})
}
