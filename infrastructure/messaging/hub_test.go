package messaging

import (
	"context"
	"testing"
	"time"

	"brainbrowser/domain/core/valueobjects"
	"brainbrowser/domain/events"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type gaugeValue struct{ v float64 }

func (g *gaugeValue) Set(v float64) { g.v = v }

var ts = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestHub_FansOut(t *testing.T) {
	gauge := &gaugeValue{}
	h := NewHub(gauge, zap.NewNop())
	all := h.Subscribe(8)
	tabsOnly := h.Subscribe(8, events.TypeTabCreated)
	assert.Equal(t, 2, h.Count())
	assert.Equal(t, 2.0, gauge.v)

	h.Publish(context.Background(),
		events.NewTabCreated(valueobjects.TabID(1), ts),
		events.NewViewChanged(valueobjects.ViewTransform{Scale: 1}, 0, ts),
	)

	require.Len(t, all.C(), 2)
	require.Len(t, tabsOnly.C(), 1)

	msg := <-tabsOnly.C()
	assert.Equal(t, events.TypeTabCreated, msg.Type)
	assert.Equal(t, ts.UnixMilli(), msg.Timestamp)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Data, &body))
	assert.Equal(t, events.TypeTabCreated, body["event_type"])
}

func TestHub_SlowSubscriberDropsMessages(t *testing.T) {
	h := NewHub(nil, zap.NewNop())
	sub := h.Subscribe(1)

	for i := 0; i < 3; i++ {
		h.Publish(context.Background(), events.NewTabClosed(valueobjects.TabID(i+1), ts))
	}
	assert.Len(t, sub.C(), 1)
	assert.Equal(t, 2, sub.dropped)
}

func TestHub_Close(t *testing.T) {
	gauge := &gaugeValue{}
	h := NewHub(gauge, zap.NewNop())
	sub := h.Subscribe(1)

	sub.Close()
	sub.Close()
	_, open := <-sub.C()
	assert.False(t, open)
	assert.Zero(t, h.Count())

	other := h.Subscribe(1)
	h.Close()
	_, open = <-other.C()
	assert.False(t, open)
	assert.Zero(t, gauge.v)

	late := h.Subscribe(1)
	_, open = <-late.C()
	assert.False(t, open)
	h.Publish(context.Background(), events.NewTabCreated(valueobjects.TabID(1), ts))
}
