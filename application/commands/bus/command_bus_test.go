package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoCommand struct {
	Text string
}

func (c echoCommand) Validate() error {
	if c.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

type otherCommand struct{}

func (otherCommand) Validate() error { return nil }

type recordingMetrics struct {
	names []string
	errs  []error
}

func (m *recordingMetrics) ObserveCommand(name string, _ time.Duration, err error) {
	m.names = append(m.names, name)
	m.errs = append(m.errs, err)
}

type clearCounter struct{ n int }

func (c *clearCounter) Clear() { c.n++ }

func echo(_ context.Context, cmd echoCommand) (string, error) {
	if cmd.Text == "fail" {
		return "", errors.New("boom")
	}
	return cmd.Text, nil
}

func TestCommandBus_Send(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(echoCommand{}, HandlerOf(echo)))

	tests := []struct {
		name    string
		cmd     Command
		want    interface{}
		wantErr error
	}{
		{"dispatches", echoCommand{Text: "hi"}, "hi", nil},
		{"validation", echoCommand{}, nil, ErrValidationFailed},
		{"unregistered", otherCommand{}, nil, ErrHandlerNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := b.Send(context.Background(), tt.cmd)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandBus_RegisterTwice(t *testing.T) {
	b := NewCommandBus()
	require.NoError(t, b.Register(echoCommand{}, HandlerOf(echo)))
	assert.Error(t, b.Register(echoCommand{}, HandlerOf(echo)))
}

func TestCommandBus_MiddlewareOrder(t *testing.T) {
	var trail []string
	mark := func(name string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) (interface{}, error) {
				trail = append(trail, name)
				return next.Handle(ctx, cmd)
			})
		}
	}

	metrics := &recordingMetrics{}
	cache := &clearCounter{}
	b := NewCommandBus(
		mark("outer"),
		mark("inner"),
		LoggingMiddleware(zap.NewNop()),
		TracingMiddleware(),
		MetricsMiddleware(metrics),
		InvalidationMiddleware(cache),
	)
	require.NoError(t, b.Register(echoCommand{}, HandlerOf(echo)))

	_, err := b.Send(context.Background(), echoCommand{Text: "ok"})
	require.NoError(t, err)
	_, err = b.Send(context.Background(), echoCommand{Text: "fail"})
	require.Error(t, err)

	assert.Equal(t, []string{"outer", "inner", "outer", "inner"}, trail)
	assert.Equal(t, []string{"echoCommand", "echoCommand"}, metrics.names)
	assert.NoError(t, metrics.errs[0])
	assert.Error(t, metrics.errs[1])
	assert.Equal(t, 2, cache.n)
}

func TestHandlerOf_RejectsOtherTypes(t *testing.T) {
	h := HandlerOf(echo)
	_, err := h.Handle(context.Background(), otherCommand{})
	assert.ErrorIs(t, err, ErrUnexpectedCommand)
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "echoCommand", CommandName(echoCommand{}))
	assert.Equal(t, "echoCommand", CommandName(&echoCommand{}))
}
