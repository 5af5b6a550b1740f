package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func Test_ContextWithShutdown(t *testing.T) {
	t.Run("Should cancel the context when a signal arrives", func(t *testing.T) {
		ctx, stop := contextWithSignals(context.Background(), zap.NewNop(), syscall.SIGUSR1)
		defer stop()

		assert.Nil(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("context was not cancelled")
		}
	})
	t.Run("Should cancel the context on stop", func(t *testing.T) {
		ctx, stop := ContextWithShutdown(context.Background(), zap.NewNop())
		stop()
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
	})
}
