package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// ContextWithShutdown returns a context that is cancelled on SIGTERM or SIGINT.
// Calling stop releases the signal handler.
func ContextWithShutdown(parent context.Context, l *zap.Logger) (ctx context.Context, stop func()) {
	return contextWithSignals(parent, l, syscall.SIGTERM, syscall.SIGINT)
}

func contextWithSignals(parent context.Context, l *zap.Logger, signals ...os.Signal) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, signals...)

	go func() {
		select {
		case sig := <-signalChan:
			l.Sugar().Infow("Caught signal, stopping", zap.String("signal", sig.String()))
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(signalChan)
		cancel()
	}
}
