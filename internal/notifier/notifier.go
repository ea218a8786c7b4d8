// Package notifier formats and delivers screener output. The delivery
// transport here is the structured log; the interface leaves room for
// external transports owned by other systems.
package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers a formatted message to wherever operators watch.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// LogNotifier writes notifications through the logger at INFO.
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier builds a log-backed notifier.
func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().Str("subject", subject).Msg(body)
	return nil
}
