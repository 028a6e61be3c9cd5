// Package notify delivers incident events to every configured sink.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/observability"
	"github.com/sirupsen/logrus"
)

// Sink принимает событие об инциденте
type Sink interface {
	Broadcast(ctx context.Context, event models.Event) error
}

type namedSink struct {
	name string
	sink Sink
}

// Fanout рассылает событие во все приемники. Сбой одного приемника не мешает остальным.
type Fanout struct {
	sinks   []namedSink
	metrics *observability.Metrics
	logger  *logrus.Logger
}

func NewFanout(metrics *observability.Metrics, logger *logrus.Logger) *Fanout {
	return &Fanout{metrics: metrics, logger: logger}
}

// Add регистрирует приемник под именем, используемым в метриках и логах
func (f *Fanout) Add(name string, sink Sink) {
	f.sinks = append(f.sinks, namedSink{name: name, sink: sink})
}

// Broadcast вызывает все приемники и объединяет их ошибки
func (f *Fanout) Broadcast(ctx context.Context, event models.Event) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.sink.Broadcast(ctx, event); err != nil {
			f.metrics.EventsPublished.WithLabelValues(s.name, "error").Inc()
			f.logger.WithFields(logrus.Fields{
				"sink":       s.name,
				"event_kind": event.Kind,
			}).WithError(err).Debug("Sink rejected incident event")
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		f.metrics.EventsPublished.WithLabelValues(s.name, "ok").Inc()
	}
	return errors.Join(errs...)
}
