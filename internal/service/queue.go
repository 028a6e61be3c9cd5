package service

import (
	"context"
	"fmt"

	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/priority"
	"github.com/sirupsen/logrus"
)

// GetQueue пересчитывает приоритеты всех активных инцидентов на момент запроса.
// responder == nil означает, что штраф за расстояние не применяется.
func (s *incidentService) GetQueue(ctx context.Context, responder *geo.Point, limit int) ([]models.QueueEntry, error) {
	if limit < 1 {
		limit = s.cfg.QueueDefaultLimit
	}
	if limit > s.cfg.QueueMaxLimit {
		limit = s.cfg.QueueMaxLimit
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "GetQueue",
		"limit":     limit,
		"responder": responder != nil,
	})
	log.Info("Assembling response queue")

	if responder != nil {
		if err := responder.Validate(); err != nil {
			return nil, fmt.Errorf("service: invalid responder location: %w", err)
		}
	}

	active, err := s.repo.ListActive(ctx, s.cfg.QueueScanLimit)
	if err != nil {
		log.WithError(err).Error("Failed to list active incidents")
		return nil, fmt.Errorf("service: could not list active incidents: %w", err)
	}

	queue := priority.Assemble(active, responder, limit, s.clock.Now())

	s.metrics.QueueRequests.Inc()
	s.metrics.QueueSize.Observe(float64(len(queue)))
	log.WithField("count", len(queue)).Info("Response queue assembled")
	return queue, nil
}
