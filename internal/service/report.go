package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/dedup"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// ProcessReport решает судьбу нового сообщения: слияние с инцидентом из узкого окна
// или создание нового инцидента с предупреждениями о возможных дубликатах.
func (s *incidentService) ProcessReport(ctx context.Context, report *models.Report) (*models.ReportResult, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "ProcessReport",
		"category": report.Category,
	})
	log.Info("Processing incoming report")

	if err := report.Validate(); err != nil {
		s.metrics.ReportRejections.WithLabelValues("invalid").Inc()
		log.WithError(err).Warn("Rejected invalid report")
		return nil, fmt.Errorf("service: %w", err)
	}

	now := s.referenceTime(report)
	report.ReceivedAt = now
	category := report.Category

	// Узкое окно: категория и время отбираются в хранилище, расстояние проверяется здесь
	tight, err := s.repo.FindNear(ctx, models.NearQuery{
		Point:    report.Location,
		Since:    now.Add(-s.mergeWindow.MaxAge),
		Category: &category,
	})
	if err != nil {
		s.metrics.ReportRejections.WithLabelValues("store_error").Inc()
		log.WithError(err).Error("Failed to look up merge candidates")
		return nil, fmt.Errorf("service: could not look up merge candidates: %w", err)
	}

	if target, ok := dedup.SelectMergeTarget(report, s.located(log, tight), s.mergeWindow, s.mergePolicy, now); ok {
		return s.merge(ctx, log, target)
	}

	return s.create(ctx, log, report, now)
}

func (s *incidentService) merge(ctx context.Context, log *logrus.Entry, target dedup.MergeTarget) (*models.ReportResult, error) {
	log = log.WithFields(logrus.Fields{
		"incident_id":     target.Incident.ID,
		"distance_meters": target.DistanceMeters,
	})

	updated, err := s.repo.IncrementCorroboration(ctx, target.Incident.ID)
	if err != nil {
		s.metrics.ReportRejections.WithLabelValues("store_error").Inc()
		log.WithError(err).Error("Failed to increment corroboration count")
		return nil, fmt.Errorf("service: could not merge report: %w", err)
	}

	s.invalidate(ctx, log, updated.ID)
	s.publish(ctx, log, models.Event{Kind: models.EventIncidentMerged, Incident: updated, Timestamp: s.clock.Now()})
	s.metrics.ReportsProcessed.WithLabelValues(string(models.OutcomeMerged)).Inc()

	log.WithFields(logrus.Fields{
		"outcome":             models.OutcomeMerged,
		"corroboration_count": updated.CorroborationCount,
	}).Info("Report merged into existing incident")

	return &models.ReportResult{Outcome: models.OutcomeMerged, Incident: updated}, nil
}

func (s *incidentService) create(ctx context.Context, log *logrus.Entry, report *models.Report, now time.Time) (*models.ReportResult, error) {
	category := report.Category
	loose, err := s.repo.FindNear(ctx, models.NearQuery{
		Point:        report.Location,
		RadiusMeters: s.duplicateWindow.RadiusMeters,
		Since:        now.Add(-s.duplicateWindow.MaxAge),
		Category:     &category,
	})
	if err != nil {
		s.metrics.ReportRejections.WithLabelValues("store_error").Inc()
		log.WithError(err).Error("Failed to look up duplicate candidates")
		return nil, fmt.Errorf("service: could not look up duplicate candidates: %w", err)
	}

	duplicates := dedup.Rank(report, s.located(log, loose), s.duplicateWindow, now)
	duplicates = s.refine(ctx, log, report, duplicates)

	severity := report.Severity
	if severity == "" {
		severity = models.SeverityMedium
	}
	location := report.Location

	incident := &models.Incident{
		Category:           report.Category,
		Description:        report.Description,
		Location:           &location,
		Severity:           severity,
		SeverityTag:        severity.Tag(),
		Status:             models.StatusReported,
		CorroborationCount: 1,
		ReporterID:         report.ReporterID,
		MediaURL:           report.MediaURL,
		AIAnalysis:         report.AIAnalysis,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		s.metrics.ReportRejections.WithLabelValues("store_error").Inc()
		log.WithError(err).Error("Failed to create incident in repository")
		return nil, fmt.Errorf("service: could not create incident: %w", err)
	}

	s.publish(ctx, log, models.Event{
		Kind:       models.EventIncidentCreated,
		Incident:   incident,
		Duplicates: duplicates,
		Timestamp:  s.clock.Now(),
	})
	s.metrics.ReportsProcessed.WithLabelValues(string(models.OutcomeCreated)).Inc()
	s.metrics.DuplicateWarnings.Observe(float64(len(duplicates)))

	log.WithFields(logrus.Fields{
		"incident_id": incident.ID,
		"outcome":     models.OutcomeCreated,
		"duplicates":  len(duplicates),
	}).Info("Incident created from report")

	return &models.ReportResult{Outcome: models.OutcomeCreated, Incident: incident, Duplicates: duplicates}, nil
}

// refine уточняет предупреждения оракулом; любая ошибка оставляет эвристический список
func (s *incidentService) refine(ctx context.Context, log *logrus.Entry, report *models.Report, candidates []models.DuplicateCandidate) []models.DuplicateCandidate {
	if s.oracle == nil || len(candidates) == 0 {
		s.metrics.OracleRequests.WithLabelValues("skipped").Inc()
		return candidates
	}

	started := time.Now()
	refined, err := dedup.Refine(ctx, s.oracle, report, candidates, s.cfg.OracleTimeout)
	s.metrics.OracleDuration.Observe(time.Since(started).Seconds())

	switch {
	case errors.Is(err, dedup.ErrOracleTimeout):
		s.metrics.OracleRequests.WithLabelValues("timeout").Inc()
		log.WithError(err).Warn("Similarity oracle timed out, using heuristic confidence")
	case err != nil:
		s.metrics.OracleRequests.WithLabelValues("error").Inc()
		log.WithError(err).Warn("Similarity oracle failed, using heuristic confidence")
	default:
		s.metrics.OracleRequests.WithLabelValues("success").Inc()
	}
	return refined
}

// located отбрасывает записи без координат: такие записи не участвуют в сопоставлении
func (s *incidentService) located(log *logrus.Entry, incidents []*models.Incident) []*models.Incident {
	kept := make([]*models.Incident, 0, len(incidents))
	for _, incident := range incidents {
		if incident == nil {
			continue
		}
		if incident.Location == nil {
			s.metrics.SkippedCandidates.Inc()
			log.WithField("incident_id", incident.ID).Warn("Skipping stored incident without location")
			continue
		}
		kept = append(kept, incident)
	}
	return kept
}
