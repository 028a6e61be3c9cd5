package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imcoderdev/emergency-backend/internal/config"
	"github.com/imcoderdev/emergency-backend/internal/dedup"
	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/mocks.go -package=mocks

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	ListActive(ctx context.Context, limit int) ([]*models.Incident, error)
	FindNear(ctx context.Context, query models.NearQuery) ([]*models.Incident, error)
	IncrementCorroboration(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Incident, error)
	SetVerified(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	SetIncidentCache(ctx context.Context, incident *models.Incident) error
	InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error
}

// SimilarityOracle - внешний сервис семантического сравнения описаний
type SimilarityOracle interface {
	Compare(ctx context.Context, report *models.Report, candidates []models.DuplicateCandidate) ([]models.SimilarityJudgment, error)
}

// Notifier рассылает события об инцидентах подписчикам
type Notifier interface {
	Broadcast(ctx context.Context, event models.Event) error
}

// IncidentService определяет контракт для бизнес-логики обработки сообщений и очереди реагирования
type IncidentService interface {
	ProcessReport(ctx context.Context, report *models.Report) (*models.ReportResult, error)
	GetQueue(ctx context.Context, responder *geo.Point, limit int) ([]models.QueueEntry, error)
	GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
	ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Incident, error)
	VerifyIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error)
}

type incidentService struct {
	repo     IncidentRepository
	oracle   SimilarityOracle
	notifier Notifier
	logger   *logrus.Logger
	cfg      *config.Config
	metrics  *observability.Metrics
	clock    clockwork.Clock

	mergeWindow     dedup.Window
	duplicateWindow dedup.Window
	mergePolicy     dedup.MergePolicy
}

// NewIncidentService собирает сервис. oracle может быть nil: тогда предупреждения о дубликатах
// строятся только по эвристике.
func NewIncidentService(
	repo IncidentRepository,
	oracle SimilarityOracle,
	notifier Notifier,
	logger *logrus.Logger,
	cfg *config.Config,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) IncidentService {
	policy, err := dedup.ParseMergePolicy(cfg.MergePolicy)
	if err != nil {
		logger.WithError(err).Warn("Unknown merge policy, falling back to first match")
		policy = dedup.PolicyFirstMatch
	}

	return &incidentService{
		repo:            repo,
		oracle:          oracle,
		notifier:        notifier,
		logger:          logger,
		cfg:             cfg,
		metrics:         metrics,
		clock:           clock,
		mergeWindow:     dedup.Window{RadiusMeters: cfg.MergeRadiusMeters, MaxAge: cfg.MergeWindow},
		duplicateWindow: dedup.Window{RadiusMeters: cfg.DuplicateRadiusMeters, MaxAge: cfg.DuplicateWindow},
		mergePolicy:     policy,
	}
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.repo.GetIncidentFromCache(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Info("Incident fetched from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.repo.SetIncidentCache(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией
func (s *incidentService) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	if page < 1 {
		page = 1
	}

	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	log := s.logger.WithFields(logrus.Fields{
		"service":   "incident",
		"method":    "ListIncidents",
		"page":      page,
		"page_size": pageSize,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListIncidents(ctx, page, pageSize)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// UpdateStatus меняет статус жизненного цикла. Из Closed выйти нельзя.
func (s *incidentService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"status":      status,
	})
	log.Info("Attempting to update incident status")

	if !status.Valid() {
		return nil, fmt.Errorf("service: %w: unknown status %q", models.ErrInvalidStatus, status)
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Attempted to update a non-existent incident")
		return nil, fmt.Errorf("service: could not get incident for status update: %w", err)
	}
	if existing.Status == models.StatusClosed && status != models.StatusClosed {
		log.Warn("Rejected transition out of Closed")
		return nil, fmt.Errorf("service: %w: incident %s is closed", models.ErrInvalidStatus, id)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		log.WithError(err).Error("Failed to update incident status in repository")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	s.invalidate(ctx, log, id)
	s.publish(ctx, log, models.Event{Kind: models.EventIncidentUpdated, Incident: updated, Timestamp: s.clock.Now()})

	log.Info("Incident status updated successfully")
	return updated, nil
}

// VerifyIncident отмечает инцидент как подтвержденный ответственным лицом
func (s *incidentService) VerifyIncident(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "VerifyIncident",
		"incident_id": id,
	})
	log.Info("Attempting to verify incident")

	updated, err := s.repo.SetVerified(ctx, id)
	if err != nil {
		log.WithError(err).Error("Failed to verify incident in repository")
		return nil, fmt.Errorf("service: could not verify incident: %w", err)
	}

	s.invalidate(ctx, log, id)
	s.publish(ctx, log, models.Event{Kind: models.EventIncidentUpdated, Incident: updated, Timestamp: s.clock.Now()})

	log.Info("Incident verified successfully")
	return updated, nil
}

func (s *incidentService) invalidate(ctx context.Context, log *logrus.Entry, id uuid.UUID) {
	if err := s.repo.InvalidateIncidentCache(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}
}

// publish отправляет событие; сбой рассылки не влияет на результат операции
func (s *incidentService) publish(ctx context.Context, log *logrus.Entry, event models.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Broadcast(ctx, event); err != nil {
		log.WithError(err).WithField("event_kind", event.Kind).Warn("Failed to broadcast incident event")
	}
}

// referenceTime - момент, относительно которого считаются окна сопоставления.
// Время из будущего заменяется текущим.
func (s *incidentService) referenceTime(report *models.Report) time.Time {
	now := s.clock.Now()
	if report.ReceivedAt.IsZero() || report.ReceivedAt.After(now) {
		return now
	}
	return report.ReceivedAt
}
