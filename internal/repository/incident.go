package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/imcoderdev/emergency-backend/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// incidentColumns - общий список колонок; координаты извлекаются из geography
const incidentColumns = `
	id,
	category,
	description,
	ST_Y(location::geometry) AS latitude,
	ST_X(location::geometry) AS longitude,
	severity,
	severity_tag,
	status,
	corroboration_count,
	verified,
	reporter_id,
	media_url,
	ai_analysis,
	created_at,
	updated_at`

type IncidentRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	cacheTTL    time.Duration
}

func NewIncidentRepository(db *pgxpool.Pool, redisClient *redis.Client, cacheTTL time.Duration) service.IncidentRepository {
	return &IncidentRepository{
		db:          db,
		redisClient: redisClient,
		cacheTTL:    cacheTTL,
	}
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (
			category, description, location, severity, severity_tag, status,
			corroboration_count, verified, reporter_id, media_url, ai_analysis, created_at, updated_at
		)
		VALUES (
			$1, $2,
			CASE WHEN $3::float8 IS NULL THEN NULL
				ELSE ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography END,
			$5, $6, $7, $8, $9, $10, $11, $12, $13, $13
		)
		RETURNING id, created_at, updated_at;
	`
	lon, lat := pointArgs(incident.Location)
	err := r.db.QueryRow(ctx, query,
		incident.Category,
		incident.Description,
		lon,
		lat,
		incident.Severity,
		incident.SeverityTag,
		incident.Status,
		incident.CorroborationCount,
		incident.Verified,
		incident.ReporterID,
		incident.MediaURL,
		jsonArg(incident.AIAnalysis),
		incident.CreatedAt,
	).Scan(&incident.ID, &incident.CreatedAt, &incident.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его UUID
func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// ListIncidents возвращает список инцидентов с пагинацией, новые первыми
func (r *IncidentRepository) ListIncidents(ctx context.Context, page, pageSize int) ([]*models.Incident, error) {
	// рассчитываем смещение
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`
	return r.queryIncidents(ctx, "ListIncidents", query, pageSize, offset)
}

// ListActive возвращает инциденты, не достигшие терминального статуса
func (r *IncidentRepository) ListActive(ctx context.Context, limit int) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE status NOT IN ('Resolved', 'Closed')
		ORDER BY created_at DESC
		LIMIT $1;
	`
	return r.queryIncidents(ctx, "ListActive", query, limit)
}

// FindNear отбирает кандидатов для сопоставления в порядке создания.
// При RadiusMeters <= 0 геофильтр не применяется, записи без координат тоже возвращаются.
func (r *IncidentRepository) FindNear(ctx context.Context, q models.NearQuery) ([]*models.Incident, error) {
	query := `
		SELECT ` + incidentColumns + `
		FROM incidents
		WHERE
			created_at >= $1
			AND ($2::text IS NULL OR category = $2)
			AND (
				$3::float8 <= 0
				OR ST_DWithin(
					location,
					ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography,
					$3
				)
			)
		ORDER BY created_at ASC;
	`
	return r.queryIncidents(ctx, "FindNear", query,
		q.Since,
		categoryArg(q.Category),
		q.RadiusMeters,
		q.Point.Longitude,
		q.Point.Latitude,
	)
}

// IncrementCorroboration атомарно увеличивает счетчик подтверждений.
// Параллельные слияния в один инцидент не теряют инкременты.
func (r *IncidentRepository) IncrementCorroboration(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		UPDATE incidents SET
			corroboration_count = corroboration_count + 1,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + incidentColumns + `;
	`
	return r.updateReturning(ctx, "increment corroboration", query, id)
}

// UpdateStatus устанавливает статус жизненного цикла
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Incident, error) {
	query := `
		UPDATE incidents SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + incidentColumns + `;
	`
	return r.updateReturning(ctx, "update status", query, id, status)
}

// SetVerified отмечает инцидент подтвержденным; Reported и Pending переходят в Verified
func (r *IncidentRepository) SetVerified(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	query := `
		UPDATE incidents SET
			verified = TRUE,
			status = CASE WHEN status IN ('Reported', 'Pending') THEN 'Verified' ELSE status END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + incidentColumns + `;
	`
	return r.updateReturning(ctx, "verify", query, id)
}

// GetIncidentFromCache пытается получить инцидент из Redis
func (r *IncidentRepository) GetIncidentFromCache(ctx context.Context, id uuid.UUID) (*models.Incident, error) {
	val, err := r.redisClient.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get incident from cache: %w", err)
	}

	incident := &models.Incident{}
	if err := json.Unmarshal(val, incident); err != nil {
		return nil, fmt.Errorf("failed to unmarshal incident from cache: %w", err)
	}
	return incident, nil
}

// SetIncidentCache сохраняет инцидент в Redis
func (r *IncidentRepository) SetIncidentCache(ctx context.Context, incident *models.Incident) error {
	val, err := json.Marshal(incident)
	if err != nil {
		return fmt.Errorf("failed to marshal incident for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, cacheKey(incident.ID), val, r.cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set incident in cache: %w", err)
	}
	return nil
}

// InvalidateIncidentCache удаляет инцидент из Redis кэша
func (r *IncidentRepository) InvalidateIncidentCache(ctx context.Context, id uuid.UUID) error {
	if err := r.redisClient.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate incident cache: %w", err)
	}
	return nil
}

func (r *IncidentRepository) updateReturning(ctx context.Context, action, query string, args ...any) (*models.Incident, error) {
	incident, err := scanIncident(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to %s: %w", action, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to %s: %w", action, err)
	}
	return incident, nil
}

func (r *IncidentRepository) queryIncidents(ctx context.Context, method, query string, args ...any) ([]*models.Incident, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents in %s: %w", method, err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row in %s: %w", method, err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration in %s: %w", method, err)
	}
	return incidents, nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	var (
		incident models.Incident
		lat, lon *float64
		analysis []byte
	)
	err := row.Scan(
		&incident.ID,
		&incident.Category,
		&incident.Description,
		&lat,
		&lon,
		&incident.Severity,
		&incident.SeverityTag,
		&incident.Status,
		&incident.CorroborationCount,
		&incident.Verified,
		&incident.ReporterID,
		&incident.MediaURL,
		&analysis,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Location = pointFrom(lat, lon)
	if len(analysis) > 0 {
		incident.AIAnalysis = json.RawMessage(analysis)
	}
	return &incident, nil
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("incident:%s", id.String())
}

// pointFrom собирает координаты; NULL в любой компоненте означает отсутствие точки
func pointFrom(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &geo.Point{Latitude: *lat, Longitude: *lon}
}

// pointArgs возвращает аргументы для ST_MakePoint (долгота, широта)
func pointArgs(p *geo.Point) (lon, lat *float64) {
	if p == nil {
		return nil, nil
	}
	lon, lat = &p.Longitude, &p.Latitude
	return lon, lat
}

func categoryArg(c *models.Category) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}

func jsonArg(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
