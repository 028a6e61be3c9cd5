// Package dedup решает, описывает ли новое сообщение уже известный инцидент:
// эвристическая оценка дубликатов, выбор цели автоматического слияния
// и смешивание эвристики с семантической оценкой внешнего оракула.
package dedup

import (
	"math"
	"sort"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
)

const (
	// DuplicateThreshold - кандидаты с уверенностью не выше порога отбрасываются
	DuplicateThreshold = 40
	typeMatchBonus     = 20.0
)

// Window - пространственно-временное окно поиска кандидатов
type Window struct {
	RadiusMeters float64
	MaxAge       time.Duration
}

var (
	// MergeWindow - узкое окно автоматического слияния
	MergeWindow = Window{RadiusMeters: 100, MaxAge: 30 * time.Minute}
	// DuplicateWindow - широкое окно предупреждений о дубликатах
	DuplicateWindow = Window{RadiusMeters: 500, MaxAge: 2 * time.Hour}
)

// Contains сообщает, попадает ли кандидат в окно
func (w Window) Contains(distanceMeters float64, elapsed time.Duration) bool {
	return distanceMeters <= w.RadiusMeters && elapsed <= w.MaxAge
}

// DistanceScore: 100 в точке сообщения, линейно до 0 на 500 м
func DistanceScore(distanceMeters float64) float64 {
	return math.Max(0, 100-distanceMeters/5)
}

// TimeScore: 100 в момент сообщения, линейно до 0 через 120 минут
func TimeScore(elapsed time.Duration) float64 {
	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	return math.Max(0, 100-elapsedMs/72000)
}

// HeuristicConfidence объединяет подоценки в уверенность 0..100
func HeuristicConfidence(distanceMeters float64, elapsed time.Duration, sameCategory bool) int {
	total := DistanceScore(distanceMeters) + TimeScore(elapsed)
	if sameCategory {
		total += typeMatchBonus
	}
	return clampConfidence(int(math.Round(total / 2.2)))
}

// Score вычисляет эвристическую оценку одного кандидата относительно момента now.
// Кандидат без координат не оценивается.
func Score(report *models.Report, incident *models.Incident, now time.Time) (models.DuplicateCandidate, bool) {
	if incident == nil || incident.Location == nil {
		return models.DuplicateCandidate{}, false
	}
	distance := geo.Distance(report.Location, *incident.Location)
	elapsed := elapsedSince(incident.CreatedAt, now)
	confidence := HeuristicConfidence(distance, elapsed, incident.Category == report.Category)

	return models.DuplicateCandidate{
		Incident:            incident,
		DistanceMeters:      distance,
		Elapsed:             elapsed,
		HeuristicConfidence: confidence,
		Confidence:          confidence,
	}, true
}

// Rank оценивает кандидатов из окна, отбрасывает слабые и упорядочивает
// по убыванию уверенности. При равенстве сохраняется порядок выборки.
func Rank(report *models.Report, incidents []*models.Incident, window Window, now time.Time) []models.DuplicateCandidate {
	candidates := make([]models.DuplicateCandidate, 0, len(incidents))
	for _, incident := range incidents {
		candidate, ok := Score(report, incident, now)
		if !ok || !window.Contains(candidate.DistanceMeters, candidate.Elapsed) {
			continue
		}
		if candidate.HeuristicConfidence <= DuplicateThreshold {
			continue
		}
		candidates = append(candidates, candidate)
	}
	sortByConfidence(candidates)
	return candidates
}

func sortByConfidence(candidates []models.DuplicateCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
}

func elapsedSince(createdAt, now time.Time) time.Duration {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func clampConfidence(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
