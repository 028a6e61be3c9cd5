package dedup

import (
	"fmt"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
)

// MergePolicy определяет, какой из кандидатов узкого окна поглощает сообщение
type MergePolicy string

const (
	// PolicyFirstMatch - первый подходящий кандидат в порядке выборки
	PolicyFirstMatch MergePolicy = "first"
	// PolicyNearest - ближайший кандидат; при равных расстояниях - первый в порядке выборки
	PolicyNearest MergePolicy = "nearest"
)

func ParseMergePolicy(s string) (MergePolicy, error) {
	switch MergePolicy(s) {
	case PolicyFirstMatch, PolicyNearest:
		return MergePolicy(s), nil
	}
	return "", fmt.Errorf("unknown merge policy %q", s)
}

// MergeTarget - выбранная цель автоматического слияния
type MergeTarget struct {
	Incident       *models.Incident
	DistanceMeters float64
}

// SelectMergeTarget ищет инцидент той же категории внутри узкого окна.
// Не обращается к оракулу: решение должно быть дешевым и детерминированным.
func SelectMergeTarget(report *models.Report, incidents []*models.Incident, window Window, policy MergePolicy, now time.Time) (MergeTarget, bool) {
	var (
		best  MergeTarget
		found bool
	)
	for _, incident := range incidents {
		if incident == nil || incident.Location == nil || incident.Category != report.Category {
			continue
		}
		distance := geo.Distance(report.Location, *incident.Location)
		if !window.Contains(distance, elapsedSince(incident.CreatedAt, now)) {
			continue
		}
		if policy != PolicyNearest {
			return MergeTarget{Incident: incident, DistanceMeters: distance}, true
		}
		if !found || distance < best.DistanceMeters {
			best = MergeTarget{Incident: incident, DistanceMeters: distance}
			found = true
		}
	}
	return best, found
}
