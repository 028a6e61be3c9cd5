package priority

import (
	"sort"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
)

// Assemble строит очередь: исключает завершенные инциденты, считает приоритет,
// сортирует по убыванию (равные сохраняют исходный порядок) и обрезает до limit.
// limit <= 0 означает без ограничения. Записи не изменяются.
func Assemble(incidents []*models.Incident, responder *geo.Point, limit int, now time.Time) []models.QueueEntry {
	entries := make([]models.QueueEntry, 0, len(incidents))
	for _, incident := range incidents {
		if incident == nil || incident.Status.Terminal() {
			continue
		}
		score := Score(incident, responder, now)
		entry := models.QueueEntry{
			Incident: incident,
			Score:    score,
			Label:    Label(score),
		}
		if responder != nil && incident.Location != nil {
			d := geo.Distance(*responder, *incident.Location)
			entry.DistanceMeters = &d
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
