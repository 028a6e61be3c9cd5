package dedup

import (
	"time"

	"github.com/google/uuid"
	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
)

var (
	testNow    = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	testOrigin = geo.Point{Latitude: 28.6139, Longitude: 77.2090}
)

// north смещает точку на заданное число метров к северу
func north(p geo.Point, meters float64) geo.Point {
	return geo.Point{Latitude: p.Latitude + meters/111194.9266, Longitude: p.Longitude}
}

func newReport(category models.Category) *models.Report {
	return &models.Report{
		Category:    category,
		Description: "smoke from the second floor",
		Location:    testOrigin,
		ReceivedAt:  testNow,
	}
}

func newIncident(category models.Category, metersNorth float64, age time.Duration) *models.Incident {
	loc := north(testOrigin, metersNorth)
	return &models.Incident{
		ID:                 uuid.New(),
		Category:           category,
		Location:           &loc,
		Severity:           models.SeverityMedium,
		Status:             models.StatusReported,
		CorroborationCount: 1,
		CreatedAt:          testNow.Add(-age),
	}
}
