package models

import (
	"time"

	"github.com/imcoderdev/emergency-backend/internal/geo"
)

// NearQuery описывает окно поиска кандидатов в хранилище.
// RadiusMeters <= 0 отключает геопространственный фильтр (только категория и время).
type NearQuery struct {
	Point        geo.Point
	RadiusMeters float64
	Since        time.Time
	Category     *Category
}
