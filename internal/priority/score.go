// Package priority вычисляет приоритет инцидента для очереди реагирования.
// Формула является контрактом для диспетчеризации и оповещений:
// любое изменение слагаемых меняет наблюдаемое поведение.
package priority

import (
	"math"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
)

const (
	MinScore = 0
	MaxScore = 200

	defaultSeverityBase = 40
	maxTimeDecay        = 30
	decayStepMinutes    = 10
	decayStepPoints     = 5
	maxCorroboration    = 20
	maxDistancePenalty  = 30.0
	verificationBonus   = 15
)

var severityBase = map[models.Severity]int{
	models.SeverityCritical: 100,
	models.SeverityHigh:     70,
	models.SeverityMedium:   40,
	models.SeverityLow:      10,
}

var statusAdjustment = map[models.Status]int{
	models.StatusInProgress: -20,
	models.StatusResolved:   -50,
}

var categoryBonus = map[models.Category]int{
	models.CategoryMedical:  10,
	models.CategoryFire:     10,
	models.CategoryCrime:    5,
	models.CategoryAccident: 5,
}

// Breakdown - слагаемые приоритета одного инцидента
type Breakdown struct {
	SeverityBase       int     `json:"severity_base"`
	TimeDecay          int     `json:"time_decay"`
	CorroborationBoost int     `json:"corroboration_boost"`
	DistancePenalty    float64 `json:"distance_penalty"`
	VerificationBonus  int     `json:"verification_bonus"`
	StatusAdjustment   int     `json:"status_adjustment"`
	CategoryBonus      int     `json:"category_bonus"`
	Total              int     `json:"total"`
}

// Compute раскладывает приоритет инцидента на слагаемые в момент now.
// responder может быть nil; штраф за расстояние тогда не применяется.
func Compute(incident *models.Incident, responder *geo.Point, now time.Time) Breakdown {
	b := Breakdown{
		SeverityBase:       severityOf(incident.Severity),
		TimeDecay:          timeDecay(now.Sub(incident.CreatedAt)),
		CorroborationBoost: corroborationBoost(incident.CorroborationCount),
		StatusAdjustment:   statusAdjustment[incident.Status],
		CategoryBonus:      categoryBonus[incident.Category],
	}
	if incident.Verified {
		b.VerificationBonus = verificationBonus
	}
	if responder != nil && incident.Location != nil {
		b.DistancePenalty = distancePenalty(geo.Distance(*responder, *incident.Location))
	}

	sum := float64(b.SeverityBase+b.TimeDecay+b.CorroborationBoost+b.VerificationBonus+b.StatusAdjustment+b.CategoryBonus) - b.DistancePenalty
	b.Total = int(math.Round(math.Min(MaxScore, math.Max(MinScore, sum))))
	return b
}

// Score возвращает итоговый приоритет в диапазоне [0, 200]
func Score(incident *models.Incident, responder *geo.Point, now time.Time) int {
	return Compute(incident, responder, now).Total
}

// Label переводит приоритет в метку
func Label(score int) models.PriorityLabel {
	switch {
	case score >= 120:
		return models.PriorityCritical
	case score >= 90:
		return models.PriorityHigh
	case score >= 60:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func severityOf(s models.Severity) int {
	if base, ok := severityBase[s]; ok {
		return base
	}
	return defaultSeverityBase
}

// timeDecay - ступенчатая функция: минус 5 очков за каждые полные 10 минут
func timeDecay(age time.Duration) int {
	if age < 0 {
		age = 0
	}
	steps := int(math.Floor(age.Minutes() / decayStepMinutes))
	decay := maxTimeDecay - steps*decayStepPoints
	if decay < 0 {
		return 0
	}
	return decay
}

func corroborationBoost(count int) int {
	if count < 0 {
		return 0
	}
	return min(count*2, maxCorroboration)
}

func distancePenalty(meters float64) float64 {
	return math.Min(meters/1000*2, maxDistancePenalty)
}
