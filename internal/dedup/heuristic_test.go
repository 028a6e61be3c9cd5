package dedup

import (
	"testing"
	"time"

	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubScores(t *testing.T) {
	assert.Equal(t, 100.0, DistanceScore(0))
	assert.Equal(t, 50.0, DistanceScore(250))
	assert.Equal(t, 0.0, DistanceScore(500))
	assert.Equal(t, 0.0, DistanceScore(900))

	assert.Equal(t, 100.0, TimeScore(0))
	assert.Equal(t, 50.0, TimeScore(60*time.Minute))
	assert.Equal(t, 0.0, TimeScore(120*time.Minute))
	assert.Equal(t, 0.0, TimeScore(5*time.Hour))
}

func TestHeuristicConfidence(t *testing.T) {
	tests := []struct {
		name         string
		distance     float64
		elapsed      time.Duration
		sameCategory bool
		want         int
	}{
		{"same point same moment same type", 0, 0, true, 100},
		{"same point same moment other type", 0, 0, false, 91},
		{"mid window same type", 250, 60 * time.Minute, true, 55},
		{"far and old other type", 400, 100 * time.Minute, false, 17},
		{"close and fresh same type", 80, 10 * time.Minute, true, 89},
		{"beyond every window", 5000, 10 * time.Hour, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeuristicConfidence(tt.distance, tt.elapsed, tt.sameCategory))
		})
	}
}

func TestHeuristicConfidence_MonotonicInDistance(t *testing.T) {
	for _, elapsed := range []time.Duration{0, 30 * time.Minute, 90 * time.Minute} {
		prev := HeuristicConfidence(0, elapsed, true)
		for d := 5.0; d <= 700; d += 5 {
			got := HeuristicConfidence(d, elapsed, true)
			require.LessOrEqual(t, got, prev, "distance=%v elapsed=%v", d, elapsed)
			prev = got
		}
	}
}

func TestHeuristicConfidence_MonotonicInTime(t *testing.T) {
	for _, distance := range []float64{0, 120, 480} {
		prev := HeuristicConfidence(distance, 0, false)
		for m := 1; m <= 180; m++ {
			got := HeuristicConfidence(distance, time.Duration(m)*time.Minute, false)
			require.LessOrEqual(t, got, prev, "distance=%v minutes=%d", distance, m)
			prev = got
		}
	}
}

func TestScore_SkipsMissingLocation(t *testing.T) {
	report := newReport(models.CategoryFire)
	incident := newIncident(models.CategoryFire, 10, time.Minute)
	incident.Location = nil

	_, ok := Score(report, incident, testNow)
	assert.False(t, ok)
}

func TestScore_FutureCandidateCountsAsFresh(t *testing.T) {
	report := newReport(models.CategoryFire)
	incident := newIncident(models.CategoryFire, 0, -5*time.Minute)

	candidate, ok := Score(report, incident, testNow)
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), candidate.Elapsed)
	assert.Equal(t, 100, candidate.HeuristicConfidence)
}

func TestRank(t *testing.T) {
	report := newReport(models.CategoryFire)

	weak := newIncident(models.CategoryFire, 300, 90*time.Minute)
	farAway := newIncident(models.CategoryFire, 650, 5*time.Minute)
	tooOld := newIncident(models.CategoryFire, 10, 3*time.Hour)
	medium := newIncident(models.CategoryMedical, 50, 20*time.Minute)
	strong := newIncident(models.CategoryFire, 20, 2*time.Minute)
	noLocation := newIncident(models.CategoryFire, 0, time.Minute)
	noLocation.Location = nil

	ranked := Rank(report, []*models.Incident{weak, farAway, tooOld, medium, noLocation, strong}, DuplicateWindow, testNow)

	require.Len(t, ranked, 2)
	assert.Equal(t, strong.ID, ranked[0].Incident.ID)
	assert.Equal(t, medium.ID, ranked[1].Incident.ID)
	for _, c := range ranked {
		assert.Greater(t, c.HeuristicConfidence, DuplicateThreshold)
		assert.Equal(t, c.HeuristicConfidence, c.Confidence)
		assert.Nil(t, c.SemanticConfidence)
	}
}

func TestRank_StableOnTies(t *testing.T) {
	report := newReport(models.CategoryFire)
	first := newIncident(models.CategoryFire, 40, 10*time.Minute)
	second := newIncident(models.CategoryFire, 40, 10*time.Minute)

	ranked := Rank(report, []*models.Incident{first, second}, DuplicateWindow, testNow)

	require.Len(t, ranked, 2)
	assert.Equal(t, first.ID, ranked[0].Incident.ID)
	assert.Equal(t, second.ID, ranked[1].Incident.ID)
}

func TestRank_Empty(t *testing.T) {
	ranked := Rank(newReport(models.CategoryCrime), nil, DuplicateWindow, testNow)
	assert.Empty(t, ranked)
}
