package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_Identity(t *testing.T) {
	points := []Point{
		{Latitude: 0, Longitude: 0},
		{Latitude: 55.7558, Longitude: 37.6173},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 90, Longitude: 180},
		{Latitude: -90, Longitude: -180},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, Distance(p, p), "distance from %v to itself", p)
	}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][2]Point{
		{{Latitude: 55.7558, Longitude: 37.6173}, {Latitude: 59.9343, Longitude: 30.3351}},
		{{Latitude: 28.6139, Longitude: 77.2090}, {Latitude: 28.6145, Longitude: 77.2101}},
		{{Latitude: -89.9, Longitude: 179.9}, {Latitude: 89.9, Longitude: -179.9}},
		{{Latitude: 10, Longitude: 20}, {Latitude: 10.0009, Longitude: 20}},
	}
	for _, pair := range pairs {
		assert.Equal(t, Distance(pair[0], pair[1]), Distance(pair[1], pair[0]))
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// Один градус дуги меридиана при R = 6371 км
	oneDegree := Distance(Point{Latitude: 0, Longitude: 0}, Point{Latitude: 1, Longitude: 0})
	assert.InDelta(t, 111194.93, oneDegree, 0.01)

	// Москва - Санкт-Петербург, около 633 км
	msk := Point{Latitude: 55.7558, Longitude: 37.6173}
	spb := Point{Latitude: 59.9343, Longitude: 30.3351}
	assert.InDelta(t, 633020, Distance(msk, spb), 1)

	// Небольшое смещение: 0.0009 градуса широты ~ 100 м
	a := Point{Latitude: 28.6139, Longitude: 77.2090}
	b := Point{Latitude: 28.6148, Longitude: 77.2090}
	assert.InDelta(t, 100.08, Distance(a, b), 0.1)
}

func TestPoint_Validate(t *testing.T) {
	require.NoError(t, Point{Latitude: 90, Longitude: -180}.Validate())
	require.NoError(t, Point{Latitude: 0, Longitude: 0}.Validate())

	invalid := []Point{
		{Latitude: 90.0001, Longitude: 0},
		{Latitude: -91, Longitude: 0},
		{Latitude: 0, Longitude: 180.5},
		{Latitude: 0, Longitude: -181},
	}
	for _, p := range invalid {
		err := p.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidCoordinates)
	}
}
