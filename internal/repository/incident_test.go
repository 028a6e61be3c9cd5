package repository

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/imcoderdev/emergency-backend/internal/geo"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointFrom(t *testing.T) {
	lat, lon := 28.6139, 77.2090

	p := pointFrom(&lat, &lon)
	require.NotNil(t, p)
	assert.Equal(t, geo.Point{Latitude: lat, Longitude: lon}, *p)

	assert.Nil(t, pointFrom(nil, &lon))
	assert.Nil(t, pointFrom(&lat, nil))
	assert.Nil(t, pointFrom(nil, nil))
}

func TestPointArgs_LongitudeFirst(t *testing.T) {
	lon, lat := pointArgs(&geo.Point{Latitude: 10, Longitude: 20})
	require.NotNil(t, lon)
	require.NotNil(t, lat)
	assert.Equal(t, 20.0, *lon)
	assert.Equal(t, 10.0, *lat)

	lon, lat = pointArgs(nil)
	assert.Nil(t, lon)
	assert.Nil(t, lat)
}

func TestCategoryArg(t *testing.T) {
	assert.Nil(t, categoryArg(nil))

	c := models.CategoryNaturalHazard
	got := categoryArg(&c)
	require.NotNil(t, got)
	assert.Equal(t, "Natural Hazard", *got)
}

func TestJSONArg(t *testing.T) {
	assert.Nil(t, jsonArg(nil))
	assert.Nil(t, jsonArg(json.RawMessage{}))
	assert.JSONEq(t, `{"label":"fire"}`, string(jsonArg(json.RawMessage(`{"label":"fire"}`))))
}

func TestCacheKey(t *testing.T) {
	id := uuid.MustParse("0b7a2a44-5c1e-4f0e-9d7c-3a6a7f1b2c3d")
	assert.Equal(t, "incident:0b7a2a44-5c1e-4f0e-9d7c-3a6a7f1b2c3d", cacheKey(id))
}
