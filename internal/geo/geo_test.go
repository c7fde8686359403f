package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineMeters_KnownDistance(t *testing.T) {
	// Berlin -> Hamburg is roughly 255 km.
	d := HaversineMeters(52.5200, 13.4050, 53.5511, 9.9937)
	assert.InDelta(t, 255000, d, 5000)
}

func TestHaversineMeters_ZeroForSamePoint(t *testing.T) {
	d := HaversineMeters(40.0, -73.9, 40.0, -73.9)
	assert.InDelta(t, 0, d, 0.001)
}

func TestBoundingBox_ContainsRadius(t *testing.T) {
	lat, lng := 48.8566, 2.3522
	minLat, maxLat, minLng, maxLng := BoundingBox(lat, lng, 5000)

	assert.Less(t, minLat, lat)
	assert.Greater(t, maxLat, lat)
	assert.Less(t, minLng, lng)
	assert.Greater(t, maxLng, lng)

	// A point 5km due north must fall inside the box.
	north := lat + 5000/111320.0
	assert.LessOrEqual(t, north, maxLat)
}

func TestBoundingBox_HighLatitudeWidens(t *testing.T) {
	_, _, minLngEq, maxLngEq := BoundingBox(0, 0, 5000)
	_, _, minLngNo, maxLngNo := BoundingBox(70, 0, 5000)

	assert.Greater(t, maxLngNo-minLngNo, maxLngEq-minLngEq)
}
