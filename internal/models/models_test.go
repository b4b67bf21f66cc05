package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopDisplayName(t *testing.T) {
	s := Stop{ID: "abc", Name: "Louvre"}
	assert.Equal(t, "Louvre", s.DisplayName())

	s.Name = "   "
	assert.Equal(t, "abc", s.DisplayName())
}

func TestParseTravelMode(t *testing.T) {
	m, ok := ParseTravelMode("")
	assert.True(t, ok)
	assert.Equal(t, TravelModeDriving, m)

	m, ok = ParseTravelMode(" Walking ")
	assert.True(t, ok)
	assert.Equal(t, TravelModeWalking, m)

	_, ok = ParseTravelMode("teleport")
	assert.False(t, ok)
}

func TestSpeedForModeEveryModePositive(t *testing.T) {
	for _, mode := range AllTravelModes {
		assert.Greater(t, SpeedForMode(mode, SpeedLocal), 0.0, "local speed for %s", mode)
		assert.Greater(t, SpeedForMode(mode, SpeedLongDistance), 0.0, "long-distance speed for %s", mode)
	}
}

func TestSpeedForModeTables(t *testing.T) {
	assert.Equal(t, 5.0, SpeedForMode(TravelModeWalking, SpeedLocal))
	assert.Equal(t, 15.0, SpeedForMode(TravelModeBicycling, SpeedLocal))
	assert.Equal(t, 40.0, SpeedForMode(TravelModeDriving, SpeedLocal))
	assert.Equal(t, 25.0, SpeedForMode(TravelModeTransit, SpeedLocal))

	assert.Equal(t, 60.0, SpeedForMode(TravelModeDriving, SpeedLongDistance))
	assert.Equal(t, 40.0, SpeedForMode(TravelModeTransit, SpeedLongDistance))
	assert.Equal(t, 5.0, SpeedForMode(TravelModeWalking, SpeedLongDistance))
}

func TestCoordinatesIsValid(t *testing.T) {
	assert.True(t, Coordinates{Lat: 48.8566, Lng: 2.3522}.IsValid())
	assert.True(t, Coordinates{Lat: -90, Lng: 180}.IsValid())
	assert.False(t, Coordinates{Lat: 91, Lng: 0}.IsValid())
	assert.False(t, Coordinates{Lat: 0, Lng: -180.5}.IsValid())
}

func TestRoundCoordinate(t *testing.T) {
	assert.Equal(t, 40.71280, RoundCoordinate(40.712801))
	assert.Equal(t, -74.00601, RoundCoordinate(-74.006009))
}
