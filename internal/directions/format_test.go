package directions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trip-route-planner/internal/models"
)

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		meters int
		want   string
	}{
		{0, "0 m"},
		{850, "850 m"},
		{999, "999 m"},
		{1000, "1.0 km"},
		{1250, "1.3 km"},
		{1500, "1.5 km"},
		{12340, "12.3 km"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDistance(tt.meters), "meters=%d", tt.meters)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 min", FormatDuration(0))
	assert.Equal(t, "45 min", FormatDuration(45))
	assert.Equal(t, "59 min", FormatDuration(59))
	assert.Equal(t, "1h 0min", FormatDuration(60))
	assert.Equal(t, "2h 5min", FormatDuration(125))
}

func TestNormalizeManeuver(t *testing.T) {
	assert.Equal(t, models.ManeuverTurnLeft, NormalizeManeuver("turn-slight-left"))
	assert.Equal(t, models.ManeuverTurnRight, NormalizeManeuver("keep-right"))
	assert.Equal(t, models.ManeuverUTurn, NormalizeManeuver("uturn-left"))
	assert.Equal(t, models.ManeuverMerge, NormalizeManeuver("merge"))
	assert.Equal(t, models.ManeuverFerry, NormalizeManeuver("ferry-train"))
	assert.Equal(t, models.ManeuverRoundaboutRight, NormalizeManeuver(" Roundabout-Right "))
	assert.Equal(t, models.ManeuverStraight, NormalizeManeuver(""))
	assert.Equal(t, models.ManeuverStraight, NormalizeManeuver("ramp-left-ish"))
}

func TestCleanInstructions(t *testing.T) {
	assert.Equal(t, "Turn right onto Main St",
		CleanInstructions("Turn <b>right</b> onto <b>Main St</b>"))
	assert.Equal(t, "Destination will be on the left",
		CleanInstructions(`<div style="font-size:0.9em">Destination will be on the left</div>`))
	assert.Equal(t, "Rue de Rivoli & Rue du Louvre",
		CleanInstructions("Rue de Rivoli&nbsp;&amp; Rue du Louvre"))
	assert.Equal(t, "", CleanInstructions("  <br/>  "))
}
