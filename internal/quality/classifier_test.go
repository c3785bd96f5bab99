package quality

import (
	"math"
	"testing"

	"github.com/crisislab/crisis-monitor/internal/models"
)

func TestIsActualDisaster(t *testing.T) {
	e := NewEnhancer()

	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{
			"context phrase",
			"Strong earthquake strikes northern coast",
			"Buildings swayed for nearly a minute.",
			true,
		},
		{
			"two indicators",
			"Dozens dead after bridge gives way",
			"Several more were injured when the span fell.",
			true,
		},
		{
			"single indicator only",
			"One person injured in minor incident",
			"Local authorities are investigating.",
			false,
		},
		{
			"excluded topic wins",
			"Political crisis deepens after earthquake of a vote",
			"Thousands displaced from their posts, careers destroyed.",
			false,
		},
		{
			"stock market noise",
			"Stock market crash wipes out gains",
			"Investors describe the session as a catastrophe, portfolios destroyed.",
			false,
		},
		{
			"blockchain noise",
			"Blockchain exchange collapse leaves users stranded",
			"Holders call it a disaster, savings destroyed overnight.",
			false,
		},
		{
			"plain news",
			"New museum opens downtown",
			"The mayor cut the ribbon this weekend.",
			false,
		},
		{
			"humanitarian phrase",
			"Refugee crisis worsens at border",
			"Aid agencies warn supplies are running low.",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.IsActualDisaster(tt.title, tt.description); got != tt.want {
				t.Errorf("IsActualDisaster(%q, %q) = %v, want %v", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	e := NewEnhancer()

	complete := e.Score(
		"Magnitude 7.2 earthquake strikes coastal region",
		"Tokyo, Japan",
		"A powerful earthquake magnitude 7.2 hit the coast on Tuesday, casualties reported as rescue operations continue across the affected area.",
		models.NewCoordinates(35.6762, 139.6503),
	)
	if math.Abs(complete-1.0) > 1e-9 {
		t.Errorf("expected 1.0 for complete record, got %f", complete)
	}

	bare := e.Score("Event", models.LocationTBD, "", models.Coordinates{})
	if bare != 0.0 {
		t.Errorf("expected 0.0 for bare record, got %f", bare)
	}

	// Location present but not shaped like a place still earns half the
	// location weight.
	partial := e.Score("Event", "somewhere in the region", "", models.Coordinates{})
	if partial != 0.125 {
		t.Errorf("expected 0.125 for half location credit, got %f", partial)
	}

	if complete <= partial || partial <= bare {
		t.Error("expected score ordering complete > partial > bare")
	}
}
