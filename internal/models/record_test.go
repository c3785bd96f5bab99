package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDeriveID(t *testing.T) {
	a := DeriveID("usgs", "us7000abcd")
	b := DeriveID("usgs", "us7000abcd")
	c := DeriveID("usgs", "us7000abce")

	if a != b {
		t.Errorf("expected stable ids, got %s and %s", a, b)
	}
	if a == c {
		t.Error("expected different content to yield different ids")
	}
	if !strings.HasPrefix(a, "usgs_") {
		t.Errorf("expected source prefix, got %s", a)
	}
	if len(a) != len("usgs_")+8 {
		t.Errorf("unexpected id length: %s", a)
	}
}

func TestCoordinates_UnmarshalRestoresValid(t *testing.T) {
	var rec DisasterRecord
	data := `{"id":"x","title":"t","coordinates":{"lat":35.6,"lng":139.7}}`
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !rec.Coordinates.Valid {
		t.Error("expected non-origin coordinates to be valid")
	}

	var rec2 DisasterRecord
	data = `{"id":"y","title":"t","coordinates":{"lat":0,"lng":0}}`
	if err := json.Unmarshal([]byte(data), &rec2); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec2.Coordinates.Valid {
		t.Error("expected origin coordinates to stay invalid")
	}
}

func TestSeverityRank(t *testing.T) {
	ordered := []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i].Rank() <= ordered[i-1].Rank() {
			t.Errorf("expected %s to outrank %s", ordered[i], ordered[i-1])
		}
	}
	if Severity("BOGUS").Rank() != 0 {
		t.Error("expected unknown severity to rank 0")
	}
}
