// ABOUTME: Unit tests for Charm-based habit storage.
// ABOUTME: Tests key layout and pure filtering helpers; network paths need a live account.
package charm

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harperreed/habits/internal/clock"
	"github.com/harperreed/habits/internal/models"
)

func TestKeyFormats(t *testing.T) {
	habitID := uuid.New()
	goalID := uuid.New()
	day := clock.NewDay(2024, time.June, 15)

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"habit", habitKey("owner-1", habitID), "habit:owner-1:" + habitID.String()},
		{"checkin", checkInKey(habitID, day), "checkin:" + habitID.String() + ":2024-06-15"},
		{"goal", goalKey("owner-1", goalID), "goal:owner-1:" + goalID.String()},
		{"progress", progressKey(goalID, habitID), "progress:" + goalID.String() + ":" + habitID.String()},
		{"unlock", unlockKey("owner-1", "first_streak"), "unlock:owner-1:first_streak"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.key != tt.want {
				t.Errorf("key = %q, want %q", tt.key, tt.want)
			}
		})
	}
}

func TestFilterCheckInsBoundsAndOrder(t *testing.T) {
	habitID := uuid.New()
	var data [][]byte
	for _, dom := range []int{20, 10, 15} {
		ci := models.NewCheckIn(habitID, clock.NewDay(2024, time.June, dom))
		raw, err := marshalJSON(ci)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		data = append(data, raw)
	}

	got, err := filterCheckIns(data, clock.NewDay(2024, time.June, 12), clock.NewDay(2024, time.June, 30))
	if err != nil {
		t.Fatalf("filterCheckIns failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 check-ins in range, got %d", len(got))
	}
	if got[0].Day.Dom != 15 || got[1].Day.Dom != 20 {
		t.Errorf("want ascending day order 15, 20; got %d, %d", got[0].Day.Dom, got[1].Day.Dom)
	}
}

func TestFilterCheckInsOpenBounds(t *testing.T) {
	habitID := uuid.New()
	ci := models.NewCheckIn(habitID, clock.NewDay(2024, time.June, 1))
	raw, err := marshalJSON(ci)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	got, err := filterCheckIns([][]byte{raw}, clock.Day{}, clock.Day{})
	if err != nil {
		t.Fatalf("filterCheckIns failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("zero bounds should include everything, got %d", len(got))
	}
}
