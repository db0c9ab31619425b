package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomLockActiveAt(t *testing.T) {
	now := time.Now()
	lock := &RoomLock{ExpiresAt: now.Add(10 * time.Minute)}

	assert.True(t, lock.ActiveAt(now))
	assert.False(t, lock.ActiveAt(now.Add(11*time.Minute)), "past expiry")

	lock.Released = true
	assert.False(t, lock.ActiveAt(now), "released lock is never active")
}

func TestOverlaps(t *testing.T) {
	lock := &RoomLock{
		Checkin:  Date(2026, 2, 1),
		Checkout: Date(2026, 2, 3),
	}

	tests := []struct {
		name     string
		checkin  time.Time
		checkout time.Time
		want     bool
	}{
		{"identical range", Date(2026, 2, 1), Date(2026, 2, 3), true},
		{"partial overlap", Date(2026, 2, 2), Date(2026, 2, 4), true},
		{"contained", Date(2026, 1, 31), Date(2026, 2, 5), true},
		{"checkout day is free", Date(2026, 2, 3), Date(2026, 2, 5), false},
		{"checkin day blocks", Date(2026, 1, 30), Date(2026, 2, 2), true},
		{"before", Date(2026, 1, 28), Date(2026, 2, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lock.Overlaps(tt.checkin, tt.checkout))
		})
	}
}

func TestMatchLevel(t *testing.T) {
	room := RoomPricing{RoomID: 101, RoomTypeID: 7, CategoryID: 3}

	assert.Equal(t, MatchLevelRoom, (&PriceAdjustment{TargetType: TargetSpecificRoom, TargetID: 101}).MatchLevel(room))
	assert.Equal(t, MatchLevelRoomType, (&PriceAdjustment{TargetType: TargetRoomType, TargetID: 7}).MatchLevel(room))
	assert.Equal(t, MatchLevelCategory, (&PriceAdjustment{TargetType: TargetCategory, TargetID: 3}).MatchLevel(room))
	assert.Equal(t, MatchLevelNone, (&PriceAdjustment{TargetType: TargetSpecificRoom, TargetID: 102}).MatchLevel(room))

	// Rooms without ancestor linkage never match at that level.
	orphan := RoomPricing{RoomID: 101}
	assert.Equal(t, MatchLevelNone, (&PriceAdjustment{TargetType: TargetRoomType, TargetID: 7}).MatchLevel(orphan))
	assert.Equal(t, MatchLevelNone, (&PriceAdjustment{TargetType: TargetCategory, TargetID: 3}).MatchLevel(orphan))
}

func TestEventCoversDate(t *testing.T) {
	event := &RoomEvent{StartDate: Date(2026, 1, 1), EndDate: Date(2026, 1, 10)}

	assert.True(t, event.CoversDate(Date(2026, 1, 1)), "start inclusive")
	assert.True(t, event.CoversDate(Date(2026, 1, 10)), "end inclusive")
	assert.True(t, event.CoversDate(Date(2026, 1, 5)))
	assert.False(t, event.CoversDate(Date(2025, 12, 31)))
	assert.False(t, event.CoversDate(Date(2026, 1, 11)))
}
