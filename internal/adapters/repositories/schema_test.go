package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedValidate(t *testing.T) {
	valid := Seed{
		Drivers:         []DriverSeed{{DriverID: "d1", Capacity: 4}},
		UnloadingPoints: []UnloadingPointSeed{{PointID: "p1"}},
		Bookings:        []BookingSeed{{BookingID: "b1", PickupDate: "2026-10-16", CargoVolume: 1}},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name string
		mut  func(s *Seed)
	}{
		{"blank driver id", func(s *Seed) { s.Drivers[0].DriverID = " " }},
		{"zero capacity", func(s *Seed) { s.Drivers[0].Capacity = 0 }},
		{"blank point id", func(s *Seed) { s.UnloadingPoints[0].PointID = "" }},
		{"blank booking id", func(s *Seed) { s.Bookings[0].BookingID = "" }},
		{"bad date", func(s *Seed) { s.Bookings[0].PickupDate = "16/10/2026" }},
		{"negative volume", func(s *Seed) { s.Bookings[0].CargoVolume = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Seed{
				Drivers:         append([]DriverSeed(nil), valid.Drivers...),
				UnloadingPoints: append([]UnloadingPointSeed(nil), valid.UnloadingPoints...),
				Bookings:        append([]BookingSeed(nil), valid.Bookings...),
			}
			tt.mut(&s)
			assert.Error(t, s.Validate())
		})
	}
}
