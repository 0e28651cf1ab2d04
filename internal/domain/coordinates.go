package domain

// Immutable geographic coordinates in decimal degrees (WGS84).
type Coordinates struct {
	Lat float64
	Lng float64
}

// IsSet reports whether the coordinates carry a usable position.
// A zero/zero pair is the storage default for "never geocoded" and is
// treated as unset.
func (c Coordinates) IsSet() bool {
	return c.Lat != 0 || c.Lng != 0
}

// Return coordinates as [lng, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lng, c.Lat} }
