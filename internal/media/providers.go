package media

import (
	"context"
	"time"
)

// Position is a single geolocation fix.
type Position struct {
	Latitude  float64
	Longitude float64
}

// FixOptions tunes a one-shot fix request.
type FixOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration // a cached fix this fresh is acceptable
}

// Geolocator supplies the device's current coordinates.
type Geolocator interface {
	CurrentPosition(ctx context.Context, opts FixOptions) (*Position, error)
}

// Contact is a record selected from the device's address book.
type Contact struct {
	GivenName   string
	FamilyName  string
	PhoneNumber string
}

// ContactsProvider gates address book access. Permission must be checked
// (and may be denied) before any contact data is read.
type ContactsProvider interface {
	CheckPermission(ctx context.Context) (bool, error)
}
