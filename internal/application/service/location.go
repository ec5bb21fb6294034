package service

import "context"

// LocationUnknown is returned when a location cannot be standardized.
const LocationUnknown = "UNKNOWN"

// LocationStandardizer maps a free-text location to a canonical
// "City, Country" form, or LocationUnknown.
type LocationStandardizer interface {
	Standardize(ctx context.Context, location string) (string, error)
}
