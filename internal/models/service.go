package models

// ServiceKind is the closed set of scheduled service classes.
type ServiceKind string

const (
	ServiceKindExpress   ServiceKind = "express"
	ServiceKindIntercity ServiceKind = "intercity"
)

// IsValid reports whether k is a known service kind.
func (k ServiceKind) IsValid() bool {
	return k == ServiceKindExpress || k == ServiceKindIntercity
}

// ServiceDescriptor describes a scheduled service as resolved from the catalog.
// Read-only to the reservation core; capacity is fixed per service and
// independent of travel date.
type ServiceDescriptor struct {
	ID          string      `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Kind        ServiceKind `json:"kind" db:"kind"`
	Origin      string      `json:"origin" db:"origin"`
	Destination string      `json:"destination" db:"destination"`
	Capacity    int         `json:"capacity" db:"capacity"`
	BaseFare    float64     `json:"base_fare" db:"base_fare"`
	HasPantry   bool        `json:"has_pantry" db:"has_pantry"`
}
