package models

// GeoPoint is a WGS84 coordinate pair. Nil on entities matched by pincode
// only; a zero-valued point is treated the same as a missing one.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" dynamodbav:"latitude"`
	Longitude float64 `json:"longitude" dynamodbav:"longitude"`
}

// IsZero reports whether the point carries no usable coordinates.
func (p *GeoPoint) IsZero() bool {
	return p == nil || (p.Latitude == 0 && p.Longitude == 0)
}

// Address is the free-form address record attached to a request when the
// customer has no device coordinates.
type Address struct {
	Street  string `json:"street,omitempty" dynamodbav:"street,omitempty"`
	City    string `json:"city,omitempty" dynamodbav:"city,omitempty"`
	Pincode string `json:"pincode,omitempty" dynamodbav:"pincode,omitempty"`
}
