// README: Identifier and coordinate value objects shared by modules.
package types

// ID identifies users and orders. Order ids are UUID strings; user ids are the
// uid issued by the identity provider.
type ID string

func (id ID) String() string { return string(id) }

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
