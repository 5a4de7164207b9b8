package domain

// DriverRoute is the planned route for a single driver.
// The depot is the implicit start and end of the route; it is not always
// present in Points. OriginalIndices is provenance into the unoptimized
// ordering and is passed through untouched.
type DriverRoute struct {
	DriverID        int             `json:"driverId"`
	Points          []DeliveryPoint `json:"points"`
	DeliveryIDs     []int           `json:"deliveryIds"`
	Distance        float64         `json:"distance"`
	OriginalIndices []int           `json:"originalIndices"`
}

// StopSequence returns the visiting order including the depot at both ends.
func (r DriverRoute) StopSequence() []int {
	seq := make([]int, 0, len(r.DeliveryIDs)+2)
	seq = append(seq, DepotID)
	seq = append(seq, r.DeliveryIDs...)
	seq = append(seq, DepotID)
	return seq
}
