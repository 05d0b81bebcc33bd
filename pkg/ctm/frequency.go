package ctm

// Frequency turns a trip's stop times into a headway-based template repeated
// between StartTime and EndTime. Keyed by position within the model, not by
// identifier.
type Frequency struct {
	TripRef string

	StartTime Time
	EndTime   Time

	HeadwaySeconds int
}
