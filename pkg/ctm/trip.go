package ctm

// Trip is one scheduled vehicle run along a route. Its stop times are owned
// by the trip and keyed by their sequence within it, they have no independent
// identifier.
type Trip struct {
	PrimaryIdentifier string
	OtherIdentifiers  map[string]string

	RouteRef        string
	CalendarRef     string
	CompanyRef      string
	PhysicalModeRef string
	DatasetRef      string

	Headsign string
	BlockID  string

	GeometryRef string
	CommentRefs []string

	StopTimes []StopTime
}

func (t *Trip) Identifier() string {
	return t.PrimaryIdentifier
}

type StopTime struct {
	Sequence int

	StopPointRef string

	ArrivalTime   Time
	DepartureTime Time

	PickupType  string
	DropOffType string
}
