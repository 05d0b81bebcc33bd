package ctm

type FareZone struct {
	PrimaryIdentifier string

	Name string
}

func (f *FareZone) Identifier() string {
	return f.PrimaryIdentifier
}

// FareRule prices travel between two fare zones, optionally restricted to a
// single line.
type FareRule struct {
	PrimaryIdentifier string

	OriginZoneRef      string
	DestinationZoneRef string
	LineRef            string

	Price    float64
	Currency string
}

func (f *FareRule) Identifier() string {
	return f.PrimaryIdentifier
}
