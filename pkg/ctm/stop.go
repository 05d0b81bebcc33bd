package ctm

type StopArea struct {
	PrimaryIdentifier string
	OtherIdentifiers  map[string]string

	Name     string
	Timezone string

	Location *Location

	CommentRefs []string
}

func (s *StopArea) Identifier() string {
	return s.PrimaryIdentifier
}

type StopPoint struct {
	PrimaryIdentifier string
	OtherIdentifiers  map[string]string

	StopAreaRef string
	FareZoneRef string

	Name         string
	Timezone     string
	PlatformCode string

	Location *Location

	CommentRefs []string
}

func (s *StopPoint) Identifier() string {
	return s.PrimaryIdentifier
}
