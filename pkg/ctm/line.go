package ctm

type Line struct {
	PrimaryIdentifier string
	OtherIdentifiers  map[string]string

	NetworkRef        string
	CommercialModeRef string

	Code       string
	Name       string
	Colour     string
	TextColour string
	SortOrder  int

	GeometryRef string
	CommentRefs []string
}

func (l *Line) Identifier() string {
	return l.PrimaryIdentifier
}
