package ctm

type Route struct {
	PrimaryIdentifier string

	LineRef string

	Name               string
	Direction          string
	DestinationDisplay string

	GeometryRef string
	CommentRefs []string
}

func (r *Route) Identifier() string {
	return r.PrimaryIdentifier
}
