package ctm

type CommentType string

const (
	CommentTypeInformation       CommentType = "Information"
	CommentTypeOnDemandTransport CommentType = "OnDemandTransport"
)

type Comment struct {
	PrimaryIdentifier string

	Type  CommentType
	Value string
	Label string
	URL   string
}

func (c *Comment) Identifier() string {
	return c.PrimaryIdentifier
}
