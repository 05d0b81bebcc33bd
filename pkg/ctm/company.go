package ctm

type Company struct {
	PrimaryIdentifier string

	Name    string
	Address string
	URL     string
	Phone   string
}

func (c *Company) Identifier() string {
	return c.PrimaryIdentifier
}
