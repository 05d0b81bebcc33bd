package ctm

import "time"

type Contributor struct {
	PrimaryIdentifier string

	Name    string
	License string
	Website string
}

func (c *Contributor) Identifier() string {
	return c.PrimaryIdentifier
}

// Dataset records one delivery of data by a contributor.
type Dataset struct {
	PrimaryIdentifier string

	ContributorRef string

	StartDate time.Time
	EndDate   time.Time
}

func (d *Dataset) Identifier() string {
	return d.PrimaryIdentifier
}
