package ctm

type Network struct {
	PrimaryIdentifier string
	OtherIdentifiers  map[string]string

	Name     string
	URL      string
	Timezone string
}

func (n *Network) Identifier() string {
	return n.PrimaryIdentifier
}
