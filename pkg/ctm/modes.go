package ctm

// PhysicalMode describes the actual vehicle running a trip (Bus, Metro,
// RapidTransit, ...). CommercialMode is how the operator brands the service
// to passengers; the two frequently differ.
type PhysicalMode struct {
	PrimaryIdentifier string

	Name          string
	TransportType TransportType
}

func (m *PhysicalMode) Identifier() string {
	return m.PrimaryIdentifier
}

type CommercialMode struct {
	PrimaryIdentifier string

	Name string
}

func (m *CommercialMode) Identifier() string {
	return m.PrimaryIdentifier
}
