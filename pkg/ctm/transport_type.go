package ctm

type TransportType string

const (
	TransportTypeBus      TransportType = "Bus"
	TransportTypeCoach                  = "Coach"
	TransportTypeTram                   = "Tram"
	TransportTypeTrain                  = "Train"
	TransportTypeMetro                  = "Metro"
	TransportTypeBoat                   = "Boat"
	TransportTypeCableCar               = "CableCar"
	TransportTypeUnknown                = "UNKNOWN"
)
