package ctm

// Kind names a record kind within the model. Identifiers are only unique
// within one kind's collection, so diagnostics always carry the kind
// alongside the identifier.
type Kind string

const (
	KindNetwork        Kind = "Network"
	KindLine           Kind = "Line"
	KindRoute          Kind = "Route"
	KindTrip           Kind = "Trip"
	KindStopArea       Kind = "StopArea"
	KindStopPoint      Kind = "StopPoint"
	KindCalendar       Kind = "Calendar"
	KindTransfer       Kind = "Transfer"
	KindFareZone       Kind = "FareZone"
	KindFareRule       Kind = "FareRule"
	KindComment        Kind = "Comment"
	KindGeometry       Kind = "Geometry"
	KindFrequency      Kind = "Frequency"
	KindPhysicalMode   Kind = "PhysicalMode"
	KindCommercialMode Kind = "CommercialMode"
	KindCompany        Kind = "Company"
	KindContributor    Kind = "Contributor"
	KindDataset        Kind = "Dataset"
)
