package ctm

// Transfer is a walkable connection between two stop points. Transfers have
// no identifier of their own, they are keyed by position within the model.
type Transfer struct {
	FromStopPointRef string
	ToStopPointRef   string

	MinTransferTime  int
	RealTransferTime int
}
