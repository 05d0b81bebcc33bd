package ctm

type Location struct {
	Type        string
	Coordinates []float64
}
