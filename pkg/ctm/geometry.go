package ctm

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
)

// Geometry is a polyline shared by lines, routes and trips. It carries no
// meaning beyond its points, so merges deduplicate geometries by content.
type Geometry struct {
	PrimaryIdentifier string

	Points []Location
}

func (g *Geometry) Identifier() string {
	return g.PrimaryIdentifier
}

func (g *Geometry) ContentChecksum() string {
	hash := sha256.New()

	pointsJSON, _ := json.Marshal(g.Points)
	hash.Write(pointsJSON)

	return fmt.Sprintf("%x", hash.Sum(nil))
}
