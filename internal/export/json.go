package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/hopalong/internal/orbit"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// OrbitDocument is the JSON form of one generation.
type OrbitDocument struct {
	Params    orbit.Params `json:"params"`
	Branch    string       `json:"branch"`
	Bounds    Bounds       `json:"bounds"`
	Scale     float64      `json:"scale"`
	Reseeds   int          `json:"reseeds"`
	Hues      []float64    `json:"hues"`
	NumPoints int          `json:"num_points"`
	Subsets   [][]Point    `json:"subsets,omitempty"`
}

// NewOrbitDocument describes o. Display positions are included only when
// withPoints is set.
func NewOrbitDocument(o *orbit.Orbit, hues orbit.HueTable, withPoints bool) OrbitDocument {
	doc := OrbitDocument{
		Params:    o.Params,
		Branch:    o.Params.Branch().String(),
		Bounds:    Bounds{o.XMin, o.XMax, o.YMin, o.YMax},
		Scale:     o.Scale,
		Reseeds:   o.Reseeds,
		Hues:      append([]float64(nil), hues...),
		NumPoints: o.NumPoints(),
	}
	if withPoints {
		doc.Subsets = make([][]Point, len(o.Subsets))
		for s, cloud := range o.Subsets {
			pts := make([]Point, len(cloud))
			for i, p := range cloud {
				pts[i] = Point{p.Display.X, p.Display.Y}
			}
			doc.Subsets[s] = pts
		}
	}
	return doc
}

// HistoryDocument is the JSON form of the selection history.
type HistoryDocument struct {
	Entries []orbit.Entry `json:"entries"`
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ExportJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, v)
}
