package trigger

import "fmt"

// Dimensions enumerates the detector element counts of one module.
type Dimensions struct {
	Sides        int
	CaloColumns  int
	CaloRows     int
	XCaloWalls   int
	XCaloColumns int
	XCaloRows    int
	GVetoWalls   int
	GVetoColumns int
	GeigerLayers int
	GeigerRows   int
}

// Geometry is the part of the geometry service the trigger needs: the
// element counts and a validity check for geometric ids.
type Geometry interface {
	Module() int
	Dimensions() Dimensions
	CheckID(gid GeomID) error
}

// DemonstratorGeometry describes a single demonstrator module: two main
// calorimeter walls of 20x13 blocks, x-walls, gamma vetoes and a 2x9x113
// Geiger cell tracker.
type DemonstratorGeometry struct {
	module int
	dims   Dimensions
}

func NewDemonstratorGeometry(module int) *DemonstratorGeometry {
	return &DemonstratorGeometry{
		module: module,
		dims: Dimensions{
			Sides:        2,
			CaloColumns:  20,
			CaloRows:     13,
			XCaloWalls:   2,
			XCaloColumns: 2,
			XCaloRows:    16,
			GVetoWalls:   2,
			GVetoColumns: 16,
			GeigerLayers: 9,
			GeigerRows:   113,
		},
	}
}

func (g *DemonstratorGeometry) Module() int {
	return g.module
}

func (g *DemonstratorGeometry) Dimensions() Dimensions {
	return g.dims
}

func (g *DemonstratorGeometry) CheckID(gid GeomID) error {
	var bounds []int
	switch gid.Type {
	case GeomCaloBlock:
		bounds = []int{g.dims.Sides, g.dims.CaloColumns, g.dims.CaloRows}
	case GeomXCaloBlock:
		bounds = []int{g.dims.Sides, g.dims.XCaloWalls, g.dims.XCaloColumns, g.dims.XCaloRows}
	case GeomGVetoBlock:
		bounds = []int{g.dims.Sides, g.dims.GVetoWalls, g.dims.GVetoColumns}
	case GeomGeigerCell:
		bounds = []int{g.dims.Sides, g.dims.GeigerLayers, g.dims.GeigerRows}
	default:
		return fmt.Errorf("unknown geometric category %d in %v", gid.Type, gid)
	}
	if int(gid.Depth) != len(bounds)+1 {
		return fmt.Errorf("geometric id %v has depth %d, expected %d", gid, gid.Depth, len(bounds)+1)
	}
	if gid.Module() != g.module {
		return &ErrRange{What: "module", Value: gid.Module(), Bound: g.module + 1}
	}
	for i, bound := range bounds {
		if v := int(gid.Fields[i+1]); v >= bound {
			return fmt.Errorf("geometric id %v: %w", gid, &ErrRange{What: "field", Value: v, Bound: bound})
		}
	}
	return nil
}
