package trigger

import "fmt"

// Tracker matrix dimensions.
const (
	TrackerSides  = 2
	TrackerLayers = 9
	TrackerRows   = 113
)

// GeigerMatrix is the anode and cathode activity of every tracker cell at
// one 800 ns clocktick.
type GeigerMatrix struct {
	Anode   [TrackerSides][TrackerLayers][TrackerRows]bool
	Cathode [TrackerSides][TrackerLayers][TrackerRows]bool
}

func (m *GeigerMatrix) Reset() {
	*m = GeigerMatrix{}
}

func checkCell(cell CellAddress) error {
	switch {
	case cell.Side < 0 || cell.Side >= TrackerSides:
		return &ErrRange{What: "side", Value: cell.Side, Bound: TrackerSides}
	case cell.Layer < 0 || cell.Layer >= TrackerLayers:
		return &ErrRange{What: "layer", Value: cell.Layer, Bound: TrackerLayers}
	case cell.Row < 0 || cell.Row >= TrackerRows:
		return &ErrRange{What: "row", Value: cell.Row, Bound: TrackerRows}
	}
	return nil
}

func cellFromGeomID(gid GeomID) CellAddress {
	return CellAddress{Side: gid.Side(), Layer: int(gid.Get(2)), Row: int(gid.Get(3))}
}

// Fill rebuilds the matrix from the tracker CTWs of one tick. Dead cells stay
// inactive.
func (m *GeigerMatrix) Fill(mapping *ElectronicMapping, mode TrackerMode, ctws []*GeigerCTW, dead map[CellAddress]bool) error {
	m.Reset()
	for _, ctw := range ctws {
		crate := uint32(ctw.ElecID.Crate())
		for _, board := range ctw.ActiveBoards() {
			block, err := ctw.Block(board)
			if err != nil {
				return err
			}
			for slot, activity := range block.Activity {
				tpID := NewElecID(ElecGeigerTP, crate, uint32(board), uint32(slot))
				for cell := 0; cell < GeigerCellsPerTP; cell++ {
					anode := activity&(1<<uint(2*cell)) != 0
					cathode := activity&(1<<uint(2*cell+1)) != 0
					if !anode && !cathode {
						continue
					}
					gid, err := mapping.GeigerCellFromTP(mode, tpID, 2*cell)
					if err != nil {
						return fmt.Errorf("error mapping %v cell %d: %w", tpID, cell, err)
					}
					address := cellFromGeomID(gid)
					if err := checkCell(address); err != nil {
						return err
					}
					if dead[address] {
						continue
					}
					m.Set(address, anode, cathode)
				}
			}
		}
	}
	return nil
}

// Count returns the number of cells with an active anode.
func (m *GeigerMatrix) Count() int {
	n := 0
	for side := range m.Anode {
		for layer := range m.Anode[side] {
			for _, active := range m.Anode[side][layer] {
				if active {
					n++
				}
			}
		}
	}
	return n
}

// Set ORs the given wire activity into a cell. The cell must be in range.
func (m *GeigerMatrix) Set(cell CellAddress, anode bool, cathode bool) {
	if anode {
		m.Anode[cell.Side][cell.Layer][cell.Row] = true
	}
	if cathode {
		m.Cathode[cell.Side][cell.Layer][cell.Row] = true
	}
}
