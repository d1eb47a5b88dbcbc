package trigger

import "fmt"

// Front-end electronics layout.
const (
	NumberOfCrates       = 3
	BoardsPerCrate       = 20
	ControlBoardSlot     = 10
	CaloChannelsPerBoard = 16
	GeigerFEBsPerCrate   = BoardsPerCrate - 1
	GeigerCellsPerBoard  = 36
	GeigerCellsPerTP     = 18
	GeigerTPsPerBoard    = GeigerCellsPerBoard / GeigerCellsPerTP
	XCaloCrate           = 2
	GVetoFirstBoard      = 8
)

// ChannelMapping is a bidirectional geometric/electronic id cache.
type ChannelMapping struct {
	ToElecID map[GeomID]ElecID
	ToGeomID map[ElecID]GeomID
}

func newChannelMapping() ChannelMapping {
	return ChannelMapping{
		ToElecID: make(map[GeomID]ElecID),
		ToGeomID: make(map[ElecID]GeomID),
	}
}

func (c ChannelMapping) insert(gid GeomID, eid ElecID) error {
	if existing, ok := c.ToElecID[gid]; ok && existing != eid {
		return fmt.Errorf("%w: %v already mapped to %v", ErrDuplicateKey, gid, existing)
	}
	if existing, ok := c.ToGeomID[eid]; ok && existing != gid {
		return fmt.Errorf("%w: %v already mapped to %v", ErrDuplicateKey, eid, existing)
	}
	c.ToElecID[gid] = eid
	c.ToGeomID[eid] = gid
	return nil
}

func (c ChannelMapping) Len() int {
	return len(c.ToElecID)
}

// ElectronicMapping converts geometric ids to electronic ids and back. Results
// are cached per detector in both directions.
type ElectronicMapping struct {
	geometry    Geometry
	module      int
	initialized bool
	Geiger      ChannelMapping
	Calo        ChannelMapping
}

func NewElectronicMapping() *ElectronicMapping {
	return &ElectronicMapping{
		Geiger: newChannelMapping(),
		Calo:   newChannelMapping(),
	}
}

func (m *ElectronicMapping) Initialize(geometry Geometry, module int) error {
	if m.initialized {
		return componentError("electronic mapping", "initialize", ErrAlreadyInitialized)
	}
	if geometry == nil {
		return componentError("electronic mapping", "initialize", fmt.Errorf("nil geometry"))
	}
	if geometry.Module() != module {
		return componentError("electronic mapping", "initialize",
			&ErrRange{What: "module", Value: module, Bound: geometry.Module() + 1})
	}
	m.geometry = geometry
	m.module = module
	m.initialized = true
	return nil
}

func (m *ElectronicMapping) IsInitialized() bool {
	return m.initialized
}

func (m *ElectronicMapping) Module() int {
	return m.module
}

// Reset drops the caches and the geometry reference.
func (m *ElectronicMapping) Reset() {
	m.geometry = nil
	m.module = 0
	m.initialized = false
	m.Geiger = newChannelMapping()
	m.Calo = newChannelMapping()
}

func (m *ElectronicMapping) check(mode TrackerMode, op string) error {
	if !m.initialized {
		return componentError("electronic mapping", op, ErrNotInitialized)
	}
	if err := checkTrackerMode(mode); err != nil {
		return componentError("electronic mapping", op, err)
	}
	return nil
}

func (m *ElectronicMapping) cacheForGeom(gid GeomID) (ChannelMapping, error) {
	switch gid.Type {
	case GeomGeigerCell:
		return m.Geiger, nil
	case GeomCaloBlock, GeomXCaloBlock, GeomGVetoBlock:
		return m.Calo, nil
	}
	return ChannelMapping{}, fmt.Errorf("unknown geometric category %d", gid.Type)
}

func (m *ElectronicMapping) cacheForElec(eid ElecID) (ChannelMapping, error) {
	switch eid.Type {
	case ElecGeigerChannel:
		return m.Geiger, nil
	case ElecCaloChannel:
		return m.Calo, nil
	}
	return ChannelMapping{}, fmt.Errorf("unknown electronic category %d", eid.Type)
}

func (m *ElectronicMapping) GeomToElec(mode TrackerMode, gid GeomID) (ElecID, error) {
	if err := m.check(mode, "geom_to_elec"); err != nil {
		return ElecID{}, err
	}
	cache, err := m.cacheForGeom(gid)
	if err != nil {
		return ElecID{}, err
	}
	if eid, ok := cache.ToElecID[gid]; ok {
		return eid, nil
	}
	if err := m.geometry.CheckID(gid); err != nil {
		return ElecID{}, err
	}
	eid, err := convertGeomToElec(m.geometry.Dimensions(), gid)
	if err != nil {
		return ElecID{}, err
	}
	if err := cache.insert(gid, eid); err != nil {
		return ElecID{}, err
	}
	return eid, nil
}

func (m *ElectronicMapping) ElecToGeom(mode TrackerMode, eid ElecID) (GeomID, error) {
	if err := m.check(mode, "elec_to_geom"); err != nil {
		return GeomID{}, err
	}
	cache, err := m.cacheForElec(eid)
	if err != nil {
		return GeomID{}, err
	}
	if gid, ok := cache.ToGeomID[eid]; ok {
		return gid, nil
	}
	gid, err := convertElecToGeom(m.geometry.Dimensions(), m.module, eid)
	if err != nil {
		return GeomID{}, err
	}
	if err := cache.insert(gid, eid); err != nil {
		return GeomID{}, err
	}
	return gid, nil
}

// Preload inserts an externally defined pair in both directions of the
// matching cache.
func (m *ElectronicMapping) Preload(gid GeomID, eid ElecID) error {
	if !m.initialized {
		return componentError("electronic mapping", "preload", ErrNotInitialized)
	}
	if err := m.geometry.CheckID(gid); err != nil {
		return err
	}
	if (gid.Type == GeomGeigerCell) != (eid.Type == ElecGeigerChannel) {
		return fmt.Errorf("cannot map %v to %v: detector mismatch", gid, eid)
	}
	cache, err := m.cacheForGeom(gid)
	if err != nil {
		return err
	}
	if _, err := m.cacheForElec(eid); err != nil {
		return err
	}
	return cache.insert(gid, eid)
}

// CaloFEB returns the board-level id and channel of a calorimeter block.
func (m *ElectronicMapping) CaloFEB(mode TrackerMode, gid GeomID) (ElecID, int, error) {
	eid, err := m.GeomToElec(mode, gid)
	if err != nil {
		return ElecID{}, 0, err
	}
	if eid.Type != ElecCaloChannel {
		return ElecID{}, 0, fmt.Errorf("%v is not a calorimeter channel", eid)
	}
	return ElecID{eid.Prefix(ElecCaloFEB, 2)}, eid.Channel(), nil
}

// GeigerTPSlot returns the TP-level id of a Geiger cell and the index of its
// anode bit in the TP activity bits. The cathode bit follows the anode bit.
func (m *ElectronicMapping) GeigerTPSlot(mode TrackerMode, gid GeomID) (ElecID, int, error) {
	eid, err := m.GeomToElec(mode, gid)
	if err != nil {
		return ElecID{}, 0, err
	}
	if eid.Type != ElecGeigerChannel {
		return ElecID{}, 0, fmt.Errorf("%v is not a Geiger channel", eid)
	}
	channel := eid.Channel()
	tp := channel / GeigerCellsPerTP
	bit := (channel % GeigerCellsPerTP) * 2
	return NewElecID(ElecGeigerTP, uint32(eid.Crate()), uint32(eid.Board()), uint32(tp)), bit, nil
}

// GeigerCellFromTP returns the geometric id of the cell at anode bit index bit
// of a TP slot.
func (m *ElectronicMapping) GeigerCellFromTP(mode TrackerMode, tpID ElecID, bit int) (GeomID, error) {
	if bit < 0 || bit >= GeigerCellsPerTP*2 {
		return GeomID{}, &ErrRange{What: "tp bit", Value: bit, Bound: GeigerCellsPerTP * 2}
	}
	channel := tpID.Channel()*GeigerCellsPerTP + bit/2
	eid := NewElecID(ElecGeigerChannel, uint32(tpID.Crate()), uint32(tpID.Board()), uint32(channel))
	return m.ElecToGeom(mode, eid)
}

func geigerSlotFromIndex(index int) int {
	if index >= ControlBoardSlot {
		return index + 1
	}
	return index
}

func geigerIndexFromSlot(slot int) int {
	if slot > ControlBoardSlot {
		return slot - 1
	}
	return slot
}

func convertGeomToElec(dims Dimensions, gid GeomID) (ElecID, error) {
	f := gid.Fields
	switch gid.Type {
	case GeomCaloBlock:
		side, column, row := f[1], f[2], f[3]
		return NewElecID(ElecCaloChannel, side, column, row), nil
	case GeomXCaloBlock:
		side, wall, column, row := f[1], f[2], f[3], f[4]
		board := side*uint32(dims.XCaloWalls*dims.XCaloColumns) + wall*uint32(dims.XCaloColumns) + column
		return NewElecID(ElecCaloChannel, XCaloCrate, board, row), nil
	case GeomGVetoBlock:
		side, wall, column := f[1], f[2], f[3]
		board := GVetoFirstBoard + side*uint32(dims.GVetoWalls) + wall
		return NewElecID(ElecCaloChannel, XCaloCrate, board, column), nil
	case GeomGeigerCell:
		side, layer, row := int(f[1]), int(f[2]), int(f[3])
		index := row / GeigerTPsPerBoard
		crate := index / GeigerFEBsPerCrate
		if crate >= NumberOfCrates {
			return ElecID{}, &ErrRange{What: "crate", Value: crate, Bound: NumberOfCrates}
		}
		slot := geigerSlotFromIndex(index % GeigerFEBsPerCrate)
		channel := (row%GeigerTPsPerBoard)*GeigerCellsPerTP + side*dims.GeigerLayers + layer
		return NewElecID(ElecGeigerChannel, uint32(crate), uint32(slot), uint32(channel)), nil
	}
	return ElecID{}, fmt.Errorf("unknown geometric category %d", gid.Type)
}

func convertElecToGeom(dims Dimensions, module int, eid ElecID) (GeomID, error) {
	if eid.Depth != 3 {
		return GeomID{}, fmt.Errorf("electronic id %v is not a channel id", eid)
	}
	crate, board, channel := eid.Crate(), eid.Board(), eid.Channel()
	if crate >= NumberOfCrates {
		return GeomID{}, &ErrRange{What: "crate", Value: crate, Bound: NumberOfCrates}
	}
	if board >= BoardsPerCrate {
		return GeomID{}, &ErrRange{What: "board", Value: board, Bound: BoardsPerCrate}
	}
	mod := uint32(module)
	switch eid.Type {
	case ElecCaloChannel:
		if crate < XCaloCrate {
			if board >= dims.CaloColumns || channel >= dims.CaloRows {
				return GeomID{}, fmt.Errorf("no calorimeter block at %v: %w", eid, ErrOutOfRange)
			}
			return NewGeomID(GeomCaloBlock, mod, uint32(crate), uint32(board), uint32(channel)), nil
		}
		xcaloBoards := dims.Sides * dims.XCaloWalls * dims.XCaloColumns
		if board < xcaloBoards {
			if channel >= dims.XCaloRows {
				return GeomID{}, &ErrRange{What: "x-wall channel", Value: channel, Bound: dims.XCaloRows}
			}
			perSide := dims.XCaloWalls * dims.XCaloColumns
			side := board / perSide
			wall := (board % perSide) / dims.XCaloColumns
			column := board % dims.XCaloColumns
			return NewGeomID(GeomXCaloBlock, mod, uint32(side), uint32(wall), uint32(column), uint32(channel)), nil
		}
		gvetoBoards := dims.Sides * dims.GVetoWalls
		if board >= GVetoFirstBoard && board < GVetoFirstBoard+gvetoBoards {
			if channel >= dims.GVetoColumns {
				return GeomID{}, &ErrRange{What: "gamma veto channel", Value: channel, Bound: dims.GVetoColumns}
			}
			side := (board - GVetoFirstBoard) / dims.GVetoWalls
			wall := (board - GVetoFirstBoard) % dims.GVetoWalls
			return NewGeomID(GeomGVetoBlock, mod, uint32(side), uint32(wall), uint32(channel)), nil
		}
		return GeomID{}, fmt.Errorf("no calorimeter board at %v: %w", eid, ErrOutOfRange)
	case ElecGeigerChannel:
		if board == ControlBoardSlot {
			return GeomID{}, fmt.Errorf("board %d is the control board: %w", board, ErrOutOfRange)
		}
		if channel >= GeigerCellsPerBoard {
			return GeomID{}, &ErrRange{What: "Geiger channel", Value: channel, Bound: GeigerCellsPerBoard}
		}
		index := crate*GeigerFEBsPerCrate + geigerIndexFromSlot(board)
		local := channel % GeigerCellsPerTP
		row := index*GeigerTPsPerBoard + channel/GeigerCellsPerTP
		side := local / dims.GeigerLayers
		layer := local % dims.GeigerLayers
		if row >= dims.GeigerRows || side >= dims.Sides {
			return GeomID{}, fmt.Errorf("no Geiger cell at %v: %w", eid, ErrOutOfRange)
		}
		return NewGeomID(GeomGeigerCell, mod, uint32(side), uint32(layer), uint32(row)), nil
	}
	return GeomID{}, fmt.Errorf("unknown electronic category %d", eid.Type)
}
