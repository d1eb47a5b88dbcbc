package trigger

import "fmt"

// Calorimeter CTW word layout.
const (
	CaloCTWWidth       = 39
	CaloZones          = 10
	ColumnsPerCaloZone = 2

	caloCTWZoneCodesBit = 0
	caloCTWZoningBit    = 20
	caloCTWHTMPCBit     = 30
	caloCTWHTMGVetoBit  = 32
	caloCTWLTOBit       = 34
	caloCTWLTOGVetoBit  = 35
	caloCTWXTBit        = 36
	caloCTWCrateBit     = 37
	caloCTWCrateWidth   = 2

	// Crate 2 zone slots: side*5 + wall for x-walls, side*5 + 2 + wall for
	// gamma vetoes.
	zoneSlotsPerSide     = 5
	xcaloBoardsPerSide   = 4
	xcaloBoardsPerWall   = 2
	gvetoBoardsPerSide   = 2
	gvetoSlotOffset      = 2
	numberOfGVetoBoards  = 2 * gvetoBoardsPerSide
	numberOfXCaloBoards  = 2 * xcaloBoardsPerSide
	multiplicityCodeBits = 2
)

// CaloCTWFields is the decoded content of a calorimeter CTW.
type CaloCTWFields struct {
	ZoneCodes [CaloZones]uint8
	Zoning    uint16
	HTMPC     uint8
	HTMGVeto  uint8
	LTO       bool
	LTOGVeto  bool
	XT        bool
	Crate     int
}

func (f CaloCTWFields) Encode() Bitset {
	word := NewBitset(CaloCTWWidth)
	for zone, code := range f.ZoneCodes {
		word.SetField(caloCTWZoneCodesBit+zone*multiplicityCodeBits, multiplicityCodeBits, uint64(code))
	}
	word.SetField(caloCTWZoningBit, CaloZones, uint64(f.Zoning))
	word.SetField(caloCTWHTMPCBit, multiplicityCodeBits, uint64(f.HTMPC))
	word.SetField(caloCTWHTMGVetoBit, multiplicityCodeBits, uint64(f.HTMGVeto))
	word.Set(caloCTWLTOBit, f.LTO)
	word.Set(caloCTWLTOGVetoBit, f.LTOGVeto)
	word.Set(caloCTWXTBit, f.XT)
	word.SetField(caloCTWCrateBit, caloCTWCrateWidth, uint64(f.Crate))
	return word
}

func DecodeCaloCTW(word Bitset) (CaloCTWFields, error) {
	var f CaloCTWFields
	if word.Width() != CaloCTWWidth {
		return f, fmt.Errorf("calo CTW word has %d bits, expected %d", word.Width(), CaloCTWWidth)
	}
	for zone := range f.ZoneCodes {
		f.ZoneCodes[zone] = uint8(word.Field(caloCTWZoneCodesBit+zone*multiplicityCodeBits, multiplicityCodeBits))
	}
	f.Zoning = uint16(word.Field(caloCTWZoningBit, CaloZones))
	f.HTMPC = uint8(word.Field(caloCTWHTMPCBit, multiplicityCodeBits))
	f.HTMGVeto = uint8(word.Field(caloCTWHTMGVetoBit, multiplicityCodeBits))
	f.LTO = word.Test(caloCTWLTOBit)
	f.LTOGVeto = word.Test(caloCTWLTOGVetoBit)
	f.XT = word.Test(caloCTWXTBit)
	f.Crate = int(word.Field(caloCTWCrateBit, caloCTWCrateWidth))
	return f, nil
}

// CaloCTW is the trigger word of one calorimeter crate for one clocktick.
type CaloCTW struct {
	Clocktick int
	ElecID    ElecID
	Word      Bitset
}

func (c CaloCTW) Key() CollectionKey {
	return CollectionKey{Clocktick: c.Clocktick, ID: c.ElecID.Address}
}

func (c CaloCTW) Fields() (CaloCTWFields, error) {
	return DecodeCaloCTW(c.Word)
}

func (c CaloCTW) String() string {
	return fmt.Sprintf("calo CTW %v @%d [%s]", c.ElecID, c.Clocktick, c.Word)
}

// caloZoneSlot returns the zone slot of a calorimeter board inside its crate
// CTW and whether the board reads gamma veto blocks.
func caloZoneSlot(crate int, board int) (int, bool, error) {
	if board < 0 || board >= BoardsPerCrate {
		return 0, false, &ErrRange{What: "calo board", Value: board, Bound: BoardsPerCrate}
	}
	if crate < XCaloCrate {
		return board / ColumnsPerCaloZone, false, nil
	}
	if crate > XCaloCrate {
		return 0, false, &ErrRange{What: "calo crate", Value: crate, Bound: NumberOfCrates}
	}
	switch {
	case board < numberOfXCaloBoards:
		side := board / xcaloBoardsPerSide
		wall := (board % xcaloBoardsPerSide) / xcaloBoardsPerWall
		return side*zoneSlotsPerSide + wall, false, nil
	case board < GVetoFirstBoard+numberOfGVetoBoards:
		side := (board - GVetoFirstBoard) / gvetoBoardsPerSide
		wall := (board - GVetoFirstBoard) % gvetoBoardsPerSide
		return side*zoneSlotsPerSide + gvetoSlotOffset + wall, true, nil
	}
	return 0, false, &ErrRange{What: "calo board", Value: board, Bound: GVetoFirstBoard + numberOfGVetoBoards}
}
