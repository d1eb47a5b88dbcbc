package trigger

import "fmt"

// Geiger TP word layout: 18 cells x (anode, cathode), then addressing and
// status bits.
const (
	GeigerTPWidth = 55

	geigerTPActivityBit         = 0
	geigerTPActivityWidth       = GeigerCellsPerTP * 2
	geigerTPSlotBit             = 36
	geigerTPBoardBit            = 37
	geigerTPBoardWidth          = 5
	geigerTPCrateBit            = 42
	geigerTPCrateWidth          = 2
	geigerTPSideModeBit         = 44
	geigerTPTriggerModeBit      = 45
	geigerTPTriggerModeWidth    = 2
	geigerTPHardwareStatusBit   = 47
	geigerTPHardwareStatusWidth = 8
)

// GeigerTP is the trigger primitive of one half of a tracker front-end board
// for one 800 ns clocktick.
type GeigerTP struct {
	HitID          int
	ElecID         ElecID
	Clocktick      int
	Activity       uint64
	SideMode       int
	TriggerMode    int
	HardwareStatus int
}

func (tp GeigerTP) Key() CollectionKey {
	return CollectionKey{Clocktick: tp.Clocktick, ID: tp.ElecID.Address}
}

func (tp GeigerTP) Slot() int {
	return tp.ElecID.Channel()
}

func (tp *GeigerTP) SetActive(bit int) {
	if bit < 0 || bit >= geigerTPActivityWidth {
		panic(fmt.Sprintf("geiger TP bit %d out of range", bit))
	}
	tp.Activity |= 1 << uint(bit)
}

func (tp GeigerTP) IsActive(bit int) bool {
	return tp.Activity&(1<<uint(bit)) != 0
}

func (tp GeigerTP) AnodeActive(cell int) bool {
	return tp.IsActive(cell * 2)
}

func (tp GeigerTP) CathodeActive(cell int) bool {
	return tp.IsActive(cell*2 + 1)
}

func (tp GeigerTP) Encode() Bitset {
	word := NewBitset(GeigerTPWidth)
	word.SetField(geigerTPActivityBit, geigerTPActivityWidth, tp.Activity)
	word.SetField(geigerTPSlotBit, 1, uint64(tp.Slot()))
	word.SetField(geigerTPBoardBit, geigerTPBoardWidth, uint64(tp.ElecID.Board()))
	word.SetField(geigerTPCrateBit, geigerTPCrateWidth, uint64(tp.ElecID.Crate()))
	word.SetField(geigerTPSideModeBit, 1, uint64(tp.SideMode))
	word.SetField(geigerTPTriggerModeBit, geigerTPTriggerModeWidth, uint64(tp.TriggerMode))
	word.SetField(geigerTPHardwareStatusBit, geigerTPHardwareStatusWidth, uint64(tp.HardwareStatus))
	return word
}

func (tp *GeigerTP) Decode(word Bitset) error {
	if word.Width() != GeigerTPWidth {
		return fmt.Errorf("geiger TP word has %d bits, expected %d", word.Width(), GeigerTPWidth)
	}
	tp.Activity = word.Field(geigerTPActivityBit, geigerTPActivityWidth)
	slot := uint32(word.Field(geigerTPSlotBit, 1))
	board := uint32(word.Field(geigerTPBoardBit, geigerTPBoardWidth))
	crate := uint32(word.Field(geigerTPCrateBit, geigerTPCrateWidth))
	tp.ElecID = NewElecID(ElecGeigerTP, crate, board, slot)
	tp.SideMode = int(word.Field(geigerTPSideModeBit, 1))
	tp.TriggerMode = int(word.Field(geigerTPTriggerModeBit, geigerTPTriggerModeWidth))
	tp.HardwareStatus = int(word.Field(geigerTPHardwareStatusBit, geigerTPHardwareStatusWidth))
	return nil
}

// Block returns the board block carrying this TP.
func (tp GeigerTP) Block() GeigerBoardBlock {
	block := GeigerBoardBlock{
		Board:          tp.ElecID.Board(),
		Crate:          tp.ElecID.Crate(),
		SideMode:       tp.SideMode,
		TriggerMode:    tp.TriggerMode,
		HardwareStatus: tp.HardwareStatus,
	}
	block.Activity[tp.Slot()] = tp.Activity
	return block
}

func (tp GeigerTP) String() string {
	return fmt.Sprintf("geiger TP %v @%d [%s]", tp.ElecID, tp.Clocktick, tp.Encode())
}
