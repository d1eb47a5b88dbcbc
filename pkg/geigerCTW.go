package trigger

import "fmt"

// Geiger CTW layout: one 100-bit block per board slot of the crate.
const (
	GeigerBlockWidth = 100
	GeigerCTWWidth   = BoardsPerCrate * GeigerBlockWidth

	geigerBlockActivityBit       = 0
	geigerBlockBoardBit          = GeigerTPsPerBoard * geigerTPActivityWidth
	geigerBlockCrateBit          = geigerBlockBoardBit + geigerTPBoardWidth
	geigerBlockSideModeBit       = geigerBlockCrateBit + geigerTPCrateWidth
	geigerBlockTriggerModeBit    = geigerBlockSideModeBit + 1
	geigerBlockHardwareStatusBit = geigerBlockTriggerModeBit + geigerTPTriggerModeWidth
)

// GeigerBoardBlock is the content of one tracker front-end board inside a
// crate CTW. Activity holds the cell bits of the two TP halves.
type GeigerBoardBlock struct {
	Board          int
	Crate          int
	Activity       [GeigerTPsPerBoard]uint64
	SideMode       int
	TriggerMode    int
	HardwareStatus int
}

func (b GeigerBoardBlock) Encode() Bitset {
	word := NewBitset(GeigerBlockWidth)
	for slot, activity := range b.Activity {
		word.SetField(geigerBlockActivityBit+slot*geigerTPActivityWidth, geigerTPActivityWidth, activity)
	}
	word.SetField(geigerBlockBoardBit, geigerTPBoardWidth, uint64(b.Board))
	word.SetField(geigerBlockCrateBit, geigerTPCrateWidth, uint64(b.Crate))
	word.SetField(geigerBlockSideModeBit, 1, uint64(b.SideMode))
	word.SetField(geigerBlockTriggerModeBit, geigerTPTriggerModeWidth, uint64(b.TriggerMode))
	word.SetField(geigerBlockHardwareStatusBit, geigerTPHardwareStatusWidth, uint64(b.HardwareStatus))
	return word
}

func DecodeGeigerBoardBlock(word Bitset) (GeigerBoardBlock, error) {
	var b GeigerBoardBlock
	if word.Width() != GeigerBlockWidth {
		return b, fmt.Errorf("geiger block has %d bits, expected %d", word.Width(), GeigerBlockWidth)
	}
	for slot := range b.Activity {
		b.Activity[slot] = word.Field(geigerBlockActivityBit+slot*geigerTPActivityWidth, geigerTPActivityWidth)
	}
	b.Board = int(word.Field(geigerBlockBoardBit, geigerTPBoardWidth))
	b.Crate = int(word.Field(geigerBlockCrateBit, geigerTPCrateWidth))
	b.SideMode = int(word.Field(geigerBlockSideModeBit, 1))
	b.TriggerMode = int(word.Field(geigerBlockTriggerModeBit, geigerTPTriggerModeWidth))
	b.HardwareStatus = int(word.Field(geigerBlockHardwareStatusBit, geigerTPHardwareStatusWidth))
	return b, nil
}

func (b GeigerBoardBlock) Empty() bool {
	for _, activity := range b.Activity {
		if activity != 0 {
			return false
		}
	}
	return true
}

// GeigerCTW is the trigger word of one tracker crate for one clocktick.
type GeigerCTW struct {
	Clocktick int
	ElecID    ElecID
	Word      Bitset
}

func (c GeigerCTW) Key() CollectionKey {
	return CollectionKey{Clocktick: c.Clocktick, ID: c.ElecID.Address}
}

func checkGeigerBoard(board int) error {
	if board < 0 || board >= BoardsPerCrate {
		return &ErrRange{What: "geiger board", Value: board, Bound: BoardsPerCrate}
	}
	return nil
}

// SetBlock ORs a board block into its slot of the CTW.
func (c *GeigerCTW) SetBlock(board int, block GeigerBoardBlock) error {
	if err := checkGeigerBoard(board); err != nil {
		return err
	}
	if c.Word.Width() == 0 {
		c.Word = NewBitset(GeigerCTWWidth)
	}
	c.Word.OrAt(board*GeigerBlockWidth, block.Encode())
	return nil
}

func (c GeigerCTW) Block(board int) (GeigerBoardBlock, error) {
	if err := checkGeigerBoard(board); err != nil {
		return GeigerBoardBlock{}, err
	}
	return DecodeGeigerBoardBlock(c.Word.Slice(board*GeigerBlockWidth, GeigerBlockWidth))
}

// ActiveBoards lists the board slots with at least one active cell bit.
func (c GeigerCTW) ActiveBoards() []int {
	if c.Word.Width() != GeigerCTWWidth {
		return nil
	}
	var boards []int
	for board := 0; board < BoardsPerCrate; board++ {
		block, err := c.Block(board)
		if err == nil && !block.Empty() {
			boards = append(boards, board)
		}
	}
	return boards
}

func (c GeigerCTW) String() string {
	return fmt.Sprintf("geiger CTW %v @%d boards %v", c.ElecID, c.Clocktick, c.ActiveBoards())
}
