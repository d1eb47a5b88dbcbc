package trigger

import "fmt"

// Calorimeter TP word layout.
const (
	CaloTPWidth           = 31
	CaloTPMaxMultiplicity = 31

	caloTPMultiplicityBit   = 0
	caloTPMultiplicityWidth = 5
	caloTPHTBit             = 5
	caloTPLTOBit            = 6
	caloTPXTBit             = 7
	caloTPBoardBit          = 8
	caloTPBoardWidth        = 5
	caloTPCrateBit          = 13
	caloTPCrateWidth        = 2
	caloTPChannelsBit       = 15
	caloTPChannelsWidth     = 16
)

// CaloTP is the trigger primitive of one calorimeter front-end board for one
// 25 ns clocktick.
type CaloTP struct {
	HitID          int
	ElecID         ElecID
	Clocktick      int
	Multiplicity   int
	HT             bool
	LTO            bool
	XT             bool
	ChannelPattern uint16
}

func (tp CaloTP) Key() CollectionKey {
	return CollectionKey{Clocktick: tp.Clocktick, ID: tp.ElecID.Address}
}

// RegisterHit accounts for one channel above the low threshold. High
// threshold hits bump the multiplicity; a high threshold hit next to an
// already fired channel flags cross-talk.
func (tp *CaloTP) RegisterHit(channel int, high bool) {
	if !high {
		tp.LTO = true
		return
	}
	mask := uint16(1) << uint(channel)
	if tp.ChannelPattern&(mask<<1|mask>>1) != 0 {
		tp.XT = true
	}
	tp.ChannelPattern |= mask
	tp.HT = true
	if tp.Multiplicity < CaloTPMaxMultiplicity {
		tp.Multiplicity++
	}
}

func (tp CaloTP) Encode() Bitset {
	word := NewBitset(CaloTPWidth)
	word.SetField(caloTPMultiplicityBit, caloTPMultiplicityWidth, uint64(tp.Multiplicity))
	word.Set(caloTPHTBit, tp.HT)
	word.Set(caloTPLTOBit, tp.LTO)
	word.Set(caloTPXTBit, tp.XT)
	word.SetField(caloTPBoardBit, caloTPBoardWidth, uint64(tp.ElecID.Board()))
	word.SetField(caloTPCrateBit, caloTPCrateWidth, uint64(tp.ElecID.Crate()))
	word.SetField(caloTPChannelsBit, caloTPChannelsWidth, uint64(tp.ChannelPattern))
	return word
}

// Decode fills the payload and board id from a TP word. The clocktick and
// hit id are not part of the word.
func (tp *CaloTP) Decode(word Bitset) error {
	if word.Width() != CaloTPWidth {
		return fmt.Errorf("calo TP word has %d bits, expected %d", word.Width(), CaloTPWidth)
	}
	tp.Multiplicity = int(word.Field(caloTPMultiplicityBit, caloTPMultiplicityWidth))
	tp.HT = word.Test(caloTPHTBit)
	tp.LTO = word.Test(caloTPLTOBit)
	tp.XT = word.Test(caloTPXTBit)
	board := uint32(word.Field(caloTPBoardBit, caloTPBoardWidth))
	crate := uint32(word.Field(caloTPCrateBit, caloTPCrateWidth))
	tp.ElecID = NewElecID(ElecCaloFEB, crate, board)
	tp.ChannelPattern = uint16(word.Field(caloTPChannelsBit, caloTPChannelsWidth))
	return nil
}

func (tp CaloTP) String() string {
	return fmt.Sprintf("calo TP %v @%d [%s]", tp.ElecID, tp.Clocktick, tp.Encode())
}
