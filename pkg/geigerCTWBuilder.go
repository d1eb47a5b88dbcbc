package trigger

import "fmt"

// GeigerCTWBuilder copies the block of every tracker TP into the CTW of its
// crate and clocktick.
type GeigerCTWBuilder struct {
	verbosity int
}

func NewGeigerCTWBuilder(config Configuration) *GeigerCTWBuilder {
	return &GeigerCTWBuilder{verbosity: config.Verbosity}
}

func (b *GeigerCTWBuilder) Process(tps *Collection[GeigerTP], ctws *Collection[GeigerCTW]) error {
	if !tps.IsLocked() {
		return componentError("geiger CTW builder", "process", ErrNotLocked)
	}

	blocks := make(map[crateTick][]GeigerBoardBlock)
	for _, tp := range tps.Items() {
		if err := checkGeigerBoard(tp.ElecID.Board()); err != nil {
			return componentError("geiger CTW builder", "process", fmt.Errorf("TP %v: %w", tp.ElecID, err))
		}
		key := crateTick{Clocktick: tp.Clocktick, Crate: tp.ElecID.Crate()}
		blocks[key] = append(blocks[key], tp.Block())
	}

	keys := make([]crateTick, 0, len(blocks))
	for key := range blocks {
		keys = append(keys, key)
	}
	sortCrateTicks(keys)

	for _, key := range keys {
		ctw, err := ctws.Add()
		if err != nil {
			return err
		}
		ctw.Clocktick = key.Clocktick
		ctw.ElecID = NewElecID(ElecCrate, uint32(key.Crate))
		ctw.Word = NewBitset(GeigerCTWWidth)
		for _, block := range blocks[key] {
			if err := ctw.SetBlock(block.Board, block); err != nil {
				return err
			}
		}
		if b.verbosity > 2 {
			logger.Info(ctw.String(), "geigerCTW")
		}
	}
	return ctws.Lock()
}
