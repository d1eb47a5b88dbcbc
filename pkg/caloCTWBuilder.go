package trigger

import (
	"fmt"
	"sort"
)

type crateTick struct {
	Clocktick int
	Crate     int
}

func sortCrateTicks(keys []crateTick) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Clocktick != keys[j].Clocktick {
			return keys[i].Clocktick < keys[j].Clocktick
		}
		return keys[i].Crate < keys[j].Crate
	})
}

type caloCrateSum struct {
	zoneMultiplicity  [CaloZones]int
	zoning            uint16
	multiplicity      int
	gvetoMultiplicity int
	lto               bool
	ltoGVeto          bool
	xt                bool
}

// CaloCTWBuilder packs the calorimeter TPs of each crate and clocktick into
// one CTW.
type CaloCTWBuilder struct {
	verbosity int
}

func NewCaloCTWBuilder(config Configuration) *CaloCTWBuilder {
	return &CaloCTWBuilder{verbosity: config.Verbosity}
}

func (b *CaloCTWBuilder) Process(tps *Collection[CaloTP], ctws *Collection[CaloCTW]) error {
	if !tps.IsLocked() {
		return componentError("calo CTW builder", "process", ErrNotLocked)
	}

	sums := make(map[crateTick]*caloCrateSum)
	for _, tp := range tps.Items() {
		crate := tp.ElecID.Crate()
		slot, gveto, err := caloZoneSlot(crate, tp.ElecID.Board())
		if err != nil {
			return componentError("calo CTW builder", "process", fmt.Errorf("TP %v: %w", tp.ElecID, err))
		}
		key := crateTick{Clocktick: tp.Clocktick, Crate: crate}
		sum, ok := sums[key]
		if !ok {
			sum = &caloCrateSum{}
			sums[key] = sum
		}
		sum.zoneMultiplicity[slot] += tp.Multiplicity
		if tp.HT {
			sum.zoning |= 1 << uint(slot)
		}
		if gveto {
			sum.gvetoMultiplicity += tp.Multiplicity
			sum.ltoGVeto = sum.ltoGVeto || tp.LTO
		} else {
			sum.multiplicity += tp.Multiplicity
			sum.lto = sum.lto || tp.LTO
		}
		sum.xt = sum.xt || tp.XT
	}

	keys := make([]crateTick, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sortCrateTicks(keys)

	for _, key := range keys {
		sum := sums[key]
		fields := CaloCTWFields{
			Zoning:   sum.zoning,
			HTMPC:    uint8(EncodeMultiplicity(sum.multiplicity)),
			HTMGVeto: uint8(EncodeMultiplicity(sum.gvetoMultiplicity)),
			LTO:      sum.lto,
			LTOGVeto: sum.ltoGVeto,
			XT:       sum.xt,
			Crate:    key.Crate,
		}
		for zone, m := range sum.zoneMultiplicity {
			fields.ZoneCodes[zone] = uint8(EncodeMultiplicity(m))
		}

		ctw, err := ctws.Add()
		if err != nil {
			return err
		}
		ctw.Clocktick = key.Clocktick
		ctw.ElecID = NewElecID(ElecCrate, uint32(key.Crate))
		ctw.Word = fields.Encode()

		if b.verbosity > 2 {
			logger.Info(ctw.String(), "caloCTW")
		}
	}
	return ctws.Lock()
}
