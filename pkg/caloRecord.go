package trigger

import "fmt"

// Per side wall counts of crate 2.
const (
	CaloSides     = 2
	XWallsPerSide = 2
	GVetoPerSide  = 2
)

// CaloRecord gathers the calorimeter CTWs of one 25 ns clocktick.
type CaloRecord struct {
	Clocktick   int
	Zoning      [CaloSides]uint16
	ZoneCodes   [CaloSides][CaloZones]uint8
	XWallZoning [CaloSides]uint8
	XWallCodes  [CaloSides][XWallsPerSide]uint8
	GVetoCodes  [CaloSides][GVetoPerSide]uint8
	LTO         bool
	LTOGVeto    bool
	XT          bool
}

// AddCTW ORs the fields of a crate CTW into the record. Zone codes keep the
// highest value seen.
func (r *CaloRecord) AddCTW(ctw CaloCTW) error {
	f, err := ctw.Fields()
	if err != nil {
		return err
	}
	r.LTO = r.LTO || f.LTO
	r.LTOGVeto = r.LTOGVeto || f.LTOGVeto
	r.XT = r.XT || f.XT

	switch {
	case f.Crate < XCaloCrate:
		side := f.Crate
		r.Zoning[side] |= f.Zoning
		for zone, code := range f.ZoneCodes {
			r.ZoneCodes[side][zone] = max(r.ZoneCodes[side][zone], code)
		}
	case f.Crate == XCaloCrate:
		for side := 0; side < CaloSides; side++ {
			for wall := 0; wall < XWallsPerSide; wall++ {
				slot := side*zoneSlotsPerSide + wall
				r.XWallCodes[side][wall] = max(r.XWallCodes[side][wall], f.ZoneCodes[slot])
				if f.Zoning&(1<<uint(slot)) != 0 {
					r.XWallZoning[side] |= 1 << uint(wall)
				}
			}
			for wall := 0; wall < GVetoPerSide; wall++ {
				slot := side*zoneSlotsPerSide + gvetoSlotOffset + wall
				r.GVetoCodes[side][wall] = max(r.GVetoCodes[side][wall], f.ZoneCodes[slot])
			}
		}
	default:
		return &ErrRange{What: "calo crate", Value: f.Crate, Bound: NumberOfCrates}
	}
	return nil
}

// Merge ORs flags and keeps the per zone maximum of o into r.
func (r *CaloRecord) Merge(o CaloRecord) {
	r.LTO = r.LTO || o.LTO
	r.LTOGVeto = r.LTOGVeto || o.LTOGVeto
	r.XT = r.XT || o.XT
	for side := 0; side < CaloSides; side++ {
		r.Zoning[side] |= o.Zoning[side]
		r.XWallZoning[side] |= o.XWallZoning[side]
		for zone := range r.ZoneCodes[side] {
			r.ZoneCodes[side][zone] = max(r.ZoneCodes[side][zone], o.ZoneCodes[side][zone])
		}
		for wall := range r.XWallCodes[side] {
			r.XWallCodes[side][wall] = max(r.XWallCodes[side][wall], o.XWallCodes[side][wall])
		}
		for wall := range r.GVetoCodes[side] {
			r.GVetoCodes[side][wall] = max(r.GVetoCodes[side][wall], o.GVetoCodes[side][wall])
		}
	}
}

// SideMultiplicity sums the zone and x-wall codes of a side, saturating at
// maxMultiplicity.
func (r CaloRecord) SideMultiplicity(side int, maxMultiplicity int) int {
	total := 0
	for _, code := range r.ZoneCodes[side] {
		total = saturatingAdd(total, int(code), maxMultiplicity)
	}
	for _, code := range r.XWallCodes[side] {
		total = saturatingAdd(total, int(code), maxMultiplicity)
	}
	return total
}

func (r CaloRecord) String() string {
	return fmt.Sprintf("calo record @%d zoning %010b|%010b xwall %02b|%02b lto %t gveto lto %t xt %t",
		r.Clocktick, r.Zoning[0], r.Zoning[1], r.XWallZoning[0], r.XWallZoning[1], r.LTO, r.LTOGVeto, r.XT)
}

// CaloSummaryRecord is the calorimeter decision for one 25 ns clocktick.
type CaloSummaryRecord struct {
	Clocktick                     int
	Record                        CaloRecord
	SideMultiplicity              [CaloSides]int
	TotalMultiplicity             int
	TotalMultiplicityThresholdMet bool
	SingleSide                    bool
	BothSides                     bool
	CaloFinaleDecision            bool
}

func (s CaloSummaryRecord) String() string {
	return fmt.Sprintf("calo summary @%d mult %d+%d=%d threshold %t single %t both %t decision %t",
		s.Clocktick, s.SideMultiplicity[0], s.SideMultiplicity[1], s.TotalMultiplicity,
		s.TotalMultiplicityThresholdMet, s.SingleSide, s.BothSides, s.CaloFinaleDecision)
}
