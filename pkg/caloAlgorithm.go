package trigger

import "fmt"

const caloMaxCode = 3

// CaloTriggerAlgorithm evaluates the calorimeter multiplicity and side
// coincidence on the 25 ns clock.
type CaloTriggerAlgorithm struct {
	bufferDepth       int
	threshold         int
	maxMultiplicity   int
	inhibitSingleSide bool
	inhibitBothSides  bool
	verbosity         int

	buffer  *circularBuffer[CaloRecord]
	records []CaloSummaryRecord
}

func NewCaloTriggerAlgorithm(config Configuration) (*CaloTriggerAlgorithm, error) {
	if config.CaloCircularBufferDepth < 1 {
		return nil, componentError("calo algorithm", "configure",
			fmt.Errorf("circular buffer depth %d: %w", config.CaloCircularBufferDepth, ErrOutOfRange))
	}
	if config.CaloThresholdMultiplicity < 0 || config.CaloThresholdMultiplicity > caloMaxCode {
		return nil, componentError("calo algorithm", "configure",
			&ErrRange{What: "threshold multiplicity", Value: config.CaloThresholdMultiplicity, Bound: caloMaxCode + 1})
	}
	if config.CaloMaxMultiplicity < 1 || config.CaloMaxMultiplicity > caloMaxCode {
		return nil, componentError("calo algorithm", "configure",
			&ErrRange{What: "max multiplicity", Value: config.CaloMaxMultiplicity, Bound: caloMaxCode + 1})
	}
	return &CaloTriggerAlgorithm{
		bufferDepth:       config.CaloCircularBufferDepth,
		threshold:         config.CaloThresholdMultiplicity,
		maxMultiplicity:   config.CaloMaxMultiplicity,
		inhibitSingleSide: config.InhibitSingleSide,
		inhibitBothSides:  config.InhibitBothSides,
		verbosity:         config.Verbosity,
		buffer:            newCircularBuffer[CaloRecord](config.CaloCircularBufferDepth),
	}, nil
}

// ProcessClocktick pushes the record built from the CTWs of one tick into the
// buffer and evaluates the integrated buffer.
func (a *CaloTriggerAlgorithm) ProcessClocktick(tick int, ctws []*CaloCTW) (CaloSummaryRecord, error) {
	record := CaloRecord{Clocktick: tick}
	for _, ctw := range ctws {
		if ctw.Clocktick != tick {
			return CaloSummaryRecord{}, fmt.Errorf("CTW at tick %d processed at tick %d", ctw.Clocktick, tick)
		}
		if err := record.AddCTW(*ctw); err != nil {
			return CaloSummaryRecord{}, componentError("calo algorithm", "process", err)
		}
	}
	a.buffer.Push(record)

	integrated := CaloRecord{Clocktick: tick}
	for i := 0; i < a.buffer.Len(); i++ {
		integrated.Merge(a.buffer.At(i))
	}

	summary := a.evaluate(integrated)
	a.records = append(a.records, summary)
	if a.verbosity > 2 {
		logger.Info(summary.String(), "caloAlgo")
	}
	return summary, nil
}

func (a *CaloTriggerAlgorithm) evaluate(record CaloRecord) CaloSummaryRecord {
	summary := CaloSummaryRecord{Clocktick: record.Clocktick, Record: record}
	for side := 0; side < CaloSides; side++ {
		summary.SideMultiplicity[side] = record.SideMultiplicity(side, a.maxMultiplicity)
	}
	summary.TotalMultiplicity = saturatingAdd(summary.SideMultiplicity[0], summary.SideMultiplicity[1], a.maxMultiplicity)
	summary.TotalMultiplicityThresholdMet = summary.TotalMultiplicity > 0 && summary.TotalMultiplicity >= a.threshold

	active0 := summary.SideMultiplicity[0] > 0
	active1 := summary.SideMultiplicity[1] > 0
	summary.SingleSide = active0 != active1
	summary.BothSides = active0 && active1

	sidesOK := summary.BothSides || (summary.SingleSide && !a.inhibitSingleSide && !a.inhibitBothSides)
	summary.CaloFinaleDecision = summary.TotalMultiplicityThresholdMet && sidesOK
	return summary
}

// Process walks the ticks of a locked CTW collection in increasing order,
// including the ticks needed to drain the buffer.
func (a *CaloTriggerAlgorithm) Process(ctws *Collection[CaloCTW]) ([]CaloSummaryRecord, error) {
	if !ctws.IsLocked() {
		return nil, componentError("calo algorithm", "process", ErrNotLocked)
	}
	if ctws.Len() == 0 {
		return nil, nil
	}
	first, last, err := ctws.ClocktickRange()
	if err != nil {
		return nil, err
	}
	summaries := make([]CaloSummaryRecord, 0, last-first+a.bufferDepth)
	for tick := first; tick <= last+a.bufferDepth-1; tick++ {
		summary, err := a.ProcessClocktick(tick, ctws.ByClocktick(tick))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (a *CaloTriggerAlgorithm) Records() []CaloSummaryRecord {
	return a.records
}

// Decision is true when any processed tick decided.
func (a *CaloTriggerAlgorithm) Decision() bool {
	for _, record := range a.records {
		if record.CaloFinaleDecision {
			return true
		}
	}
	return false
}

func (a *CaloTriggerAlgorithm) Reset() {
	a.buffer.Clear()
	a.records = nil
}
