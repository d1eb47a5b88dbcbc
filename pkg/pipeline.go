package trigger

import (
	"fmt"
	"math/rand/v2"
	"sort"
)

// CoincidenceRecord folds the calorimeter and tracker decisions of one 1600 ns
// clocktick.
type CoincidenceRecord struct {
	Clocktick       int
	CaloDecision    bool
	TrackerDecision bool
	Coincidence     bool
}

// TriggerWord is an encoded TP or CTW kept with the event result.
type TriggerWord struct {
	Clocktick int
	ElecID    ElecID
	Word      Bitset
}

// EventResult is the trigger output of one simulated event.
type EventResult struct {
	EventID         int
	CaloTPs         []TriggerWord
	GeigerTPs       []TriggerWord
	CaloCTWs        []TriggerWord
	GeigerCTWs      []TriggerWord
	Calo            []CaloSummaryRecord
	Tracker         []TrackerRecord
	Coincidences    []CoincidenceRecord
	CaloDecision    bool
	TrackerDecision bool
	L1Decision      bool
}

// Pipeline runs the full trigger chain on one event at a time. A pipeline
// owns its context and collections and must not be shared between
// goroutines.
type Pipeline struct {
	config Configuration
	ctx    *RunContext
	source *rand.PCG
	rng    *rand.Rand

	caloTPs    *Collection[CaloTP]
	geigerTPs  *Collection[GeigerTP]
	caloCTWs   *Collection[CaloCTW]
	geigerCTWs *Collection[GeigerCTW]

	caloTPBuilder    *CaloTPBuilder
	geigerTPBuilder  *GeigerTPBuilder
	caloCTWBuilder   *CaloCTWBuilder
	geigerCTWBuilder *GeigerCTWBuilder
	calo             *CaloTriggerAlgorithm
	tracker          *TrackerTriggerAlgorithm
}

func NewPipeline(config Configuration, ctx *RunContext, memories MemorySet) (*Pipeline, error) {
	if ctx == nil {
		return nil, componentError("pipeline", "create", ErrNotInitialized)
	}
	calo, err := NewCaloTriggerAlgorithm(config)
	if err != nil {
		return nil, err
	}
	tracker, err := NewTrackerTriggerAlgorithm(config, memories)
	if err != nil {
		return nil, err
	}

	source := rand.NewPCG(config.Seed, 0)
	p := &Pipeline{
		config:           config,
		ctx:              ctx,
		source:           source,
		rng:              rand.New(source),
		caloTPs:          NewCollection[CaloTP]("calo TPs"),
		geigerTPs:        NewCollection[GeigerTP]("geiger TPs"),
		caloCTWs:         NewCollection[CaloCTW]("calo CTWs"),
		geigerCTWs:       NewCollection[GeigerCTW]("geiger CTWs"),
		caloTPBuilder:    NewCaloTPBuilder(config),
		geigerTPBuilder:  NewGeigerTPBuilder(config),
		caloCTWBuilder:   NewCaloCTWBuilder(config),
		geigerCTWBuilder: NewGeigerCTWBuilder(config),
		calo:             calo,
		tracker:          tracker,
	}
	if ctx.Clock == nil {
		ctx.Clock = ComputeClockReference(p.rng)
	}
	if err := p.caloTPBuilder.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := p.geigerTPBuilder.Initialize(ctx); err != nil {
		return nil, err
	}
	if err := p.tracker.Initialize(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// resetClock redraws the clock phase. The generator is reseeded from the
// configured seed and the event id so results do not depend on which
// pipeline processes an event.
func (p *Pipeline) resetClock(eventID int) {
	p.source.Seed(p.config.Seed, uint64(eventID))
	p.ctx.Clock.Reset(p.rng)
}

func (p *Pipeline) ProcessEvent(event *EventType) (EventResult, error) {
	result := EventResult{EventID: event.EventID}
	defer p.reset()

	p.resetClock(event.EventID)
	if p.config.Verbosity > 1 {
		message := fmt.Sprintf("Event %d: %d hits, clock origin %.3f ns", event.EventID, event.NumberOfHits(), p.ctx.Clock.Origin())
		logger.Info(message, "pipeline")
	}

	if err := p.caloTPBuilder.Process(event, p.caloTPs); err != nil {
		return result, err
	}
	if err := p.geigerTPBuilder.Process(event, p.geigerTPs); err != nil {
		return result, err
	}
	if err := p.caloTPs.Lock(); err != nil {
		return result, err
	}
	if err := p.geigerTPs.Lock(); err != nil {
		return result, err
	}

	if err := p.caloCTWBuilder.Process(p.caloTPs, p.caloCTWs); err != nil {
		return result, err
	}
	if err := p.geigerCTWBuilder.Process(p.geigerTPs, p.geigerCTWs); err != nil {
		return result, err
	}

	result.CaloTPs = collectWords(p.caloTPs, func(tp *CaloTP) Bitset { return tp.Encode() })
	result.GeigerTPs = collectWords(p.geigerTPs, func(tp *GeigerTP) Bitset { return tp.Encode() })
	result.CaloCTWs = collectWords(p.caloCTWs, func(ctw *CaloCTW) Bitset { return ctw.Word.Clone() })
	result.GeigerCTWs = collectWords(p.geigerCTWs, func(ctw *GeigerCTW) Bitset { return ctw.Word.Clone() })

	calo, err := p.calo.Process(p.caloCTWs)
	if err != nil {
		return result, err
	}
	tracker, err := p.tracker.Process(p.geigerCTWs)
	if err != nil {
		return result, err
	}

	result.Calo = calo
	result.Tracker = tracker
	result.CaloDecision = p.calo.Decision()
	result.TrackerDecision = p.tracker.Decision()
	result.L1Decision = result.CaloDecision
	result.Coincidences = FoldCoincidences(p.ctx.Clock, calo, tracker)

	if p.config.Verbosity > 0 {
		message := fmt.Sprintf("Event %d: calo %t tracker %t L1 %t", event.EventID,
			result.CaloDecision, result.TrackerDecision, result.L1Decision)
		logger.Info(message, "pipeline")
	}
	return result, nil
}

// FoldCoincidences groups calorimeter and tracker decisions by 1600 ns
// clocktick, in increasing tick order.
func FoldCoincidences(clock *ClockReference, calo []CaloSummaryRecord, tracker []TrackerRecord) []CoincidenceRecord {
	byTick := make(map[int]*CoincidenceRecord)
	get := func(tick int) *CoincidenceRecord {
		record, ok := byTick[tick]
		if !ok {
			record = &CoincidenceRecord{Clocktick: tick}
			byTick[tick] = record
		}
		return record
	}
	for _, summary := range calo {
		record := get(clock.Tick25To1600(summary.Clocktick))
		record.CaloDecision = record.CaloDecision || summary.CaloFinaleDecision
	}
	for _, trackerRecord := range tracker {
		record := get(clock.Tick800To1600(trackerRecord.Clocktick))
		record.TrackerDecision = record.TrackerDecision || trackerRecord.FinaleDecision
	}

	records := make([]CoincidenceRecord, 0, len(byTick))
	for _, record := range byTick {
		record.Coincidence = record.CaloDecision && record.TrackerDecision
		records = append(records, *record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Clocktick < records[j].Clocktick
	})
	return records
}

// collectWords encodes every item of a collection, in collection order.
func collectWords[T Element](c *Collection[T], encode func(*T) Bitset) []TriggerWord {
	words := make([]TriggerWord, 0, c.Len())
	for _, item := range c.Items() {
		key := (*item).Key()
		words = append(words, TriggerWord{Clocktick: key.Clocktick, ElecID: ElecID{key.ID}, Word: encode(item)})
	}
	return words
}

// reset unlocks and empties every collection and clears the algorithms.
func (p *Pipeline) reset() {
	resetCollection(p.caloTPs)
	resetCollection(p.geigerTPs)
	resetCollection(p.caloCTWs)
	resetCollection(p.geigerCTWs)
	p.calo.Reset()
	p.tracker.Reset()
}

func resetCollection[T Element](c *Collection[T]) {
	if c.IsLocked() {
		c.Unlock()
	}
	c.Reset()
}
