package trigger

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

// Writer stores the trigger words and records of a run in an HDF5 file with
// the groups Run, Calo and Tracker. Every table is a packet table extended
// event by event.
type Writer struct {
	File         *hdf5.File
	Filename     string
	RunGroup     *hdf5.Group
	CaloGroup    *hdf5.Group
	TrackerGroup *hdf5.Group

	EventTable       *hdf5.Table
	ConfigTable      *hdf5.Table
	CoincidenceTable *hdf5.Table
	CaloTPTable      *hdf5.Table
	CaloCTWTable     *hdf5.Table
	CaloTable        *hdf5.Table
	GeigerTPTable    *hdf5.Table
	GeigerCTWTable   *hdf5.Table
	TrackerTable     *hdf5.Table

	verbosity int

	EvtCounter         int
	CaloCounter        int
	TrackerCounter     int
	CoincidenceCounter int
	WordCounter        int
}

func NewWriter(config Configuration) (*Writer, error) {
	filename := config.FileOut
	file, err := hdf5.CreateFile(filename, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, fmt.Errorf("error creating file %s: %w", filename, err)
	}
	w := &Writer{File: file, Filename: filename, verbosity: config.Verbosity}

	groups := []struct {
		name   string
		target **hdf5.Group
	}{
		{"Run", &w.RunGroup},
		{"Calo", &w.CaloGroup},
		{"Tracker", &w.TrackerGroup},
	}
	for _, g := range groups {
		group, err := file.CreateGroup(g.name)
		if err != nil {
			w.Close()
			return nil, fmt.Errorf("error creating group %s: %w", g.name, err)
		}
		*g.target = group
	}

	tables := []struct {
		group    *hdf5.Group
		name     string
		datatype interface{}
		target   **hdf5.Table
	}{
		{w.RunGroup, "events", EventHDF5{}, &w.EventTable},
		{w.RunGroup, "configuration", ParameterHDF5{}, &w.ConfigTable},
		{w.RunGroup, "coincidences", CoincidenceHDF5{}, &w.CoincidenceTable},
		{w.CaloGroup, "tps", WordHDF5{}, &w.CaloTPTable},
		{w.CaloGroup, "ctws", WordHDF5{}, &w.CaloCTWTable},
		{w.CaloGroup, "summary", CaloSummaryHDF5{}, &w.CaloTable},
		{w.TrackerGroup, "tps", WordHDF5{}, &w.GeigerTPTable},
		{w.TrackerGroup, "ctws", GeigerCTWHDF5{}, &w.GeigerCTWTable},
		{w.TrackerGroup, "records", TrackerRecordHDF5{}, &w.TrackerTable},
	}
	for _, t := range tables {
		table, err := createTable(t.group, t.name, t.datatype, config.Compression)
		if err != nil {
			w.Close()
			return nil, err
		}
		*t.target = table
	}

	if w.verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file %s", filename), "writer")
	}
	return w, nil
}

// WriteConfiguration stores the numeric trigger parameters of the run.
func (w *Writer) WriteConfiguration(config Configuration) error {
	params := []ParameterHDF5{
		{convertToHdf5String("calo_high_threshold"), config.CaloHighThreshold},
		{convertToHdf5String("calo_low_threshold"), config.CaloLowThreshold},
		{convertToHdf5String("calo_latency"), config.CaloLatency},
		{convertToHdf5String("calo_time_grid"), config.CaloTimeGrid},
		{convertToHdf5String("geiger_latency"), config.GeigerLatency},
		{convertToHdf5String("geiger_time_grid"), config.GeigerTimeGrid},
		{convertToHdf5String("calo_circular_buffer_depth"), float64(config.CaloCircularBufferDepth)},
		{convertToHdf5String("calo_threshold_multiplicity"), float64(config.CaloThresholdMultiplicity)},
		{convertToHdf5String("calo_max_multiplicity"), float64(config.CaloMaxMultiplicity)},
		{convertToHdf5String("inhibit_single_side"), float64(boolToInt8(config.InhibitSingleSide))},
		{convertToHdf5String("inhibit_both_sides"), float64(boolToInt8(config.InhibitBothSides))},
		{convertToHdf5String("seed"), float64(config.Seed)},
	}
	return appendRows(w.ConfigTable, "configuration", params)
}

func caloSummaryRows(eventID int, records []CaloSummaryRecord) []CaloSummaryHDF5 {
	rows := make([]CaloSummaryHDF5, len(records))
	for i, r := range records {
		rows[i] = CaloSummaryHDF5{
			EvtNumber:        int32(eventID),
			Clocktick:        int32(r.Clocktick),
			ZoningSide0:      r.Record.Zoning[0],
			ZoningSide1:      r.Record.Zoning[1],
			XWallZoningSide0: r.Record.XWallZoning[0],
			XWallZoningSide1: r.Record.XWallZoning[1],
			MultSide0:        int8(r.SideMultiplicity[0]),
			MultSide1:        int8(r.SideMultiplicity[1]),
			TotalMult:        int8(r.TotalMultiplicity),
			ThresholdMet:     boolToInt8(r.TotalMultiplicityThresholdMet),
			SingleSide:       boolToInt8(r.SingleSide),
			BothSides:        boolToInt8(r.BothSides),
			LTO:              boolToInt8(r.Record.LTO),
			LTOGVeto:         boolToInt8(r.Record.LTOGVeto),
			XT:               boolToInt8(r.Record.XT),
			Decision:         boolToInt8(r.CaloFinaleDecision),
		}
	}
	return rows
}

func trackerRows(eventID int, records []TrackerRecord) []TrackerRecordHDF5 {
	rows := make([]TrackerRecordHDF5, len(records))
	for i, r := range records {
		row := TrackerRecordHDF5{
			EvtNumber:    int32(eventID),
			Clocktick:    int32(r.Clocktick),
			PatternSide0: r.ZonePattern(0),
			PatternSide1: r.ZonePattern(1),
			Decision:     int32(boolToInt8(r.FinaleDecision)),
		}
		for zone := 0; zone < NumberOfZones; zone++ {
			row.FinaleSide0[zone] = uint8(r.Zones[0][zone])
			row.FinaleSide1[zone] = uint8(r.Zones[1][zone])
		}
		rows[i] = row
	}
	return rows
}

func coincidenceRows(eventID int, records []CoincidenceRecord) []CoincidenceHDF5 {
	rows := make([]CoincidenceHDF5, len(records))
	for i, r := range records {
		rows[i] = CoincidenceHDF5{
			EvtNumber:       int32(eventID),
			Clocktick:       int32(r.Clocktick),
			CaloDecision:    int32(boolToInt8(r.CaloDecision)),
			TrackerDecision: int32(boolToInt8(r.TrackerDecision)),
			Coincidence:     int32(boolToInt8(r.Coincidence)),
		}
	}
	return rows
}

func wordRows(eventID int, words []TriggerWord) []WordHDF5 {
	rows := make([]WordHDF5, len(words))
	for i, w := range words {
		rows[i] = WordHDF5{
			EvtNumber: int32(eventID),
			Clocktick: int32(w.Clocktick),
			ElecID:    convertToHdf5String(w.ElecID.String()),
			Word:      w.Word.Field(0, w.Word.Width()),
		}
	}
	return rows
}

func geigerCTWRows(eventID int, words []TriggerWord) []GeigerCTWHDF5 {
	rows := make([]GeigerCTWHDF5, len(words))
	for i, w := range words {
		rows[i] = GeigerCTWHDF5{
			EvtNumber: int32(eventID),
			Clocktick: int32(w.Clocktick),
			ElecID:    convertToHdf5String(w.ElecID.String()),
		}
		w.Word.Words(rows[i].Word[:])
	}
	return rows
}

// WriteEvent appends the records of one event. A failed event only gets a
// row in the events table.
func (w *Writer) WriteEvent(result EventResult, failed bool) error {
	event := EventHDF5{
		EvtNumber:       int32(result.EventID),
		CaloDecision:    boolToInt8(result.CaloDecision),
		TrackerDecision: boolToInt8(result.TrackerDecision),
		L1Decision:      boolToInt8(result.L1Decision),
		Failed:          boolToInt8(failed),
		NCaloRecords:    int32(len(result.Calo)),
		NTrackerRecords: int32(len(result.Tracker)),
	}
	if err := appendRows(w.EventTable, "events", []EventHDF5{event}); err != nil {
		return err
	}
	w.EvtCounter++
	if failed {
		return nil
	}

	words := []struct {
		name  string
		table *hdf5.Table
		rows  []WordHDF5
	}{
		{"calo TPs", w.CaloTPTable, wordRows(result.EventID, result.CaloTPs)},
		{"calo CTWs", w.CaloCTWTable, wordRows(result.EventID, result.CaloCTWs)},
		{"geiger TPs", w.GeigerTPTable, wordRows(result.EventID, result.GeigerTPs)},
	}
	for _, t := range words {
		if err := appendRows(t.table, t.name, t.rows); err != nil {
			return err
		}
		w.WordCounter += len(t.rows)
	}
	geigerCTWs := geigerCTWRows(result.EventID, result.GeigerCTWs)
	if err := appendRows(w.GeigerCTWTable, "geiger CTWs", geigerCTWs); err != nil {
		return err
	}
	w.WordCounter += len(geigerCTWs)

	calo := caloSummaryRows(result.EventID, result.Calo)
	if err := appendRows(w.CaloTable, "calo summary", calo); err != nil {
		return err
	}
	w.CaloCounter += len(calo)

	tracker := trackerRows(result.EventID, result.Tracker)
	if err := appendRows(w.TrackerTable, "tracker records", tracker); err != nil {
		return err
	}
	w.TrackerCounter += len(tracker)

	coincidences := coincidenceRows(result.EventID, result.Coincidences)
	if err := appendRows(w.CoincidenceTable, "coincidences", coincidences); err != nil {
		return err
	}
	w.CoincidenceCounter += len(coincidences)
	return nil
}

func (w *Writer) Close() error {
	tables := []*hdf5.Table{w.EventTable, w.ConfigTable, w.CoincidenceTable, w.CaloTPTable, w.CaloCTWTable,
		w.CaloTable, w.GeigerTPTable, w.GeigerCTWTable, w.TrackerTable}
	for _, t := range tables {
		if t != nil {
			t.Close()
		}
	}
	groups := []*hdf5.Group{w.RunGroup, w.CaloGroup, w.TrackerGroup}
	for _, g := range groups {
		if g != nil {
			g.Close()
		}
	}
	if err := w.File.Close(); err != nil {
		return fmt.Errorf("error closing file %s: %w", w.Filename, err)
	}
	if w.verbosity > 0 {
		logger.Info(fmt.Sprintf("Closed file %s", w.Filename), "writer")
	}
	return nil
}
