package trigger

import (
	"fmt"

	"gonum.org/v1/hdf5"
)

const STRLEN = 32

const (
	tableChunkSize = 4096
	// GeigerCTWWords is the number of 64-bit words of a stored Geiger CTW.
	GeigerCTWWords = (GeigerCTWWidth + 63) / 64
)

// Row types are appended as packets. Field names become the member names of
// the compound type and every row type is free of trailing padding.

type EventHDF5 struct {
	EvtNumber       int32
	CaloDecision    int8
	TrackerDecision int8
	L1Decision      int8
	Failed          int8
	NCaloRecords    int32
	NTrackerRecords int32
}

type ParameterHDF5 struct {
	Name  [STRLEN]byte
	Value float64
}

type CaloSummaryHDF5 struct {
	EvtNumber        int32
	Clocktick        int32
	ZoningSide0      uint16
	ZoningSide1      uint16
	XWallZoningSide0 uint8
	XWallZoningSide1 uint8
	MultSide0        int8
	MultSide1        int8
	TotalMult        int8
	ThresholdMet     int8
	SingleSide       int8
	BothSides        int8
	LTO              int8
	LTOGVeto         int8
	XT               int8
	Decision         int8
}

type TrackerRecordHDF5 struct {
	EvtNumber    int32
	Clocktick    int32
	FinaleSide0  [NumberOfZones]uint8
	FinaleSide1  [NumberOfZones]uint8
	PatternSide0 uint16
	PatternSide1 uint16
	Decision     int32
}

type CoincidenceHDF5 struct {
	EvtNumber       int32
	Clocktick       int32
	CaloDecision    int32
	TrackerDecision int32
	Coincidence     int32
}

// WordHDF5 stores a trigger word of at most 64 bits: calorimeter and Geiger
// TPs and calorimeter CTWs.
type WordHDF5 struct {
	EvtNumber int32
	Clocktick int32
	ElecID    [STRLEN]byte
	Word      uint64
}

type GeigerCTWHDF5 struct {
	EvtNumber int32
	Clocktick int32
	ElecID    [STRLEN]byte
	Word      [GeigerCTWWords]uint64
}

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func boolToInt8(v bool) int8 {
	if v {
		return 1
	}
	return 0
}

// createTable creates an appendable packet table. A compression level of 0
// or less disables deflate.
func createTable(group *hdf5.Group, name string, datatype interface{}, compression int) (*hdf5.Table, error) {
	if compression <= 0 {
		compression = -1
	}
	table, err := group.CreateTableFrom(name, datatype, tableChunkSize, compression)
	if err != nil {
		return nil, fmt.Errorf("error creating table %s: %w", name, err)
	}
	if table == nil {
		return nil, fmt.Errorf("error creating table %s: unsupported row type %T", name, datatype)
	}
	return table, nil
}

// appendRows appends data at the end of the table.
func appendRows[T any](table *hdf5.Table, name string, data []T) error {
	if len(data) == 0 {
		return nil
	}
	packets := make([]interface{}, len(data))
	for i := range data {
		packets[i] = data[i]
	}
	if err := table.Append(packets...); err != nil {
		return fmt.Errorf("error writing %s: %w", name, err)
	}
	return nil
}
