package trigger

// CellAddress locates a Geiger cell in the tracker matrix.
type CellAddress struct {
	Side  int `json:"side"`
	Layer int `json:"layer"`
	Row   int `json:"row"`
}

// ZoneAddress locates a tracker zone.
type ZoneAddress struct {
	Side int `json:"side"`
	Zone int `json:"zone"`
}

type Configuration struct {
	MaxEvents   int         `json:"max_events"`
	Skip        int         `json:"skip"`
	Verbosity   int         `json:"verbosity"`
	FileIn      string      `json:"file_in"`
	FileOut     string      `json:"file_out"`
	WriteData   bool        `json:"write_data"`
	Compression int         `json:"compression"`
	NumWorkers  int         `json:"num_workers"`
	MaxEventMs  int         `json:"max_event_ms"`
	Seed        uint64      `json:"seed"`
	Module      int         `json:"module"`
	TrackerMode TrackerMode `json:"tracker_mode"`

	NoDB     bool   `json:"no_db"`
	DBDriver string `json:"db_driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Passwd   string `json:"pass"`
	DBName   string `json:"dbname"`

	// Calorimeter front-end, energies in MeV and times in ns
	CaloHighThreshold float64 `json:"calo_high_threshold"`
	CaloLowThreshold  float64 `json:"calo_low_threshold"`
	CaloLatency       float64 `json:"calo_latency"`
	CaloTimeGrid      float64 `json:"calo_time_grid"`

	// Tracker front-end
	GeigerLatency        float64 `json:"geiger_latency"`
	GeigerTimeGrid       float64 `json:"geiger_time_grid"`
	GeigerSideMode       int     `json:"geiger_side_mode"`
	GeigerTriggerMode    int     `json:"geiger_trigger_mode"`
	GeigerHardwareStatus int     `json:"geiger_hardware_status"`

	CaloCircularBufferDepth   int  `json:"calo_circular_buffer_depth"`
	CaloThresholdMultiplicity int  `json:"calo_threshold_multiplicity"`
	CaloMaxMultiplicity       int  `json:"calo_max_multiplicity"`
	InhibitSingleSide         bool `json:"inhibit_single_side"`
	InhibitBothSides          bool `json:"inhibit_both_sides"`

	MemSlzVertical   string `json:"mem_slz_vertical"`
	MemSlzHorizontal string `json:"mem_slz_horizontal"`
	MemZoneVertical  string `json:"mem_zone_vertical"`
	MemZoneHorizont  string `json:"mem_zone_horizontal"`
	MemNearSource    string `json:"mem_near_source"`

	DeadCells     []CellAddress `json:"dead_cells"`
	ExcludedZones []ZoneAddress `json:"excluded_zones"`
}

func DefaultConfiguration() Configuration {
	var config Configuration

	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.WriteData = true
	config.Compression = 4
	config.NumWorkers = 1
	config.MaxEventMs = 1000
	config.Seed = 314159
	config.Module = 0
	config.TrackerMode = TrackerModeThreeWires

	config.NoDB = true
	config.DBDriver = "mysql"
	config.Port = 3306

	config.CaloHighThreshold = 0.150
	config.CaloLowThreshold = 0.050
	config.CaloLatency = 50
	config.CaloTimeGrid = 25
	config.GeigerLatency = 0
	config.GeigerTimeGrid = 3
	config.GeigerSideMode = 1
	config.GeigerTriggerMode = 0
	config.GeigerHardwareStatus = 0

	config.CaloCircularBufferDepth = 1
	config.CaloThresholdMultiplicity = 1
	config.CaloMaxMultiplicity = 3
	config.InhibitSingleSide = false
	config.InhibitBothSides = false
	return config
}
