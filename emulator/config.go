package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/supernemo/trigger_go/internal/logging"
	trigger "github.com/supernemo/trigger_go/pkg"
)

// LoadConfiguration reads a JSON configuration on top of the defaults. An
// empty filename returns the defaults.
func LoadConfiguration(filename string) (trigger.Configuration, error) {
	config := trigger.DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	if config.NumWorkers < 1 {
		config.NumWorkers = 1
	}
	return config, nil
}

func printConfiguration(config trigger.Configuration, logger logging.Logger) {
	logger.Info(fmt.Sprintf("File in: %s", config.FileIn), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Write data: %t", config.WriteData), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Max event time: %d ms", config.MaxEventMs), "config")
	logger.Info(fmt.Sprintf("Seed: %d", config.Seed), "config")
	logger.Info(fmt.Sprintf("Module: %d", config.Module), "config")
	logger.Info(fmt.Sprintf("Tracker mode: %s", config.TrackerMode), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	if !config.NoDB {
		logger.Info(fmt.Sprintf("DB driver: %s", config.DBDriver), "config")
		logger.Info(fmt.Sprintf("Host: %s:%d", config.Host, config.Port), "config")
		logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	}
	logger.Info(fmt.Sprintf("Calo thresholds: high %.3f MeV low %.3f MeV", config.CaloHighThreshold, config.CaloLowThreshold), "config")
	logger.Info(fmt.Sprintf("Calo circular buffer depth: %d", config.CaloCircularBufferDepth), "config")
	logger.Info(fmt.Sprintf("Calo threshold multiplicity: %d", config.CaloThresholdMultiplicity), "config")
	logger.Info(fmt.Sprintf("Inhibit single side: %t", config.InhibitSingleSide), "config")
	logger.Info(fmt.Sprintf("Inhibit both sides: %t", config.InhibitBothSides), "config")
	logger.Info(fmt.Sprintf("Dead cells: %d", len(config.DeadCells)), "config")
	logger.Info(fmt.Sprintf("Excluded zones: %d", len(config.ExcludedZones)), "config")
}
