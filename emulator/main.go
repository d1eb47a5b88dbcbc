package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	sqlx "github.com/jmoiron/sqlx"
	"github.com/supernemo/trigger_go/internal/logging"
	trigger "github.com/supernemo/trigger_go/pkg"
)

var dbConn *sqlx.DB
var configuration trigger.Configuration

var logger logging.Logger

func init() {
	logger = logging.New(os.Stdout, os.Stderr, slog.LevelDebug)
}

// newWorkerPipeline builds a pipeline with its own run context. The mapping
// is loaded from the database when one is configured and computed otherwise.
func newWorkerPipeline(memories trigger.MemorySet) (*trigger.Pipeline, error) {
	geometry := trigger.NewDemonstratorGeometry(configuration.Module)
	ctx, err := trigger.NewRunContext(geometry, configuration.Module, configuration.TrackerMode)
	if err != nil {
		return nil, err
	}
	if dbConn != nil {
		_, err := trigger.LoadMappingFromDB(dbConn, ctx.Mapping, configuration.Module, configuration.Verbosity)
		if err != nil {
			return nil, err
		}
	}
	return trigger.NewPipeline(configuration, ctx, memories)
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("Error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	trigger.SetLogger(logger)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	if !configuration.NoDB {
		dbConn, err = trigger.ConnectToDatabase(configuration.DBDriver, configuration.User, configuration.Passwd,
			configuration.Host, configuration.Port, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("Error connection to database: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer dbConn.Close()
	}

	memories, err := trigger.LoadMemorySet(configuration)
	if err != nil {
		message := fmt.Errorf("Error loading trigger memories: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	pipelines := make([]*trigger.Pipeline, configuration.NumWorkers)
	for i := range pipelines {
		pipelines[i], err = newWorkerPipeline(memories)
		if err != nil {
			message := fmt.Errorf("Error creating trigger pipeline: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
	}

	file, err := os.Open(configuration.FileIn)
	if err != nil {
		message := fmt.Errorf("Error opening file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	defer file.Close()

	var writer *trigger.Writer
	if configuration.WriteData {
		writer, err = trigger.NewWriter(configuration)
		if err != nil {
			message := fmt.Errorf("Error creating output file: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer writer.Close()
		if err := writer.WriteConfiguration(configuration); err != nil {
			logger.Error(fmt.Errorf("Error writing configuration: %w", err).Error())
		}
	}

	fileReader := NewFileReader(file)

	start := time.Now()
	jobs := make(chan job, 100)
	results := make(chan workerResult, 100)

	var wg sync.WaitGroup
	for w, pipeline := range pipelines {
		wg.Add(1)
		go func(id int, p *trigger.Pipeline) {
			defer wg.Done()
			worker(id, p, jobs, results)
		}(w+1, pipeline)
	}
	go sendEventsToWorkers(fileReader, jobs)
	go func() {
		wg.Wait()
		close(results)
	}()

	stats := processWorkerResults(results, writer)

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Events processed: %d, failed: %d", stats.Processed, stats.Failed), "main")
	logger.Info(fmt.Sprintf("Calo triggers: %d, tracker triggers: %d, L1 triggers: %d", stats.Calo, stats.Tracker, stats.L1), "main")
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
}
