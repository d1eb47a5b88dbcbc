package main

import (
	"fmt"
	"io"
	"time"

	trigger "github.com/supernemo/trigger_go/pkg"
)

type job struct {
	Index int
	Event trigger.EventType
}

type workerResult struct {
	Index    int
	Result   trigger.EventResult
	Failed   bool
	Duration time.Duration
}

type runStats struct {
	Processed int
	Failed    int
	Calo      int
	Tracker   int
	L1        int
}

func worker(id int, pipeline *trigger.Pipeline, jobs <-chan job, results chan<- workerResult) {
	for j := range jobs {
		results <- processEvent(id, pipeline, j)
	}
}

func processEvent(id int, pipeline *trigger.Pipeline, j job) (res workerResult) {
	res = workerResult{Index: j.Index, Result: trigger.EventResult{EventID: j.Event.EventID}}
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("worker %d recovered from panic on event %d: %v", id, j.Event.EventID, r))
			res.Failed = true
		}
		res.Duration = time.Since(start)
	}()

	if configuration.Verbosity > 1 {
		logger.Info(fmt.Sprintf("Worker %d processing event %d", id, j.Event.EventID), "worker")
	}
	result, err := pipeline.ProcessEvent(&j.Event)
	if err != nil {
		logger.Error(fmt.Errorf("error processing event %d: %w", j.Event.EventID, err).Error())
		res.Failed = true
		return res
	}
	res.Result = result

	elapsed := time.Since(start)
	if configuration.MaxEventMs > 0 && elapsed > time.Duration(configuration.MaxEventMs)*time.Millisecond {
		logger.Error(fmt.Sprintf("event %d took %d ms, flagged as failed", j.Event.EventID, elapsed.Milliseconds()))
		res.Failed = true
	}
	return res
}

// sendEventsToWorkers reads events from the input, skips the first
// configuration.Skip ones and stops after configuration.MaxEvents.
func sendEventsToWorkers(fileReader *FileReader, jobs chan<- job) {
	defer close(jobs)
	index := 0
	sent := 0
	for sent < configuration.MaxEvents {
		event, err := fileReader.getNextEvent()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error(fmt.Errorf("error reading event: %w", err).Error())
			break
		}
		index++
		if index <= configuration.Skip {
			continue
		}
		jobs <- job{Index: sent, Event: event}
		sent++
	}
}

// processWorkerResults writes results in input order and accumulates the
// run statistics.
func processWorkerResults(results <-chan workerResult, writer *trigger.Writer) runStats {
	var stats runStats
	pending := make(map[int]workerResult)
	next := 0

	for res := range results {
		pending[res.Index] = res
		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			handleResult(r, writer, &stats)
		}
	}
	return stats
}

func handleResult(r workerResult, writer *trigger.Writer, stats *runStats) {
	stats.Processed++
	if r.Failed {
		stats.Failed++
	} else {
		if r.Result.CaloDecision {
			stats.Calo++
		}
		if r.Result.TrackerDecision {
			stats.Tracker++
		}
		if r.Result.L1Decision {
			stats.L1++
		}
	}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Event %d: calo %t tracker %t L1 %t (%d ms)", r.Result.EventID,
			r.Result.CaloDecision, r.Result.TrackerDecision, r.Result.L1Decision, r.Duration.Milliseconds())
		logger.Info(message, "main")
	}
	if writer != nil {
		if err := writer.WriteEvent(r.Result, r.Failed); err != nil {
			logger.Error(fmt.Errorf("error writing event %d: %w", r.Result.EventID, err).Error())
		}
	}
}
