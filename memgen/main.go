// Command memgen writes the default tracker trigger memories as text files
// and can export the computed electronic mapping of a module to a database.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/supernemo/trigger_go/internal/logging"
	trigger "github.com/supernemo/trigger_go/pkg"
)

var logger logging.Logger

func init() {
	logger = logging.New(os.Stdout, os.Stderr, slog.LevelInfo)
}

func main() {
	outDir := flag.String("out", "", "Directory for the memory files")
	driver := flag.String("db-driver", "sqlite", "Mapping database driver (mysql, pgx, sqlite)")
	dbName := flag.String("db", "", "Mapping database name or sqlite file")
	host := flag.String("host", "localhost", "Database host")
	port := flag.Int("port", 3306, "Database port")
	user := flag.String("user", "", "Database user")
	pass := flag.String("pass", "", "Database password")
	module := flag.Int("module", 0, "Detector module")
	wires := flag.String("tracker-mode", "three_wires", "Tracker mode")
	flag.Parse()
	trigger.SetLogger(logger)

	if *outDir == "" && *dbName == "" {
		logger.Error("nothing to do: set -out and/or -db")
		flag.Usage()
		os.Exit(1)
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			logger.Error(fmt.Errorf("error creating %s: %w", *outDir, err).Error())
			os.Exit(1)
		}
		if err := trigger.DefaultMemories().Save(*outDir); err != nil {
			logger.Error(fmt.Errorf("error writing memories: %w", err).Error())
			os.Exit(1)
		}
		logger.Info(fmt.Sprintf("Memories written to %s", *outDir), "memgen")
	}

	if *dbName != "" {
		if err := exportMapping(*driver, *user, *pass, *host, *port, *dbName, *module, *wires); err != nil {
			logger.Error(fmt.Errorf("error exporting mapping: %w", err).Error())
			os.Exit(1)
		}
	}
}

func exportMapping(driver, user, pass, host string, port int, dbName string, module int, wires string) error {
	var mode trigger.TrackerMode
	if err := mode.UnmarshalJSON([]byte(fmt.Sprintf("%q", wires))); err != nil {
		return err
	}
	ctx, err := trigger.NewRunContext(trigger.NewDemonstratorGeometry(module), module, mode)
	if err != nil {
		return err
	}
	entries, err := trigger.DefaultMappingEntries(ctx.Mapping, mode)
	if err != nil {
		return err
	}

	db, err := trigger.ConnectToDatabase(driver, user, pass, host, port, dbName)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := trigger.CreateMappingTable(db); err != nil {
		return err
	}
	if err := trigger.StoreMappingEntries(db, module, entries); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("%d mapping entries of module %d stored", len(entries), module), "memgen")
	return nil
}
