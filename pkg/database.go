package trigger

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "modernc.org/sqlite"
)

// MappingSchema creates the table read by LoadMappingFromDB.
const MappingSchema = `CREATE TABLE IF NOT EXISTS ElectronicMapping (
	Module      INTEGER NOT NULL,
	GeomType    INTEGER NOT NULL,
	GeomAddress VARCHAR(64) NOT NULL,
	ElecType    INTEGER NOT NULL,
	ElecAddress VARCHAR(64) NOT NULL
)`

type MappingEntry struct {
	GeomType    uint32 `db:"GeomType"`
	GeomAddress string `db:"GeomAddress"`
	ElecType    uint32 `db:"ElecType"`
	ElecAddress string `db:"ElecAddress"`
}

// ConnectToDatabase opens the channel map database. Supported drivers are
// "mysql", "pgx" and "sqlite"; for sqlite dbname is the database file.
func ConnectToDatabase(driver string, user string, pass string, host string, port int, dbname string) (*sqlx.DB, error) {
	var dbURI string
	switch driver {
	case "mysql":
		dbURI = fmt.Sprintf("%s:%s@(%s:%d)/%s?parseTime=true", user, pass, host, port, dbname)
	case "pgx":
		dbURI = fmt.Sprintf("postgres://%s:%s@%s:%d/%s", user, pass, host, port, dbname)
	case "sqlite":
		dbURI = dbname
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sqlx.Connect(driver, dbURI)
	return db, err
}

func CreateMappingTable(db *sqlx.DB) error {
	_, err := db.Exec(MappingSchema)
	if err != nil {
		return fmt.Errorf("error creating mapping table: %w", err)
	}
	return nil
}

// StoreMappingEntries inserts entries for module in a single transaction.
func StoreMappingEntries(db *sqlx.DB, module int, entries []MappingEntry) error {
	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	query := db.Rebind("INSERT INTO ElectronicMapping (Module, GeomType, GeomAddress, ElecType, ElecAddress) VALUES (?, ?, ?, ?, ?)")
	for _, e := range entries {
		if _, err := tx.Exec(query, module, e.GeomType, e.GeomAddress, e.ElecType, e.ElecAddress); err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting mapping entry %v: %w", e, err)
		}
	}
	return tx.Commit()
}

// LoadMappingFromDB fills the mapping caches with the rows stored for module.
// It returns the number of pairs loaded.
func LoadMappingFromDB(db *sqlx.DB, mapping *ElectronicMapping, module int, verbosity int) (int, error) {
	query := db.Rebind("SELECT GeomType, GeomAddress, ElecType, ElecAddress FROM ElectronicMapping WHERE Module = ?")

	if verbosity > 0 {
		message := fmt.Sprintf("Reading electronic mapping of module %d from database", module)
		logger.Info(message, "database")
	}
	if verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query, module)
	if err != nil {
		return 0, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	loaded := 0
	for rows.Next() {
		result := MappingEntry{}
		if err := rows.StructScan(&result); err != nil {
			return loaded, fmt.Errorf("error scanning DB row: %w", err)
		}
		geom, err := ParseDottedAddress(result.GeomType, result.GeomAddress)
		if err != nil {
			return loaded, fmt.Errorf("error parsing geometric address: %w", err)
		}
		elec, err := ParseDottedAddress(result.ElecType, result.ElecAddress)
		if err != nil {
			return loaded, fmt.Errorf("error parsing electronic address: %w", err)
		}
		if err := mapping.Preload(GeomID{geom}, ElecID{elec}); err != nil {
			return loaded, fmt.Errorf("error loading mapping row %v: %w", result, err)
		}
		loaded++
	}
	if err := rows.Err(); err != nil {
		return loaded, fmt.Errorf("error iterating DB rows: %w", err)
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Loaded %d mapping entries", loaded)
		logger.Info(message, "database")
	}
	return loaded, nil
}

// DefaultMappingEntries lists the computed mapping of every channel of the
// module, ready for StoreMappingEntries.
func DefaultMappingEntries(mapping *ElectronicMapping, mode TrackerMode) ([]MappingEntry, error) {
	if !mapping.IsInitialized() {
		return nil, componentError("electronic mapping", "export", ErrNotInitialized)
	}
	dims := mapping.geometry.Dimensions()
	module := uint32(mapping.Module())

	var gids []GeomID
	for side := uint32(0); side < uint32(dims.Sides); side++ {
		for column := uint32(0); column < uint32(dims.CaloColumns); column++ {
			for row := uint32(0); row < uint32(dims.CaloRows); row++ {
				gids = append(gids, NewGeomID(GeomCaloBlock, module, side, column, row))
			}
		}
		for wall := uint32(0); wall < uint32(dims.XCaloWalls); wall++ {
			for column := uint32(0); column < uint32(dims.XCaloColumns); column++ {
				for row := uint32(0); row < uint32(dims.XCaloRows); row++ {
					gids = append(gids, NewGeomID(GeomXCaloBlock, module, side, wall, column, row))
				}
			}
		}
		for wall := uint32(0); wall < uint32(dims.GVetoWalls); wall++ {
			for column := uint32(0); column < uint32(dims.GVetoColumns); column++ {
				gids = append(gids, NewGeomID(GeomGVetoBlock, module, side, wall, column))
			}
		}
		for layer := uint32(0); layer < uint32(dims.GeigerLayers); layer++ {
			for row := uint32(0); row < uint32(dims.GeigerRows); row++ {
				gids = append(gids, NewGeomID(GeomGeigerCell, module, side, layer, row))
			}
		}
	}

	entries := make([]MappingEntry, 0, len(gids))
	for _, gid := range gids {
		eid, err := mapping.GeomToElec(mode, gid)
		if err != nil {
			return nil, err
		}
		entries = append(entries, MappingEntry{
			GeomType:    gid.Type,
			GeomAddress: gid.DottedFields(),
			ElecType:    eid.Type,
			ElecAddress: eid.DottedFields(),
		})
	}
	return entries, nil
}
