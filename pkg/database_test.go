package trigger

import (
	"path/filepath"
	"testing"
)

func TestLoadMappingFromSQLite(t *testing.T) {
	dbname := filepath.Join(t.TempDir(), "mapping.db")
	db, err := ConnectToDatabase("sqlite", "", "", "", 0, dbname)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := CreateMappingTable(db); err != nil {
		t.Fatal(err)
	}
	entries := []MappingEntry{
		{GeomType: GeomCaloBlock, GeomAddress: "0.1.4.7", ElecType: ElecCaloChannel, ElecAddress: "1.4.7"},
		{GeomType: GeomGeigerCell, GeomAddress: "0.0.3.20", ElecType: ElecGeigerChannel, ElecAddress: "0.11.3"},
	}
	if err := StoreMappingEntries(db, 0, entries); err != nil {
		t.Fatal(err)
	}
	other := []MappingEntry{
		{GeomType: GeomCaloBlock, GeomAddress: "1.0.0.0", ElecType: ElecCaloChannel, ElecAddress: "0.0.0"},
	}
	if err := StoreMappingEntries(db, 1, other); err != nil {
		t.Fatal(err)
	}

	ctx := newTestContext(t)
	loaded, err := LoadMappingFromDB(db, ctx.Mapping, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != 2 {
		t.Fatalf("loaded %d entries, expected 2", loaded)
	}
	if ctx.Mapping.Calo.Len() != 1 || ctx.Mapping.Geiger.Len() != 1 {
		t.Fatalf("cache sizes %d/%d", ctx.Mapping.Calo.Len(), ctx.Mapping.Geiger.Len())
	}

	gid, err := ctx.Mapping.ElecToGeom(TrackerModeThreeWires, NewElecID(ElecGeigerChannel, 0, 11, 3))
	if err != nil {
		t.Fatal(err)
	}
	if gid != NewGeomID(GeomGeigerCell, 0, 0, 3, 20) {
		t.Fatalf("unexpected cell %v", gid)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := ConnectToDatabase("oracle", "u", "p", "localhost", 1521, "db"); err == nil {
		t.Fatal("expected an error for an unknown driver")
	}
}

func TestExportedMappingReloads(t *testing.T) {
	source := newTestContext(t)
	entries, err := DefaultMappingEntries(source.Mapping, TrackerModeThreeWires)
	if err != nil {
		t.Fatal(err)
	}
	// 520 main wall blocks, 128 x-wall blocks, 64 gamma veto blocks, 2034 cells.
	if len(entries) != 520+128+64+2034 {
		t.Fatalf("%d entries", len(entries))
	}

	db, err := ConnectToDatabase("sqlite", "", "", "", 0, filepath.Join(t.TempDir(), "mapping.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := CreateMappingTable(db); err != nil {
		t.Fatal(err)
	}
	if err := StoreMappingEntries(db, 0, entries); err != nil {
		t.Fatal(err)
	}

	target := newTestContext(t)
	loaded, err := LoadMappingFromDB(db, target.Mapping, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != len(entries) || target.Mapping.Geiger.Len() != 2034 || target.Mapping.Calo.Len() != 712 {
		t.Fatalf("loaded %d, caches %d/%d", loaded, target.Mapping.Geiger.Len(), target.Mapping.Calo.Len())
	}
}
