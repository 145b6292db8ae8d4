// Package packetdb archives decoded packets in SQLite, one run per
// analyzed pair of captures, so runs can be compared after the fact.
package packetdb

import (
	"database/sql"
	"embed"
	"fmt"
	"path/filepath"
	"time"

	"github.com/NotCoffee418/dbmigrator"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/packet"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/pathing"
	"github.com/NotCoffee418/sss_trace_analyzer/pkg/serialcfg"
	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open opens the archive at path and brings its schema up to date.
func Open(path string) (*sql.DB, error) {
	if err := pathing.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if err := InitializeDatabase(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func InitializeDatabase(db *sql.DB) error {
	dbmigrator.SetDatabaseType(dbmigrator.SQLite)
	<-dbmigrator.MigrateUpCh(
		db,
		migrationFS,
		"migrations",
	)

	// The migrator reports failures only through its own log
	if _, err := db.Exec("SELECT 1 FROM runs LIMIT 1"); err != nil {
		return fmt.Errorf("archive schema missing after migration: %w", err)
	}
	return nil
}

// Archive records one run. It implements report.Sink.
type Archive struct {
	db    *sql.DB
	runID string
	seq   int
}

// NewArchive starts a run for the two capture files.
func NewArchive(db *sql.DB, captureA, captureB string, initial serialcfg.Config) (*Archive, error) {
	run := &DbRun{
		ID:            uuid.NewString(),
		CaptureA:      captureA,
		CaptureB:      captureB,
		StartedAt:     time.Now().Unix(),
		InitialConfig: initial.String(),
	}
	if err := InsertRun(db, run); err != nil {
		return nil, fmt.Errorf("failed to start archive run: %w", err)
	}
	return &Archive{db: db, runID: run.ID}, nil
}

func (a *Archive) RunID() string {
	return a.runID
}

func (a *Archive) Packet(channel int, r packet.Report) error {
	row := &DbPacket{
		RunID:     a.runID,
		Seq:       a.seq,
		Channel:   channel,
		StartTime: r.Start,
		EndTime:   r.End,
		Status:    r.Status.String(),
		Summary:   r.Summary,
	}
	if r.Status == packet.StatusOK || r.Status == packet.StatusUnknownDirection {
		row.Direction = r.Direction.String()
		row.Type = r.Type.String()
	}
	if r.Update != nil {
		s := r.Update.String()
		row.ConfigUpdate = &s
	}
	if err := InsertPacket(a.db, row); err != nil {
		return err
	}
	a.seq++
	return nil
}

func (a *Archive) End(endTime float64) error {
	return FinishRun(a.db, a.runID, endTime, a.seq)
}
