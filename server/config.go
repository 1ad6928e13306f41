// Package server implements the TCP accept loop and single-writer
// command dispatcher: the event-loop side of spec §5's concurrency
// model. Grounded on bin/server/main.go's Config/New/Start shape
// (itself aspirational in the teacher repo — server/server.go, the
// only file under its server/ package, is a standalone `package main`
// that never defines the Config/New/Start API bin/server/main.go
// calls; this implementation is the real version of the API the
// teacher's own entrypoint expected to exist).
package server

import (
	"os"
	"path/filepath"
	"time"

	goccy "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Config holds every server-tunable value, per SPEC_FULL.md §A.3.
type Config struct {
	Addr         string        `json:"addr"`
	Dir          string        `json:"dir"`
	SnapshotFile string        `json:"snapshot_file"`
	CronInterval time.Duration `json:"cron_interval"`
	AuditLogPath string        `json:"audit_log_path"`
}

// DefaultConfig returns the configuration bin/server/main.go starts
// from before flags and an optional config file are applied.
func DefaultConfig() Config {
	return Config{
		Addr:         ":6379",
		Dir:          ".",
		SnapshotFile: "dump.rdb",
		CronInterval: 100 * time.Millisecond,
	}
}

// SnapshotPath joins Dir and SnapshotFile.
func (c Config) SnapshotPath() string {
	return filepath.Join(c.Dir, c.SnapshotFile)
}

// LoadConfigFile decodes a JSON config file into base, overriding only
// the fields present in the file. Uses goccy/go-json, matching
// loader/loader.go's choice of the fast-path decoder for this kind of
// bulk structured read.
func LoadConfigFile(path string, base Config) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return base, errors.WithStack(err)
	}
	defer f.Close()

	cfg := base
	if err := goccy.NewDecoder(f).Decode(&cfg); err != nil {
		return base, errors.WithStack(err)
	}
	return cfg, nil
}
