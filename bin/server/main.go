// redikv-server runs the RESP-compatible in-memory key-value server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/zond/redikv/server"
)

func main() {
	config := server.DefaultConfig()
	var logFile, configFile string

	flag.StringVar(&config.Addr, "addr", config.Addr, "Where to listen for RESP connections.")
	flag.StringVar(&config.Dir, "dir", config.Dir, "Where to save and load the RDB snapshot.")
	flag.StringVar(&config.SnapshotFile, "snapshot", config.SnapshotFile, "Snapshot file name, relative to -dir.")
	flag.DurationVar(&config.CronInterval, "cron-interval", config.CronInterval, "How often to drive incremental dict rehashing.")
	flag.StringVar(&config.AuditLogPath, "audit-log", config.AuditLogPath, "Path to the command audit log (disabled if empty).")
	flag.StringVar(&configFile, "config", "", "Optional JSON config file overriding the above defaults.")
	flag.StringVar(&logFile, "logfile", "", "Path to log file (default: stderr).")

	flag.Parse()

	if configFile != "" {
		loaded, err := server.LoadConfigFile(configFile, config)
		if err != nil {
			log.Fatal(err)
		}
		config = loaded
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("failed to open log file: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	}

	srv := server.New(config, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		log.Fatal(err)
	}
}
