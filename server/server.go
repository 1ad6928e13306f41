package server

import (
	"context"
	"log"
	"net"
	"strings"
	"time"

	"github.com/zond/redikv/command"
	"github.com/zond/redikv/conn"
	"github.com/zond/redikv/diag"
	"github.com/zond/redikv/keyspace"
	"github.com/zond/redikv/rdb"
	"github.com/zond/redikv/resp"
)

const (
	slowLogCapacity   = 128
	recentErrorsTTL   = 10 * time.Minute
	slowCommandFloor  = 20 * time.Millisecond
	cronDriveDuration = time.Millisecond
)

// request is one parsed command handed from a connection goroutine to
// the single dispatcher goroutine that owns the keyspace.
type request struct {
	args  [][]byte
	reply chan []byte
}

// Server owns the keyspace, the snapshot file, and every connection
// accepted on its listener. Per SPEC_FULL.md §D.1, exactly one
// goroutine (runDispatcher) ever touches the keyspace; every other goroutine
// only ever sends requests down a channel and waits for a reply.
type Server struct {
	config       Config
	log          *log.Logger
	audit        *diag.AuditLogger
	slowLog      *diag.SlowLog
	recentErrors *diag.RecentErrors
	keyspace     *keyspace.Keyspace
	requests     chan request
	startedAt    time.Time
}

// New loads the snapshot named by config and constructs a Server
// around it. It does not start listening — call Start for that.
func New(config Config, logger *log.Logger) *Server {
	ks := rdb.Load(config.SnapshotPath())

	var audit *diag.AuditLogger
	if config.AuditLogPath != "" {
		audit = diag.NewAuditLogger(config.AuditLogPath)
	}
	if audit != nil {
		audit.Log("", "snapshot_loaded", diag.AuditSnapshotLoaded{
			Path: config.SnapshotPath(),
			Keys: ks.Len(),
		})
	}

	return &Server{
		config:       config,
		log:          logger,
		audit:        audit,
		slowLog:      diag.NewSlowLog(slowLogCapacity),
		recentErrors: diag.NewRecentErrors(recentErrorsTTL),
		keyspace:     ks,
		requests:     make(chan request),
	}
}

// Start listens on config.Addr and serves connections until ctx is
// canceled, at which point it closes the listener, saves a final
// snapshot, and returns. It always returns a non-nil error except on
// a clean ctx-triggered shutdown, matching bin/server/main.go's
// log.Fatal(srv.Start(...)) pattern.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	defer listener.Close()

	s.startedAt = time.Now()
	s.log.Printf("redikv listening on %s", s.config.Addr)

	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	defer cancelDispatch()
	go s.runDispatcher(dispatchCtx)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		socket, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.shutdown()
				return nil
			default:
				return err
			}
		}
		go s.serve(socket)
	}
}

// shutdown saves a final snapshot and closes the audit log. Called
// once, after the listener has stopped accepting new connections.
func (s *Server) shutdown() {
	if rdb.Save(s.config.SnapshotPath(), s.keyspace) {
		s.log.Printf("snapshot saved to %s", s.config.SnapshotPath())
	} else {
		s.log.Printf("snapshot save to %s failed", s.config.SnapshotPath())
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// runDispatcher is the single goroutine that ever touches s.keyspace.
// It serializes every command to completion, in arrival order, per
// spec §5's single-writer guarantee, and drives the cron-tick rehash
// step on its own ticker branch so that work never races a command
// (spec §4.7/§9's cron-driven background rehash step).
func (s *Server) runDispatcher(ctx context.Context) {
	cmdCtx := &command.Context{
		Keyspace:     s.keyspace,
		SnapshotPath: s.config.SnapshotPath(),
		StartedAt:    s.startedAt,
		SlowLog:      s.slowLog,
		RecentErrors: s.recentErrors,
	}
	ticker := time.NewTicker(s.config.CronInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.driveCron()
		case req := <-s.requests:
			start := time.Now()
			reply := command.Dispatch(cmdCtx, req.args)
			elapsed := time.Since(start)
			if elapsed >= slowCommandFloor && len(req.args) > 0 {
				s.slowLog.Record(string(req.args[0]), elapsed)
			}
			if s.audit != nil && len(req.args) > 0 && strings.EqualFold(string(req.args[0]), "SAVE") && string(reply) == "+OK\r\n" {
				s.audit.Log("", "snapshot_saved", diag.AuditSnapshotSaved{
					Path: s.config.SnapshotPath(),
					Keys: s.keyspace.Len(),
				})
			}
			req.reply <- reply
		}
	}
}

// driveCron drives every rehashing Dict's incremental migration. It
// runs on the dispatcher goroutine — the same ticker branch above
// never overlaps a req branch — so it never races a concurrent
// command.
func (s *Server) driveCron() {
	deadline := time.Now().Add(cronDriveDuration)
	for _, d := range s.keyspace.RehashingDicts() {
		if d.IsRehashing() {
			d.Drive(deadline)
		}
	}
}

// serve owns one accepted connection: it reads, parses, forwards
// parsed requests to the dispatcher, and writes replies, translating
// original_source/Connection.cpp's read_ready/write_ready loop into
// blocking Go I/O (see conn.Connection's doc comment).
func (s *Server) serve(socket net.Conn) {
	c := conn.New(socket)
	remote := c.RemoteAddr().String()
	if s.audit != nil {
		s.audit.Log(c.ID(), "connection_opened", diag.AuditConnectionOpened{Remote: remote})
	}
	defer func() {
		c.Close()
		if s.audit != nil {
			s.audit.Log(c.ID(), "connection_closed", diag.AuditConnectionClosed{Remote: remote})
		}
	}()

	for {
		if err := c.ReadMore(); err != nil {
			return
		}
		if !s.drain(c, remote) {
			return
		}
		if c.Closed() {
			if err := c.Flush(); err != nil {
				return
			}
			return
		}
		if err := c.Flush(); err != nil {
			return
		}
	}
}

// drain parses and dispatches every complete request currently in c's
// read buffer. It returns false if the connection should be torn
// down.
func (s *Server) drain(c *conn.Connection, remote string) bool {
	for {
		result := resp.Parse(c.ReadBuffer())
		switch result.Status {
		case resp.Incomplete:
			return true
		case resp.Malformed:
			c.Enqueue(resp.EncodeError("ERR protocol error"))
			c.DiscardReadBuffer()
			if s.recentErrors != nil {
				s.recentErrors.Record(remote, "protocol error")
			}
			if s.audit != nil {
				s.audit.Log(c.ID(), "protocol_error", diag.AuditProtocolError{
					Remote: remote,
					Reason: "malformed RESP frame",
				})
			}
			return true
		case resp.Complete:
			c.Consume(result.Consumed)
			if result.Args == nil {
				continue
			}
			reply := make(chan []byte, 1)
			s.requests <- request{args: result.Args, reply: reply}
			c.Enqueue(<-reply)
		}
	}
}
