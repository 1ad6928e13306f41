// Package diag holds the server's observability surface: the command
// audit trail, a bounded slow-command log, and a short-lived ring of
// recent protocol errors per remote address. None of it participates
// in command semantics or RESP replies — purely ambient infrastructure
// carried forward from the teacher repo's own diagnostics packages,
// per SPEC_FULL.md §A.5.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// AuditData is the interface for typed audit event payloads. Adapted
// from storage/audit.go's AuditData, whose variants named MUD events
// (AuditUserLogin, AuditWizardGrant); this server's variants name
// connection and snapshot lifecycle events instead.
type AuditData interface {
	auditData()
}

// AuditEntry is one line of the audit log.
type AuditEntry struct {
	Time      string    `json:"time"`
	SessionID string    `json:"session_id,omitempty"`
	Event     string    `json:"event"`
	Data      AuditData `json:"data"`
}

// AuditSnapshotSaved is logged after a successful SAVE.
type AuditSnapshotSaved struct {
	Path string `json:"path"`
	Keys int    `json:"keys"`
}

func (AuditSnapshotSaved) auditData() {}

// AuditSnapshotLoaded is logged once at startup after Load runs.
type AuditSnapshotLoaded struct {
	Path string `json:"path"`
	Keys int    `json:"keys"`
}

func (AuditSnapshotLoaded) auditData() {}

// AuditConnectionOpened is logged when a client socket is accepted.
type AuditConnectionOpened struct {
	Remote string `json:"remote"`
}

func (AuditConnectionOpened) auditData() {}

// AuditConnectionClosed is logged when a client connection ends.
type AuditConnectionClosed struct {
	Remote string `json:"remote"`
}

func (AuditConnectionClosed) auditData() {}

// AuditProtocolError is logged whenever the RESP parser returns
// Malformed, per spec §9's protocol-error handling.
type AuditProtocolError struct {
	Remote string `json:"remote"`
	Reason string `json:"reason"`
}

func (AuditProtocolError) auditData() {}

// AuditLogger writes JSON-lines audit events to a rotating log file.
// Grounded on storage/audit.go's AuditLogger, with the same
// stdlib-encoding-through-lumberjack shape kept unchanged: the
// teacher's own choice of encoding/json over goccy for this one file
// is preserved deliberately (see SPEC_FULL.md §A.5).
type AuditLogger struct {
	mu     sync.Mutex
	writer io.WriteCloser
	enc    *json.Encoder
}

// NewAuditLogger opens (creating if needed) a rotating audit log at
// path.
func NewAuditLogger(path string) *AuditLogger {
	writer := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     365,
		Compress:   true,
	}
	return &AuditLogger{
		writer: writer,
		enc:    json.NewEncoder(writer),
	}
}

// Log appends a structured audit entry. Panics on encode failure: every
// AuditData variant is a fixed struct of JSON-safe fields defined in
// this package, so a failure here means a programming error, not bad
// input.
func (a *AuditLogger) Log(sessionID, event string, data AuditData) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.enc.Encode(AuditEntry{
		Time:      time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	}); err != nil {
		panic(fmt.Sprintf("audit log encode failed: %v", err))
	}
}

// Close closes the underlying rotating log file.
func (a *AuditLogger) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writer.Close()
}
