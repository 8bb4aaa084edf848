package logger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel represents logging severity level
type LogLevel string

const (
	LogLevelDEBUG LogLevel = "DEBUG"
	LogLevelINFO  LogLevel = "INFO"
	LogLevelWARN  LogLevel = "WARN"
	LogLevelERROR LogLevel = "ERROR"
)

// EventCode represents structured event types
type EventCode string

const (
	EventAPIRequest     EventCode = "API_REQUEST"
	EventAPIResponse    EventCode = "API_RESPONSE"
	EventOTPSent        EventCode = "OTP_SENT"
	EventAccountCreated EventCode = "ACCOUNT_CREATED"
	EventLogin          EventCode = "USER_LOGIN"
	EventLogout         EventCode = "USER_LOGOUT"
	EventFileUpload     EventCode = "FILE_UPLOAD"
	EventFileRename     EventCode = "FILE_RENAME"
	EventFileShare      EventCode = "FILE_SHARE"
	EventFileDelete     EventCode = "FILE_DELETE"
	EventUploadRollback EventCode = "UPLOAD_ROLLBACK"
	EventAuthError      EventCode = "AUTH_ERROR"
	EventAccessDenied   EventCode = "ACCESS_DENIED"
	EventBackendError   EventCode = "BACKEND_ERROR"
	EventSystemStart    EventCode = "SYSTEM_START"
	EventSystemStop     EventCode = "SYSTEM_STOP"
	EventError          EventCode = "ERROR"
)

// StructuredLog is the persisted log record format
type StructuredLog struct {
	Timestamp      string         `json:"timestamp"`
	Level          LogLevel       `json:"level"`
	Service        string         `json:"service"`
	Instance       string         `json:"instance"`
	EventCode      EventCode      `json:"event_code"`
	Message        string         `json:"message"`
	Details        map[string]any `json:"details,omitempty"`
	Hostname       string         `json:"hostname"`
	SourceLocation string         `json:"source_location"`
	RequestID      string         `json:"request_id,omitempty"`
	Actor          string         `json:"actor,omitempty"`
	Code           string         `json:"code,omitempty"`
}

// Logger writes structured logs to its output and, when a database is
// attached, to access_logs.
type Logger struct {
	db       *sql.DB
	out      *log.Logger
	hostname string
	service  string
	instance string
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// New builds a logger writing JSON lines to w. db may be nil.
func New(db *sql.DB, w io.Writer) *Logger {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		db:       db,
		out:      log.New(w, "", 0),
		hostname: hostname,
		service:  "store-it",
		instance: uuid.NewString(),
	}
}

// InitLogger installs a stdout logger persisting to db as the default.
func InitLogger(db *sql.DB) *Logger {
	l := New(db, os.Stdout)
	SetLogger(l)
	return l
}

func SetLogger(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// GetLogger returns the default logger, creating a console-only one when
// none was installed.
func GetLogger() *Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	if l != nil {
		return l
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(nil, os.Stdout)
	}
	return defaultLogger
}

// Entry carries the request-scoped fields of one log call.
type Entry struct {
	Event     EventCode
	Message   string
	Details   map[string]any
	Code      string
	RequestID string
	Actor     string
}

func (l *Logger) InfoCtx(event EventCode, msg string, details map[string]any, code, requestID, actor string) {
	l.write(LogLevelINFO, Entry{event, msg, details, code, requestID, actor})
}

func (l *Logger) WarnCtx(event EventCode, msg string, details map[string]any, code, requestID, actor string) {
	l.write(LogLevelWARN, Entry{event, msg, details, code, requestID, actor})
}

func (l *Logger) ErrorCtx(event EventCode, msg string, details map[string]any, code, requestID, actor string) {
	l.write(LogLevelERROR, Entry{event, msg, details, code, requestID, actor})
}

// LogAPIResponse records one finished request.
func (l *Logger) LogAPIResponse(method, path string, status int, elapsed time.Duration, requestID, actor string) {
	details := map[string]any{
		"method":        method,
		"path":          path,
		"status_code":   status,
		"response_time": elapsed.Milliseconds(),
	}
	level := LogLevelINFO
	if status >= 400 {
		level = LogLevelWARN
	}
	if status >= 500 {
		level = LogLevelERROR
	}
	l.write(level, Entry{
		Event:     EventAPIResponse,
		Message:   fmt.Sprintf("API response: %s %s [%d] (%dms)", method, path, status, elapsed.Milliseconds()),
		Details:   details,
		RequestID: requestID,
		Actor:     actor,
	})
}

// LogError records err under EventError.
func (l *Logger) LogError(message string, err error, details map[string]any) {
	if details == nil {
		details = make(map[string]any)
	}
	if err != nil {
		details["error"] = err.Error()
	}
	l.write(LogLevelERROR, Entry{Event: EventError, Message: message, Details: details})
}

func (l *Logger) write(level LogLevel, e Entry) {
	if l == nil {
		return
	}
	// skip write and the level helper
	_, file, line, ok := runtime.Caller(2)
	source := "unknown"
	if ok {
		source = fmt.Sprintf("%s:%d", file[strings.LastIndex(file, "/")+1:], line)
	}

	rec := StructuredLog{
		Timestamp:      time.Now().UTC().Format(time.RFC3339Nano),
		Level:          level,
		Service:        l.service,
		Instance:       l.instance,
		EventCode:      e.Event,
		Message:        e.Message,
		Details:        e.Details,
		Hostname:       l.hostname,
		SourceLocation: source,
		RequestID:      e.RequestID,
		Actor:          e.Actor,
		Code:           e.Code,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		b, _ = json.Marshal(StructuredLog{Timestamp: rec.Timestamp, Level: level, EventCode: e.Event, Message: e.Message})
	}
	l.out.Print(string(b))
	l.persist(rec)
}

func (l *Logger) persist(rec StructuredLog) {
	if l.db == nil {
		return
	}
	details, _ := json.Marshal(rec.Details)
	_, err := l.db.ExecContext(context.Background(), `
	INSERT INTO access_logs (
		timestamp, level, service, instance, event_code, message,
		details, hostname, source_location, request_id, actor, code
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp, rec.Level, rec.Service, rec.Instance, rec.EventCode, rec.Message,
		string(details), rec.Hostname, rec.SourceLocation, rec.RequestID, rec.Actor, rec.Code,
	)
	if err != nil {
		l.out.Printf("failed to save log to database: %v", err)
	}
}
