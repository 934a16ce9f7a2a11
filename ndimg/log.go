package ndimg

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// ModeFlag is a logging severity.  Messages below the current mode are dropped.
type ModeFlag uint32

const (
	DebugMode ModeFlag = iota
	InfoMode
	WarningMode
	ErrorMode
	CriticalMode
	SilentMode
)

var modeNames = [...]string{
	DebugMode:    "debug",
	InfoMode:     "info",
	WarningMode:  "warning",
	ErrorMode:    "error",
	CriticalMode: "critical",
	SilentMode:   "silent",
}

func (m ModeFlag) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("mode %d", uint32(m))
}

// ParseLogMode converts a level name like "warning" into a ModeFlag.
func ParseLogMode(s string) (ModeFlag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warn" {
		return WarningMode, nil
	}
	for m, name := range modeNames {
		if name == s {
			return ModeFlag(m), nil
		}
	}
	return InfoMode, fmt.Errorf("unknown log level %q", s)
}

// mode is read by every worker that logs, so it is atomic.
var mode atomic.Uint32

func init() {
	mode.Store(uint32(InfoMode))
}

// SetLogMode sets the lowest severity that is printed.  SilentMode drops
// everything.
func SetLogMode(m ModeFlag) { mode.Store(uint32(m)) }

func LogMode() ModeFlag { return ModeFlag(mode.Load()) }

func enabled(m ModeFlag) bool { return LogMode() <= m }

// Logger is the sink behind the package-level logging functions.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Criticalf(format string, args ...interface{})

	// Shutdown flushes and closes any log file.
	Shutdown()
}

func Debugf(format string, args ...interface{}) {
	if enabled(DebugMode) {
		logger.Debugf(format, args...)
	}
}

func Infof(format string, args ...interface{}) {
	if enabled(InfoMode) {
		logger.Infof(format, args...)
	}
}

func Warningf(format string, args ...interface{}) {
	if enabled(WarningMode) {
		logger.Warningf(format, args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if enabled(ErrorMode) {
		logger.Errorf(format, args...)
	}
}

func Criticalf(format string, args ...interface{}) {
	if enabled(CriticalMode) {
		logger.Criticalf(format, args...)
	}
}

func Shutdown() { logger.Shutdown() }

// TimeLog appends the time elapsed since its creation to each message, e.g.
//
//	timedLog := NewTimeLog()
//	...
//	timedLog.Infof("Filtered %s", name) // "Filtered ...: 1.2s"
type TimeLog struct {
	logger Logger
	start  time.Time
}

func NewTimeLog() TimeLog {
	return TimeLog{logger, time.Now()}
}

func (t TimeLog) Elapsed() time.Duration {
	return time.Since(t.start)
}

// timed strips a trailing newline from format and appends the elapsed time.
func (t TimeLog) timed(format string, args []interface{}) (string, []interface{}) {
	return strings.TrimSuffix(format, "\n") + ": %s\n", append(args, t.Elapsed())
}

func (t TimeLog) Debugf(format string, args ...interface{}) {
	if enabled(DebugMode) {
		f, a := t.timed(format, args)
		t.logger.Debugf(f, a...)
	}
}

func (t TimeLog) Infof(format string, args ...interface{}) {
	if enabled(InfoMode) {
		f, a := t.timed(format, args)
		t.logger.Infof(f, a...)
	}
}

func (t TimeLog) Warningf(format string, args ...interface{}) {
	if enabled(WarningMode) {
		f, a := t.timed(format, args)
		t.logger.Warningf(f, a...)
	}
}

func (t TimeLog) Errorf(format string, args ...interface{}) {
	if enabled(ErrorMode) {
		f, a := t.timed(format, args)
		t.logger.Errorf(f, a...)
	}
}
