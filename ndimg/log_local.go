package ndimg

import (
	"fmt"
	"log"

	"github.com/natefinch/lumberjack"
)

type stdLogger struct {
	*lumberjack.Logger
}

var logger Logger = stdLogger{}

// LogConfig is the [logging] section of a configuration file.
type LogConfig struct {
	Logfile string `toml:"logfile" yaml:"logfile"`
	MaxSize int    `toml:"max_log_size" yaml:"max_log_size"`
	MaxAge  int    `toml:"max_log_age" yaml:"max_log_age"`
	Level   string `toml:"level" yaml:"level"`
}

// SetLogger creates a logger that saves to a rotating log file and applies
// any requested level.
func (c *LogConfig) SetLogger() {
	if c == nil {
		return
	}
	if c.Level != "" {
		m, err := ParseLogMode(c.Level)
		if err != nil {
			Warningf("ignoring log level: %v\n", err)
		} else {
			SetLogMode(m)
		}
	}
	if c.Logfile == "" {
		Debugf("Sending log messages to stderr since no log file specified.\n")
		return
	}
	fmt.Printf("Sending log messages to: %s\n", c.Logfile)
	l := &lumberjack.Logger{
		Filename: c.Logfile,
		MaxSize:  c.MaxSize, // megabytes
		MaxAge:   c.MaxAge,  // days
	}
	log.SetOutput(l)
	logger = stdLogger{l}
}

func (slog stdLogger) Debugf(format string, args ...interface{}) {
	log.Printf(" DEBUG "+format, args...)
}

func (slog stdLogger) Infof(format string, args ...interface{}) {
	log.Printf(" INFO "+format, args...)
}

func (slog stdLogger) Warningf(format string, args ...interface{}) {
	log.Printf(" WARNING "+format, args...)
}

func (slog stdLogger) Errorf(format string, args ...interface{}) {
	log.Printf(" ERROR "+format, args...)
}

func (slog stdLogger) Criticalf(format string, args ...interface{}) {
	log.Printf(" CRITICAL "+format, args...)
}

func (slog stdLogger) Shutdown() {
	if slog.Logger != nil {
		log.Printf("Closing log file...\n")
		slog.Close()
	}
}
