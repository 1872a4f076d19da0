package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout used by every engine logger.
const TimeFormat = "15:04:05.000"

// New creates the root engine logger.
//
// Parameters:
//   - level: a level name accepted by log.ParseLevel ("debug", "info", "warn", "error")
//   - format: "text", "json" or "logfmt" (empty selects text)
//   - w: the output writer
//
// Returns:
//   - *log.Logger: the configured logger
//   - error: an error if the level or format is unknown
func New(level, format string, w io.Writer) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var formatter log.Formatter
	switch format {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "oxyvr",
		ReportTimestamp: true,
		TimeFormat:      TimeFormat,
		Formatter:       formatter,
	}), nil
}

// Discard returns a logger that drops everything. Components fall back to it when no logger is configured.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Component returns a child of parent labelled with a component prefix, or a discarding logger if parent is nil.
//
// Parameters:
//   - parent: the parent logger, may be nil
//   - name: the component name
//
// Returns:
//   - *log.Logger: the component logger
func Component(parent *log.Logger, name string) *log.Logger {
	if parent == nil {
		return Discard()
	}
	return parent.WithPrefix(parent.GetPrefix() + "/" + name)
}
