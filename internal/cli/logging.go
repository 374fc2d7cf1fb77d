package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	logFormatText = "text"
	logFormatJSON = "json"
)

// newLogger builds the logger handed to the generator. Verbose lowers the
// level to Debug so ignored duplicate paths are reported too.
func newLogger(w io.Writer, verbose bool, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.Out = w
	log.Level = logrus.InfoLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", logFormatText:
		log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	case logFormatJSON:
		log.Formatter = &logrus.JSONFormatter{}
	default:
		return nil, newUsageError(fmt.Sprintf("unsupported --log-format %q (allowed: text, json)", format))
	}
	return log, nil
}
