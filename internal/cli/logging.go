package cli

import (
	"io"

	"github.com/sirupsen/logrus"
)

// newLogger returns a text logger on w; debug lowers the level to debug.
func newLogger(w io.Writer, debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !debug,
		FullTimestamp:    true,
	})

	log.SetLevel(logrus.WarnLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
