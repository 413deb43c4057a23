package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

func init() {
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	Log.SetOutput(os.Stdout)
	Log.SetLevel(logrus.InfoLevel)
}

// SetLevel applies a textual log level ("debug", "info", ...). Unknown levels keep the current one.
func SetLevel(level string) {
	if level == "" {
		return
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		Log.Warnf("Unknown log level %q, keeping %s", level, Log.GetLevel())
		return
	}
	Log.SetLevel(lvl)
}
