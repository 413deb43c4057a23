package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	SetLevel("debug")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected debug level, got %s", Log.GetLevel())
	}

	SetLevel("not-a-level")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected level to stay debug, got %s", Log.GetLevel())
	}

	SetLevel("")
	if Log.GetLevel() != logrus.DebugLevel {
		t.Errorf("Expected empty level to be ignored, got %s", Log.GetLevel())
	}
}
