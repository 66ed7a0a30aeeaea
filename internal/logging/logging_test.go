package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDebugGatedByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", LevelInfo, DestinationStderr)
	l.Logger.SetOutput(&buf)

	l.Debug(context.Background(), "should not appear", nil)
	if buf.Len() != 0 {
		t.Errorf("Debug logged at info level: %q", buf.String())
	}

	l.Logger.SetLevel(logrus.DebugLevel)
	l.Debug(context.Background(), "should appear", nil)
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("Debug did not log at debug level: %q", buf.String())
	}
}

func TestInfoRedactsTokenFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("test", LevelInfo, DestinationStderr)
	l.Logger.SetOutput(&buf)

	l.Info(context.Background(), "request sent", map[string]interface{}{
		"authorization": "Bearer super-secret-token",
	})

	if strings.Contains(buf.String(), "super-secret-token") {
		t.Errorf("token leaked into log output: %q", buf.String())
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := ParseLevel("bogus"); got != LevelInfo {
		t.Errorf("ParseLevel(bogus) = %v, want info", got)
	}
	if got := ParseLevel("DEBUG"); got != LevelDebug {
		t.Errorf("ParseLevel(DEBUG) = %v, want debug", got)
	}
}
