package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("debug"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("INFO"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.ErrorLevel, GetLevel("error"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("unknown"))
}

func TestSetup_LogFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "tracker")
	Setup(LoggerSetupParams{
		LogFileName: logFile,
		LogLevel:    "info",
	})
	defer logrus.SetOutput(os.Stdout)

	logrus.Info("flush ok")
	logrus.Debug("not written")

	content, err := os.ReadFile(logFile + ".log")
	require.NoError(t, err)
	assert.Contains(t, string(content), "flush ok")
	assert.NotContains(t, string(content), "not written")
}

func TestSentryHook(t *testing.T) {
	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	assert.Equal(t, []logrus.Level{logrus.ErrorLevel}, hook.Levels())
	assert.Equal(t, sentry.LevelError, sentryLevel(logrus.ErrorLevel))
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelDebug, sentryLevel(logrus.TraceLevel))

	// no client bound to the hub, so firing must be a harmless no-op
	assert.NoError(t, hook.Fire(logrus.NewEntry(logrus.StandardLogger())))
}
