package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger("world", &buf, INFO)

	l.Debug("скрыто %d", 1)
	assert.Empty(t, buf.String(), "DEBUG не должен попадать в вывод при уровне INFO")

	l.Info("generated %d voxels", 42)
	assert.Contains(t, buf.String(), "[INFO] [world] generated 42 voxels")

	assert.False(t, l.Enabled(TRACE))
	assert.True(t, l.Enabled(ERROR))
}

func TestDiscardLogger(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(ERROR))
	l.Error("ничего не пишется")
}

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerManagerComponents(t *testing.T) {
	lm := &LoggerManager{loggers: make(map[string]*Logger), consoleLevel: WARN, fileLevel: OFF}

	a := lm.MustGetLogger("navigation")
	b := lm.MustGetLogger("navigation")
	assert.Same(t, a, b, "Повторный запрос должен возвращать тот же логгер")
	assert.False(t, a.Enabled(INFO))

	lm.MustGetLogger("engine")
	assert.Equal(t, []string{"engine", "navigation"}, lm.ListComponents())

	require.NoError(t, lm.SetLogLevel("engine", DEBUG, OFF))
	assert.True(t, lm.MustGetLogger("engine").Enabled(DEBUG))
	assert.Error(t, lm.SetLogLevel("missing", DEBUG, OFF))
	assert.NoError(t, lm.CloseAll())
	assert.Empty(t, lm.ListComponents())
}
