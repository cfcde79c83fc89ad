package log

import (
	"bytes"
	"testing"

	"github.com/kataras/golog"
	"github.com/stretchr/testify/assert"
)

func TestNewGologLogger(t *testing.T) {
	logger := NewGologLogger(golog.New())

	assert.NotNil(t, logger)
	assert.Equal(t, LogLevelInfo, logger.GetLevel())
}

func TestGologLogger_LevelControl(t *testing.T) {
	logger := NewGologLogger(golog.New())

	logger.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, logger.GetLevel())

	logger.SetLevel(LogLevelNone)
	assert.Equal(t, LogLevelNone, logger.GetLevel())
}

func TestGologLogger_FormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	g := golog.New()
	g.SetOutput(&buf)
	logger := NewGologLogger(g)

	logger.Info("loaded node %s with %d modules", "rag_qa", 1)
	assert.Contains(t, buf.String(), "loaded node rag_qa with 1 modules")

	buf.Reset()
	logger.Debug("filtered %s", "out")
	assert.Empty(t, buf.String())
}
