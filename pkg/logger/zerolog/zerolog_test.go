package zerolog

import (
	"bytes"
	"errors"
	"testing"

	"github.com/raykavin/reportview/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAdapter(t *testing.T) {
	var out bytes.Buffer
	base := zerolog.New(&out).Level(zerolog.InfoLevel)
	log := NewAdapter(&base)

	var _ logger.Logger = log
	require.Equal(t, logger.InfoLevel, log.GetLevel())

	log.WithFields(map[string]any{"pane": "main"}).WithError(errors.New("boom")).Infof("dropped %d markers", 3)

	line := out.Bytes()
	require.Equal(t, "dropped 3 markers", gjson.GetBytes(line, "message").String())
	require.Equal(t, "main", gjson.GetBytes(line, "pane").String())
	require.Equal(t, "boom", gjson.GetBytes(line, "error").String())

	out.Reset()
	log.Debug("hidden")
	require.Zero(t, out.Len())
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestFormatters(t *testing.T) {
	require.Contains(t, formatLevel(zerolog.LevelInfoValue), "[INF]")
	require.Contains(t, formatLevel("other"), "[UNK]")
	require.Equal(t, ">", formatMessage(""))
	require.Contains(t, formatCaller("/a/b/composer.go:42"), "composer.go")
	require.Empty(t, formatCaller(nil))
}
