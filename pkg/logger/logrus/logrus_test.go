package logrus

import (
	"bytes"
	"errors"
	"testing"

	"github.com/raykavin/reportview/pkg/logger"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestAdapter(t *testing.T) {
	var out bytes.Buffer
	log := New(Options{Level: "warn", JSON: true, Output: &out})

	var _ logger.Logger = log
	require.Equal(t, logger.WarnLevel, log.GetLevel())

	log.Info("hidden")
	require.Zero(t, out.Len())

	log.WithField("run", "abc").WithError(errors.New("boom")).Warnf("scan %d failed", 2)

	line := out.Bytes()
	require.Equal(t, "scan 2 failed", gjson.GetBytes(line, "msg").String())
	require.Equal(t, "abc", gjson.GetBytes(line, "run").String())
	require.Equal(t, "boom", gjson.GetBytes(line, "error").String())
	require.Equal(t, "warning", gjson.GetBytes(line, "level").String())

	log.SetLevel(logger.DebugLevel)
	require.Equal(t, logger.DebugLevel, log.GetLevel())
}
