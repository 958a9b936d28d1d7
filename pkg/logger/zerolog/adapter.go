package zerolog

import (
	"fmt"

	"github.com/raykavin/reportview/pkg/logger"
	"github.com/rs/zerolog"
)

// Adapter exposes a zerolog.Logger as a logger.Logger
type Adapter struct {
	*zerolog.Logger
}

func NewAdapter(log *zerolog.Logger) *Adapter {
	return &Adapter{log}
}

func (z *Adapter) with(ctx zerolog.Context) logger.Logger {
	l := ctx.Logger()
	return &Adapter{&l}
}

// WithField implements logger.Logger.
func (z *Adapter) WithField(key string, value any) logger.Logger {
	return z.with(z.With().Interface(key, value))
}

// WithFields implements logger.Logger.
func (z *Adapter) WithFields(fields map[string]any) logger.Logger {
	return z.with(z.With().Fields(fields))
}

// WithError implements logger.Logger.
func (z *Adapter) WithError(err error) logger.Logger {
	return z.with(z.With().Err(err))
}

func (z *Adapter) Debug(args ...any) { z.Logger.Debug().Msg(fmt.Sprint(args...)) }
func (z *Adapter) Info(args ...any)  { z.Logger.Info().Msg(fmt.Sprint(args...)) }
func (z *Adapter) Warn(args ...any)  { z.Logger.Warn().Msg(fmt.Sprint(args...)) }
func (z *Adapter) Error(args ...any) { z.Logger.Error().Msg(fmt.Sprint(args...)) }
func (z *Adapter) Fatal(args ...any) { z.Logger.Fatal().Msg(fmt.Sprint(args...)) }

func (z *Adapter) Debugf(format string, args ...any) { z.Logger.Debug().Msgf(format, args...) }
func (z *Adapter) Infof(format string, args ...any)  { z.Logger.Info().Msgf(format, args...) }
func (z *Adapter) Warnf(format string, args ...any)  { z.Logger.Warn().Msgf(format, args...) }
func (z *Adapter) Errorf(format string, args ...any) { z.Logger.Error().Msgf(format, args...) }
func (z *Adapter) Fatalf(format string, args ...any) { z.Logger.Fatal().Msgf(format, args...) }

// SetLevel implements logger.Logger.
func (z *Adapter) SetLevel(level logger.Level) {
	zerolog.SetGlobalLevel(toZerologLevel(level))
}

// GetLevel implements logger.Logger.
func (z *Adapter) GetLevel() logger.Level {
	for level, zl := range levels {
		if zl == z.Logger.GetLevel() {
			return level
		}
	}
	return logger.NoLevel
}

var levels = map[logger.Level]zerolog.Level{
	logger.Disabled:   zerolog.Disabled,
	logger.NoLevel:    zerolog.NoLevel,
	logger.TraceLevel: zerolog.TraceLevel,
	logger.DebugLevel: zerolog.DebugLevel,
	logger.InfoLevel:  zerolog.InfoLevel,
	logger.WarnLevel:  zerolog.WarnLevel,
	logger.ErrorLevel: zerolog.ErrorLevel,
	logger.FatalLevel: zerolog.FatalLevel,
	logger.PanicLevel: zerolog.PanicLevel,
}

func toZerologLevel(level logger.Level) zerolog.Level {
	if zl, ok := levels[level]; ok {
		return zl
	}
	return zerolog.NoLevel
}
