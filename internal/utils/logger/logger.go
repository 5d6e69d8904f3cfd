package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log = newLogger()

func newLogger() zerolog.Logger {
	// Customize ConsoleWriter
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	consoleWriter.FormatLevel = func(i interface{}) string {
		switch i {
		case "info":
			return "\033[32m[INFO]\033[0m" // Green
		case "error":
			return "\033[31m[ERROR]\033[0m" // Red
		case "debug":
			return "\033[36m[DEBUG]\033[0m" // Cyan
		case "warn":
			return "\033[33m[WARN]\033[0m" // Yellow
		case "fatal":
			return "\033[35m[FATAL]\033[0m" // Magenta
		default:
			return fmt.Sprintf("[%s]", i)
		}
	}
	consoleWriter.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	consoleWriter.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("\033[1m%s:\033[0m", i)
	}
	consoleWriter.FormatFieldValue = func(i interface{}) string {
		return fmt.Sprintf("%v", i)
	}

	return zerolog.New(consoleWriter).
		Level(zerolog.InfoLevel).
		With().
		Timestamp().
		Logger()
}

func Info(message string, args ...interface{}) {
	if len(args) == 0 {
		log.Info().Msg(message)
	} else {
		log.Info().Msgf(message, args...)
	}
}

func Warn(message string, args ...interface{}) {
	if len(args) == 0 {
		log.Warn().Msg(message)
	} else {
		log.Warn().Msgf(message, args...)
	}
}

func Error(message string, args ...interface{}) {
	if len(args) == 0 {
		log.Error().Msg(message)
	} else {
		log.Error().Msgf(message, args...)
	}
}

func Fatal(message string, args ...interface{}) {
	if len(args) == 0 {
		log.Fatal().Msg(message)
	} else {
		log.Fatal().Msgf(message, args...)
	}
}

func Debug(message string, args ...interface{}) {
	if len(args) == 0 {
		log.Debug().Msg(message)
	} else {
		log.Debug().Msgf(message, args...)
	}
}
