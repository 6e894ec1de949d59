package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	appCtx "github.com/baechuer/event-hub/internal/pkg/context"
)

var Logger zerolog.Logger = zerolog.Nop()

func Init() {
	InitWithWriter(os.Stdout)
}

func InitWithWriter(w io.Writer) {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	format := os.Getenv("LOG_FORMAT") // "json" or "console"
	if format == "" {
		format = "console"
	}

	var l zerolog.Logger
	if format == "json" {
		l = zerolog.New(w).With().Timestamp().Str("service", "event-hub").Logger().Level(level)
	} else {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger().Level(level)
	}

	Logger = l
	zlog.Logger = l
}

// Ctx returns a logger carrying request_id and context_id when present.
func Ctx(ctx context.Context) *zerolog.Logger {
	c := Logger.With()
	attached := false
	if reqID := appCtx.GetRequestID(ctx); reqID != "" {
		c = c.Str("request_id", reqID)
		attached = true
	}
	if cid := appCtx.GetContextID(ctx); cid != "" {
		c = c.Str("context_id", cid)
		attached = true
	}
	if !attached {
		return &Logger
	}
	l := c.Logger()
	return &l
}
