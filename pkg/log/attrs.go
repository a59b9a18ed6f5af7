package log

import (
	"log/slog"
	"time"
)

func Handle[T ~int32](h T) slog.Attr {
	return slog.Int("handle", int(h))
}

func Period(d time.Duration) slog.Attr {
	return slog.Duration("period", d)
}

func At(t time.Time) slog.Attr {
	return slog.Time("at", t)
}

func Count(n int) slog.Attr {
	return slog.Int("count", n)
}

func Error(err error) slog.Attr {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return slog.String("error", msg)
}

func ErrorString(msg string) slog.Attr {
	return slog.String("error", msg)
}
