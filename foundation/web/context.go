package web

import (
	"context"
	"net/http"
	"time"
)

type ctxKey int

const (
	writerKey ctxKey = iota + 1
	timeKey
)

func setWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, writerKey, w)
}

// GetWriter returns the underlying writer for the request.
func GetWriter(ctx context.Context) http.ResponseWriter {
	v, ok := ctx.Value(writerKey).(http.ResponseWriter)
	if !ok {
		return nil
	}

	return v
}

func setTime(ctx context.Context, now time.Time) context.Context {
	return context.WithValue(ctx, timeKey, now)
}

// GetTime returns the start time of the request.
func GetTime(ctx context.Context) time.Time {
	v, ok := ctx.Value(timeKey).(time.Time)
	if !ok {
		return time.Now()
	}

	return v
}
