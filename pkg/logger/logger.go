package logger

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log  *zap.Logger
	once sync.Once
	atom = zap.NewAtomicLevel()

	buildLogger = func(config zap.Config) (*zap.Logger, error) {
		return config.Build(zap.AddCallerSkip(1))
	}
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	tipIDKey
)

// Init builds the process logger once. Development gets a colored
// console encoder, everything else JSON.
func Init(env string) {
	once.Do(func() {
		config := zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if env == "development" {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		config.InitialFields = map[string]interface{}{"service": "tipsats-backend"}

		var err error
		log, err = buildLogger(config)
		if err != nil {
			panic(err)
		}
		atom = config.Level
	})
}

// Replace swaps the process logger and returns a func restoring the old one.
func Replace(l *zap.Logger) func() {
	prev := log
	log = l
	return func() { log = prev }
}

func GetLogger() *zap.Logger {
	return log
}

// SetLevel changes the minimum enabled level at runtime
func SetLevel(level zapcore.Level) {
	atom.SetLevel(level)
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func WithTipID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tipIDKey, id)
}

// WithContext returns the logger carrying the request, user and tip ids
// found in ctx. Before Init it is a no-op logger.
func WithContext(ctx context.Context) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 3)
	for _, f := range []struct {
		key  ctxKey
		name string
	}{
		{requestIDKey, "request_id"},
		{userIDKey, "user_id"},
		{tipIDKey, "tip_id"},
	} {
		if v, ok := ctx.Value(f.key).(string); ok && v != "" {
			fields = append(fields, zap.String(f.name, v))
		}
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Info(msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Error(msg, fields...)
}

func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Debug(msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	WithContext(ctx).Warn(msg, fields...)
}

// Request is one served HTTP request
type Request struct {
	Method   string
	Route    string
	Path     string
	Status   int
	Latency  time.Duration
	ClientIP string
	Bytes    int
	Errors   string
}

// LogRequest logs at Error for 5xx, Warn for 4xx and Info otherwise.
func LogRequest(ctx context.Context, req Request) {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("route", req.Route),
		zap.String("path", req.Path),
		zap.Int("status", req.Status),
		zap.Duration("latency", req.Latency),
		zap.String("client_ip", req.ClientIP),
		zap.Int("bytes", req.Bytes),
	}
	if req.Errors != "" {
		fields = append(fields, zap.String("errors", req.Errors))
	}

	l := WithContext(ctx)
	switch {
	case req.Status >= 500:
		l.Error("HTTP request", fields...)
	case req.Status >= 400:
		l.Warn("HTTP request", fields...)
	default:
		l.Info("HTTP request", fields...)
	}
}
