package logger

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ginKey = "logger"

type contextKey string

const loggerKey contextKey = "logger"

var log = zap.NewNop()

// New builds the service logger. Production gets JSON with ISO8601 timestamps,
// everything else the colored development encoder.
func New(level, environment string) (*zap.Logger, error) {
	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	default:
		lvl = zapcore.InfoLevel
	}

	fields := zap.Fields(
		zap.String("service", "roti-erp"),
		zap.String("environment", environment),
	)

	if environment == "production" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg.Build(fields)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build(fields)
}

// SetGlobal replaces the fallback logger used when no request logger exists.
func SetGlobal(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
}

// L returns the fallback logger.
func L() *zap.Logger {
	return log
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves the logger from the context
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return log
}

// FromGin retrieves the request logger stored by Middleware.
func FromGin(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(ginKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return log
}

// Middleware logs one line per request and exposes a request-scoped logger
// to handlers and, through the request context, to services.
func Middleware(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetString("requestID")
		reqLogger := base.With(zap.String("request_id", requestID))
		c.Set(ginKey, reqLogger)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		switch {
		case status >= 500:
			reqLogger.Error("HTTP Request", fields...)
		case status >= 400:
			reqLogger.Warn("HTTP Request", fields...)
		default:
			reqLogger.Info("HTTP Request", fields...)
		}
	}
}
