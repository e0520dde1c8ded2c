package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestNewZapLogger_AddsServiceField(t *testing.T) {
	logger, err := NewZapLogger(Config{Level: "debug", Format: "json", Output: "stderr", Service: "partner"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewGormLogger(zap.New(core), ParseGormLevel("warn"), 50*time.Millisecond, true)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len(), "record not found is ignored")

	l.Trace(context.Background(), time.Now(), sql, errors.New("syntax error"))
	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	l.Trace(context.Background(), time.Now(), sql, nil)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "gorm query failed", entries[0].Message)
	assert.Equal(t, "gorm slow query", entries[1].Message)

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := NewCronLogger(zap.New(core))

	l.Info("wake", "now", 1)
	l.Error(errors.New("panic"), "job failed", "entry", 2)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.DebugLevel, entries[0].Level)
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.Equal(t, "panic", entries[1].ContextMap()["error"])
}

func TestGrpcUnaryInterceptor_LevelByCode(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	interceptor := NewGrpcUnaryServerInterceptor(zap.New(core))
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	tests := []struct {
		err  error
		want zapcore.Level
	}{
		{nil, zap.InfoLevel},
		{status.Error(codes.ResourceExhausted, "team full"), zap.WarnLevel},
		{status.Error(codes.Internal, "boom"), zap.ErrorLevel},
	}
	for _, tt := range tests {
		_, err := interceptor(context.Background(), nil, info, func(ctx context.Context, req interface{}) (interface{}, error) {
			return nil, tt.err
		})
		assert.Equal(t, tt.err, err)
	}

	entries := logs.AllUntimed()
	require.Len(t, entries, len(tests))
	for i, tt := range tests {
		assert.Equal(t, tt.want, entries[i].Level)
		assert.Equal(t, "grpc.health.v1.Health", entries[i].ContextMap()["grpc.service"])
	}
}
