package logger

import (
	"go.uber.org/zap"
)

// CronLogger는 robfig/cron의 cron.Logger 인터페이스를 zap으로 구현합니다.
type CronLogger struct {
	sugar *zap.SugaredLogger
}

// NewCronLogger는 스케줄러용 로거를 생성합니다.
// cron은 매 틱마다 Info를 남기므로 Info는 Debug 레벨로 내려서 기록합니다.
func NewCronLogger(logger *zap.Logger) *CronLogger {
	return &CronLogger{sugar: logger.Named("cron").Sugar()}
}

func (l *CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
