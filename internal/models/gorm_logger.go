package models

import (
	"fmt"

	"github.com/readrover/internal/logger"
)

// zapWriter 把 gorm 日志转到 zap
type zapWriter struct{}

func (zapWriter) Printf(format string, args ...interface{}) {
	logger.Z().Sugar().Infow("gorm", "detail", fmt.Sprintf(format, args...))
}
