package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	appName = "readrover"

	defaultDir        = "logs"
	defaultFilename   = "readrover.log"
	defaultMaxSizeMB  = 100
	defaultMaxBackups = 7
	defaultMaxAgeDays = 30
)

// Options 日志配置（来自 config.log）
type Options struct {
	Level      string // 为空时 debug 模式取 debug，否则 info
	Dir        string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// L 全局日志实例，Init 之前为 nil
var L *zap.Logger

var (
	stdoutOnce sync.Once
	stdoutLog  *zap.Logger
)

// Init 创建并替换全局日志
func Init(mode string, options Options) *zap.Logger {
	L = New(mode, options)
	zap.ReplaceGlobals(L)
	return L
}

// New debug 模式输出彩色控制台；其它模式写 JSON 滚动文件，error 及以上同时写 stderr
func New(mode string, options Options) *zap.Logger {
	debug := strings.EqualFold(strings.TrimSpace(mode), "debug")
	level := resolveLevel(debug, options.Level)

	var core zapcore.Core
	if debug {
		encoderCfg := encoderConfig()
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stdout), level)
	} else {
		jsonEncoder := zapcore.NewJSONEncoder(encoderConfig())
		stderrCore := zapcore.NewCore(jsonEncoder, zapcore.Lock(os.Stderr), zap.ErrorLevel)
		fileWriter, err := rotatingFile(options)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file unavailable, writing to stdout: %v\n", err)
			core = zapcore.NewCore(jsonEncoder, zapcore.Lock(os.Stdout), level)
		} else {
			core = zapcore.NewTee(zapcore.NewCore(jsonEncoder, fileWriter, level), stderrCore)
		}
	}
	return zap.New(core,
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zap.DPanicLevel),
		zap.Fields(zap.String("app", appName)),
	)
}

// Z 当前日志实例，未初始化时回落到 stdout
func Z() *zap.Logger {
	if L != nil {
		return L
	}
	stdoutOnce.Do(func() {
		stdoutLog = zap.New(
			zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig()), zapcore.Lock(os.Stdout), zap.InfoLevel),
			zap.AddCaller(),
			zap.AddCallerSkip(1),
		)
	})
	return stdoutLog
}

// S 全局 SugaredLogger
func S() *zap.SugaredLogger { return Z().Sugar() }

// SW 附带固定字段的 SugaredLogger
func SW(kv ...interface{}) *zap.SugaredLogger {
	return S().With(kv...)
}

// StdLogger 供只接受标准库 log 的场景使用
func StdLogger() *log.Logger {
	return zap.NewStdLog(Z())
}

// Debugw 调试日志
func Debugw(msg string, kv ...interface{}) { S().Debugw(msg, kv...) }

// Infow 信息日志
func Infow(msg string, kv ...interface{}) { S().Infow(msg, kv...) }

// Warnw 告警日志
func Warnw(msg string, kv ...interface{}) { S().Warnw(msg, kv...) }

// Errorw 错误日志
func Errorw(msg string, kv ...interface{}) { S().Errorw(msg, kv...) }

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "event"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.MillisDurationEncoder
	cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return cfg
}

func resolveLevel(debug bool, raw string) zap.AtomicLevel {
	if parsed, err := zapcore.ParseLevel(strings.TrimSpace(raw)); err == nil && strings.TrimSpace(raw) != "" {
		return zap.NewAtomicLevelAt(parsed)
	}
	if debug {
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zap.NewAtomicLevelAt(zap.InfoLevel)
}

func rotatingFile(options Options) (zapcore.WriteSyncer, error) {
	path, err := logFilePath(options)
	if err != nil {
		return nil, err
	}
	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(options.MaxSizeMB, defaultMaxSizeMB),
		MaxBackups: positiveOr(options.MaxBackups, defaultMaxBackups),
		MaxAge:     positiveOr(options.MaxAgeDays, defaultMaxAgeDays),
		Compress:   options.Compress,
	}), nil
}

// logFilePath 目录默认为工作目录下 logs/，并确认文件可写
func logFilePath(options Options) (string, error) {
	dir := strings.TrimSpace(options.Dir)
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolve workdir: %w", err)
		}
		dir = filepath.Join(wd, defaultDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}
	name := strings.TrimSpace(options.Filename)
	if name == "" {
		name = defaultFilename
	}
	path := filepath.Join(dir, name)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open log file: %w", err)
	}
	return path, file.Close()
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
