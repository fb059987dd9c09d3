package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Level 日志级别
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// Logger 统一的日志记录器
type Logger struct {
	level     Level
	prefix    string
	withLevel bool
	logFile   *os.File
	stdLogger *log.Logger
}

// Option 日志选项
type Option struct {
	Level     Level
	Prefix    string
	LogFile   string    // 非空时写入文件（追加）
	Output    io.Writer // LogFile 为空时使用，默认 os.Stdout
	WithTime  bool
	WithLevel bool
}

// New 创建新的日志记录器
func New(opt *Option) *Logger {
	if opt == nil {
		opt = &Option{
			Level:     LevelInfo,
			WithTime:  true,
			WithLevel: true,
		}
	}

	l := &Logger{
		level:     opt.Level,
		prefix:    opt.Prefix,
		withLevel: opt.WithLevel,
	}

	flags := 0
	if opt.WithTime {
		flags |= log.Ldate | log.Ltime | log.Lmicroseconds
	}

	out := opt.Output
	if out == nil {
		out = os.Stdout
	}

	if opt.LogFile != "" {
		f, err := openLogFile(opt.LogFile)
		if err != nil {
			log.Printf("打开日志文件失败，回退到标准输出: %v", err)
		} else {
			l.logFile = f
			out = f
		}
	}
	l.stdLogger = log.New(out, "", flags)
	return l
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// Named 返回共享输出的子记录器，前缀追加 name
func (l *Logger) Named(name string) *Logger {
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		level:     l.level,
		prefix:    prefix,
		withLevel: l.withLevel,
		stdLogger: l.stdLogger,
	}
}

// Close 关闭日志文件
func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// getCaller 获取 logger 包之外的第一个调用者
func getCaller() (string, int) {
	for i := 3; i < 15; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if strings.HasSuffix(file, "pkg/logger/logger.go") {
			continue
		}
		if idx := strings.Index(file, "dataload/"); idx != -1 {
			return file[idx:], line
		}
		return filepath.Base(file), line
	}
	return "unknown", 0
}

func (l *Logger) formatMessage(level Level, format string, v ...interface{}) string {
	file, line := getCaller()

	var b strings.Builder
	if l.withLevel {
		b.WriteString("[")
		b.WriteString(GetLevelName(level))
		b.WriteString("] ")
	}
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "[%s:%d] ", file, line)
	fmt.Fprintf(&b, format, v...)
	return b.String()
}

func (l *Logger) logf(level Level, format string, v ...interface{}) {
	if level <= l.level {
		l.stdLogger.Print(l.formatMessage(level, format, v...))
	}
}

// Error 打印错误日志
func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(LevelError, format, v...)
}

// Warn 打印警告日志
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(LevelWarn, format, v...)
}

// Info 打印信息日志
func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(LevelInfo, format, v...)
}

// Debug 打印调试日志
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(LevelDebug, format, v...)
}

// GetLevel 获取当前日志级别
func (l *Logger) GetLevel() Level {
	return l.level
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// GetLevelName 获取日志级别名称
func GetLevelName(level Level) string {
	switch level {
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel 解析日志级别，大小写不敏感
func ParseLevel(level string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "ERROR":
		return LevelError, nil
	case "WARN", "WARNING":
		return LevelWarn, nil
	case "INFO", "":
		return LevelInfo, nil
	case "DEBUG":
		return LevelDebug, nil
	default:
		return LevelInfo, fmt.Errorf("未知的日志级别: %s", level)
	}
}
