// Package logging builds the zap logger used across navsphere. Loggers are
// returned to the caller and passed down explicitly; there is no global.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output targets.
const (
	OutputStderr = "stderr"
	OutputStdout = "stdout"
	OutputFile   = "file"
)

// Conf holds logger options.
type Conf struct {
	Output     string `mapstructure:"output" yaml:"output"`
	Path       string `mapstructure:"path" yaml:"path"`
	Filename   string `mapstructure:"filename" yaml:"filename,omitempty"`
	Level      string `mapstructure:"level" yaml:"level"`
	RotateSize int    `mapstructure:"rotate_size" yaml:"rotate_size,omitempty"` // MB per file
	RotateNum  int    `mapstructure:"rotate_num" yaml:"rotate_num,omitempty"`   // rotated files kept
	KeepDays   int    `mapstructure:"keep_days" yaml:"keep_days,omitempty"`
}

// Defaults returns the configuration used when none is given: warnings and
// above on stderr, so command output on stdout stays clean.
func Defaults() Conf {
	return Conf{
		Output:     OutputStderr,
		Path:       "./logs",
		Filename:   "navsphere.log",
		Level:      "warn",
		RotateSize: 100,
		RotateNum:  10,
		KeepDays:   7,
	}
}

// Validate checks the output target and fills rotation defaults for file
// output.
func (c *Conf) Validate() error {
	switch c.Output {
	case "", OutputStderr, OutputStdout:
	case OutputFile:
		if c.Path == "" {
			return fmt.Errorf("log path is required when output is %q", OutputFile)
		}
		d := Defaults()
		if c.Filename == "" {
			c.Filename = d.Filename
		}
		if c.RotateSize <= 0 {
			c.RotateSize = d.RotateSize
		}
		if c.RotateNum <= 0 {
			c.RotateNum = d.RotateNum
		}
		if c.KeepDays <= 0 {
			c.KeepDays = d.KeepDays
		}
	default:
		return fmt.Errorf("unknown log output %q", c.Output)
	}
	return nil
}

// New builds a logger from conf.
func New(conf Conf) (*zap.Logger, error) {
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}

	var ws zapcore.WriteSyncer
	switch conf.Output {
	case OutputStdout:
		ws = zapcore.AddSync(os.Stdout)
	case OutputFile:
		ws = zapcore.AddSync(fileWriter(conf))
	default:
		ws = zapcore.AddSync(os.Stderr)
	}

	core := zapcore.NewCore(encoder(), ws, ParseLevel(conf.Level))
	return zap.New(core, zap.AddCaller()), nil
}

// NewWriter builds a logger that writes to w. Tests and commands that
// capture output use it.
func NewWriter(w io.Writer, level string) *zap.Logger {
	core := zapcore.NewCore(encoder(), zapcore.AddSync(w), ParseLevel(level))
	return zap.New(core)
}

func fileWriter(conf Conf) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(conf.Path, conf.Filename),
		MaxSize:    conf.RotateSize,
		MaxBackups: conf.RotateNum,
		MaxAge:     conf.KeepDays,
		Compress:   true,
	}
}

func encoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "time"
	cfg.LevelKey = "level"
	cfg.CallerKey = "caller"
	cfg.MessageKey = "msg"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeTime = timeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05"))
}

// ParseLevel converts a level name, in any case, to a zap level. Unknown
// names are info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
