package log

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const logFileEnvKey = "SKEWPATCH_LOG_FILE"

var (
	atomicLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	output      = &sink{}
	base        *zap.Logger
	sugar       *zap.SugaredLogger
)

// sink forwards to out, or buffers while held.
type sink struct {
	mu   sync.Mutex
	out  zapcore.WriteSyncer
	held *bytes.Buffer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held != nil {
		return s.held.Write(p)
	}
	return s.out.Write(p)
}

func (s *sink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held != nil {
		return nil
	}
	return s.out.Sync()
}

func init() {
	// stdout carries the list of affected files, keep it clean.
	output.out = zapcore.Lock(os.Stderr)
	if logFile := os.Getenv(logFileEnvKey); logFile != "" {
		ws, _, err := zap.Open(logFile)
		if err != nil {
			panic(fmt.Sprintf("failed to open log file: %v", err))
		}
		output.out = ws
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, output, atomicLevel)
	base = zap.New(core, zap.Development(), zap.AddCaller(), zap.AddCallerSkip(1), zap.ErrorOutput(output))
	sugar = base.Sugar()
}

// SetVerbose switches between debug and warn level.
func SetVerbose(verbose bool) {
	if verbose {
		atomicLevel.SetLevel(zapcore.DebugLevel)
		return
	}
	atomicLevel.SetLevel(zapcore.WarnLevel)
}

// Hold buffers log output until the returned release func is called,
// which writes the buffered entries out. Used while the spinner owns
// the terminal.
func Hold() (release func()) {
	output.mu.Lock()
	output.held = &bytes.Buffer{}
	output.mu.Unlock()

	return func() {
		output.mu.Lock()
		defer output.mu.Unlock()
		if output.held == nil {
			return
		}
		held := output.held
		output.held = nil
		_, _ = output.out.Write(held.Bytes())
	}
}

func Sync() {
	_ = base.Sync()
}

func Debug(format string, args ...any) {
	sugar.Debugf(format, args...)
}

func Info(format string, args ...any) {
	sugar.Infof(format, args...)
}

func Warn(format string, args ...any) {
	sugar.Warnf(format, args...)
}

func Error(format string, args ...any) {
	sugar.Errorf(format, args...)
}

// With returns a sugared logger carrying the given key/value pairs.
func With(args ...any) *zap.SugaredLogger {
	return base.WithOptions(zap.AddCallerSkip(-1)).Sugar().With(args...)
}
