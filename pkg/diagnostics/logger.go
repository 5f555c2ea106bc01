package diagnostics

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TimeLayout is the timestamp layout of log lines
const TimeLayout = "[15:04:05]"

// NewLogger creates a console logger writing to w at the state's level.
// Verbose states also annotate entries with their caller and attach stack
// traces to errors.
func (s State) NewLogger(w io.Writer) *zap.Logger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.NameKey = zapcore.OmitKey
	if !s.Verbose {
		encoderConfig.CallerKey = zapcore.OmitKey
		encoderConfig.StacktraceKey = zapcore.OmitKey
	}

	sink := zapcore.AddSync(w)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, s.Level.zapLevel())

	opts := []zap.Option{zap.ErrorOutput(sink)}
	if s.Verbose {
		opts = append(opts, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return zap.New(core, opts...)
}

// Install makes logger the process-wide logger: zap.L, zap.S and the standard
// library's log package all write through it. The returned function restores
// the previous loggers.
func Install(logger *zap.Logger) (restore func()) {
	restoreGlobals := zap.ReplaceGlobals(logger)
	restoreStdLog := zap.RedirectStdLog(logger)
	return func() {
		restoreStdLog()
		restoreGlobals()
	}
}
