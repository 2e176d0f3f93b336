package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/crytic/symgen/logging/colors"
	"github.com/rs/zerolog"
)

// GlobalLogger describes a Logger that is disabled by default and is instantiated when the generator is created. Each
// package should create its own sub-logger from it via NewSubLogger.
var GlobalLogger = NewLogger(zerolog.Disabled)

// Logger describes a custom logging object that can log events to any arbitrary channel in structured, unstructured
// or unstructured-and-colorized format.
type Logger struct {
	// level describes the log level
	level zerolog.Level

	// context holds the key-value pairs added by NewSubLogger, so that loggers rebuilt after AddWriter keep them
	context []string

	// structuredLogger describes a logger that outputs JSON to structuredWriters
	structuredLogger zerolog.Logger

	// structuredWriters describes the channels that receive structured output
	structuredWriters []io.Writer

	// unstructuredLogger describes a logger that outputs plain text to unstructuredWriters
	unstructuredLogger zerolog.Logger

	// unstructuredWriters describes the channels that receive unstructured, uncolored output
	unstructuredWriters []io.Writer

	// unstructuredColorLogger describes a logger that outputs colorized text to unstructuredColorWriters
	unstructuredColorLogger zerolog.Logger

	// unstructuredColorWriters describes the channels that receive unstructured, colorized output
	unstructuredColorWriters []io.Writer
}

// LogFormat describes what format to log in
type LogFormat string

const (
	// STRUCTURED describes that logging should be done in structured JSON format
	STRUCTURED LogFormat = "structured"
	// UNSTRUCTURED describes that logging should be done in an unstructured format
	UNSTRUCTURED LogFormat = "unstructured"
)

// StructuredLogInfo describes a key-value mapping that can be used to log structured data
type StructuredLogInfo map[string]any

// NewLogger creates a new Logger with a specific log level and no writers. Writers are attached with AddWriter.
func NewLogger(level zerolog.Level) *Logger {
	return &Logger{
		level:                    level,
		context:                  make([]string, 0),
		structuredLogger:         zerolog.New(nil).Level(zerolog.Disabled),
		structuredWriters:        make([]io.Writer, 0),
		unstructuredLogger:       zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredWriters:      make([]io.Writer, 0),
		unstructuredColorLogger:  zerolog.New(nil).Level(zerolog.Disabled),
		unstructuredColorWriters: make([]io.Writer, 0),
	}
}

// NewSubLogger creates a new Logger with additional context in the form of a key-value pair. Each package is expected
// to hold its own sub-logger so that log output can be filtered by service.
func (l *Logger) NewSubLogger(key string, value string) *Logger {
	sub := &Logger{
		level:                    l.level,
		context:                  append(append(make([]string, 0, len(l.context)+2), l.context...), key, value),
		structuredWriters:        l.structuredWriters,
		unstructuredWriters:      l.unstructuredWriters,
		unstructuredColorWriters: l.unstructuredColorWriters,
	}
	sub.rebuild()
	return sub
}

// AddWriter adds a writer to the channels that receive log output in the given format. If colored is true and the
// format is UNSTRUCTURED, the output is colorized. Adding a writer twice is a no-op.
func (l *Logger) AddWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for _, w := range *writers {
		if w == writer {
			return
		}
	}
	*writers = append(*writers, writer)
	l.rebuild()
}

// RemoveWriter removes a writer from the channels that receive log output in the given format. If the writer was never
// added, this function is a no-op.
func (l *Logger) RemoveWriter(writer io.Writer, format LogFormat, colored bool) {
	writers := l.writersFor(format, colored)
	for i, w := range *writers {
		if w == writer {
			*writers = append((*writers)[:i:i], (*writers)[i+1:]...)
			l.rebuild()
			return
		}
	}
}

// writersFor returns the writer list which holds writers of the given format.
func (l *Logger) writersFor(format LogFormat, colored bool) *[]io.Writer {
	if format == STRUCTURED {
		return &l.structuredWriters
	}
	if colored {
		return &l.unstructuredColorWriters
	}
	return &l.unstructuredWriters
}

// rebuild recreates the underlying zerolog loggers from the writer lists, level and context.
func (l *Logger) rebuild() {
	withContext := func(logger zerolog.Logger) zerolog.Logger {
		ctx := logger.With()
		for i := 0; i+1 < len(l.context); i += 2 {
			ctx = ctx.Str(l.context[i], l.context[i+1])
		}
		return ctx.Logger()
	}

	l.structuredLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.structuredWriters) > 0 {
		l.structuredLogger = withContext(zerolog.New(zerolog.MultiLevelWriter(l.structuredWriters...)).Level(l.level).With().Timestamp().Logger())
	}

	l.unstructuredLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.unstructuredWriters) > 0 {
		consoleWriters := make([]io.Writer, len(l.unstructuredWriters))
		for i, w := range l.unstructuredWriters {
			consoleWriters[i] = formatUnstructuredWriter(w, l.level, false)
		}
		l.unstructuredLogger = withContext(zerolog.New(zerolog.MultiLevelWriter(consoleWriters...)).Level(l.level))
	}

	l.unstructuredColorLogger = zerolog.New(nil).Level(zerolog.Disabled)
	if len(l.unstructuredColorWriters) > 0 {
		consoleWriters := make([]io.Writer, len(l.unstructuredColorWriters))
		for i, w := range l.unstructuredColorWriters {
			consoleWriters[i] = formatUnstructuredWriter(w, l.level, true)
		}
		l.unstructuredColorLogger = withContext(zerolog.New(zerolog.MultiLevelWriter(consoleWriters...)).Level(l.level))
	}
}

// Level will get the log level of the Logger
func (l *Logger) Level() zerolog.Level {
	return l.level
}

// SetLevel will update the log level of the Logger
func (l *Logger) SetLevel(level zerolog.Level) {
	l.level = level
	l.rebuild()
}

// Trace is a wrapper function that will log a trace event
func (l *Logger) Trace(args ...any) {
	l.log(zerolog.TraceLevel, args...)
}

// Debug is a wrapper function that will log a debug event
func (l *Logger) Debug(args ...any) {
	l.log(zerolog.DebugLevel, args...)
}

// Info is a wrapper function that will log an info event
func (l *Logger) Info(args ...any) {
	l.log(zerolog.InfoLevel, args...)
}

// Warn is a wrapper function that will log a warning event
func (l *Logger) Warn(args ...any) {
	l.log(zerolog.WarnLevel, args...)
}

// Error is a wrapper function that will log an error event
func (l *Logger) Error(args ...any) {
	l.log(zerolog.ErrorLevel, args...)
}

// Panic is a wrapper function that will log a panic event and then panic
func (l *Logger) Panic(args ...any) {
	l.log(zerolog.PanicLevel, args...)
}

// log builds the messages for each output format and sends an event at the given level to every logger.
func (l *Logger) log(level zerolog.Level, args ...any) {
	// Build the messages and retrieve any error or associated structured log info
	colorMsg, plainMsg, err, info := buildMsgs(args...)

	// Panic events are sent last to the structured logger so every channel receives the message before unwinding
	events := []struct {
		event *zerolog.Event
		msg   string
	}{
		{l.unstructuredColorLogger.WithLevel(level), colorMsg},
		{l.unstructuredLogger.WithLevel(level), plainMsg},
		{l.structuredLogger.WithLevel(level), plainMsg},
	}

	for _, e := range events {
		if e.event == nil {
			continue
		}

		// Chain the error, with a stack trace in debug mode and below
		if err != nil {
			e.event = e.event.Err(err)
			if l.level <= zerolog.DebugLevel {
				e.event = e.event.Stack()
			}
		}

		// Chain the structured log info
		if info != nil {
			e.event = e.event.Any("info", info)
		}
		e.event.Msg(e.msg)
	}

	if level == zerolog.PanicLevel {
		panic(plainMsg)
	}
}

// buildMsgs takes a variadic list of arguments of any type and returns two strings and, optionally, an error and a
// StructuredLogInfo object. The first string is colorized for console output while the second is plain text for file
// and structured output. Color functions in the argument list switch the color context for the arguments that
// follow them.
func buildMsgs(args ...any) (string, string, error, StructuredLogInfo) {
	if len(args) == 0 {
		return "", "", nil, nil
	}

	colorCtx := colors.Reset
	colorOutput := make([]string, 0)
	plainOutput := make([]string, 0)
	var info StructuredLogInfo
	var err error

	for _, arg := range args {
		switch t := arg.(type) {
		case colors.ColorFunc:
			colorCtx = t
		case StructuredLogInfo:
			// Only one structured log info can be provided per message
			info = t
		case error:
			// Only one error can be provided per message
			err = t
		case *LogBuffer:
			c, p, _, _ := buildMsgs(t.Args()...)
			colorOutput = append(colorOutput, c)
			plainOutput = append(plainOutput, p)
		default:
			colorOutput = append(colorOutput, colorCtx(t))
			plainOutput = append(plainOutput, fmt.Sprintf("%v", t))
		}
	}

	return strings.Join(colorOutput, ""), strings.Join(plainOutput, ""), err, info
}

// formatUnstructuredWriter wraps a writer into a zerolog.ConsoleWriter with the symgen console formatting.
func formatUnstructuredWriter(writer io.Writer, level zerolog.Level, colored bool) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{Out: writer, NoColor: !colored}

	// Get rid of the timestamp for console output
	w.FormatTimestamp = func(i any) string {
		return ""
	}

	// Messages are colored by the caller through color functions, never by zerolog
	w.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fmt.Sprintf("%v", i)
	}

	// Use a custom prefix for each level
	w.FormatLevel = func(i any) string {
		s, _ := i.(string)
		parsed, err := zerolog.ParseLevel(s)
		if err != nil {
			return s
		}

		colorize := func(f colors.ColorFunc, v string) string {
			if !colored {
				return v
			}
			return f(v)
		}

		switch parsed {
		case zerolog.TraceLevel:
			return colorize(colors.CyanBold, zerolog.LevelTraceValue)
		case zerolog.DebugLevel:
			return colorize(colors.BlueBold, zerolog.LevelDebugValue)
		case zerolog.InfoLevel:
			return colorize(colors.GreenBold, colors.LEFT_ARROW)
		case zerolog.WarnLevel:
			return colorize(colors.YellowBold, zerolog.LevelWarnValue)
		case zerolog.ErrorLevel:
			return colorize(colors.RedBold, zerolog.LevelErrorValue)
		case zerolog.PanicLevel:
			return colorize(colors.RedBold, zerolog.LevelPanicValue)
		default:
			return s
		}
	}

	// Above debug level, the service fields are noise on the console
	if level > zerolog.DebugLevel {
		w.FieldsExclude = []string{"module", "service"}
	}

	return w
}
