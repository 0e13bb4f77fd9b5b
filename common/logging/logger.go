package logging

import (
	"fmt"
	"os"
	"sync"
)

// Logger is a tagged, levelled printf logger.
type Logger interface {
	// With returns a child logger carrying an extra label.
	With(label, value string) Logger
	SetLabel(label, value string)

	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Notice(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
	// Critical logs, flushes every output and terminates the process.
	Critical(format string, args ...interface{})
}

var _ Logger = (*logger)(nil)

// exit is swapped out by tests.
var (
	osExit = os.Exit
	exit   = osExit
)

type logger struct {
	mu        sync.RWMutex
	labels    labels
	threshold level
	out       output
}

// NewLogger returns an untagged logger.
func NewLogger() Logger {
	return NewLoggerTag("")
}

// NewLoggerTag returns a logger whose lines carry tag.
func NewLoggerTag(tag string) Logger {
	return newLogger(tag, thresholdFromConfig(), defaultOutput())
}

func newLogger(tag string, threshold level, out output) *logger {
	if !threshold.IsValid() {
		panic(fmt.Sprintf("invalid log threshold level %d, want (%d, %d)", threshold, firstLevel, lastLevel))
	}
	return &logger{
		labels:    labels{LabelTag: tag},
		threshold: threshold,
		out:       out,
	}
}

func (l *logger) With(label, value string) Logger {
	l.mu.RLock()
	m := l.labels.clone()
	l.mu.RUnlock()
	m[label] = value
	return &logger{labels: m, threshold: l.threshold, out: l.out}
}

func (l *logger) SetLabel(label, value string) {
	l.mu.Lock()
	l.labels[label] = value
	l.mu.Unlock()
}

func (l *logger) Debug(format string, args ...interface{}) {
	l.print(debugLevel, format, args...)
}

func (l *logger) Info(format string, args ...interface{}) {
	l.print(infoLevel, format, args...)
}

func (l *logger) Notice(format string, args ...interface{}) {
	l.print(noticeLevel, format, args...)
}

func (l *logger) Warn(format string, args ...interface{}) {
	l.print(warnLevel, format, args...)
}

func (l *logger) Error(format string, args ...interface{}) {
	l.print(errorLevel, format, args...)
}

func (l *logger) Critical(format string, args ...interface{}) {
	l.print(criticalLevel, format, args...)
	Finalize()
	exit(1)
}

// print is always called directly from a level method, so the call site is 3 frames up.
func (l *logger) print(lv level, format string, args ...interface{}) {
	if lv > l.threshold {
		return
	}
	l.mu.RLock()
	m := l.labels.clone()
	l.mu.RUnlock()

	m[labelPod] = hostName
	if m[LabelTag] == "" {
		m[LabelTag] = hostName
	}
	if lv <= errorLevel {
		m.addCaller(3)
	}
	l.out.write(lv, m, fmt.Sprintf(format, args...)+"\n")
}
