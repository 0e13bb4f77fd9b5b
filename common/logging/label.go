package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/ttacon/chalk"
)

// LabelTag is the label naming the component a logger belongs to.
const LabelTag = "tag"

const (
	labelPod       = "pod"
	labelProcessID = "pid"
	labelGoID      = "go_id"
	labelFunc      = "func_name"
	labelFile      = "file_name"
	labelLine      = "line_number"
)

type labels map[string]string

func (m labels) clone() labels {
	c := make(labels, len(m)+6)
	for k, v := range m {
		c[k] = v
	}
	return c
}

// addCaller records process, goroutine and call site of the frame skip levels up.
func (m labels) addCaller(skip int) {
	m[labelProcessID] = strconv.Itoa(os.Getpid())

	stack := make([]byte, 64)
	stack = stack[:runtime.Stack(stack, false)]
	if fields := bytes.Fields(stack); len(fields) >= 2 {
		m[labelGoID] = string(fields[1])
	} else {
		m[labelGoID] = "-1"
	}

	fn, file, line := "???", "???", -1
	if pc, f, l, ok := runtime.Caller(skip); ok {
		if rf := runtime.FuncForPC(pc); rf != nil {
			fn = rf.Name()
		}
		file, line = filepath.Base(f), l
	}
	m[labelFunc] = fn + "()"
	m[labelFile] = file
	m[labelLine] = strconv.Itoa(line)
}

var (
	funcStyle = chalk.Cyan.NewStyle()
	fileStyle = chalk.Magenta.NewStyle()
	lineStyle = chalk.Yellow.NewStyle()
)

// caller renders the call site recorded by addCaller.
func (m labels) caller(color bool) string {
	fn, file, line := m[labelFunc], m[labelFile], m[labelLine]
	if color {
		fn, file, line = funcStyle.Style(fn), fileStyle.Style(file), lineStyle.Style(line)
	}
	return fmt.Sprintf("PID_%s:GoID_%s:%s:%s:%s", m[labelProcessID], m[labelGoID], fn, file, line)
}
