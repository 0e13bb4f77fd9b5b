package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/crowdstake/crowdstake-server/cache/cacher"
	"github.com/crowdstake/crowdstake-server/common/utils"
	"github.com/crowdstake/crowdstake-server/env"
	"github.com/ttacon/chalk"
)

var (
	levelStyles = map[level]chalk.Style{
		debugLevel:    chalk.ResetColor.NewStyle(),
		infoLevel:     chalk.Green.NewStyle(),
		noticeLevel:   chalk.Cyan.NewStyle(),
		warnLevel:     chalk.Yellow.NewStyle(),
		errorLevel:    chalk.Red.NewStyle(),
		criticalLevel: chalk.Magenta.NewStyle(),
	}
	timeStyle = chalk.ResetColor.NewStyle().WithTextStyle(chalk.Inverse)
	tagStyle  = chalk.ResetColor.NewStyle().WithBackground(chalk.Blue)

	stdout = cacher.NewConst(func() (*stdOutput, error) {
		return newStdOutput(os.Stdout, !env.IsCI()), nil
	})
)

// Stdout returns the shared stdout output.
func Stdout() output {
	return stdout.MustGet()
}

// stdOutput formats lines on the caller goroutine and writes them from a worker so a
// slow terminal never blocks request handling.
type stdOutput struct {
	w      io.Writer
	color  bool
	queue  *utils.UnlimitedChannel[[]byte]
	closed chan struct{}
	once   sync.Once
}

func newStdOutput(w io.Writer, color bool) *stdOutput {
	o := &stdOutput{
		w:      w,
		color:  color,
		queue:  utils.NewUnlimitedChannel[[]byte](),
		closed: make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *stdOutput) format(lv level, m labels, line string) []byte {
	ts := time.Now().Format(utils.TimeFormat)
	sv := fmt.Sprintf("%6s", lv.String())
	tag := fmt.Sprintf("%16s", m[LabelTag])
	if lv <= errorLevel {
		line = m.caller(o.color) + ": " + line
	}
	if !o.color {
		return []byte(fmt.Sprintf("%s %s %s %s", ts, sv, tag, stripColor(line)))
	}
	return []byte(fmt.Sprintf("%s %s %s %s",
		timeStyle.Style(ts), levelStyles[lv].Style(sv), tagStyle.Style(tag), line))
}

func (o *stdOutput) write(lv level, m labels, line string) {
	b := o.format(lv, m, line)
	select {
	case o.queue.In() <- b:
	case <-o.queue.Done():
		_, _ = o.w.Write(b)
	}
}

func (o *stdOutput) run() {
	defer close(o.closed)
	for {
		select {
		case <-o.queue.Done():
			for _, b := range o.queue.Dump() {
				_, _ = o.w.Write(b)
			}
			return
		case b := <-o.queue.Out():
			if len(b) > 0 {
				_, _ = o.w.Write(b)
			}
		}
	}
}

// close stops the worker after draining everything queued so far.
func (o *stdOutput) close() {
	o.once.Do(o.queue.Close)
	<-o.closed
}
