package logging

import (
	"fmt"
	"strings"
	"sync"

	"github.com/crowdstake/crowdstake-server/cache/cacher"
)

// output is a log sink.
type output interface {
	write(lv level, m labels, line string)
}

type multiOutput []output

func newMultiOutput(outputs ...output) multiOutput {
	var flat multiOutput
	for _, o := range outputs {
		if mo, ok := o.(multiOutput); ok {
			flat = append(flat, newMultiOutput(mo...)...)
			continue
		}
		if o != nil {
			flat = append(flat, o)
		}
	}
	return flat
}

func (o multiOutput) write(lv level, m labels, line string) {
	switch len(o) {
	case 0:
		return
	case 1:
		o[0].write(lv, m, line)
		return
	}
	var wg sync.WaitGroup
	for _, sub := range o {
		wg.Add(1)
		go func(sub output) {
			defer wg.Done()
			sub.write(lv, m, line)
		}(sub)
	}
	wg.Wait()
}

var defaultOut = cacher.NewConst(func() (output, error) {
	var outs []output
	if logToStdout {
		outs = append(outs, Stdout())
	}
	if logToStackdriver {
		sd, err := stackdriverOut.Get()
		if err != nil {
			return nil, err
		}
		outs = append(outs, sd)
	}
	if len(outs) == 0 {
		fmt.Println("no default log output configured")
	}
	return newMultiOutput(outs...), nil
})

func defaultOutput() output {
	return defaultOut.MustGet()
}

// stripColor removes ANSI escape sequences.
func stripColor(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\033' {
			sb.WriteByte(s[i])
			continue
		}
		for i < len(s) && s[i] != 'm' {
			i++
		}
	}
	return sb.String()
}
