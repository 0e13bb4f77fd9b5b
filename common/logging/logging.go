package logging

import "github.com/crowdstake/crowdstake-server/common/config"

var (
	logToStdout      = config.GetBool("SERVER_LOG_TO_STDOUT", true)
	logToStackdriver = config.GetBool("SERVER_LOG_TO_STACKDRIVER", false)

	hostName = config.GetString("HOSTNAME", "localhost")
	logName  string
)

// Initialize names the process log. Call it before the first logger is created.
func Initialize(name string) {
	logName = name
	hostName = config.GetString("HOSTNAME", "localhost")
	if !logToStackdriver {
		return
	}
	stackdriverOut.MustGet().bind(logName)
}

// Finalize flushes and releases every loaded output.
func Finalize() {
	if stdout.IsLoaded() {
		stdout.MustGet().close()
		stdout.Clear()
	}
	if stackdriverOut.IsLoaded() {
		if err := stackdriverOut.MustGet().client.Close(); err != nil {
			panic(err)
		}
		stackdriverOut.Clear()
	}
	defaultOut.Clear()
}
