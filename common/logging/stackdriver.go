package logging

import (
	"context"

	"cloud.google.com/go/logging"
	"github.com/crowdstake/crowdstake-server/cache/cacher"
	"github.com/crowdstake/crowdstake-server/common/config"
)

var stackdriverOut = cacher.NewConst(func() (*stackdriverOutput, error) {
	return newStackdriverOutput(context.Background(), config.GetString("SERVER_PROJECT_ID"), logName)
})

type stackdriverOutput struct {
	client *logging.Client
	logger *logging.Logger
}

func newStackdriverOutput(ctx context.Context, projectID, name string) (*stackdriverOutput, error) {
	client, err := logging.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	o := &stackdriverOutput{client: client}
	o.bind(name)
	return o, nil
}

// bind attaches the named log once a name is known.
func (o *stackdriverOutput) bind(name string) {
	if o.logger != nil || name == "" {
		return
	}
	o.logger = o.client.Logger(name)
}

func (o *stackdriverOutput) write(lv level, m labels, line string) {
	if o.logger == nil {
		return
	}
	o.logger.Log(logging.Entry{
		Severity: lv.Severity(),
		Labels:   m,
		Payload:  stripColor(line),
	})
}
