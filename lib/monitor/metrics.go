package monitor

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

type cycleMetrics struct {
	keywords    int
	fetchErrors int
	anomalies   int
	notified    int
	errored     int
}

func (c *cycleMetrics) report(log *zap.SugaredLogger, cycleStartTime time.Time) {
	args := make([]any, 0)
	if c.fetchErrors != 0 {
		args = append(args, "fetch_errors", c.fetchErrors)
	}
	if c.anomalies != 0 {
		args = append(args, "anomalies", c.anomalies)
	}
	if c.notified != 0 {
		args = append(args, "processed", c.notified)
	}
	if c.errored != 0 {
		args = append(args, "errored", c.errored)
	}

	elapsed := time.Now().UTC().Sub(cycleStartTime)
	args = append(args, "elapsed_msecs", int(elapsed.Milliseconds()))

	log.Infow(fmt.Sprintf("Checked %d keywords", c.keywords), args...)
}
