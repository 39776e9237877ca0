package scheduler

import (
	"fmt"

	"github.com/wonny/liga/backend/pkg/logger"
)

// cronLogger adapts logger.Logger to cron.Logger.
// cron's Info lines (wake, run, skip) go to debug.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.WithFields(fieldsOf(keysAndValues)).Debug("cron: " + msg)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.WithError(err).WithFields(fieldsOf(keysAndValues)).Error("cron: " + msg)
}

// fieldsOf turns cron's alternating key/value list into fields
func fieldsOf(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
