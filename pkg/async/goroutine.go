package async

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Go runs fn in its own goroutine with panic recovery. A panicking background
// task is logged with its stack instead of crashing the whole service; the
// audit trail must keep answering queries even if a watcher or scheduler dies.
func Go(log *logrus.Logger, task string, fn func() error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.WithFields(logrus.Fields{
					"task":  task,
					"panic": r,
					"stack": string(debug.Stack()),
				}).Error("background task panicked")
			}
		}()
		if err := fn(); err != nil {
			log.WithError(err).WithField("task", task).Warn("background task stopped with error")
		}
	}()
}
