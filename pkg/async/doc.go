// Package async runs background tasks with panic recovery, so a failing
// watcher or scheduler never takes the service down with it.
package async
