package logging

import (
	log "github.com/sirupsen/logrus"
)

// Setup configures the process-wide logrus logger and tags every entry with the service name.
func Setup(service, level string) *log.Entry {
	log.SetFormatter(&log.JSONFormatter{})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	return log.WithField("service", service)
}
