package log

import (
	"log"
	"sync"
)

var (
	mu     sync.RWMutex
	logger HarnessLogger
)

// HarnessLogger is the sink all packages of the harness log through. Until
// SetLogger is called the standard library logger is used.
type HarnessLogger interface {
	Infof(format string, v ...interface{})
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

func SetLogger(harnessLogger HarnessLogger) {
	mu.Lock()
	defer mu.Unlock()
	logger = harnessLogger
}

func current() HarnessLogger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Infof(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, v...)
	} else {
		log.Printf("[INFO] "+format, v...)
	}
}

func Debugf(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, v...)
	} else {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Warnf(format string, v ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, v...)
	} else {
		log.Printf("[WARN] "+format, v...)
	}
}
