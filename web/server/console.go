package server

import (
	"fmt"
	"time"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// WebLogger mirrors render progress to the server log and to a client console
// channel
type WebLogger struct {
	renderID    string
	consoleChan chan<- ConsoleMessage
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, consoleChan chan<- ConsoleMessage) *WebLogger {
	return &WebLogger{
		renderID:    renderID,
		consoleChan: consoleChan,
	}
}

// Infof logs an informational message
func (wl *WebLogger) Infof(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logger.Infof("[%s] %s", wl.renderID, message)
	wl.send("info", message)
}

// Warningf logs a warning
func (wl *WebLogger) Warningf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logger.Warningf("[%s] %s", wl.renderID, message)
	wl.send("warning", message)
}

// Errorf logs an error
func (wl *WebLogger) Errorf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	logger.Errorf("[%s] %s", wl.renderID, message)
	wl.send("error", message)
}

// send never blocks; messages are dropped when the channel is full
func (wl *WebLogger) send(level, message string) {
	if wl.consoleChan == nil {
		return
	}

	select {
	case wl.consoleChan <- ConsoleMessage{
		Message:   message,
		Timestamp: time.Now(),
		Level:     level,
	}:
	default:
	}
}
