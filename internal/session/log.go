package session

import (
	"fmt"
	"time"
)

// ArchiveThreshold is the entry count past which a new query resets the log.
const ArchiveThreshold = 20

var (
	initialLog  = []string{"> SYSTEM_READY...", "> WAITING_FOR_INPUT_SIGNAL..."}
	archivedLog = []string{"> HISTORY_ARCHIVED...", "> INITIALIZING_NEW_QUERY..."}
	uploadLog   = []string{"> FILE_UPLOAD_DETECTED..."}
)

// InitialLog returns a copy of the console contents of a fresh session.
func InitialLog() []string {
	return append([]string(nil), initialLog...)
}

// consoleLog is the ordered trace of processing steps. It is not safe for
// concurrent use; the controller guards it.
type consoleLog struct {
	entries []string
	now     func() time.Time
}

func newConsoleLog(now func() time.Time) *consoleLog {
	return &consoleLog{entries: InitialLog(), now: now}
}

func (l *consoleLog) add(msg string) {
	l.entries = append(l.entries, fmt.Sprintf("[%s] %s", l.now().Format("15:04:05"), msg))
}

func (l *consoleLog) reset(lines []string) {
	l.entries = append(l.entries[:0:0], lines...)
}

// beginQuery archives an oversized log or marks the start of a new sequence.
func (l *consoleLog) beginQuery() {
	if len(l.entries) > ArchiveThreshold {
		l.reset(archivedLog)
		return
	}
	l.add("> INITIALIZING_QUERY_SEQUENCE...")
}

func (l *consoleLog) snapshot() []string {
	return append([]string(nil), l.entries...)
}
