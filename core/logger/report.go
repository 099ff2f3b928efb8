package logger

import (
	"encoding/json"
	"io"
	"sort"
)

// LogEntry is a decoded event log line.
type LogEntry struct {
	Level     string   `json:"level"`
	Message   string   `json:"msg"`
	SessionID string   `json:"session_id"`
	PID       int      `json:"pid"`
	JID       int      `json:"jid"`
	Status    string   `json:"status"`
	Signal    string   `json:"signal"`
	Command   []string `json:"command"`
	ExitCode  *int     `json:"exit_code"`
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries int        `json:"log_entries"`
	Sessions   StrCounter `json:"sessions"`
	Levels     StrCounter `json:"levels"`

	Commands   CommandReport    `json:"command_report"`
	Jobs       JobReport        `json:"job_report"`
	Foreground ForegroundReport `json:"foreground_report"`
}

func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	r.Levels.Increment(le.Level)
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	switch le.Message {
	case MsgJobSpawned:
		r.Commands.update(le)
	case MsgJobStatus, MsgJobRegistered:
		r.Jobs.update(le)
	case MsgSignal:
		r.Jobs.Signals.Increment(le.Signal)
	case MsgForegroundExit:
		r.Foreground.update(le)
	}
}

type CommandReport struct {
	Spawned      int        `json:"spawned"`
	CommandNames StrCounter `json:"command_names"`
}

func (r *CommandReport) update(le *LogEntry) {
	r.Spawned++
	if len(le.Command) > 0 {
		r.CommandNames.Increment(le.Command[0])
	}
}

type JobReport struct {
	// Statuses counts the status transitions recorded for tracked jobs.
	Statuses StrCounter `json:"statuses"`
	// Signals counts interactive signals forwarded to foreground jobs.
	Signals StrCounter `json:"forwarded_signals"`
}

func (r *JobReport) update(le *LogEntry) {
	r.Statuses.Increment(le.Status)
}

type ForegroundReport struct {
	Exited   int        `json:"exited"`
	Signaled StrCounter `json:"signaled"`
}

func (r *ForegroundReport) update(le *LogEntry) {
	if le.Signal != "" {
		r.Signaled.Increment(le.Signal)
		return
	}
	r.Exited++
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// Keys returns the counted strings in sorted order.
func (s *StrCounter) Keys() []string {
	var out []string
	for k := range s.internal {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}
