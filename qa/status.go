package qa

import "fmt"

// Status is the verdict class of a single check result.
//
// Statuses are ordered by severity: a report's overall status is the worst
// status of its results.
type Status int8

const (
	DEBUG Status = iota
	PASS
	INFO
	SKIP
	WARN
	FAIL
	ERROR
)

// String returns the canonical upper-case name of the status.
func (s Status) String() string {
	switch s {
	case DEBUG:
		return "DEBUG"
	case PASS:
		return "PASS"
	case INFO:
		return "INFO"
	case SKIP:
		return "SKIP"
	case WARN:
		return "WARN"
	case FAIL:
		return "FAIL"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Message is a (code, human text) pair. The code is a stable identifier used
// as the key for profile overrides; PASS messages frequently have none.
type Message struct {
	Code string
	Text string
}

func (m Message) String() string {
	if m.Code == "" {
		return m.Text
	}
	return fmt.Sprintf("[%s] %s", m.Code, m.Text)
}

// Result is one emitted verdict of a check. A check may yield zero or more
// results.
type Result struct {
	Status  Status
	Message Message
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %s", r.Status, r.Message)
}

// Pass returns a PASS result with a plain message.
func Pass(text string) Result {
	return Result{Status: PASS, Message: Message{Text: text}}
}

// Passf returns a PASS result carrying a message code.
func Passf(code, format string, a ...any) Result {
	return Result{Status: PASS, Message: Message{Code: code, Text: fmt.Sprintf(format, a...)}}
}

// Failf returns a FAIL result with the given message code.
func Failf(code, format string, a ...any) Result {
	return Result{Status: FAIL, Message: Message{Code: code, Text: fmt.Sprintf(format, a...)}}
}

// Warnf returns a WARN result with the given message code.
func Warnf(code, format string, a ...any) Result {
	return Result{Status: WARN, Message: Message{Code: code, Text: fmt.Sprintf(format, a...)}}
}

// Errorf returns an ERROR result with the given message code.
func Errorf(code, format string, a ...any) Result {
	return Result{Status: ERROR, Message: Message{Code: code, Text: fmt.Sprintf(format, a...)}}
}

// Infof returns an INFO result with the given message code.
func Infof(code, format string, a ...any) Result {
	return Result{Status: INFO, Message: Message{Code: code, Text: fmt.Sprintf(format, a...)}}
}

// Skipf returns a SKIP result with the given message code.
func Skipf(code, format string, a ...any) Result {
	return Result{Status: SKIP, Message: Message{Code: code, Text: fmt.Sprintf(format, a...)}}
}

// Worst returns the most severe status among the results, PASS for none.
func Worst(results []Result) Status {
	worst := PASS
	for _, r := range results {
		if r.Status > worst {
			worst = r.Status
		}
	}
	return worst
}
