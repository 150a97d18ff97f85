package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseResolve    Phase = "resolve"    // module-id resolution
	PhaseLoad       Phase = "load"       // source fetch and candidate probing
	PhaseExecute    Phase = "execute"    // module body compilation/execution
	PhaseInvalidate Phase = "invalidate" // hot-reload invalidation
	PhaseQueue      Phase = "queue"      // cross-goroutine job queue
	PhaseWatch      Phase = "watch"      // file change notification
	PhaseConfig     Phase = "config"     // bootstrap configuration
)

// Kind categorizes the error
type Kind string

const (
	KindResolution       Kind = "resolution_failure"
	KindMalformedRequest Kind = "malformed_request"
	KindSourceNotFound   Kind = "source_not_found"
	KindSourceRead       Kind = "source_read_failure"
	KindExecution        Kind = "execution_failure"
	KindThreadViolation  Kind = "thread_violation"
	KindQueueClosed      Kind = "queue_closed"
	KindInvalidConfig    Kind = "invalid_config"
	KindEngine           Kind = "engine"
	KindWatch            Kind = "watch_failure"
)

// Error is the structured error type used throughout the runtime
type Error struct {
	Cause      error
	Phase      Phase
	Kind       Kind
	Module     string
	Parent     string
	Request    string
	Candidates []string
	Detail     string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Module != "" {
		b.WriteString(": module ")
		b.WriteString(strconvQuote(e.Module))
	}

	if e.Detail != "" {
		if e.Module != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Request != "" {
		b.WriteString(" (request ")
		b.WriteString(strconvQuote(e.Request))
		if e.Parent != "" {
			b.WriteString(" from ")
			b.WriteString(strconvQuote(e.Parent))
		}
		b.WriteByte(')')
	}

	if len(e.Candidates) > 0 {
		b.WriteString("; tried:")
		for _, c := range e.Candidates {
			b.WriteString("\n  - ")
			b.WriteString(c)
		}
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

func strconvQuote(s string) string {
	return fmt.Sprintf("%q", s)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Convenience constructors for common error patterns

// ResolutionFailed creates an error for a request no resolver could
// turn into a usable id.
func ResolutionFailed(parent, request, detail string) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindResolution,
		Parent:  parent,
		Request: request,
		Detail:  detail,
	}
}

// MalformedRequest creates an error for a request a resolver claimed
// but could not parse.
func MalformedRequest(resolver, parent, request, detail string) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindMalformedRequest,
		Parent:  parent,
		Request: request,
		Detail:  fmt.Sprintf("%s resolver: %s", resolver, detail),
	}
}

// SourceNotFound creates an error after every expanded candidate
// reported not-found.
func SourceNotFound(parent, request string, candidates []string) *Error {
	return &Error{
		Phase:      PhaseLoad,
		Kind:       KindSourceNotFound,
		Parent:     parent,
		Request:    request,
		Candidates: candidates,
		Detail:     "no candidate resolved to source",
	}
}

// SourceRead creates an error for a provider that failed hard while
// reading a candidate.
func SourceRead(id string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindSourceRead,
		Module: id,
		Detail: "provider read failed",
		Cause:  cause,
	}
}

// ExecutionFailed creates an error for a module body that failed to
// compile or threw during execution.
func ExecutionFailed(id, parent, request string, candidates []string, cause error) *Error {
	return &Error{
		Phase:      PhaseExecute,
		Kind:       KindExecution,
		Module:     id,
		Parent:     parent,
		Request:    request,
		Candidates: candidates,
		Detail:     "module body failed",
		Cause:      cause,
	}
}

// ThreadViolation creates an error for an entrypoint called off the
// owner goroutine. Always fatal to the offending call, never to the
// runtime.
func ThreadViolation(owner, caller uint64) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindThreadViolation,
		Detail: fmt.Sprintf("runtime is owned by goroutine %d, called from goroutine %d", owner, caller),
	}
}

// QueueClosed creates an error for operations on a closed job queue.
func QueueClosed() *Error {
	return &Error{
		Phase:  PhaseQueue,
		Kind:   KindQueueClosed,
		Detail: "queue is closed",
	}
}

// InvalidConfig creates a bootstrap configuration error.
func InvalidConfig(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidConfig,
		Detail: detail,
		Cause:  cause,
	}
}

// EngineFailure creates an error for an engine-level operation that
// failed outside module execution.
func EngineFailure(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseExecute,
		Kind:   KindEngine,
		Detail: detail,
		Cause:  cause,
	}
}

// WatchFailure creates an error for watcher setup or event handling.
func WatchFailure(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseWatch,
		Kind:   KindWatch,
		Detail: detail,
		Cause:  cause,
	}
}
