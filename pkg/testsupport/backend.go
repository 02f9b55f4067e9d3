package testsupport

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// ErrNotScripted is returned by Backend for calls without a scripted reply.
var ErrNotScripted = errors.New("testsupport: backend call not scripted")

// Call records one request received by Backend.
type Call struct {
	Op          string
	Description string
	FormID      string
	Submission  schema.Submission
}

// Backend is a scripted in-memory backend. Each operation pops the next
// queued reply; a reply may carry a gate channel that blocks the call until
// closed, which lets tests interleave operations deterministically.
type Backend struct {
	mu       sync.Mutex
	calls    []Call
	creates  []reply[schema.CreateFormResult]
	validate []reply[schema.ValidationResult]
	recovers []reply[schema.Recovery]
	stats    []reply[schema.Analytics]
	arrived  chan string
}

type reply[T any] struct {
	value T
	err   error
	gate  <-chan struct{}
}

// NewBackend constructs an empty scripted backend.
func NewBackend() *Backend {
	return &Backend{arrived: make(chan string, 64)}
}

// Arrived yields the operation name of every request as it is received.
func (b *Backend) Arrived() <-chan string {
	return b.arrived
}

// OnCreate queues a create_form reply.
func (b *Backend) OnCreate(result schema.CreateFormResult, err error, gate <-chan struct{}) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.creates = append(b.creates, reply[schema.CreateFormResult]{value: result, err: err, gate: gate})
	return b
}

// OnValidate queues a validate_submission reply.
func (b *Backend) OnValidate(result schema.ValidationResult, err error, gate <-chan struct{}) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validate = append(b.validate, reply[schema.ValidationResult]{value: result, err: err, gate: gate})
	return b
}

// OnRecover queues a recover reply.
func (b *Backend) OnRecover(result schema.Recovery, err error, gate <-chan struct{}) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.recovers = append(b.recovers, reply[schema.Recovery]{value: result, err: err, gate: gate})
	return b
}

// OnAnalytics queues an analytics reply.
func (b *Backend) OnAnalytics(result schema.Analytics, err error, gate <-chan struct{}) *Backend {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stats = append(b.stats, reply[schema.Analytics]{value: result, err: err, gate: gate})
	return b
}

// Calls returns the recorded requests in arrival order.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Call, len(b.calls))
	copy(out, b.calls)
	return out
}

// Ops returns the recorded operation names in arrival order.
func (b *Backend) Ops() []string {
	calls := b.Calls()
	out := make([]string, len(calls))
	for idx, call := range calls {
		out[idx] = call.Op
	}
	return out
}

// CreateForm implements session.Backend.
func (b *Backend) CreateForm(ctx context.Context, description string) (schema.CreateFormResult, error) {
	next, ok := pop(b, &b.creates, Call{Op: "create_form", Description: description})
	return await(ctx, next, ok)
}

// Validate implements session.Backend.
func (b *Backend) Validate(ctx context.Context, id schema.FormID, submission schema.Submission) (schema.ValidationResult, error) {
	next, ok := pop(b, &b.validate, Call{Op: "validate_submission", FormID: id.String(), Submission: submission})
	return await(ctx, next, ok)
}

// Recover implements session.Backend.
func (b *Backend) Recover(ctx context.Context, id schema.FormID, submission schema.Submission) (schema.Recovery, error) {
	next, ok := pop(b, &b.recovers, Call{Op: "recover", FormID: id.String(), Submission: submission})
	return await(ctx, next, ok)
}

// Analytics implements session.Backend.
func (b *Backend) Analytics(ctx context.Context, id schema.FormID) (schema.Analytics, error) {
	next, ok := pop(b, &b.stats, Call{Op: "analytics", FormID: id.String()})
	return await(ctx, next, ok)
}

func pop[T any](b *Backend, queue *[]reply[T], call Call) (reply[T], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, call)
	select {
	case b.arrived <- call.Op:
	default:
	}
	if len(*queue) == 0 {
		return reply[T]{}, false
	}
	next := (*queue)[0]
	*queue = (*queue)[1:]
	return next, true
}

func await[T any](ctx context.Context, next reply[T], ok bool) (T, error) {
	var zero T
	if !ok {
		return zero, ErrNotScripted
	}
	if next.gate != nil {
		select {
		case <-next.gate:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return next.value, next.err
}
