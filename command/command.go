// Package command is the port onto the generic command pipeline: named
// commands dispatched against a content item context, queryable ui state per
// command, and named pipelines run with free-form arguments. The editor
// controller only depends on the Registry interface; InProc is the
// in-process implementation used by the server and the tests.
package command

import (
	"fmt"
	"sync"

	"github.com/foomo/ribbon/content"
)

// State is the ui state of a command in a given context.
type State int

const (
	StateEnabled State = iota
	StateDisabled
	StateHidden
)

// Message is an inbound client message: a name plus string-keyed arguments.
type Message struct {
	Name      string
	Sender    string
	Arguments map[string]string
}

// Argument returns a message argument, or "" when absent.
func (m Message) Argument(key string) string {
	return m.Arguments[key]
}

// Context is the context a command executes in.
type Context struct {
	Item         *content.Item
	Parameters   map[string]string
	RibbonSource string
}

// Registry resolves and executes commands and pipelines.
type Registry interface {
	// Has reports whether a command is registered.
	Has(name string) bool
	// QueryState returns the ui state of a command. Unknown commands are
	// hidden.
	QueryState(name string, ctx Context) State
	// Dispatch executes the command named by a message against an item. The
	// item may be nil; the command decides whether that is an error.
	Dispatch(msg Message, item *content.Item) error
	// Run executes a named pipeline with free-form arguments.
	Run(pipeline string, args any) error
}

// Handler executes a dispatched command.
type Handler func(msg Message, item *content.Item) error

// StateFunc computes the ui state of a command in a context.
type StateFunc func(ctx Context) State

// PipelineFunc executes a named pipeline.
type PipelineFunc func(args any) error

// InProc is a process-local Registry.
type InProc struct {
	mu        sync.RWMutex
	handlers  map[string]Handler
	states    map[string]StateFunc
	pipelines map[string]PipelineFunc
}

// NewInProc returns an empty registry.
func NewInProc() *InProc {
	return &InProc{
		handlers:  map[string]Handler{},
		states:    map[string]StateFunc{},
		pipelines: map[string]PipelineFunc{},
	}
}

// Register adds a command. The state function may be nil, which makes the
// command always enabled.
func (r *InProc) Register(name string, handler Handler, state StateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
	if state != nil {
		r.states[name] = state
	}
}

// RegisterPipeline adds a named pipeline.
func (r *InProc) RegisterPipeline(name string, pipeline PipelineFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pipelines[name] = pipeline
}

func (r *InProc) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

func (r *InProc) QueryState(name string, ctx Context) State {
	r.mu.RLock()
	stateFunc, hasState := r.states[name]
	_, hasHandler := r.handlers[name]
	r.mu.RUnlock()
	if !hasHandler {
		return StateHidden
	}
	if !hasState {
		return StateEnabled
	}
	return stateFunc(ctx)
}

func (r *InProc) Dispatch(msg Message, item *content.Item) error {
	r.mu.RLock()
	handler, ok := r.handlers[msg.Name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown command %q", msg.Name)
	}
	return handler(msg, item)
}

func (r *InProc) Run(pipeline string, args any) error {
	r.mu.RLock()
	pipelineFunc, ok := r.pipelines[pipeline]
	r.mu.RUnlock()
	if !ok {
		// Missing pipelines are not an error: the panel simply stays empty
		// when no notification pipeline is configured.
		return nil
	}
	return pipelineFunc(args)
}
