package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/Domenick1991/skyfare/internal/store"
)

const (
	// BackendTypeKey is the environment variable naming the backend type.
	BackendTypeKey = "BACKEND_TYPE"

	// ServiceBindingsKey is the environment variable carrying the structured
	// service-binding document: a JSON object whose keys are bound service
	// names and whose values are connection credentials.
	ServiceBindingsKey = "SERVICE_BINDINGS"
)

// bindingSignatures maps a service-name prefix in the binding document to a
// backend-type identifier. The first bound service matching a known prefix
// decides the backend.
var bindingSignatures = []struct {
	prefix      string
	backendType string
}{
	{"elasticaching", "grid"},
	{"datacache", "grid"},
	{"redis", "grid"},
	{"mongo", "mongo"},
	{"postgres", "postgres"},
}

// Factory constructs a backend on first selection. Backends that dial out
// are only constructed when actually selected.
type Factory func(ctx context.Context) (store.Backend, error)

// Registry resolves which storage backend the process uses and hands out the
// single selected instance. Selection happens once; every later call observes
// the same backend.
type Registry struct {
	mu          sync.Mutex
	log         *zap.SugaredLogger
	factories   map[string]Factory
	defaultName string
	selected    store.Backend
}

var instance atomic.Pointer[Registry]
var instanceMu sync.Mutex

// Instance returns the process-wide registry, constructing it on first use.
// First caller wins; concurrent first callers block until construction
// completes and then read the same singleton.
func Instance() *Registry {
	if r := instance.Load(); r != nil {
		return r
	}
	instanceMu.Lock()
	defer instanceMu.Unlock()
	if r := instance.Load(); r != nil {
		return r
	}
	r := New(zap.NewNop().Sugar())
	instance.Store(r)
	return r
}

// New builds an empty registry. Most callers want Instance; New exists so
// tests do not share singleton state.
func New(log *zap.SugaredLogger) *Registry {
	return &Registry{
		log:       log,
		factories: make(map[string]Factory),
	}
}

// UseLogger replaces the registry logger. Instance starts with a no-op
// logger because the singleton can be constructed before logging is set up.
func (r *Registry) UseLogger(log *zap.SugaredLogger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = log
}

// Register adds a backend implementation under its declared identifier.
// Matching is case-insensitive.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// SetDefault marks the implementation used when nothing selects a backend.
func (r *Registry) SetDefault(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultName = strings.ToLower(name)
}

// ResolveType determines the backend-type identifier, in order of
// precedence: the explicitly configured identifier, the BACKEND_TYPE
// environment variable, the service-binding document, then empty (meaning
// the ambient default applies).
func (r *Registry) ResolveType(explicit string) string {
	if explicit != "" {
		r.log.Infow("backend type from configuration", "type", explicit)
		return explicit
	}
	if t := os.Getenv(BackendTypeKey); t != "" {
		r.log.Infow("backend type from environment", "type", t)
		return t
	}
	if t := r.scanServiceBindings(os.Getenv(ServiceBindingsKey)); t != "" {
		return t
	}
	r.log.Warn("cannot determine backend type, using default implementation")
	return ""
}

func (r *Registry) scanServiceBindings(doc string) string {
	if doc == "" {
		return ""
	}
	var bindings map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &bindings); err != nil {
		r.log.Warnw("unparsable service bindings document", "error", err)
		return ""
	}

	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		lower := strings.ToLower(name)
		for _, sig := range bindingSignatures {
			if strings.HasPrefix(lower, sig.prefix) {
				r.log.Infow("backend type from service binding", "service", name, "type", sig.backendType)
				return sig.backendType
			}
		}
	}
	return ""
}

// Select resolves the backend type and returns the selected implementation,
// constructing it on first call. An unknown resolved type is a configuration
// error: the caller must treat it as fatal, not retryable.
func (r *Registry) Select(ctx context.Context, explicit string) (store.Backend, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selected != nil {
		return r.selected, nil
	}

	name := strings.ToLower(r.ResolveType(explicit))
	if name == "" {
		name = r.defaultName
	}
	if name == "" {
		return nil, fmt.Errorf("no backend selected and no default registered")
	}

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no backend registered for type %q", name)
	}

	backend, err := factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("construct backend %q: %w", name, err)
	}

	r.log.Infow("backend selected", "type", backend.Name())
	r.selected = backend
	return backend, nil
}

// Selected returns the backend chosen by Select, or nil before selection.
func (r *Registry) Selected() store.Backend {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected
}
