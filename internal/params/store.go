// Package params holds the live-editable scene parameters: named numeric and
// boolean fields with declared ranges, clamped writes and change listeners.
package params

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"piggy-viewer/internal/logger"
)

var (
	ErrUnknownParam  = errors.New("unknown parameter")
	ErrKindMismatch  = errors.New("parameter kind mismatch")
	ErrDuplicateName = errors.New("duplicate parameter")
)

// Kind is the value type of a field.
type Kind int

const (
	Number Kind = iota
	Bool
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case Bool:
		return "bool"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Field declares one parameter. Min and Max only apply to Number fields.
type Field struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Group string  `json:"group"`
	Kind  Kind    `json:"kind"`
	Min   float64 `json:"min,omitempty"`
	Max   float64 `json:"max,omitempty"`
}

// Clamp limits v to the field's range.
func (f Field) Clamp(v float64) float64 {
	return math.Min(math.Max(v, f.Min), f.Max)
}

// Change is a request to set, or a notification that a parameter took, a value.
type Change struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Listener receives the new value of a parameter after it changed.
type Listener func(name string, value any)

type entry struct {
	field Field
	num   float64
	on    bool

	listeners []Listener
}

func (e *entry) value() any {
	if e.field.Kind == Bool {
		return e.on
	}
	return e.num
}

// Store is a set of parameters. Reads are safe from any goroutine; writes and
// listener callbacks happen on the goroutine that calls Set.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entry
	all     []Listener
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// AddNumber declares a numeric field. The initial value is clamped to [min, max].
func (s *Store) AddNumber(name, label, group string, min, max, initial float64) error {
	if min > max {
		return fmt.Errorf("parameter %q: min %v > max %v", name, min, max)
	}
	f := Field{Name: name, Label: label, Group: group, Kind: Number, Min: min, Max: max}
	return s.add(&entry{field: f, num: f.Clamp(initial)})
}

// AddBool declares a boolean field.
func (s *Store) AddBool(name, label, group string, initial bool) error {
	f := Field{Name: name, Label: label, Group: group, Kind: Bool}
	return s.add(&entry{field: f, on: initial})
}

func (s *Store) add(e *entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.field.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, e.field.Name)
	}
	s.entries[e.field.Name] = e
	s.order = append(s.order, e.field.Name)
	return nil
}

// Fields returns the declared fields in declaration order.
func (s *Store) Fields() []Field {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Field, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.entries[name].field)
	}
	return out
}

// Field returns the declaration of name.
func (s *Store) Field(name string) (Field, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return Field{}, false
	}
	return e.field, true
}

// Groups returns the distinct field groups in first-use order.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var groups []string
	seen := map[string]bool{}
	for _, name := range s.order {
		g := s.entries[name].field.Group
		if !seen[g] {
			seen[g] = true
			groups = append(groups, g)
		}
	}
	return groups
}

// Get returns the current value of name: a float64 or a bool.
func (s *Store) Get(name string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	return e.value(), nil
}

// Number returns the value of a numeric field.
func (s *Store) Number(name string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if e.field.Kind != Number {
		return 0, fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, e.field.Kind)
	}
	return e.num, nil
}

// Bool returns the value of a boolean field.
func (s *Store) Bool(name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	if e.field.Kind != Bool {
		return false, fmt.Errorf("%w: %q is %s", ErrKindMismatch, name, e.field.Kind)
	}
	return e.on, nil
}

// Snapshot returns every current value keyed by name.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.entries))
	for name, e := range s.entries {
		out[name] = e.value()
	}
	return out
}

// Set writes v to name. Numbers are clamped to the field range. Writing the
// current value is a no-op and notifies nobody.
func (s *Store) Set(name string, v any) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}

	changed := false
	switch e.field.Kind {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q wants bool, got %T", ErrKindMismatch, name, v)
		}
		changed = b != e.on
		e.on = b
	case Number:
		f, ok := toFloat(v)
		if !ok {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q wants number, got %T", ErrKindMismatch, name, v)
		}
		if math.IsNaN(f) {
			s.mu.Unlock()
			return fmt.Errorf("%w: %q: NaN is not a value", ErrKindMismatch, name)
		}
		f = e.field.Clamp(f)
		changed = f != e.num
		e.num = f
	}
	if !changed {
		s.mu.Unlock()
		return nil
	}

	value := e.value()
	listeners := append(append([]Listener(nil), e.listeners...), s.all...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(name, value)
	}
	return nil
}

// Subscribe registers fn to run after name changes.
func (s *Store) Subscribe(name string, fn Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	e.listeners = append(e.listeners, fn)
	return nil
}

// SubscribeAll registers fn to run after any parameter changes.
func (s *Store) SubscribeAll(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, fn)
}

// Apply sets every known name in values, in declaration order. Errors for
// individual parameters are joined; the remaining values are still applied.
func (s *Store) Apply(values map[string]any) error {
	var errs []error
	for _, f := range s.Fields() {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := s.Set(f.Name, v); err != nil {
			errs = append(errs, err)
		}
	}
	for name := range values {
		if _, ok := s.Field(name); !ok {
			errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownParam, name))
		}
	}
	return errors.Join(errs...)
}

// Drain applies every change already queued on ch without blocking and
// reports how many were read. Rejected changes are logged.
func (s *Store) Drain(ch <-chan Change) int {
	n := 0
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return n
			}
			n++
			if err := s.Set(c.Name, c.Value); err != nil {
				logger.Log.Warn("rejected parameter change", zap.String("name", c.Name), zap.Error(err))
			}
		default:
			return n
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
