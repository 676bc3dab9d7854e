// Package enginetest provides an in-memory format engine for tests.
package enginetest

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
)

// Field is an in-memory field definition.
type Field struct {
	Name string
	Type format.ElementType
	SPF  uint
	// Samples is a typed slice matching Type, e.g. []int16 for TypeInt16.
	Samples any
	// Err, when set, is returned by GetData for this field.
	Err error
}

// Dirfile is an in-memory dirfile.
type Dirfile struct {
	Fields  []Field
	NFrames int64
}

// Engine serves in-memory dirfiles keyed by path.
type Engine struct {
	mu       sync.Mutex
	dirfiles map[string]*Dirfile
	opened   int
	closed   int

	// OpenErr, when set, is returned by every Open call.
	OpenErr error
}

var _ engine.Engine = (*Engine)(nil)

// New creates an engine without dirfiles.
func New() *Engine {
	return &Engine{dirfiles: make(map[string]*Dirfile)}
}

// Add registers d under path.
func (e *Engine) Add(path string, d *Dirfile) *Engine {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dirfiles[path] = d

	return e
}

// Opened returns the number of handles opened so far.
func (e *Engine) Opened() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opened
}

// Closed returns the number of Close calls that released a handle.
func (e *Engine) Closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.closed
}

func (e *Engine) Open(path string, flags engine.OpenFlag) (engine.Handle, error) {
	if flags != engine.ReadOnly {
		return nil, errs.ErrReadOnly
	}
	if e.OpenErr != nil {
		return nil, e.OpenErr
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	d, ok := e.dirfiles[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoFormatFile, path)
	}
	e.opened++

	return &handle{engine: e, dirfile: d}, nil
}

type handle struct {
	engine  *Engine
	dirfile *Dirfile
	closed  bool
}

func (h *handle) NFields() uint {
	return uint(len(h.dirfile.Fields))
}

func (h *handle) NFrames() int64 {
	return h.dirfile.NFrames
}

func (h *handle) FieldList() []string {
	names := make([]string, 0, len(h.dirfile.Fields))
	for _, f := range h.dirfile.Fields {
		names = append(names, f.Name)
	}

	return names
}

func (h *handle) SPF(field string) (uint, error) {
	f, err := h.lookup(field)
	if err != nil {
		return 0, err
	}

	return f.SPF, nil
}

func (h *handle) NativeType(field string) (format.ElementType, error) {
	f, err := h.lookup(field)
	if err != nil {
		return format.TypeNull, err
	}

	return f.Type, nil
}

// GetData copies the requested run of Samples into out with reflection, so
// any slice type pairing can be exercised.
func (h *handle) GetData(field string, req engine.Request, out any) (int, error) {
	f, err := h.lookup(field)
	if err != nil {
		return 0, err
	}
	if f.Err != nil {
		return 0, f.Err
	}

	count := req.Count(f.SPF)
	if _, err := engine.CheckBuffer(f.Type, out, count); err != nil {
		return 0, err
	}

	src := reflect.ValueOf(f.Samples)
	start := req.Start(f.SPF)
	if f.Samples == nil || start < 0 || start >= int64(src.Len()) {
		return 0, nil
	}

	end := min(start+int64(count), int64(src.Len()))
	n := reflect.Copy(reflect.ValueOf(out), src.Slice(int(start), int(end)))

	return n, nil
}

func (h *handle) Close() error {
	if h.closed {
		return fmt.Errorf("handle closed twice")
	}
	h.closed = true

	h.engine.mu.Lock()
	h.engine.closed++
	h.engine.mu.Unlock()

	return nil
}

func (h *handle) lookup(field string) (*Field, error) {
	if h.closed {
		return nil, errs.ErrClosed
	}

	for i := range h.dirfile.Fields {
		if h.dirfile.Fields[i].Name == field {
			return &h.dirfile.Fields[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrFieldNotFound, field)
}
