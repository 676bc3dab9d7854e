package native

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arloliu/dirfile/engine"
	"github.com/arloliu/dirfile/errs"
	"github.com/arloliu/dirfile/format"
	"github.com/arloliu/dirfile/internal/hash"
)

type handle struct {
	path      string
	logger    zerolog.Logger
	entries   []*entry
	index     map[uint64][]*entry
	names     []string
	reference *entry
	cache     payloadCache
	closed    bool
}

var _ engine.Handle = (*handle)(nil)

func (h *handle) NFields() uint {
	if h.closed {
		return 0
	}

	return uint(len(h.entries))
}

// NFrames counts whole frames in the reference field's raw file.
// It returns -1 when the raw file cannot be read and 0 when the dirfile has
// no RAW field.
func (h *handle) NFrames() int64 {
	if h.closed {
		return -1
	}
	if h.reference == nil {
		return 0
	}

	rf, err := locateRaw(h.reference)
	if err != nil {
		h.logger.Debug().Err(err).Str("field", h.reference.name).Msg("reference raw file unavailable")
		return -1
	}

	samples, err := h.cache.sampleCount(rf, h.reference.width)
	if err != nil {
		h.logger.Debug().Err(err).Str("field", h.reference.name).Msg("reference raw file unreadable")
		return -1
	}

	return samples / int64(h.reference.spf)
}

func (h *handle) FieldList() []string {
	if h.closed {
		return nil
	}

	out := make([]string, len(h.names))
	copy(out, h.names)

	return out
}

func (h *handle) SPF(field string) (uint, error) {
	e, err := h.lookup(field)
	if err != nil {
		return 0, err
	}

	return e.spf, nil
}

func (h *handle) NativeType(field string) (format.ElementType, error) {
	e, err := h.lookup(field)
	if err != nil {
		return format.TypeNull, err
	}

	return e.typ, nil
}

func (h *handle) GetData(field string, req engine.Request, out any) (int, error) {
	e, err := h.lookup(field)
	if err != nil {
		return 0, err
	}
	if !e.sampled() {
		return 0, fmt.Errorf("%w: %s field %q has no sampled data", errs.ErrUnsupportedType, e.keyword, field)
	}

	count := req.Count(e.spf)
	if _, err := engine.CheckBuffer(e.typ, out, count); err != nil {
		return 0, fmt.Errorf("field %q: %w", field, err)
	}

	start := req.Start(e.spf)
	if start < 0 {
		return 0, fmt.Errorf("field %q: negative start sample %d", field, start)
	}
	if count == 0 {
		return 0, nil
	}

	rf, err := locateRaw(e)
	if err != nil {
		return 0, err
	}

	n, err := h.cache.readSamples(e, rf, start, int(count), out)
	if err != nil {
		return n, err
	}

	h.logger.Trace().
		Str("field", field).
		Str("file", rf.path).
		Int64("start", start).
		Uint64("requested", count).
		Int("read", n).
		Msg("read raw samples")

	return n, nil
}

func (h *handle) Close() error {
	if h.closed {
		return nil
	}

	h.closed = true
	h.cache = nil
	h.entries = nil
	h.index = nil
	h.names = nil
	h.reference = nil

	return nil
}

func (h *handle) lookup(field string) (*entry, error) {
	if h.closed {
		return nil, errs.ErrClosed
	}
	if field == "" {
		return nil, errs.ErrInvalidFieldName
	}

	for _, e := range h.index[hash.ID(field)] {
		if e.name == field {
			return e, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrFieldNotFound, field)
}
