package stream

import (
	"sort"
	"sync"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
)

// Cursor tracks per-SID sequence state across frames.
type Cursor struct {
	mu      sync.RWMutex
	strict  bool
	cursors map[uint64]*SIDState
}

// SIDState holds the state of a single stream.
type SIDState struct {
	SID     uint64
	LastSeq uint64
	Seen    bool
	Frames  int
	Final   bool
}

// NewCursor creates a cursor. A strict cursor rejects sequence gaps; a
// lenient one accepts any increasing sequence.
func NewCursor(strict bool) *Cursor {
	return &Cursor{strict: strict, cursors: make(map[uint64]*SIDState)}
}

// Get returns a copy of the state for sid.
func (c *Cursor) Get(sid uint64) (SIDState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st, ok := c.cursors[sid]
	if !ok {
		return SIDState{SID: sid}, false
	}
	return *st, true
}

// SIDs returns the tracked stream IDs in ascending order.
func (c *Cursor) SIDs() []uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sids := make([]uint64, 0, len(c.cursors))
	for sid := range c.cursors {
		sids = append(sids, sid)
	}
	sort.Slice(sids, func(i, j int) bool { return sids[i] < sids[j] })
	return sids
}

// ProcessFrame checks f against the stream state and records it.
func (c *Cursor) ProcessFrame(f *Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.cursors[f.SID]
	if !ok {
		st = &SIDState{SID: f.SID}
		c.cursors[f.SID] = st
	}
	if st.Final {
		return &SequenceError{SID: f.SID, Expected: st.LastSeq, Got: f.Seq, Reason: "frame after final"}
	}
	if st.Seen {
		if f.Seq <= st.LastSeq {
			return &SequenceError{SID: f.SID, Expected: st.LastSeq + 1, Got: f.Seq, Reason: "sequence not monotonic"}
		}
		if c.strict && f.Seq != st.LastSeq+1 {
			return &SequenceError{SID: f.SID, Expected: st.LastSeq + 1, Got: f.Seq, Reason: "sequence gap"}
		}
	}
	st.Seen = true
	st.LastSeq = f.Seq
	st.Frames++
	if f.Final {
		st.Final = true
	}
	return nil
}

// Handler decodes frames and dispatches the values.
type Handler struct {
	Cursor  *Cursor
	Options jdata.Options

	OnValue func(f *Frame, v *jdata.Value) error
	OnFinal func(sid uint64, st SIDState) error
}

// NewHandler creates a handler with a strict cursor and default options.
func NewHandler() *Handler {
	return &Handler{Cursor: NewCursor(true), Options: jdata.DefaultOptions()}
}

// Handle validates, decodes and dispatches one frame.
func (h *Handler) Handle(f *Frame) error {
	if err := h.Cursor.ProcessFrame(f); err != nil {
		return err
	}
	if len(f.Payload) > 0 && h.OnValue != nil {
		v, err := Decode(f, h.Options)
		if err != nil {
			return err
		}
		if err := h.OnValue(f, v); err != nil {
			return err
		}
	}
	if f.Final && h.OnFinal != nil {
		st, _ := h.Cursor.Get(f.SID)
		return h.OnFinal(f.SID, st)
	}
	return nil
}
