package stream

import (
	"testing"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_Sequence(t *testing.T) {
	tests := []struct {
		name   string
		strict bool
		seqs   []uint64
		errAt  int
		reason string
	}{
		{"monotonic", true, []uint64{0, 1, 2}, -1, ""},
		{"starts_anywhere", true, []uint64{7, 8}, -1, ""},
		{"duplicate", true, []uint64{0, 1, 1}, 2, "sequence not monotonic"},
		{"backwards", false, []uint64{4, 2}, 1, "sequence not monotonic"},
		{"gap_strict", true, []uint64{0, 2}, 1, "sequence gap"},
		{"gap_lenient", false, []uint64{0, 2, 9}, -1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor(tt.strict)
			for i, s := range tt.seqs {
				err := c.ProcessFrame(&Frame{SID: 1, Seq: s})
				if i != tt.errAt {
					require.NoError(t, err)
					continue
				}
				var e *SequenceError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.reason, e.Reason)
				assert.Equal(t, s, e.Got)
			}
		})
	}
}

func TestCursor_IndependentSIDs(t *testing.T) {
	c := NewCursor(true)
	require.NoError(t, c.ProcessFrame(&Frame{SID: 2, Seq: 0}))
	require.NoError(t, c.ProcessFrame(&Frame{SID: 1, Seq: 0}))
	require.NoError(t, c.ProcessFrame(&Frame{SID: 2, Seq: 1}))
	assert.Equal(t, []uint64{1, 2}, c.SIDs())

	st, ok := c.Get(2)
	require.True(t, ok)
	assert.Equal(t, uint64(1), st.LastSeq)
	assert.Equal(t, 2, st.Frames)

	_, ok = c.Get(9)
	assert.False(t, ok)
}

func TestCursor_AfterFinal(t *testing.T) {
	c := NewCursor(false)
	require.NoError(t, c.ProcessFrame(&Frame{Seq: 0, Final: true}))
	err := c.ProcessFrame(&Frame{Seq: 1})
	var e *SequenceError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, "frame after final", e.Reason)
}

func TestHandler(t *testing.T) {
	h := NewHandler()
	var got []*jdata.Value
	var finals []uint64
	h.OnValue = func(f *Frame, v *jdata.Value) error {
		got = append(got, v)
		return nil
	}
	h.OnFinal = func(sid uint64, st SIDState) error {
		finals = append(finals, sid)
		assert.Equal(t, 2, st.Frames)
		return nil
	}

	require.NoError(t, h.Handle(&Frame{SID: 4, Seq: 0, Format: FormatText, Payload: []byte(`{"a":1}`)}))
	require.NoError(t, h.Handle(&Frame{SID: 4, Seq: 1, Format: FormatBinary, Payload: []byte{'U', 9}, Final: true}))
	require.Len(t, got, 2)
	assert.True(t, jdata.Equal(jdata.MustRecord(jdata.F("a", jdata.Int(1))), got[0]))
	assert.True(t, jdata.Equal(jdata.Int(9), got[1]))
	assert.Equal(t, []uint64{4}, finals)

	err := h.Handle(&Frame{SID: 5, Seq: 0, Format: FormatText, Payload: []byte(`{`)})
	assert.ErrorIs(t, err, jdata.ErrMalformedStream)
}
