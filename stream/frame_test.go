package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_MinimalFrame(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteFrame(&Frame{Version: 1, Format: FormatText, Payload: []byte("[1]")}))
	assert.Equal(t, "@frame{v=1 seq=0 fmt=text len=3}\n[1]\n", buf.String())
}

func TestWriter_HeaderFields(t *testing.T) {
	tests := []struct {
		name  string
		opts  []WriterOption
		frame *Frame
		want  string
	}{
		{
			name:  "crc",
			opts:  []WriterOption{WithCRC()},
			frame: &Frame{Seq: 5, Format: FormatText, Payload: []byte("123456789")},
			want:  "@frame{v=1 seq=5 fmt=text len=9 crc=cbf43926}\n",
		},
		{
			name:  "sid_final",
			frame: &Frame{SID: 3, Seq: 1, Format: FormatBinary, Payload: []byte("T"), Final: true},
			want:  "@frame{v=1 seq=1 fmt=binary len=1 sid=3 final=true}\n",
		},
		{
			name:  "empty_payload_no_crc",
			opts:  []WriterOption{WithCRC()},
			frame: &Frame{Seq: 2, Format: FormatUBJSON},
			want:  "@frame{v=1 seq=2 fmt=ubjson len=0}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(&buf, tt.opts...).WriteFrame(tt.frame))
			assert.True(t, strings.HasPrefix(buf.String(), tt.want), buf.String())
		})
	}
}

func TestReader_Frames(t *testing.T) {
	src := "@frame{v=1 seq=0 fmt=text len=3}\n[1]\n" +
		"@frame{v=1 seq=1 fmt=binary len=2 crc=" + formatCRC(ComputeCRC([]byte("U\x07"))) + "}\nU\x07\n" +
		"@frame{seq=2, fmt=text, len=5, final=true}\n\"a\nb\""
	r := NewReader(strings.NewReader(src))

	frames, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, frames, 3)
	assert.Equal(t, "[1]", string(frames[0].Payload))
	assert.Equal(t, FormatBinary, frames[1].Format)
	assert.True(t, frames[1].HasCRC())
	assert.Equal(t, "\"a\nb\"", string(frames[2].Payload), "payloads may contain newlines")
	assert.True(t, frames[2].Final)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		opts  []ReaderOption
		check func(t *testing.T, err error)
	}{
		{
			name: "crc_mismatch",
			src:  "@frame{v=1 seq=0 fmt=text len=3 crc=00000000}\n[1]\n",
			check: func(t *testing.T, err error) {
				var e *CRCMismatchError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, ComputeCRC([]byte("[1]")), e.Got)
			},
		},
		{
			name: "bad_prefix",
			src:  "frame{len=1}\nx\n",
			check: func(t *testing.T, err error) {
				var e *ParseError
				require.ErrorAs(t, err, &e)
				assert.Equal(t, 0, e.Offset)
			},
		},
		{
			name: "missing_len",
			src:  "@frame{v=1 seq=0 fmt=text}\n",
			check: func(t *testing.T, err error) {
				var e *ParseError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "bad_format",
			src:  "@frame{v=1 fmt=xml len=0}\n",
			check: func(t *testing.T, err error) {
				var e *ParseError
				require.ErrorAs(t, err, &e)
				assert.Contains(t, e.Reason, "xml")
			},
		},
		{
			name: "bad_version",
			src:  "@frame{v=2 len=0}\n",
			check: func(t *testing.T, err error) {
				var e *ParseError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "too_large",
			src:  "@frame{v=1 len=100}\n",
			opts: []ReaderOption{WithMaxPayload(10)},
			check: func(t *testing.T, err error) {
				var e *ParseError
				require.ErrorAs(t, err, &e)
			},
		},
		{
			name: "truncated_payload",
			src:  "@frame{v=1 len=10}\nabc",
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.src), tt.opts...).Next()
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestReader_SkipCRCVerification(t *testing.T) {
	src := "@frame{v=1 seq=0 fmt=text len=3 crc=00000000}\n[1]\n"
	f, err := NewReader(strings.NewReader(src), WithoutCRCVerification()).Next()
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(f.Payload))
}

func TestReader_ErrorOffset(t *testing.T) {
	src := "@frame{v=1 seq=0 fmt=text len=3}\n[1]\nbogus\n"
	r := NewReader(strings.NewReader(src))
	_, err := r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	var e *ParseError
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 37, e.Offset)
}

func TestRoundTrip_Values(t *testing.T) {
	values := []*jdata.Value{
		jdata.MustRecord(jdata.F("id", jdata.Int(1)), jdata.F("name", jdata.Text("first"))),
		jdata.Array(jdata.MustArray([]int{2, 3}, []int16{1, 2, 3, 4, 5, 6})),
		jdata.List(jdata.Float64(0.5), jdata.Text("line\nbreak")),
	}
	formats := []Format{FormatText, FormatBinary, FormatUBJSON}

	var buf bytes.Buffer
	w := NewWriter(&buf, WithCRC())
	for i, v := range values {
		for _, f := range formats {
			require.NoError(t, w.WriteValue(uint64(i), f, v))
		}
	}
	require.NoError(t, w.WriteFinal(0, FormatText, jdata.Bool(true)))

	cur := NewCursor(true)
	r := NewReader(&buf, WithCursor(cur))
	var n int
	for {
		f, v, err := r.NextValue()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if f.Final {
			assert.True(t, jdata.Equal(jdata.Bool(true), v))
			continue
		}
		assert.Equal(t, formats[f.Seq], f.Format)
		assert.True(t, jdata.Equal(values[f.SID], v), "sid %d seq %d", f.SID, f.Seq)
		n++
	}
	assert.Equal(t, len(values)*len(formats), n)
	assert.Equal(t, []uint64{0, 1, 2}, cur.SIDs())
	st, ok := cur.Get(0)
	require.True(t, ok)
	assert.True(t, st.Final)
	assert.Equal(t, 4, st.Frames)
}

func TestCRC_KnownValues(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0x00000000},
		{"a", 0xe8b7be43},
		{"123456789", 0xcbf43926},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ComputeCRC([]byte(tt.in)), tt.in)
		assert.True(t, VerifyCRC([]byte(tt.in), tt.want))
	}
	c, ok := parseCRC("crc32:cbf43926")
	assert.True(t, ok)
	assert.Equal(t, uint32(0xcbf43926), c)
	_, ok = parseCRC("xyz")
	assert.False(t, ok)
}
