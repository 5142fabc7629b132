package jdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"name", "name"},
		{"snake_case", "snake_case"},
		{"my key", "my_0x20_key"},
		{"1st", "x0x31_st"},
		{"_hidden", "x0x5F_hidden"},
		{"a-b", "a_0x2D_b"},
		{"é", "x0xE9_"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeKey(tt.key))
			assert.Equal(t, tt.key, UnescapeKey(tt.want))
		})
	}
}

func TestEscapeKey_Reversible(t *testing.T) {
	keys := []string{
		"x0x41_", "a_0x41_b", "a__0x20_", "tail_", "_0x", "x0x", "mixed key-é_0xZZ_",
		"日本語", "a.b.c", "x0x41_ and more",
	}
	for _, k := range keys {
		assert.Equal(t, k, UnescapeKey(EscapeKey(k)), "key %q via %q", k, EscapeKey(k))
	}
}

func TestUnescapeKey_LeavesPlainText(t *testing.T) {
	assert.Equal(t, "value_0x", UnescapeKey("value_0x"))
	assert.Equal(t, "a_0xZZ_b", UnescapeKey("a_0xZZ_b"))
}
