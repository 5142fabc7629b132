package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	require.NoError(t, p.Validate())
	assert.Equal(t, 2.0, p.FormatVersion)
	assert.True(t, p.EscapeKeys)
	assert.True(t, p.UnpackHex)
	assert.Equal(t, "_NaN_", p.Sentinels.NaN)
	assert.Equal(t, "text", p.Stream.Format)
	assert.Equal(t, jdata.DefaultOptions(), p.Options())
}

func TestSaveLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "profile.yaml")
	want := DefaultProfile()
	want.FormatVersion = 1.9
	want.Compression = "zstd"
	want.CompressArraySize = 256
	want.Endian = "big"
	want.Stream.CRC = false

	require.NoError(t, SaveProfile(want, path))
	assert.True(t, ProfileExists(path))

	got, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadProfile_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compression: lz4\ncompress_array_size: 64\nsentinels:\n  nan: NaN\n"), 0600))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "lz4", p.Compression)
	assert.Equal(t, "NaN", p.Sentinels.NaN)
	assert.Equal(t, "_Inf_", p.Sentinels.Inf)
	assert.True(t, p.UnpackHex)

	o := p.Options()
	assert.Equal(t, "lz4", o.Compression)
	assert.Equal(t, 64, o.CompressArraySize)
	assert.Equal(t, "NaN", o.NaN)
	assert.Equal(t, jdata.FormatRevised, o.FormatVersion)
}

func TestLoadProfile_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"bad_yaml", "compression: [\n"},
		{"unknown_codec", "compression: brotli\n"},
		{"bad_endian", "endian: middle\n"},
		{"bad_version", "format_version: 0\n"},
		{"bad_stream_format", "stream:\n  format: xml\n"},
		{"negative_threshold", "compress_array_size: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			_, err := LoadProfile(path)
			assert.Error(t, err)
		})
	}

	_, err := LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.False(t, ProfileExists(filepath.Join(dir, "missing.yaml")))
}

func TestProfile_Options(t *testing.T) {
	p := DefaultProfile()
	p.Compact = true
	p.NestArray = true
	p.Endian = "little"
	p.UBJSON = true
	p.KeepType = true
	p.UseArrayShape = true
	p.EscapeKeys = true
	p.EmptyArrayAsNull = true
	p.Indent = "\t"

	o := p.Options()
	assert.True(t, o.Compact)
	assert.True(t, o.NestArray)
	assert.Equal(t, jdata.LittleEndian, o.Endian)
	assert.True(t, o.UBJSON)
	assert.True(t, o.KeepType)
	assert.True(t, o.UseArrayShape)
	assert.True(t, o.EscapeKeys)
	assert.True(t, o.EmptyArrayAsNull)
	assert.Equal(t, "\t", o.Indent)
}

func TestDefaultProfilePath(t *testing.T) {
	assert.Equal(t, "profile.yaml", filepath.Base(DefaultProfilePath()))
}
