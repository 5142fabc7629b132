// Package config loads named codec profiles from YAML for the jdata CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
)

// Profile is the YAML form of jdata.Options plus stream settings.
type Profile struct {
	FormatVersion     float64   `yaml:"format_version"`
	Compact           bool      `yaml:"compact"`
	Indent            string    `yaml:"indent"`
	NestArray         bool      `yaml:"nest_array"`
	Compression       string    `yaml:"compression"`
	CompressArraySize int       `yaml:"compress_array_size"`
	UseArrayShape     bool      `yaml:"use_array_shape"`
	KeepType          bool      `yaml:"keep_type"`
	Endian            string    `yaml:"endian"`
	UBJSON            bool      `yaml:"ubjson"`
	EscapeKeys        bool      `yaml:"escape_keys"`
	UnpackHex         bool      `yaml:"unpack_hex"`
	EmptyArrayAsNull  bool      `yaml:"empty_array_as_null"`
	Sentinels         Sentinels `yaml:"sentinels"`
	Stream            Stream    `yaml:"stream"`
}

// Sentinels are the text spellings of IEEE special values.
type Sentinels struct {
	NaN    string `yaml:"nan"`
	Inf    string `yaml:"inf"`
	NegInf string `yaml:"neg_inf"`
}

// Stream holds framing settings.
type Stream struct {
	CRC    bool   `yaml:"crc"`
	Strict bool   `yaml:"strict"`
	Format string `yaml:"format"`
}

// DefaultProfile returns the profile matching jdata.DefaultOptions.
func DefaultProfile() *Profile {
	o := jdata.DefaultOptions()
	return &Profile{
		FormatVersion: float64(o.FormatVersion),
		Indent:        o.Indent,
		EscapeKeys:    o.EscapeKeys,
		UnpackHex:     o.UnpackHex,
		Sentinels: Sentinels{
			NaN:    o.NaN,
			Inf:    o.Inf,
			NegInf: o.NegInf,
		},
		Stream: Stream{
			CRC:    true,
			Strict: true,
			Format: "text",
		},
	}
}

// LoadProfile reads a profile from path. Keys missing from the file keep
// their DefaultProfile values.
func LoadProfile(path string) (*Profile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile does not exist: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	p := DefaultProfile()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return p, nil
}

// SaveProfile writes p to path, creating the directory if needed.
func SaveProfile(p *Profile, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create profile directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// Validate checks enumerated fields.
func (p *Profile) Validate() error {
	if p.FormatVersion <= 0 {
		return fmt.Errorf("format_version must be positive, got %v", p.FormatVersion)
	}
	if p.Compression != "" && !slices.Contains(jdata.Compressors(), p.Compression) {
		return fmt.Errorf("unknown compression %q (have %v)", p.Compression, jdata.Compressors())
	}
	if p.CompressArraySize < 0 {
		return fmt.Errorf("compress_array_size must not be negative")
	}
	switch p.Endian {
	case "", "little", "big":
	default:
		return fmt.Errorf("endian must be little or big, got %q", p.Endian)
	}
	switch p.Stream.Format {
	case "", "text", "binary", "ubjson":
	default:
		return fmt.Errorf("stream.format must be text, binary or ubjson, got %q", p.Stream.Format)
	}
	return nil
}

// Options converts the profile to codec options.
func (p *Profile) Options() jdata.Options {
	o := jdata.DefaultOptions()
	o.FormatVersion = jdata.FormatVersion(p.FormatVersion)
	o.Compact = p.Compact
	if p.Indent != "" {
		o.Indent = p.Indent
	}
	o.NestArray = p.NestArray
	o.Compression = p.Compression
	o.CompressArraySize = p.CompressArraySize
	o.UseArrayShape = p.UseArrayShape
	o.KeepType = p.KeepType
	switch p.Endian {
	case "little":
		o.Endian = jdata.LittleEndian
	case "big":
		o.Endian = jdata.BigEndian
	}
	o.UBJSON = p.UBJSON
	o.EscapeKeys = p.EscapeKeys
	o.UnpackHex = p.UnpackHex
	o.EmptyArrayAsNull = p.EmptyArrayAsNull
	if p.Sentinels.NaN != "" {
		o.NaN = p.Sentinels.NaN
	}
	if p.Sentinels.Inf != "" {
		o.Inf = p.Sentinels.Inf
	}
	if p.Sentinels.NegInf != "" {
		o.NegInf = p.Sentinels.NegInf
	}
	return o
}

// DefaultProfilePath returns ~/.config/jdata/profile.yaml, or a relative
// fallback when the home directory is unknown.
func DefaultProfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./jdata.yaml"
	}
	return filepath.Join(home, ".config", "jdata", "profile.yaml")
}

// ProfileExists reports whether a file exists at path.
func ProfileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
