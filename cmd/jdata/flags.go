package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NeuroJSON/jsonlab-sub003/config"
	"github.com/NeuroJSON/jsonlab-sub003/jdata"
	"github.com/NeuroJSON/jsonlab-sub003/stream"
)

// codecFlags are the persistent flags shared by every subcommand. Flags
// set on the command line override the loaded profile.
var codecFlags struct {
	profile       string
	output        string
	formatVersion float64
	compact       bool
	nestArray     bool
	compression   string
	compressSize  int
	shape         bool
	keepType      bool
	ubjson        bool
	bigEndian     bool
	escapeKeys    bool
}

func addCodecFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVarP(&codecFlags.profile, "profile", "p", "", "YAML option profile (default ~/.config/jdata/profile.yaml if present)")
	f.StringVarP(&codecFlags.output, "output", "o", "-", "output file")
	f.Float64Var(&codecFlags.formatVersion, "format-version", 2, "JData format version (1.9 legacy, 2 revised)")
	f.BoolVarP(&codecFlags.compact, "compact", "c", false, "compact text output")
	f.BoolVar(&codecFlags.nestArray, "nest-array", false, "write numeric arrays as nested arrays")
	f.StringVarP(&codecFlags.compression, "compression", "z", "", "array compression codec ("+strings.Join(jdata.Compressors(), ", ")+")")
	f.IntVar(&codecFlags.compressSize, "compress-size", 100, "minimum array payload bytes to compress")
	f.BoolVar(&codecFlags.shape, "shape", false, "detect and store structured matrices in reduced form")
	f.BoolVar(&codecFlags.keepType, "keep-type", false, "keep declared integer widths in binary output")
	f.BoolVar(&codecFlags.ubjson, "ubjson", false, "restrict binary output to UBJSON Draft 12")
	f.BoolVar(&codecFlags.bigEndian, "big-endian", false, "big-endian binary payloads")
	f.BoolVar(&codecFlags.escapeKeys, "escape-keys", true, "escape record keys to identifier-safe form")
}

// loadProfile returns the profile named by --profile, the default profile
// file when it exists, or the built-in defaults.
func loadProfile() (*config.Profile, error) {
	path := codecFlags.profile
	if path == "" {
		path = config.DefaultProfilePath()
		if !config.ProfileExists(path) {
			return config.DefaultProfile(), nil
		}
	}
	return config.LoadProfile(path)
}

// codecOptions merges the profile with the flags the user set.
func codecOptions(cmd *cobra.Command) (jdata.Options, *config.Profile, error) {
	p, err := loadProfile()
	if err != nil {
		return jdata.Options{}, nil, err
	}
	o := p.Options()
	fl := cmd.Flags()
	if fl.Changed("format-version") {
		o.FormatVersion = jdata.FormatVersion(codecFlags.formatVersion)
	}
	if fl.Changed("compact") {
		o.Compact = codecFlags.compact
	}
	if fl.Changed("nest-array") {
		o.NestArray = codecFlags.nestArray
	}
	if fl.Changed("compression") {
		o.Compression = codecFlags.compression
		if !fl.Changed("compress-size") && o.CompressArraySize == 0 {
			o.CompressArraySize = codecFlags.compressSize
		}
	}
	if fl.Changed("compress-size") {
		o.CompressArraySize = codecFlags.compressSize
	}
	if fl.Changed("shape") {
		o.UseArrayShape = codecFlags.shape
	}
	if fl.Changed("keep-type") {
		o.KeepType = codecFlags.keepType
	}
	if fl.Changed("ubjson") {
		o.UBJSON = codecFlags.ubjson
	}
	if fl.Changed("big-endian") && codecFlags.bigEndian {
		o.Endian = jdata.BigEndian
	}
	if fl.Changed("escape-keys") {
		o.EscapeKeys = codecFlags.escapeKeys
	}
	if o.Compression != "" && o.CompressArraySize == 0 {
		log.Printf("compression %q has no size threshold; arrays will not be compressed", o.Compression)
	}
	return o, p, nil
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(os.Stdin)
		return b, "", err
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return b, args[0], nil
}

func writeOutput(data []byte) error {
	if codecFlags.output == "" || codecFlags.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(codecFlags.output, data, 0644)
}

// sniffFormat guesses the encoding of an input document from its file
// extension, falling back to a text parse attempt.
func sniffFormat(data []byte, name string, o jdata.Options) stream.Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".jdt", ".jnii", ".jmsh":
		return stream.FormatText
	case ".bjd", ".jdb", ".bnii", ".bmsh", ".bjdata":
		return stream.FormatBinary
	case ".ubj", ".ubjson":
		return stream.FormatUBJSON
	}
	if _, err := jdata.DecodeText(string(bytes.TrimSpace(data)), o); err == nil {
		return stream.FormatText
	}
	return stream.FormatBinary
}

// decodeAs decodes data in the given format.
func decodeAs(data []byte, f stream.Format, o jdata.Options) (*jdata.Value, error) {
	return stream.Decode(&stream.Frame{Format: f, Payload: data}, o)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "jdata: "+format+"\n", args...)
	os.Exit(1)
}
