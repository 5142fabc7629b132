package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
	"github.com/NeuroJSON/jsonlab-sub003/stream"
)

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode JSON or JData text as BJData",
	Long: `Encode a JSON document (plain or JData-annotated) as BJData.

Example:
  jdata encode --compression zlib volume.json -o volume.bjd`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args, stream.FormatText, binaryTarget())
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode BJData or UBJSON to JData text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from := stream.FormatBinary
		if codecFlags.ubjson {
			from = stream.FormatUBJSON
		}
		return runConvert(cmd, args, from, stream.FormatText)
	},
}

var convertTo, convertFrom string

// formatAuto asks runConvert to detect the input encoding.
const formatAuto stream.Format = 255

var convertCmd = &cobra.Command{
	Use:   "convert --to text|binary|ubjson [file]",
	Short: "Convert a document between encodings",
	Long: `Convert a document between JData text, BJData and UBJSON. The input
encoding is taken from --from, the file extension, or detected.

Example:
  jdata convert --to text --format-version 1.9 scan.bjd`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, ok := stream.ParseFormat(convertTo)
		if !ok {
			return fmt.Errorf("unknown --to format %q", convertTo)
		}
		from := formatAuto
		if convertFrom != "" {
			if from, ok = stream.ParseFormat(convertFrom); !ok {
				return fmt.Errorf("unknown --from format %q", convertFrom)
			}
		}
		return runConvert(cmd, args, from, to)
	},
}

func binaryTarget() stream.Format {
	if codecFlags.ubjson {
		return stream.FormatUBJSON
	}
	return stream.FormatBinary
}

func runConvert(cmd *cobra.Command, args []string, from, to stream.Format) error {
	o, _, err := codecOptions(cmd)
	if err != nil {
		return err
	}
	data, name, err := readInput(args)
	if err != nil {
		return err
	}
	if from == formatAuto {
		from = sniffFormat(data, name, o)
	}
	v, err := decodeAs(data, from, o)
	if err != nil {
		return fmt.Errorf("decode %s: %w", from, err)
	}
	out, err := stream.Encode(v, to, o)
	if err != nil {
		return fmt.Errorf("encode %s: %w", to, err)
	}
	if to == stream.FormatText {
		out = append(out, '\n')
	}
	return writeOutput(out)
}

var mmapCmd = &cobra.Command{
	Use:   "mmap [file]",
	Short: "Print the position index of a document",
	Long: `Print one line per indexed value: path, byte offset and length.
Numeric leaf arrays are a single entry.

Example:
  jdata mmap subject.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, _, err := indexInput(cmd, args)
		if err != nil {
			return err
		}
		var sb strings.Builder
		for _, e := range idx.Entries() {
			fmt.Fprintf(&sb, "%s\t%d\t%d\n", e.Path, e.Span.Offset, e.Span.Length)
		}
		return writeOutput([]byte(sb.String()))
	},
}

var getCmd = &cobra.Command{
	Use:   "get <path> [file]",
	Short: "Print the raw bytes of one indexed value",
	Long: `Look up a path in the position index and print the bytes that encode
it, without materializing the rest of the document.

Example:
  jdata get '$.scan.dims' subject.json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, data, err := indexInput(cmd, args[1:])
		if err != nil {
			return err
		}
		frag, err := idx.Extract(data, args[0])
		if err != nil {
			return err
		}
		return writeOutput(frag)
	},
}

func indexInput(cmd *cobra.Command, args []string) (*jdata.Index, []byte, error) {
	o, _, err := codecOptions(cmd)
	if err != nil {
		return nil, nil, err
	}
	o.MmapOnly = true
	data, name, err := readInput(args)
	if err != nil {
		return nil, nil, err
	}
	var idx *jdata.Index
	switch f := sniffFormat(data, name, o); f {
	case stream.FormatText:
		_, idx, err = jdata.DecodeTextIndex(string(data), o)
	default:
		o.UBJSON = f == stream.FormatUBJSON
		_, idx, err = jdata.DecodeBinaryIndex(data, o)
	}
	if err != nil {
		return nil, nil, err
	}
	return idx, data, nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("jdata %s\n", libVersion)
		fmt.Printf("codecs: %s\n", strings.Join(jdata.Compressors(), ", "))
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "text", "output encoding: text, binary or ubjson")
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "input encoding (default: detect)")
}
