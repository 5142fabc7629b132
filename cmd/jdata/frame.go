package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/NeuroJSON/jsonlab-sub003/stream"
)

var frameCmd = &cobra.Command{
	Use:   "frame",
	Short: "Frame documents for transport",
}

var frameSID uint64

var frameWriteCmd = &cobra.Command{
	Use:   "write [files...]",
	Short: "Wrap documents into a frame stream",
	Long: `Read each input document and write it as one frame. The payload format
comes from the profile's stream.format unless --ubjson is set.

Example:
  jdata frame write a.json b.json > docs.frames`,
	RunE: func(cmd *cobra.Command, args []string) error {
		o, p, err := codecOptions(cmd)
		if err != nil {
			return err
		}
		format, ok := stream.ParseFormat(p.Stream.Format)
		if !ok {
			format = stream.FormatText
		}
		if cmd.Flags().Changed("ubjson") && codecFlags.ubjson {
			format = stream.FormatUBJSON
		}
		wopts := []stream.WriterOption{stream.WithEncodeOptions(o)}
		if p.Stream.CRC {
			wopts = append(wopts, stream.WithCRC())
		}
		var buf bytes.Buffer
		w := stream.NewWriter(&buf, wopts...)
		if len(args) == 0 {
			args = []string{"-"}
		}
		for i, name := range args {
			data, fname, err := readInput([]string{name})
			if err != nil {
				return err
			}
			v, err := decodeAs(data, sniffFormat(data, fname, o), o)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			if i == len(args)-1 {
				err = w.WriteFinal(frameSID, format, v)
			} else {
				err = w.WriteValue(frameSID, format, v)
			}
			if err != nil {
				return err
			}
		}
		return writeOutput(buf.Bytes())
	},
}

var frameReadCmd = &cobra.Command{
	Use:   "read [file]",
	Short: "Read a frame stream and print each document as text",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, p, err := codecOptions(cmd)
		if err != nil {
			return err
		}
		var in io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()
			in = f
		}
		cur := stream.NewCursor(p.Stream.Strict)
		r := stream.NewReader(in, stream.WithCursor(cur), stream.WithDecodeOptions(o))
		var out bytes.Buffer
		n := 0
		for {
			f, v, err := r.NextValue()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("frame %d: %w", n, err)
			}
			n++
			text, err := stream.Encode(v, stream.FormatText, o)
			if err != nil {
				return err
			}
			fmt.Fprintf(&out, "# sid=%d seq=%d fmt=%s len=%d\n%s\n", f.SID, f.Seq, f.Format, len(f.Payload), text)
		}
		for _, sid := range cur.SIDs() {
			if st, _ := cur.Get(sid); !st.Final {
				log.Printf("stream %d ended without a final frame", sid)
			}
		}
		return writeOutput(out.Bytes())
	},
}

func init() {
	frameWriteCmd.Flags().Uint64Var(&frameSID, "sid", 0, "stream id")
	frameCmd.AddCommand(frameWriteCmd, frameReadCmd)
}
