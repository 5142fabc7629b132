// jdata - JData text/binary codec CLI
//
// Usage:
//
//	jdata encode [file]          Encode JSON/JData text as BJData
//	jdata decode [file]          Decode BJData/UBJSON to JData text
//	jdata convert --to F [file]  Convert between text, binary and ubjson
//	jdata mmap [file]            Print the position index of a document
//	jdata get <path> [file]      Print the bytes of one indexed value
//	jdata frame write|read       Frame documents for transport
//	jdata version                Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"github.com/spf13/cobra"
)

const libVersion = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "jdata",
	Short: "JData annotated JSON and BJData codec",
	Long: `jdata converts between JSON text with JData array annotations and
the BJData/UBJSON binary forms, and inspects documents by position index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fatal("%v", err)
	}
}

func init() {
	addCodecFlags(rootCmd)
	rootCmd.AddCommand(
		encodeCmd,
		decodeCmd,
		convertCmd,
		mmapCmd,
		getCmd,
		frameCmd,
		versionCmd,
	)
}
