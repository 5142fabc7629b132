// bench - JData wire-size comparison
//
// Encodes a set of synthetic array documents in every supported form and
// compares:
//   - Plain JSON (no annotations, element types lost)
//   - JData text, plain and compressed
//   - BJData, plain and compressed
//   - UBJSON
//
// Output: CSV and markdown summary
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/NeuroJSON/jsonlab-sub003/jdata"
)

// encoding is one measured output form.
type encoding struct {
	Name   string
	Encode func(v *jdata.Value) ([]byte, error)
}

type CaseResult struct {
	Name  string
	Sizes []int // parallel to encodings
}

func encodings(codec string, threshold int) []encoding {
	text := jdata.CompactOptions()
	textZ := text
	textZ.Compression = codec
	textZ.CompressArraySize = threshold
	textShape := text
	textShape.UseArrayShape = true
	bin := jdata.DefaultOptions()
	binZ := bin
	binZ.Compression = codec
	binZ.CompressArraySize = threshold
	ubj := bin
	ubj.UBJSON = true

	asText := func(o jdata.Options) func(*jdata.Value) ([]byte, error) {
		return func(v *jdata.Value) ([]byte, error) {
			s, err := jdata.EncodeText(v, o)
			return []byte(s), err
		}
	}
	asBinary := func(o jdata.Options) func(*jdata.Value) ([]byte, error) {
		return func(v *jdata.Value) ([]byte, error) { return jdata.EncodeBinary(v, o) }
	}
	return []encoding{
		{"json", jdata.ToJSON},
		{"jdata", asText(text)},
		{"jdata+shape", asText(textShape)},
		{"jdata+" + codec, asText(textZ)},
		{"bjdata", asBinary(bin)},
		{"bjdata+" + codec, asBinary(binZ)},
		{"ubjson", asBinary(ubj)},
	}
}

func main() {
	codec := flag.String("codec", "zlib", "compression codec")
	threshold := flag.Int("threshold", 64, "minimum array payload bytes to compress")
	csvPath := flag.String("csv", "bench_results.csv", "CSV output path")
	mdPath := flag.String("md", "BENCH.md", "markdown output path")
	flag.Parse()

	encs := encodings(*codec, *threshold)
	fmt.Fprintf(os.Stderr, "JData Size Benchmark\n")
	fmt.Fprintf(os.Stderr, "====================\n")
	fmt.Fprintf(os.Stderr, "Cases: %d, codec: %s\n\n", len(cases()), *codec)

	var results []CaseResult
	totals := make([]int, len(encs))
	for _, c := range cases() {
		r := CaseResult{Name: c.name}
		ok := true
		for _, e := range encs {
			out, err := e.Encode(c.value)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Skip %s: %s: %v\n", c.name, e.Name, err)
				ok = false
				break
			}
			r.Sizes = append(r.Sizes, len(out))
		}
		if !ok {
			continue
		}
		for i, s := range r.Sizes {
			totals[i] += s
		}
		results = append(results, r)
	}

	if f, err := os.Create(*csvPath); err == nil {
		writeCSV(f, encs, results)
		f.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", *csvPath)
	}
	if f, err := os.Create(*mdPath); err == nil {
		writeMarkdown(f, encs, results, totals)
		f.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", *mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases: %d\n", len(results))
	for i, e := range encs {
		fmt.Printf("%-14s %9d bytes (%5.1f%% of json)\n", e.Name+":", totals[i], pct(totals[i], totals[0]))
	}
}

type benchCase struct {
	name  string
	value *jdata.Value
}

// cases builds deterministic synthetic documents.
func cases() []benchCase {
	var out []benchCase

	sig := make([]float64, 4096)
	for i := range sig {
		sig[i] = math.Sin(float64(i) / 32)
	}
	out = append(out, benchCase{"signal_f64_4096", jdata.Array(jdata.MustArray([]int{4096}, sig))})

	img := make([]uint16, 128*128)
	for i := range img {
		x, y := i%128, i/128
		img[i] = uint16((x*x + y*y) % 4096)
	}
	out = append(out, benchCase{"image_u16_128x128", jdata.Array(jdata.MustArray([]int{128, 128}, img))})

	vol := make([]uint8, 32*32*32)
	for i := range vol {
		if (i/32)%3 == 0 {
			vol[i] = uint8(i % 7)
		}
	}
	out = append(out, benchCase{"volume_u8_32^3", jdata.Array(jdata.MustArray([]int{32, 32, 32}, vol))})

	const n = 200
	band := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := max(0, i-1); j <= min(n-1, i+1); j++ {
			band[i*n+j] = float64(i + j + 1)
		}
	}
	out = append(out, benchCase{"tridiag_200x200", jdata.Array(jdata.MustArray([]int{n, n}, band))})

	var trip []jdata.Triplet
	for k := 0; k < 300; k++ {
		trip = append(trip, jdata.Triplet{Row: (k * 37) % 500, Col: (k * 91) % 500, Re: float64(k)})
	}
	if sp, err := jdata.NewSparse(500, 500, trip, false); err == nil {
		out = append(out, benchCase{"sparse_500x500_300nz", jdata.SparseMatrix(sp)})
	}

	zs := make([]complex128, 1024)
	for i := range zs {
		zs[i] = complex(math.Cos(float64(i)), math.Sin(float64(i)))
	}
	if c, err := jdata.ComplexFrom([]int{1024}, zs); err == nil {
		out = append(out, benchCase{"complex_1024", jdata.ComplexArray(c)})
	}

	var trials []*jdata.Value
	for i := 0; i < 50; i++ {
		trials = append(trials, jdata.MustRecord(
			jdata.F("id", jdata.Int(i)),
			jdata.F("label", jdata.Text(fmt.Sprintf("trial-%02d", i))),
			jdata.F("ok", jdata.Bool(i%4 != 0)),
			jdata.F("rt", jdata.Float64(0.3+float64(i%9)/10)),
		))
	}
	out = append(out, benchCase{"records_50", jdata.List(trials...)})
	return out
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func writeCSV(w io.Writer, encs []encoding, results []CaseResult) {
	fmt.Fprint(w, "name")
	for _, e := range encs {
		fmt.Fprintf(w, ",%s_bytes", e.Name)
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprint(w, r.Name)
		for _, s := range r.Sizes {
			fmt.Fprintf(w, ",%d", s)
		}
		fmt.Fprintln(w)
	}
}

func writeMarkdown(w io.Writer, encs []encoding, results []CaseResult, totals []int) {
	fmt.Fprintf(w, "# JData Size Benchmark\n\n")
	fmt.Fprintf(w, "**Cases:** %d  \n\n", len(results))

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Encoding | Bytes | vs JSON |\n")
	fmt.Fprintf(w, "|----------|-------|---------|\n")
	for i, e := range encs {
		fmt.Fprintf(w, "| %s | %d | %.1f%% |\n", e.Name, totals[i], pct(totals[i], totals[0]))
	}

	fmt.Fprintf(w, "\n## Smallest Encoding per Case\n\n")
	fmt.Fprintf(w, "| Case | Best | Bytes | vs JSON |\n")
	fmt.Fprintf(w, "|------|------|-------|---------|\n")
	for _, r := range results {
		order := make([]int, len(r.Sizes))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return r.Sizes[order[a]] < r.Sizes[order[b]] })
		best := order[0]
		fmt.Fprintf(w, "| %s | %s | %d | %.1f%% |\n",
			truncateName(r.Name, 25), encs[best].Name, r.Sizes[best], pct(r.Sizes[best], r.Sizes[0]))
	}

	fmt.Fprintf(w, "\n## Methodology\n\n")
	fmt.Fprintf(w, "- **json:** `jdata.ToJSON`, annotations dropped\n")
	fmt.Fprintf(w, "- **jdata:** compact JData text; `+shape` detects structured matrices\n")
	fmt.Fprintf(w, "- **bjdata / ubjson:** `jdata.EncodeBinary` with narrowest integer markers\n\n")

	fmt.Fprintf(w, "## Detailed Results\n\n")
	fmt.Fprint(w, "| Case |")
	for _, e := range encs {
		fmt.Fprintf(w, " %s |", e.Name)
	}
	fmt.Fprint(w, "\n|------|")
	for range encs {
		fmt.Fprint(w, "------|")
	}
	fmt.Fprintln(w)
	for _, r := range results {
		fmt.Fprintf(w, "| %s |", truncateName(r.Name, 25))
		for _, s := range r.Sizes {
			fmt.Fprintf(w, " %d |", s)
		}
		fmt.Fprintln(w)
	}
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
