package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"QuorumSim/internal/simulation"
)

// compressedSuffix marks report files written with zstd.
const compressedSuffix = ".zst"

// Entry is one experiment row with its outcome.
type Entry struct {
	GroupSize   int                `json:"group_size"`   // GroupSize is the close group cardinality
	SectionSize int                `json:"section_size"` // SectionSize is the number of section members
	Malicious   int                `json:"malicious"`    // Malicious is the adversary set cardinality
	Trials      int                `json:"trials"`       // Trials is the number of trials run
	Tries       int                `json:"tries"`        // Tries is the search budget per trial
	Policy      string             `json:"policy"`       // Policy describes the quorum policy
	Hasher      string             `json:"hasher"`       // Hasher names the search hash
	Result      *simulation.Result `json:"result"`       // Result is the aggregate outcome
}

// NewEntry pairs a config with its result.
func NewEntry(cfg simulation.Config, res *simulation.Result) Entry {
	return Entry{
		GroupSize:   cfg.GroupSize,
		SectionSize: cfg.SectionSize,
		Malicious:   cfg.Malicious,
		Trials:      cfg.Trials,
		Tries:       cfg.Tries,
		Policy:      cfg.Policy.String(),
		Hasher:      cfg.Hasher.String(),
		Result:      res,
	}
}

// Print writes a human-readable summary of e.
// When withMap is set the first-capture histogram follows.
func Print(w io.Writer, e Entry, withMap bool) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Group size: %d, section size: %d, quorum: %d\n", e.GroupSize, e.SectionSize, e.Malicious)
	fmt.Fprintf(&sb, "  Policy: %s, hash: %s, %d trials x %d tries\n", e.Policy, e.Hasher, e.Trials, e.Tries)
	fmt.Fprintf(&sb, "  Success rate: %.2f%%\n", e.Result.SuccessRate)
	fmt.Fprintf(&sb, "  Closest to prefix success rate: %.2f%%\n", e.Result.ClosestSuccessRate)
	fmt.Fprintf(&sb, "  Stall rate: %.2f%%\n", e.Result.StallRate)
	fmt.Fprintf(&sb, "  Avg number of tries: %.2f\n", e.Result.AvgTries)

	if withMap {
		for _, b := range e.Result.TriesMap {
			fmt.Fprintf(&sb, "    %d tries: %d cases\n", b.Tries, b.Count)
		}
	}

	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())

	return err
}

// Write stores entries as JSON at path, zstd-compressed when path ends in ".zst".
func Write(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s:\n%w", path, err)
	}

	if err := Encode(f, entries, isCompressed(path)); err != nil {
		f.Close()
		return fmt.Errorf("encode report %s:\n%w", path, err)
	}

	return f.Close()
}

// Read loads entries written by Write.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report %s:\n%w", path, err)
	}
	defer f.Close()

	entries, err := Decode(f, isCompressed(path))
	if err != nil {
		return nil, fmt.Errorf("decode report %s:\n%w", path, err)
	}

	return entries, nil
}

// Encode writes entries as indented JSON, optionally through zstd.
func Encode(w io.Writer, entries []Entry, compressed bool) error {
	if !compressed {
		return encodeJSON(w, entries)
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer:\n%w", err)
	}

	if err := encodeJSON(zw, entries); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}

// Decode reads entries written by Encode.
func Decode(r io.Reader, compressed bool) ([]Entry, error) {
	if compressed {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader:\n%w", err)
		}
		defer zr.Close()

		r = zr
	}

	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, err
	}

	return entries, nil
}

// encodeJSON writes indented JSON.
func encodeJSON(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(entries)
}

// isCompressed reports whether path names a zstd report.
func isCompressed(path string) bool {
	return strings.HasSuffix(path, compressedSuffix)
}
