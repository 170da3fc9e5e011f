package confrontation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Write renders the report in the given format.
func (r *Report) Write(w io.Writer, format string) error {
	switch format {
	case FormatText:
		return r.WriteText(w)
	case FormatJSON:
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
}

// WriteJSON renders the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the report as a plain text listing, one block per round.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for i, round := range r.Rounds {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fmt.Fprintf(bw, "%s:\n", roundTitle(round.Iterations))

		for _, result := range round.Results {
			fmt.Fprintf(bw, "\n%s:\n", result.Title)
			for _, timing := range result.Timings {
				if !timing.Supported {
					fmt.Fprintf(bw, "%-10s Not supported\n", timing.Contender+":")
					continue
				}
				fmt.Fprintf(bw, "%-10s %s\n", timing.Contender+":", timing.Elapsed)
			}
		}
	}

	return bw.Flush()
}

func roundTitle(n int) string {
	if n == 1 {
		return "One iteration"
	}
	return fmt.Sprintf("%d iterations", n)
}
