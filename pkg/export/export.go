package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ManifestEntry summarizes one generated proposal file.
type ManifestEntry struct {
	Row          int
	File         string
	Sender       string
	Receiver     string
	TotalGTU     string
	Releases     int
	FirstRelease time.Time
}

// WriteManifest writes the generated files to w in CSV format.
func WriteManifest(w io.Writer, entries []ManifestEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"row", "file", "sender", "receiver", "total_gtu", "releases", "first_release"}); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			strconv.Itoa(e.Row),
			e.File,
			e.Sender,
			e.Receiver,
			e.TotalGTU,
			strconv.Itoa(e.Releases),
			e.FirstRelease.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ScheduleView is the printable form of an effective schedule.
type ScheduleView struct {
	Mode    string      `json:"mode" yaml:"mode"`
	Now     time.Time   `json:"now" yaml:"now"`
	Cutoff  time.Time   `json:"cutoff" yaml:"cutoff"`
	Expiry  time.Time   `json:"expiry" yaml:"expiry"`
	Planned []time.Time `json:"planned" yaml:"planned"`
	Dates   []time.Time `json:"dates" yaml:"dates"`
	Skipped int         `json:"skipped" yaml:"skipped"`
}

// WriteSchedule renders v as "table", "json" or "yaml".
func WriteSchedule(w io.Writer, format string, v ScheduleView) error {
	switch format {
	case "", "table":
		return writeTable(w, v)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeTable(w io.Writer, v ScheduleView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "mode\t%s\n", v.Mode)
	fmt.Fprintf(tw, "cutoff\t%s\n", v.Cutoff.Format(time.RFC3339))
	fmt.Fprintf(tw, "expiry\t%s\n", v.Expiry.Format(time.RFC3339))
	fmt.Fprintf(tw, "skipped\t%d\n", v.Skipped)
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "#\trelease\ttimestamp_ms")
	for i, d := range v.Dates {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, d.Format(time.RFC3339), d.Unix()*1000)
	}
	return tw.Flush()
}
