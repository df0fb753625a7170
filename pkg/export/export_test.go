package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWriteManifest(t *testing.T) {
	var buf bytes.Buffer
	err := WriteManifest(&buf, []ManifestEntry{{
		Row: 1, File: "out/in_001.json", Sender: "s", Receiver: "r", TotalGTU: "10.5", Releases: 8,
		FirstRelease: time.Date(2022, time.October, 1, 12, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "row,file,sender,receiver,total_gtu,releases,first_release", lines[0])
	assert.Equal(t, "1,out/in_001.json,s,r,10.5,8,2022-10-01T12:00:00Z", lines[1])
}

func view() ScheduleView {
	c := time.Date(2022, time.October, 1, 12, 0, 0, 0, time.UTC)
	return ScheduleView{
		Mode:    "multi",
		Cutoff:  c,
		Expiry:  c.Add(-time.Hour),
		Dates:   []time.Time{c, c.AddDate(0, 1, 0)},
		Skipped: 2,
	}
}

func TestWriteScheduleFormats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchedule(&buf, "table", view()))
	assert.Contains(t, buf.String(), "2022-11-01T12:00:00Z")
	assert.Contains(t, buf.String(), "1664625600000")

	buf.Reset()
	require.NoError(t, WriteSchedule(&buf, "json", view()))
	var fromJSON ScheduleView
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, 2, fromJSON.Skipped)
	assert.Len(t, fromJSON.Dates, 2)

	buf.Reset()
	require.NoError(t, WriteSchedule(&buf, "yaml", view()))
	var fromYAML map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "multi", fromYAML["mode"])
	assert.Equal(t, 2, fromYAML["skipped"])

	assert.Error(t, WriteSchedule(&buf, "xml", view()))
}
