package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/schedulegen/core/amount"
)

func noDotenv(t *testing.T) {
	t.Helper()
	prev := DotenvPath
	DotenvPath = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { DotenvPath = prev })
}

func TestLoadDefaults(t *testing.T) {
	noDotenv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Schedule.Releases)
	assert.Equal(t, 2*time.Hour, cfg.Output.Expiry)
	assert.Equal(t, ';', cfg.Input.Comma())
	assert.Equal(t, "none", cfg.Journal.Backend)

	sc, err := cfg.Schedule.Resolve()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, time.July, 26, 12, 0, 0, 0, time.UTC), sc.InitialDate)
	assert.Equal(t, time.Date(2022, time.August, 26, 12, 0, 0, 0, time.UTC), sc.FirstRemaining)

	f, err := cfg.Input.Format()
	require.NoError(t, err)
	assert.Equal(t, amount.DefaultFormat, f)
}

//nolint:gocyclo
func TestLoadFileAndEnv(t *testing.T) {
	noDotenv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `schedule:
  releases: 12
  initial_date: "2023-01-15"
  first_remaining_date: "2023-02-15"
  release_time: "09:30"
  location: "Europe/Zurich"
  cutoff_time: "08:00"
  min_lead: "30m"
input:
  delimiter: ","
  decimal_separator: ","
  thousands_separator: "."
output:
  dir: "out"
  expiry: "90m"
journal:
  backend: "sqlite"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SG_INPUT__DELIMITER", "|")
	t.Setenv("SG_SCHEDULE__RELEASES", "6")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"releases", cfg.Schedule.Releases, 6},
		{"location", cfg.Schedule.Location, "Europe/Zurich"},
		{"min_lead", cfg.Schedule.MinLead, 30 * time.Minute},
		{"delimiter", cfg.Input.Comma(), '|'},
		{"decimal", cfg.Input.DecimalSeparator, ","},
		{"dir", cfg.Output.Dir, "out"},
		{"expiry", cfg.Output.Expiry, 90 * time.Minute},
		{"journal", cfg.Journal.Backend, "sqlite"},
		{"journal_path", cfg.Journal.Path, "schedulegen-journal.db"},
		{"welcome_default", cfg.Schedule.WelcomeDate, "2022-07-26"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	sc, err := cfg.Schedule.Resolve()
	require.NoError(t, err)
	assert.Equal(t, int64(1673771400), sc.InitialDate.Unix())
}

func TestLoadRejectsInvalid(t *testing.T) {
	noDotenv(t)
	cases := map[string]string{
		"same separators":    "input:\n  decimal_separator: \",\"\n  thousands_separator: \",\"\n",
		"delimiter collides": "input:\n  delimiter: \".\"\n",
		"long delimiter":     "input:\n  delimiter: \";;\"\n",
		"initial after":      "schedule:\n  initial_date: \"2022-09-01\"\n",
		"one release":        "schedule:\n  releases: 1\n",
		"bad date":           "schedule:\n  welcome_date: \"26.07.2022\"\n",
		"bad zone":           "schedule:\n  location: \"Mars/Olympus\"\n",
		"bad backend":        "journal:\n  backend: \"redis\"\n",
		"bad level":          "logging:\n  level: \"loud\"\n",
		"no expiry":          "output:\n  expiry: \"0s\"\n",
	}
	for name, data := range cases {
		path := filepath.Join(t.TempDir(), "c.yml")
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	noDotenv(t)
	_, err := Load("config.toml")
	assert.Error(t, err)
}

func TestLoadDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SG_OUTPUT__DIR=from-dotenv\n"), 0o644))
	prev := DotenvPath
	DotenvPath = path
	defer func() { DotenvPath = prev }()
	// Registers a cleanup that unsets the variable godotenv is about to set.
	t.Setenv("SG_OUTPUT__DIR", "")
	require.NoError(t, os.Unsetenv("SG_OUTPUT__DIR"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Output.Dir)
}

func TestCutoffAt(t *testing.T) {
	noDotenv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	now := time.Date(2022, time.October, 1, 11, 0, 0, 0, time.UTC)
	c, err := cfg.Schedule.CutoffAt(now)
	require.NoError(t, err)
	// 11:00 + 2h lead passes 12:00, so the cutoff moves to the next day.
	assert.Equal(t, time.Date(2022, time.October, 2, 12, 0, 0, 0, time.UTC), c)
}

func TestLoadFixedOffsetSchedule(t *testing.T) {
	noDotenv(t)
	path := filepath.Join(t.TempDir(), "cet.yaml")
	data := `schedule:
  welcome_date: "2022-07-15"
  initial_date: "2022-07-26"
  first_remaining_date: "2022-08-26"
  release_time: "14:00"
  cutoff_time: "14:00"
  location: "+01:00"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)

	sc, err := cfg.Schedule.Resolve()
	require.NoError(t, err)
	assert.Equal(t, int64(1657890000), sc.WelcomeDate.Unix())
	assert.Equal(t, int64(1658840400), sc.InitialDate.Unix())
	assert.Equal(t, int64(1661518800), sc.FirstRemaining.Unix())

	c, err := cfg.Schedule.CutoffAt(time.Date(2022, time.October, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, c.Equal(time.Date(2022, time.October, 1, 13, 0, 0, 0, time.UTC)), "cutoff %s", c)

	cfg.Schedule.Location = "+1:00"
	_, err = cfg.Schedule.Zone()
	assert.Error(t, err)
}
