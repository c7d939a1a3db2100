package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/require"

	"tableflip.dev/quicklog/pkg/store"
	"tableflip.dev/quicklog/pkg/tag"
)

type harness struct {
	t   *testing.T
	dir string
	db  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	color.NoColor = true
	homedir.DisableCache = true
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("QUICKLOG_CONFIG_PATH", dir)
	return &harness{t: t, dir: dir, db: filepath.Join(dir, "quicklog.db")}
}

func (h *harness) run(args ...string) string {
	h.t.Helper()
	out, err := h.try(args...)
	require.NoError(h.t, err, "quicklog %s\n%s", strings.Join(args, " "), out)
	return out
}

func (h *harness) try(args ...string) (string, error) {
	cmd := New()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--db", h.db}, args...))
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestTagCommands(t *testing.T) {
	h := newHarness(t)

	out := h.run("tag", "list")
	require.Contains(t, out, "Tags - 15 tags")
	require.Contains(t, out, "Energized")

	out = h.run("tag", "add", "Board games", "--category", "activity")
	require.Contains(t, out, "Board games")

	h.run("tag", "link", "board games", "Friend")
	out = h.run("tag", "related", "Friend")
	require.Contains(t, out, "Board games")

	h.run("tag", "related", "Friend", "--set", "Meal")
	out = h.run("tag", "related", "Friend")
	require.NotContains(t, out, "Board games")

	out = h.run("tag", "suggest", "Work")
	require.Contains(t, out, "Office")

	h.run("tag", "rm", "Board games")
	out = h.run("tag", "list")
	require.NotContains(t, out, "Board games")

	_, err := h.try("tag", "link", "Work", "Nope")
	require.Error(t, err)
}

func TestLogAndList(t *testing.T) {
	h := newHarness(t)

	out := h.run("log", "-t", "work", "-t", "Office", "--note", "standup", "--place", "HQ", "--lat", "52.5", "--lon", "13.4")
	require.Contains(t, out, "Entry saved")

	_, err := h.try("log", "-t", "Board games")
	require.Error(t, err)
	h.run("log", "-t", "Board games", "--create")

	_, err = h.try("log")
	require.ErrorContains(t, err, "Select at least one tag")

	out = h.run("entries", "-o", "json")
	var listed []struct {
		ID   int64 `json:"id"`
		Tags []struct {
			Label string `json:"label"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 2)

	var edit int64
	for _, e := range listed {
		if len(e.Tags) == 2 {
			edit = e.ID
		}
	}
	require.NotZero(t, edit)

	out = h.run("log", "--edit", itoa(edit), "-t", "Home")
	require.Contains(t, out, "Entry updated")

	out = h.run("entries", "--tag", "home", "--by", "location")
	require.Contains(t, out, "HQ - 1 entry")

	out = h.run("entries", "share", itoa(edit))
	require.Contains(t, out, "• tags: Home • location: HQ • note: standup")

	out = h.run("stats", "--last", "1d")
	require.Contains(t, out, "Stats · last 1d")
	require.Contains(t, out, "Entries")

	h.run("entries", "rm", itoa(edit))
	out = h.run("entries", "-o", "yaml")
	require.NotContains(t, out, "standup")
}

func TestLogSelectsTagByID(t *testing.T) {
	h := newHarness(t)
	h.run("tag", "list")

	db, err := store.Open(h.db)
	require.NoError(t, err)
	twin := tag.Tag{ID: "user_twin", Label: "Work", Category: tag.CategoryCustom}
	require.NoError(t, db.Tags().Upsert(context.Background(), twin))
	require.NoError(t, db.Close())

	h.run("log", "-t", twin.ID)
	out := h.run("entries", "-o", "json")
	var listed []struct {
		Tags []struct {
			ID string `json:"id"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Tags, 1)
	require.Equal(t, twin.ID, listed[0].Tags[0].ID)
}

func TestExportImportArchive(t *testing.T) {
	h := newHarness(t)
	h.run("log", "-t", "Work", "--place", "HQ", "--lat", "1", "--lon", "2")

	locations := filepath.Join(h.dir, "locations.csv")
	h.run("export", "locations", "--out", locations, "--archive")
	body, err := os.ReadFile(locations)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(body), "ID,Timestamp,Latitude,Longitude,Location,Tags\n"))

	out := h.run("import", "locations", locations)
	require.Contains(t, out, "Imported 1 locations")

	out = h.run("export", "entries")
	require.Equal(t, 3, strings.Count(out, "\n"), out)

	out = h.run("export", "locations", "--format", "json")
	require.Contains(t, out, `"total_entries": 2`)

	out = h.run("archive", "list", "-o", "json")
	var items []struct {
		Key  string `json:"key"`
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	require.Equal(t, "locations", items[0].Kind)

	out = h.run("archive", "show", items[0].Key)
	require.Equal(t, string(body), out)

	_, err = h.try("export", "tags", "--format", "json")
	require.Error(t, err)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	require.Contains(t, h.run("version", "-s"), "dev")
	_, err := h.try("version", "-o", "xml")
	require.Error(t, err)
}
