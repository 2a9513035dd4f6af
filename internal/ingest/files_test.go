package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LoganWeir/muni-predict/internal/gtfs"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestSelectFeedFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "sfmtaAVLRawData03152018.csv")
	touch(t, dir, "sfmtaAVLRawData03162018.csv")
	touch(t, dir, "sfmtaAVLRawData06012018.csv") // outside the period
	touch(t, dir, "notes.txt")

	period := gtfs.Period{
		FromDate: time.Date(2018, 3, 1, 0, 0, 0, 0, time.Local),
		ToDate:   time.Date(2018, 4, 1, 0, 0, 0, 0, time.Local),
	}

	files, err := SelectFeedFiles(dir, period, 0)
	require.NoError(t, err)
	require.Len(t, files, 2)

	// Newest first
	assert.Equal(t, "sfmtaAVLRawData03162018.csv", files[0].Name)
	assert.Equal(t, "sfmtaAVLRawData03152018.csv", files[1].Name)

	// Day cap
	files, err = SelectFeedFiles(dir, period, 1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "sfmtaAVLRawData03162018.csv", files[0].Name)
}

func TestLoadBlockAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.csv")
	content := "SIGNID,BLOCKNUM,BLOCKNAME\n" +
		"1234,102,3301\n" +
		"1234,103,3302\n" +
		"1233,102,9901\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	aliases, err := LoadBlockAliases(path, "1234", []string{"0102", "0103"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"3301": "102", "3302": "103"}, aliases)
	assert.Equal(t, []string{"3301", "3302"}, BlockNames(aliases))

	// Sign id scopes the mapping
	aliases, err = LoadBlockAliases(path, "1233", []string{"102"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"9901": "102"}, aliases)

	_, err = LoadBlockAliases(path, "0000", []string{"102"})
	assert.Error(t, err)
}
