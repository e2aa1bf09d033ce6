package cmd_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedsim/archive"
	"feedsim/buffer"
	"feedsim/catalog"
	"feedsim/cmd"
	"feedsim/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := cmd.RootApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(append([]string{"feedsim", "--log-level", "error"}, args...))
	return out.String(), err
}

func parseLines(t *testing.T, out string) []models.Record {
	t.Helper()
	var records []models.Record
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var record models.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &record))
		records = append(records, record)
	}
	return records
}

func loadBuffer(t *testing.T, path string) []models.Record {
	t.Helper()
	records, err := buffer.NewStore(path).Load(context.Background())
	require.NoError(t, err)
	return records
}

func TestGeneratePrintsRecords(t *testing.T) {
	bufferPath := filepath.Join(t.TempDir(), "pathway_data.json")

	out, err := run(t, "generate", "--count", "3", "--buffer", bufferPath)
	require.NoError(t, err)

	records := parseLines(t, out)
	require.Len(t, records, 3)

	cat := catalog.Default()
	for _, record := range records {
		source, ok := cat.Source(record.SourceName)
		require.True(t, ok)
		assert.Contains(t, cat.TitlesFor(source.Category), record.Title)
	}

	_, err = os.Stat(bufferPath)
	assert.ErrorIs(t, err, os.ErrNotExist, "buffer is only written with --write")
}

func TestGenerateWriteTrimsToCapacity(t *testing.T) {
	bufferPath := filepath.Join(t.TempDir(), "pathway_data.json")

	out, err := run(t, "generate", "-n", "5", "--write", "--capacity", "2", "--buffer", bufferPath)
	require.NoError(t, err)

	printed := parseLines(t, out)
	require.Len(t, printed, 5)
	assert.Equal(t, printed[3:], loadBuffer(t, bufferPath))
}

func TestGenerateWriteArchivesRecords(t *testing.T) {
	dir := t.TempDir()
	bufferPath := filepath.Join(dir, "pathway_data.json")
	archivePath := filepath.Join(dir, "archive.db")

	_, err := run(t, "generate", "-n", "4", "--write", "--capacity", "2", "--buffer", bufferPath, "--archive", archivePath)
	require.NoError(t, err)

	a, err := archive.Open(context.Background(), archivePath)
	require.NoError(t, err)
	defer a.Close()

	count, err := a.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.Len(t, loadBuffer(t, bufferPath), 2)
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	bufferPath := filepath.Join(dir, "from-config.json")
	configPath := filepath.Join(dir, "feedsim.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[buffer]
path = "`+filepath.ToSlash(bufferPath)+`"
capacity = 3
`), 0644))

	_, err := run(t, "generate", "-n", "5", "--write", "--config", configPath)
	require.NoError(t, err)
	assert.Len(t, loadBuffer(t, bufferPath), 3)

	_, err = run(t, "generate", "-n", "5", "--write", "--config", configPath, "--capacity", "1")
	require.NoError(t, err)
	assert.Len(t, loadBuffer(t, bufferPath), 1)
}

func TestMissingExplicitConfigFails(t *testing.T) {
	_, err := run(t, "show", "--config", filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestInvalidSettingsFail(t *testing.T) {
	_, err := run(t, "run", "--min-interval", "10s", "--max-interval", "1s",
		"--buffer", filepath.Join(t.TempDir(), "pathway_data.json"))
	assert.ErrorContains(t, err, "min_interval cannot exceed")
}

func TestShow(t *testing.T) {
	bufferPath := filepath.Join(t.TempDir(), "pathway_data.json")

	_, err := run(t, "generate", "-n", "4", "--write", "--buffer", bufferPath)
	require.NoError(t, err)

	out, err := run(t, "show", "--buffer", bufferPath, "--limit", "2")
	require.NoError(t, err)

	var shown []models.Record
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, loadBuffer(t, bufferPath)[2:], shown)
}

func TestShowMalformedBuffer(t *testing.T) {
	bufferPath := filepath.Join(t.TempDir(), "pathway_data.json")
	require.NoError(t, os.WriteFile(bufferPath, []byte("[{"), 0644))

	out, err := run(t, "show", "--buffer", bufferPath)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", out)
}

func TestMigrateTidyRollback(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "archive.db")

	_, err := run(t, "migrate", "--archive", archivePath)
	require.NoError(t, err)

	out, err := run(t, "tidy", "--archive", archivePath)
	require.NoError(t, err)
	assert.Equal(t, "Removed 0 records\n", out)

	_, err = run(t, "rollback", "--archive", archivePath)
	require.NoError(t, err)
}

func TestArchiveCommandsNeedPath(t *testing.T) {
	t.Setenv("FEEDSIM_ARCHIVE", "")
	_, err := run(t, "migrate")
	assert.ErrorContains(t, err, "please specify an archive")
}

func TestInvalidLogLevel(t *testing.T) {
	app := cmd.RootApp()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	err := app.Run([]string{"feedsim", "--log-level", "loud", "show"})
	assert.Error(t, err)
}

func TestSubscribeRejectsNonPositiveInterval(t *testing.T) {
	bufferPath := filepath.Join(t.TempDir(), "pathway_data.json")

	for _, interval := range []string{"0s", "-1s"} {
		t.Run(interval, func(t *testing.T) {
			_, err := run(t, "subscribe", "--buffer", bufferPath, "--poll-interval", interval)
			assert.ErrorContains(t, err, "poll-interval must be positive")
		})
	}
}

func TestSubscribeFromStart(t *testing.T) {
	bufferPath := filepath.Join(t.TempDir(), "pathway_data.json")
	_, err := run(t, "generate", "-n", "3", "--write", "--buffer", bufferPath)
	require.NoError(t, err)

	app := cmd.RootApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err = app.RunContext(ctx, []string{"feedsim", "--log-level", "error", "subscribe",
		"--buffer", bufferPath, "--poll-interval", "20ms", "--from-start"})
	require.NoError(t, err)

	assert.Equal(t, loadBuffer(t, bufferPath), parseLines(t, out.String()),
		"every buffered record is printed once")
}

func TestArchiveCommandsReadConfigFile(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "from-config.db")
	configPath := filepath.Join(dir, "feedsim.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[archive]
path = "`+filepath.ToSlash(archivePath)+`"
`), 0644))

	_, err := run(t, "migrate", "--config", configPath)
	require.NoError(t, err)
	_, err = os.Stat(archivePath)
	require.NoError(t, err)

	out, err := run(t, "tidy", "--config", configPath)
	require.NoError(t, err)
	assert.Equal(t, "Removed 0 records\n", out)

	_, err = run(t, "rollback", "--config", configPath)
	require.NoError(t, err)
}

func TestArchiveFlagOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "feedsim.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
[archive]
path = "`+filepath.ToSlash(filepath.Join(dir, "from-config.db"))+`"
`), 0644))
	flagPath := filepath.Join(dir, "from-flag.db")

	_, err := run(t, "migrate", "--config", configPath, "--archive", flagPath)
	require.NoError(t, err)

	_, err = os.Stat(flagPath)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "from-config.db"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
