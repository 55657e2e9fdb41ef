package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sla0ui/siteintel/internal/models"
	"github.com/Sla0ui/siteintel/internal/pipeline"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("SITEINTEL_FETCH_DEADLINE", "30s")
	t.Setenv("SITEINTEL_MAX_BULK_URLS", "50")
	t.Setenv("SITEINTEL_VERIFY_TLS", "false")
	t.Setenv("SITEINTEL_USER_AGENT", "test-agent")
	t.Setenv("SITEINTEL_BULK_DELAY", "not-a-duration")

	config := models.DefaultConfig()
	applyEnv(config)

	assert.Equal(t, 30*time.Second, config.FetchDeadline)
	assert.Equal(t, 50, config.MaxBulkURLs)
	assert.False(t, config.VerifyTLS)
	assert.Equal(t, "test-agent", config.UserAgent)
	assert.Equal(t, time.Second, config.BulkDelay, "unparsable values keep the default")
}

func TestLoadConfigFromFlags(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"extract"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--delay", "250ms", "--min-text", "500", "-q"}))

	config, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, config.BulkDelay)
	assert.Equal(t, 500, config.MinTextLength)
	assert.True(t, config.Quiet)
	assert.Equal(t, 45*time.Second, config.FetchDeadline)
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("SITEINTEL_MAX_BULK_URLS", "0")
	cmd, _, err := rootCmd.Find([]string{"bulk"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags(nil))

	_, err = loadConfig(cmd)
	assert.ErrorContains(t, err, "max bulk urls")
}

func TestReadURLsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "# targets\nhttps://a.test\n\n  https://b.test  \n#https://skipped.test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	urls, err := readURLsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, urls)
}

func TestReadURLsFromMissingFile(t *testing.T) {
	_, err := readURLsFromFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestCollectURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	require.NoError(t, os.WriteFile(path, []byte("https://a.test\n"), 0644))

	fromFile, err := collectURLs([]string{path})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test"}, fromFile)

	direct, err := collectURLs([]string{"https://x.test", " ", "https://y.test"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://x.test", "https://y.test"}, direct)
}

func TestBatches(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, batches(urls, 2))
	assert.Equal(t, [][]string{urls}, batches(urls, 20))
	assert.Len(t, batches(urls, 0), 5)
	assert.Nil(t, batches(nil, 3))
}

func TestGradeColor(t *testing.T) {
	assert.Equal(t, green("x"), gradeColor("A+")("x"))
	assert.Equal(t, yellow("x"), gradeColor("D")("x"))
	assert.Equal(t, red("x"), gradeColor("F")("x"))
}

type recordingRunner struct {
	calls    [][]string
	startsAt []time.Time
	doneAt   []time.Time
}

func (r *recordingRunner) RunBulk(ctx context.Context, urls []string, emit pipeline.EmitFunc) error {
	r.startsAt = append(r.startsAt, time.Now())
	r.calls = append(r.calls, urls)
	r.doneAt = append(r.doneAt, time.Now())
	return nil
}

func TestRunBatchesDelaysBetweenBatches(t *testing.T) {
	runner := &recordingRunner{}
	delay := 60 * time.Millisecond
	chunks := batches([]string{"a", "b", "c"}, 2)

	require.NoError(t, runBatches(context.Background(), runner, chunks, delay, func(models.BulkEvent) error { return nil }))

	require.Equal(t, chunks, runner.calls)
	assert.GreaterOrEqual(t, runner.startsAt[1].Sub(runner.doneAt[0]), delay-5*time.Millisecond)
}

func TestRunBatchesCancelled(t *testing.T) {
	runner := &recordingRunner{}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := runBatches(ctx, runner, batches([]string{"a", "b"}, 1), time.Hour, func(models.BulkEvent) error { return nil })

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, runner.calls, 1)
}
