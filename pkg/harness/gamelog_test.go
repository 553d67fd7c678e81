package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftline/uiharness/pkg/gamedriver"
	"github.com/driftline/uiharness/pkg/harness/report"
	"github.com/driftline/uiharness/pkg/harness/testutil"
)

func TestGameLogBuffer_AppendsInOrder(t *testing.T) {
	dir := t.TempDir()
	buf := newGameLogBuffer(dir, "MainMenuTest", "20240101_120000")

	require.NoError(t, buf.record(gamedriver.LogNotification{Message: "boot", StackTrace: "trace-a"}))
	require.NoError(t, buf.record(gamedriver.LogNotification{Message: "scene loaded", StackTrace: "trace-b"}))

	data, err := os.ReadFile(filepath.Join(dir, "MainMenuTest-Logs-20240101_120000.txt"))
	require.NoError(t, err)

	want := "boot\nStackTrace : trace-a\nscene loaded\nStackTrace : trace-b\n"
	assert.Equal(t, want, string(data))
}

func TestGameLogBuffer_ConcurrentRecords(t *testing.T) {
	dir := t.TempDir()
	buf := newGameLogBuffer(dir, "ConcurrencyTest", "stamp")

	const writers = 8
	const perWriter = 25

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				_ = buf.record(gamedriver.LogNotification{
					Message:    fmt.Sprintf("w%d-%d", i, j),
					StackTrace: "st",
				})
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(filepath.Join(dir, "ConcurrencyTest-Logs-stamp.txt"))
	require.NoError(t, err)

	// Every record is two lines; interleaving must never split a record.
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, writers*perWriter*2)
	for i := 1; i < len(lines); i += 2 {
		assert.Equal(t, "StackTrace : st", lines[i])
	}
}

func TestGameLogBuffer_FlushAttachesAndClears(t *testing.T) {
	dir := t.TempDir()
	buf := newGameLogBuffer(dir, "FlushTest", "stamp")
	require.NoError(t, buf.record(gamedriver.LogNotification{Message: "only line", StackTrace: "st"}))

	sink := &testutil.MemorySink{}
	rep := report.New(zap.NewNop(), sink, dir)

	buf.flush(rep)

	atts := sink.Attachments()
	require.Len(t, atts, 1)
	assert.Equal(t, "FlushTest-Logs-stamp.txt", atts[0].Name)
	assert.Contains(t, string(atts[0].Body), "only line")

	// Buffer is empty afterwards: another flush attaches nothing.
	buf.flush(rep)
	assert.Len(t, sink.Attachments(), 1)
}

func TestGameLogBuffer_FlushWithoutRecordsIsNoop(t *testing.T) {
	buf := newGameLogBuffer(t.TempDir(), "EmptyTest", "stamp")

	sink := &testutil.MemorySink{}
	rep := report.New(zap.NewNop(), sink, t.TempDir())

	buf.flush(rep)
	assert.Empty(t, sink.Attachments())
}
