package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalRecordsAndSummarizes(t *testing.T) {
	j := openTemp(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	j.Add(Record{RunID: "a", Action: "volume_up", Chord: "Ctrl+Shift+=", Started: base, Duration: 3 * time.Millisecond})
	j.Add(Record{RunID: "a", Action: "volume_up", Chord: "Ctrl+Shift+=", Started: base.Add(time.Second)})
	j.Add(Record{RunID: "a", Action: "open", Chord: "Ctrl+Alt+C", Started: base.Add(2 * time.Second), Err: "file not found"})
	j.Add(Record{RunID: "b", Action: "open", Chord: "Ctrl+Alt+C", Started: base.Add(3 * time.Second)})

	require.Eventually(t, func() bool {
		recent, err := j.Recent(10)
		return err == nil && len(recent) == 4
	}, 2*time.Second, 10*time.Millisecond)

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].RunID)
	assert.Equal(t, "file not found", recent[1].Err)
	assert.Equal(t, base.Add(2*time.Second).UnixMilli(), recent[1].Started.UnixMilli())

	all, err := j.Summarize("")
	require.NoError(t, err)
	assert.Equal(t, []Summary{{"open", 2, 1}, {"volume_up", 2, 0}}, all)

	runA, err := j.Summarize("a")
	require.NoError(t, err)
	assert.Equal(t, []Summary{{"open", 1, 1}, {"volume_up", 2, 0}}, runA)
}

func TestJournalClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, nil)
	require.NoError(t, err)
	j.Add(Record{RunID: "a", Action: "quit", Started: time.Now()})
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	j.Add(Record{RunID: "a", Action: "quit"})
	_, err = j.Recent(1)
	assert.ErrorIs(t, err, ErrClosed)

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	recent, err := reopened.Recent(5)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestJournalStopFlushesBeforeQueries(t *testing.T) {
	j := openTemp(t)
	for i := 0; i < 20; i++ {
		j.Add(Record{RunID: "run", Action: "scroll", Started: time.Now()})
	}
	j.Stop()
	j.Add(Record{RunID: "run", Action: "scroll", Started: time.Now()})

	rows, err := j.Summarize("run")
	require.NoError(t, err)
	assert.Equal(t, []Summary{{"scroll", 20, 0}}, rows)
}
