package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(t *testing.T) *History {
	t.Helper()

	h, err := NewHistory(newTestLogger(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = h.Close() })

	return h
}

func TestHistoryRecordsRun(t *testing.T) {
	results, summary := sampleRun()

	h := newTestHistory(t)

	require.NoError(t, h.Write(results, summary))

	var total, passed, failed, errored int
	row := h.db.QueryRow(`SELECT total, passed, failed, errored FROM runs`)
	require.NoError(t, row.Scan(&total, &passed, &failed, &errored))

	assert.Equal(t, 3, total)
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, errored)

	rows, err := h.db.Query(`SELECT endpoint, status, discrepancies, detail FROM results ORDER BY rowid`)
	require.NoError(t, err)

	defer func() { _ = rows.Close() }()

	type stored struct {
		endpoint, status, detail string
		discrepancies            int
	}

	var got []stored

	for rows.Next() {
		var s stored
		require.NoError(t, rows.Scan(&s.endpoint, &s.status, &s.discrepancies, &s.detail))

		got = append(got, s)
	}

	require.NoError(t, rows.Err())
	require.Len(t, got, 3)

	assert.Equal(t, stored{endpoint: "enterprise", status: "pass"}, got[0])

	assert.Equal(t, "enterprise_edges", got[1].endpoint)
	assert.Equal(t, "fail", got[1].status)
	assert.Equal(t, 2, got[1].discrepancies)
	assert.Contains(t, got[1].detail, "0.logicalId: missing_field")

	assert.Equal(t, "ws_hello", got[2].endpoint)
	assert.Equal(t, "error", got[2].status)
	assert.Contains(t, got[2].detail, "connection refused")
}

func TestHistoryAppendsAcrossRuns(t *testing.T) {
	results, summary := sampleRun()

	h := newTestHistory(t)

	require.NoError(t, h.Write(results, summary))
	require.NoError(t, h.Write(results, summary))

	var runs int
	require.NoError(t, h.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 2, runs)

	// Each run's results stay attached to their own run row.
	var attached int
	require.NoError(t, h.db.QueryRow(
		`SELECT COUNT(*) FROM results WHERE run_id = (SELECT MAX(id) FROM runs)`,
	).Scan(&attached))
	assert.Equal(t, len(results), attached)
}

func TestHistoryReopensExistingDatabase(t *testing.T) {
	results, summary := sampleRun()
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := NewHistory(newTestLogger(), path)
	require.NoError(t, err)
	require.NoError(t, first.Write(results, summary))
	require.NoError(t, first.Close())

	second, err := NewHistory(newTestLogger(), path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = second.Close() })

	require.NoError(t, second.Write(results, summary))

	var runs int
	require.NoError(t, second.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&runs))
	assert.Equal(t, 2, runs)
}

func TestHistoryUnwritablePath(t *testing.T) {
	_, err := NewHistory(newTestLogger(), filepath.Join(t.TempDir(), "missing", "history.db"))

	require.Error(t, err)
}
