package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velotools/velocheck/internal/probe"
)

func TestJSONWrite(t *testing.T) {
	results, summary := sampleRun()

	buf := &bytes.Buffer{}
	sink := NewJSON(newTestLogger(), buf)

	require.NoError(t, sink.Write(results, summary))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	sum, ok := doc["summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), sum["total"])
	assert.Equal(t, float64(1), sum["passed"])
	assert.Equal(t, float64(1), sum["failed"])
	assert.Equal(t, float64(1), sum["errored"])
	assert.Equal(t, float64(3000), sum["duration_ms"])

	list, ok := doc["results"].([]interface{})
	require.True(t, ok)
	require.Len(t, list, 3)

	passing, ok := list[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "enterprise", passing["endpoint"])
	assert.Equal(t, "enterprise/getEnterprise", passing["method"])
	assert.Equal(t, "pass", passing["status"])
	assert.NotContains(t, passing, "raw", "clean endpoints carry no payload")
	assert.NotContains(t, passing, "discrepancies")

	failing, ok := list[1].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "fail", failing["status"])
	assert.Contains(t, failing, "raw")

	ds, ok := failing["discrepancies"].([]interface{})
	require.True(t, ok)
	require.Len(t, ds, 2)

	first, ok := ds[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "0.logicalId", first["path"])
	assert.Equal(t, "missing_field", first["kind"])
	assert.Equal(t, "uuid", first["expected"])

	errored, ok := list[2].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "error", errored["status"])
	assert.NotContains(t, errored, "raw", "failed fetches have no payload to carry")
}

func TestJSONWriteEmptyRun(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewJSON(newTestLogger(), buf)

	require.NoError(t, sink.Write(nil, probe.Summary{}))

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	list, ok := doc["results"].([]interface{})
	require.True(t, ok)
	assert.Empty(t, list)
}
