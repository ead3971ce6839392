package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMetric is the structured record shape persisted by the file sink in
// these tests. Both fields must be present for a record to conform.
type testMetric struct {
	Field1 string `json:"field1" validate:"required"`
	Field2 int    `json:"field2" validate:"required"`
}

func readLogFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}

func TestSetup_NoModelPersistsEverything(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	svc, err := Setup(logfile, 1, nil)
	require.NoError(t, err)

	svc.Info("plain record without a model")
	svc.Info(`{"field1":"Custom log","field2":123}`)
	require.NoError(t, svc.Close())

	content := readLogFile(t, logfile)
	assert.Contains(t, content, "plain record without a model")
	assert.Contains(t, content, "Custom log")
}

func TestSetup_ModelGatesFileSink(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	var console threadSafeBuffer
	cfg := DefaultConfig()
	cfg.LogFile = logfile
	cfg.ConsoleNoColor = true

	filter, err := ModelValidator(testMetric{})
	require.NoError(t, err)

	svc := &Service{Config: cfg, FileFilter: filter, consoleOut: &console}
	require.NoError(t, svc.Initialize())

	svc.Info("Normal log. Will only appear in console")
	svc.Info(`{"field1":"Custom log","field2":123}`)
	require.NoError(t, svc.Close())

	out := console.String()
	assert.Contains(t, out, "Normal log. Will only appear in console")
	assert.Contains(t, out, "Custom log")

	content := readLogFile(t, logfile)
	assert.NotContains(t, content, "Normal log. Will only appear in console")
	assert.Contains(t, content, "Custom log")
}

func TestSetup_NonConformingStructuredRecordDropped(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	svc, err := Setup(logfile, 1, testMetric{})
	require.NoError(t, err)

	// JSON, but field2 has the wrong type
	svc.Info(`{"field1":"bad","field2":"not an int"}`)
	// JSON, but field2 is missing
	svc.Info(`{"field1":"incomplete"}`)
	// conforming
	svc.Info(`{"field1":"good","field2":7}`)
	require.NoError(t, svc.Close())

	content := readLogFile(t, logfile)
	assert.NotContains(t, content, "bad")
	assert.NotContains(t, content, "incomplete")
	assert.Contains(t, content, "good")
}

func TestSetup_PointerModel(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	svc, err := Setup(logfile, 1, &testMetric{})
	require.NoError(t, err)

	svc.Info(`{"field1":"via pointer","field2":1}`)
	require.NoError(t, svc.Close())

	assert.Contains(t, readLogFile(t, logfile), "via pointer")
}

func TestSetup_InvalidPoolSize(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	_, err := Setup(logfile, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgConfigInvalid)

	_, err = Setup(logfile, -3, nil)
	require.Error(t, err)
}

func TestSetup_InvalidModel(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	_, err := Setup(logfile, 1, "not a struct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
}

func TestSetup_EmptyLogfile(t *testing.T) {
	_, err := Setup("", 1, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), errMsgConfigInvalid)
}

// Two Setup calls yield two independent live services, each with its own
// file sink. There is no hidden registry to stack or replace handlers in.
func TestSetupTwiceIndependentServices(t *testing.T) {
	dir := t.TempDir()
	fileA := filepath.Join(dir, "a.log")
	fileB := filepath.Join(dir, "b.log")

	svcA, err := Setup(fileA, 1, nil)
	require.NoError(t, err)
	svcB, err := Setup(fileB, 1, nil)
	require.NoError(t, err)

	svcA.Info("record for a")
	svcB.Info("record for b")

	require.NoError(t, svcA.Close())
	require.NoError(t, svcB.Close())

	contentA := readLogFile(t, fileA)
	contentB := readLogFile(t, fileB)

	assert.Contains(t, contentA, "record for a")
	assert.NotContains(t, contentA, "record for b")
	assert.Contains(t, contentB, "record for b")
	assert.NotContains(t, contentB, "record for a")
}

func TestSetup_MultiWorkerPoolDeliversAll(t *testing.T) {
	logfile := filepath.Join(t.TempDir(), "testing.log")

	svc, err := Setup(logfile, 4, nil)
	require.NoError(t, err)

	const records = 100
	for i := 0; i < records; i++ {
		svc.Infof("record %d", i)
	}
	require.NoError(t, svc.Close())

	lines := strings.Count(readLogFile(t, logfile), "\n")
	assert.Equal(t, records, lines)
}
