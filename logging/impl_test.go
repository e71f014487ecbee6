package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	// Logger name.
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])

	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	if len(actualParts) == 5 {
		return
	}

	// JSON encoding of maps can be unpredictable because map iteration order can change between
	// runs. Parse the output into maps and assert on map equality.
	expectedMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(expectedParts[5]), &expectedMap), test.ShouldBeNil)
	actualMap := make(map[string]any)
	test.That(t, json.Unmarshal([]byte(actualParts[5]), &actualMap), test.ShouldBeNil)
	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := &impl{
		name:      "impl",
		level:     NewAtomicLevelAt(DEBUG),
		inUTC:     true,
		appenders: []Appender{NewWriterAppender(notStdout)},
	}

	// The default logger format is the time, level, name, file:line, message and optional fields.
	logger.Info("impl Info log")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	impl	logging/impl_test.go:67	impl Info log`)

	logger.Debugf("impl %s log", "Debugf")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	DEBUG	impl	logging/impl_test.go:67	impl Debugf log`)

	logger.Warnw("impl logw", "abi", "arm64-v8a", "jobs", 8)
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	impl	logging/impl_test.go:67	impl logw	{"abi":"arm64-v8a","jobs":8}`)
}

func TestLevelFiltering(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := NewWriterLogger("filter", notStdout)

	logger.Debug("hidden")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.SetLevel(DEBUG)
	logger.Debug("shown")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "shown")

	notStdout.Reset()
	logger.SetLevel(ERROR)
	logger.Warn("hidden")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)
	logger.CDebugf(EnableDebugMode(context.Background(), ""), "forced %d", 1)
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "forced 1")
}

func TestSubloggerNames(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("ndk").Sublogger("download")
	sub.Infow("fetched", "bytes", 10)

	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "ndk.download")
	test.That(t, entries[0].ContextMap()["bytes"], test.ShouldEqual, int64(10))
}

func TestAsZapUsesAppenders(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.SetLevel(INFO)
	zl := logger.AsZap()
	zl.Debugw("hidden")
	zl.Infow("process output", "name", "make")

	test.That(t, observed.FilterMessage("hidden").Len(), test.ShouldEqual, 0)
	test.That(t, observed.FilterMessage("process output").Len(), test.ShouldEqual, 1)
}

func TestLevelFromString(t *testing.T) {
	for inp, expected := range map[string]Level{
		"debug": DEBUG,
		"INFO":  INFO,
		"warn":  WARN,
		"Error": ERROR,
	} {
		level, err := LevelFromString(inp)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tool.log")
	file := NewFileAppender(path)
	logger := NewWriterLogger("file", &bytes.Buffer{})
	logger.AddAppender(file)

	logger.Infow("installed", "version", "r26b")
	test.That(t, file.Close(), test.ShouldBeNil)

	//nolint:gosec
	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	line := strings.TrimSuffix(string(data), "\n")
	parts := strings.Split(line, "\t")
	test.That(t, parts[1], test.ShouldEqual, "INFO")
	test.That(t, parts[2], test.ShouldEqual, "file")
	test.That(t, parts[len(parts)-1], test.ShouldEqual, `{"version":"r26b"}`)
}
