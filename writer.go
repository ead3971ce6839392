package logging

import (
	"encoding/json"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func (s *Service) newRollingFileWriter() *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   s.Config.LogFile,
		MaxBackups: s.Config.LogFileMaxBackups,
		MaxAge:     s.Config.LogFileMaxAgeDays,
		MaxSize:    s.Config.LogFileMaxSizeMB,
		Compress:   s.Config.LogFileCompress,
	}
}

func (s *Service) newConsoleWriter() zerolog.ConsoleWriter {
	out := s.consoleOut
	if out == nil {
		out = os.Stderr
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    s.Config.ConsoleNoColor,
		TimeFormat: s.Config.ConsoleTimeFormat,
	}
}

// initializeWriters assembles the sink chain: an unfiltered console writer
// and the rolling file writer behind the record filter. The console writer
// comes first so it sees every record even when the file sink drops it.
func (s *Service) initializeWriters() io.Writer {
	s.fileWriter = s.newRollingFileWriter()

	writers := []io.Writer{
		s.newConsoleWriter(),
		&filterWriter{out: s.fileWriter, accept: s.FileFilter},
	}
	return io.MultiWriter(writers...)
}

// filterWriter gates a sink with a RecordValidator. Each Write is one
// complete zerolog event line; the record's message payload is extracted and
// checked, and non-conforming records are silently discarded. A nil
// validator accepts everything.
type filterWriter struct {
	out    io.Writer
	accept RecordValidator
}

func (f *filterWriter) Write(p []byte) (int, error) {
	if f.accept != nil && !f.conforms(p) {
		return len(p), nil
	}
	return f.out.Write(p)
}

func (f *filterWriter) conforms(event []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(event, &fields); err != nil {
		return false
	}

	raw, ok := fields[zerolog.MessageFieldName]
	if !ok {
		return false
	}

	var payload string
	if err := json.Unmarshal(raw, &payload); err != nil {
		return false
	}

	return f.accept([]byte(payload))
}
