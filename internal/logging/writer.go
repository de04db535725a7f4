package logging

import "os"

// zapLogWriter is the default io.Writer used when Configure isn't given a
// log file path: plain stderr.
type zapLogWriter struct{}

func (zapLogWriter) Write(p []byte) (int, error) {
	return os.Stderr.Write(p)
}
