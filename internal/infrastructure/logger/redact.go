package logger

import (
	"io"
	"regexp"
)

// redactions mask personal data and secrets before a line leaves the process
var redactions = []struct {
	re   *regexp.Regexp
	repl []byte
}{
	{regexp.MustCompile(`bot\d+:[\w-]+`), []byte("bot***")},
	{regexp.MustCompile(`token=[\w-]+`), []byte("token=***")},
	{regexp.MustCompile(`\bid=\d+`), []byte("id=***")},
	{regexp.MustCompile(`@\w+`), []byte("@***")},
	{regexp.MustCompile(`\d{9,}`), []byte("***ID***")},
}

// RedactingWriter masks bot tokens, @handles and long numeric ids in every write
type RedactingWriter struct {
	out io.Writer
}

// NewRedactingWriter wraps out
func NewRedactingWriter(out io.Writer) *RedactingWriter {
	return &RedactingWriter{out: out}
}

// Write implements io.Writer; it reports len(p) so callers do not see short writes
func (w *RedactingWriter) Write(p []byte) (int, error) {
	masked := Redact(p)
	if _, err := w.out.Write(masked); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Redact returns a masked copy of p
func Redact(p []byte) []byte {
	out := append([]byte(nil), p...)
	for _, r := range redactions {
		out = r.re.ReplaceAll(out, r.repl)
	}
	return out
}
