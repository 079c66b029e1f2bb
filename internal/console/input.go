package console

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// errClosed ends the session when stdin runs out.
var errClosed = errors.New("input closed")

// lineReader reads prompted answers one line at a time.
type lineReader struct {
	src io.Reader
	r   *bufio.Reader
}

func newLineReader(src io.Reader) *lineReader {
	return &lineReader{src: src, r: bufio.NewReader(src)}
}

// line returns the next line without its terminator. A final line that
// lacks a newline is still returned; errClosed follows it.
func (l *lineReader) line() (string, error) {
	s, err := l.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimRight(s, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errClosed
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// password reads a line without echo when the source is a terminal.
func (l *lineReader) password() (string, error) {
	if f, ok := l.src.(*os.File); ok && term.IsTerminal(int(f.Fd())) && l.r.Buffered() == 0 {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return l.line()
}

// interactive reports whether passwords are read without echo.
func (l *lineReader) interactive() bool {
	f, ok := l.src.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
