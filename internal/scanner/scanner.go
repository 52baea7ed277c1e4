package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pipe01/tagcheck/internal/tag"
	"github.com/tliron/commonlog"
)

const declarationPrefix = "<?xml"

const DefaultMaxLineLength = 1024 * 1024

var log = commonlog.GetLogger("tagcheck.scanner")

type Options struct {
	// SkipDeclaration ignores the first line if it starts with "<?xml".
	SkipDeclaration bool

	// MaxLineLength is the longest line, in bytes, the scanner accepts.
	MaxLineLength int

	// OnToken is called for every tag found, opening and closing, in document order.
	OnToken func(tag.Token)
}

func DefaultOptions() Options {
	return Options{
		SkipDeclaration: true,
		MaxLineLength:   DefaultMaxLineLength,
	}
}

type Scanner struct {
	r        io.Reader
	filename string
	opts     Options

	line  int
	stack *tag.Stack[tag.Token]
}

func New(r io.Reader, fileName string, opts Options) *Scanner {
	if opts.MaxLineLength <= 0 {
		opts.MaxLineLength = DefaultMaxLineLength
	}

	return &Scanner{
		r:        r,
		filename: fileName,
		opts:     opts,
	}
}

// ScanLines scans an in-memory document given as separate lines.
func ScanLines(lines []string, fileName string, opts Options) (*tag.Stack[tag.Token], error) {
	return New(strings.NewReader(strings.Join(lines, "\n")), fileName, opts).Scan()
}

// Scan reads the whole document and returns the residual stack of open tags,
// which is empty when err is nil.
func (s *Scanner) Scan() (*tag.Stack[tag.Token], error) {
	s.line = 0
	s.stack = tag.NewStack[tag.Token]()

	// Room for a trailing "\r\n" on a line of exactly MaxLineLength bytes
	bufMax := s.opts.MaxLineLength + 2

	sc := bufio.NewScanner(s.r)
	sc.Buffer(make([]byte, 0, min(4096, bufMax)), bufMax)

	checkDeclaration := s.opts.SkipDeclaration

	for sc.Scan() {
		s.line++
		line := sc.Text()

		if len(line) > s.opts.MaxLineLength {
			return s.stack, fmt.Errorf("read line %d: %w", s.line, bufio.ErrTooLong)
		}

		if checkDeclaration {
			checkDeclaration = false

			if strings.HasPrefix(line, declarationPrefix) {
				log.Debugf("skipping declaration at %s:%d", s.filename, s.line)
				continue
			}
		}

		if err := s.scanLine(line); err != nil {
			return s.stack, err
		}
	}
	if err := sc.Err(); err != nil {
		return s.stack, fmt.Errorf("read line %d: %w", s.line+1, err)
	}

	if top, ok := s.stack.Peek(); ok {
		return s.stack, s.errorAt(&tag.UnclosedOpeningError{
			Name: top.Name,
			Open: s.stack.Items(),
		}, top.Start)
	}

	return s.stack, nil
}

func (s *Scanner) scanLine(line string) error {
	for i := 0; i < len(line); i++ {
		if line[i] != '<' {
			continue
		}

		start := tag.Location{
			File:   s.filename,
			Line:   s.line,
			Column: utf8.RuneCountInString(line[:i]) + 1,
		}

		nameStart := i + 1
		opening := true

		if nameStart < len(line) && line[nameStart] == '/' {
			opening = false
			nameStart++
		}

		// Tags can't span multiple lines
		nameLen := strings.IndexByte(line[nameStart:], '>')
		if nameLen < 0 {
			return s.errorAt(tag.ErrMalformedTag, start)
		}

		tk := tag.Token{
			Name:    line[nameStart : nameStart+nameLen],
			Start:   start,
			Opening: opening,
		}
		i = nameStart + nameLen

		if err := s.emit(tk); err != nil {
			return err
		}
	}

	return nil
}

func (s *Scanner) emit(tk tag.Token) error {
	log.Debugf("found %s at %s", tk, &tk.Start)

	if s.opts.OnToken != nil {
		s.opts.OnToken(tk)
	}

	if tk.Opening {
		s.stack.Push(tk)
		return nil
	}

	top, ok := s.stack.Peek()
	if !ok || top.Name != tk.Name {
		return s.errorAt(&tag.MismatchedClosingError{Name: tk.Name}, tk.Start)
	}

	s.stack.Pop()
	return nil
}

func (s *Scanner) errorAt(err error, loc tag.Location) error {
	return &tag.Error{
		Phase:    tag.PhaseScan,
		Inner:    err,
		Location: loc,
	}
}
