package tag

import "fmt"

type Location struct {
	File string

	// 1-based
	Line, Column int
}

func (l *Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Token is a single tag occurrence found by the scanner.
type Token struct {
	Name    string
	Start   Location
	Opening bool
}

func (t Token) Line() int {
	return t.Start.Line
}

func (t Token) String() string {
	if t.Opening {
		return fmt.Sprintf("<%s>", t.Name)
	}

	return fmt.Sprintf("</%s>", t.Name)
}
