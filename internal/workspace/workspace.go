package workspace

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pipe01/tagcheck/internal/config"
	"github.com/pipe01/tagcheck/internal/scanner"
	"github.com/pipe01/tagcheck/internal/tag"
	"github.com/pipe01/tagcheck/internal/validator"
)

type Workspace struct {
	rootPath string
	cfg      *config.Config

	// OnRead is called once a document has been scanned successfully,
	// before it is validated.
	OnRead func(name string)

	// OnToken is passed through to the scanner.
	OnToken func(tag.Token)
}

type Result struct {
	File string
	Tags int
}

func New(rootPath string, cfg *config.Config) *Workspace {
	if cfg == nil {
		cfg = config.Default()
	}

	return &Workspace{
		rootPath: rootPath,
		cfg:      cfg,
	}
}

func (w *Workspace) Check(relPath string) (*Result, error) {
	fullPath := relPath
	if !filepath.IsAbs(fullPath) {
		fullPath = filepath.Join(w.rootPath, relPath)
	}

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return w.CheckReader(relPath, f)
}

func (w *Workspace) CheckWithContents(name string, contents []byte) (*Result, error) {
	return w.CheckReader(name, bytes.NewReader(contents))
}

// CheckReader scans the document and, only if that succeeds, validates the
// resulting stack. Structural problems are returned as *tag.Error.
func (w *Workspace) CheckReader(name string, r io.Reader) (*Result, error) {
	res := &Result{File: name}

	opts := w.cfg.ScannerOptions()
	opts.OnToken = func(tk tag.Token) {
		res.Tags++

		if w.OnToken != nil {
			w.OnToken(tk)
		}
	}

	stack, err := scanner.New(r, name, opts).Scan()
	if err != nil {
		if _, ok := err.(*tag.Error); ok {
			return nil, err
		}
		return nil, fmt.Errorf("scan file: %w", err)
	}

	if w.OnRead != nil {
		w.OnRead(name)
	}

	if err := validator.Validate(stack); err != nil {
		return nil, err
	}

	return res, nil
}
