package main

import (
	goerrors "errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/pipe01/tagcheck/errors"
	"github.com/pipe01/tagcheck/internal/config"
	"github.com/pipe01/tagcheck/internal/tag"
	"github.com/pipe01/tagcheck/internal/workspace"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "tagcheck"

var version string = "0.0.1"
var handler protocol.Handler

var documents = map[string]string{}

var log = commonlog.GetLogger("tagcheck.lsp")

func main() {
	// This increases logging verbosity (optional)
	commonlog.Configure(1, nil)

	protocol.SetTraceValue(protocol.TraceValueMessage)

	handler = protocol.Handler{
		Initialize:  initialize,
		Initialized: initialized,
		Shutdown:    shutdown,
		SetTrace:    setTrace,
		TextDocumentDidOpen: func(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
			documents[params.TextDocument.URI] = params.TextDocument.Text

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidChange: func(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
			content, ok := documents[params.TextDocument.URI]
			if !ok {
				return nil
			}

			for _, change := range params.ContentChanges {
				switch change := change.(type) {
				case protocol.TextDocumentContentChangeEventWhole:
					content = change.Text

				case protocol.TextDocumentContentChangeEvent:
					startIndex, endIndex := change.Range.IndexesIn(content)
					content = content[:startIndex] + change.Text + content[endIndex:]
				}
			}
			documents[params.TextDocument.URI] = content

			return handleDocument(context, params.TextDocument.URI)
		},
		TextDocumentDidClose: func(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
			delete(documents, params.TextDocument.URI)

			context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
				URI:         params.TextDocument.URI,
				Diagnostics: []protocol.Diagnostic{},
			})
			return nil
		},
	}

	server := server.NewServer(&handler, lsName, false)

	server.RunStdio()
}

// handleDocument checks the stored contents of docURI and publishes the result
// as diagnostics, clearing them when the document is well-formed.
func handleDocument(context *glsp.Context, docURI string) error {
	url, err := url.Parse(docURI)
	if err != nil {
		return fmt.Errorf("parse document uri: %w", err)
	}
	if url.Scheme != "file" {
		return fmt.Errorf("invalid document uri scheme %q", url.Scheme)
	}

	contents, ok := documents[docURI]
	if !ok {
		return nil
	}

	dir := filepath.Dir(url.Path)

	cfg, err := config.LoadDir(dir)
	if err != nil {
		log.Warningf("using default config for %q: %s", docURI, err)
		cfg = config.Default()
	}

	ws := workspace.New(dir, cfg)

	res, err := ws.CheckWithContents(filepath.Base(url.Path), []byte(contents))
	if err == nil {
		log.Debugf("%s: %d tags, no errors", res.File, res.Tags)
	}

	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diagnostics(docURI, err),
	})

	return nil
}

func diagnostics(docURI string, err error) []protocol.Diagnostic {
	diag := []protocol.Diagnostic{}
	if err == nil {
		return diag
	}

	var poserr errors.SituatedErr

	if !goerrors.As(err, &poserr) {
		return append(diag, protocol.Diagnostic{
			Severity: ptr(protocol.DiagnosticSeverityError),
			Source:   ptr(lsName),
			Message:  err.Error(),
		})
	}

	source := lsName

	var terr *tag.Error
	if goerrors.As(err, &terr) {
		source = fmt.Sprintf("%s/%s", lsName, terr.Phase)
	}

	d := protocol.Diagnostic{
		Range:    rangeAt(poserr.At()),
		Severity: ptr(protocol.DiagnosticSeverityError),
		Source:   ptr(source),
		Message:  poserr.Unwrap().Error(),
	}

	var unclosed *tag.UnclosedOpeningError
	if goerrors.As(err, &unclosed) {
		for _, tk := range unclosed.Open {
			d.RelatedInformation = append(d.RelatedInformation, protocol.DiagnosticRelatedInformation{
				Location: protocol.Location{
					URI:   protocol.DocumentUri(docURI),
					Range: rangeAt(tk.Start),
				},
				Message: fmt.Sprintf("%s still open", tk),
			})
		}
	}

	return append(diag, d)
}

func initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	capabilities := handler.CreateServerCapabilities()

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(context *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func setTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func ptr[T any](v T) *T {
	return &v
}

func rangeAt(l tag.Location) protocol.Range {
	return protocol.Range{
		Start: pos(l),
		End:   pos(l),
	}
}

// pos converts a 1-based document location to a 0-based LSP position.
func pos(l tag.Location) protocol.Position {
	return protocol.Position{
		Line:      uint32(max(l.Line-1, 0)),
		Character: uint32(max(l.Column-1, 0)),
	}
}
