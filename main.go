package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pipe01/tagcheck/internal/config"
	"github.com/pipe01/tagcheck/internal/tag"
	"github.com/pipe01/tagcheck/internal/workspace"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var (
	configPath    = kingpin.Flag("config", "YAML config file (defaults to "+config.DefaultPath+" if present)").Short('c').String()
	verbose       = kingpin.Flag("verbose", "Increase logging verbosity").Short('v').Counter()
	traceTokens   = kingpin.Flag("tokens", "Log every tag found while scanning").Bool()
	noDeclaration = kingpin.Flag("no-declaration", "Don't skip a leading <?xml declaration line").Bool()
	watch         = kingpin.Flag("watch", "Watch files for changes and check them again automatically").Short('w').Bool()
	files         = kingpin.Arg("files", "List of files to check").Default("input.xml").ExistingFiles()

	log = commonlog.GetLogger("tagcheck")
)

func main() {
	kingpin.Parse()

	commonlog.Configure(*verbose, nil)

	cfg, err := loadConfig()
	if err != nil {
		kingpin.Fatalf("failed to load config: %s", err)
	}

	ws := newWorkspace(cfg)

	if *watch {
		checkAll(ws)

		err := watchFiles(ws)
		if err != nil {
			kingpin.Fatalf("failed to watch files: %s", err)
		}
		return
	}

	if !checkAll(ws) {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Path() != "" {
		log.Infof("using config %s", cfg.Path())
	}

	if *noDeclaration {
		skip := false
		cfg.SkipDeclaration = &skip
	}

	return cfg, nil
}

func newWorkspace(cfg *config.Config) *workspace.Workspace {
	wd, _ := os.Getwd()
	ws := workspace.New(wd, cfg)

	ws.OnRead = func(name string) {
		fmt.Printf("Successfully read %s.\n", name)
	}
	if *traceTokens {
		ws.OnToken = func(tk tag.Token) {
			log.Noticef("%s %s", &tk.Start, tk)
		}
	}

	return ws
}

// checkAll checks every file and reports whether all of them are well-formed.
func checkAll(ws *workspace.Workspace) bool {
	ok := true

	for _, fname := range *files {
		if !checkFile(ws, fname) {
			ok = false
		}
	}

	return ok
}

func checkFile(ws *workspace.Workspace, fname string) bool {
	res, err := ws.Check(fname)
	if err != nil {
		reportError(os.Stderr, err)
		return false
	}

	log.Infof("%s: %d tags", res.File, res.Tags)
	fmt.Printf("%s: validation successful.\n", fname)
	return true
}

func reportError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)

	var terr *tag.Error
	if errors.As(err, &terr) {
		log.Infof("%s failed during %s phase", terr.Location.File, terr.Phase)
	}

	var unclosed *tag.UnclosedOpeningError
	if errors.As(err, &unclosed) {
		for _, tk := range unclosed.Open {
			fmt.Fprintf(w, "  %s still open since line %d\n", tk, tk.Line())
		}
	}
}

func watchFiles(ws *workspace.Workspace) error {
	watcher, err := NewWatcher(ws)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, f := range *files {
		err = watcher.WatchFile(f)
		if err != nil {
			return fmt.Errorf("watch file %q: %w", f, err)
		}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	log.Notice("watching files for changes...")

	<-ch
	return nil
}
