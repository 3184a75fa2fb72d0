// Command utap-check parses a timed-automata model, runs the
// semantic analyzer and prints the diagnostics. With --watch the
// analysis is re-run whenever the model file changes.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dannybpoulsen/utap/internal/check"
	"github.com/dannybpoulsen/utap/internal/diagnostic"
	"github.com/dannybpoulsen/utap/internal/loader"
	"github.com/dannybpoulsen/utap/internal/parser"
	"github.com/dannybpoulsen/utap/internal/system"
	"github.com/dannybpoulsen/utap/internal/vfs"
)

func main() {
	watch := flag.Bool("watch", false, "re-run the analysis when the model file changes")
	queries := flag.String("queries", "", "file with properties to check against the model")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: utap-check [flags] model.{xta,xml}\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	ok := analyze(path, *queries)
	if !*watch {
		if !ok {
			os.Exit(1)
		}
		return
	}

	watcher, err := vfs.NewFSWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "utap-check: %s\n", err)
		os.Exit(1)
	}
	defer watcher.Close()

	// Watching the directory survives editors that replace the file
	// on save.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		fmt.Fprintf(os.Stderr, "utap-check: %s\n", err)
		os.Exit(1)
	}

	abs, _ := filepath.Abs(path)
	for {
		select {
		case ev := <-watcher.Events():
			evAbs, _ := filepath.Abs(ev.Path)
			if evAbs != abs || ev.Op&(vfs.OpWrite|vfs.OpCreate|vfs.OpRename) == 0 {
				continue
			}
			// Editors often emit bursts of events; give the write a
			// moment to settle.
			time.Sleep(50 * time.Millisecond)
			analyze(path, *queries)
		case err := <-watcher.Errors():
			fmt.Fprintf(os.Stderr, "utap-check: watch: %s\n", err)
		}
	}
}

// analyze parses and checks one model file, printing diagnostics.
func analyze(path, queriesPath string) bool {
	handler := diagnostic.NewHandler()

	sys := parseModel(path, handler)
	if !handler.HasErrors() {
		if queriesPath != "" {
			data, err := os.ReadFile(queriesPath)
			if err != nil {
				fmt.Fprintf(os.Stderr, "utap-check: %s\n", err)
				return false
			}
			parser.ParseQueries(string(data), queriesPath, sys, handler)
		}
		if !handler.HasErrors() {
			check.AnalyzeSystem(sys, handler)
		}
	}
	ok := !handler.HasErrors()

	if report := handler.Report(); report != "" {
		fmt.Fprint(os.Stderr, report)
	}
	if ok {
		fmt.Fprintf(os.Stderr, "%s: ok (%d warnings)\n", path, handler.WarningCount())
	} else {
		fmt.Fprintf(os.Stderr, "%s: %d errors\n", path, handler.ErrorCount())
	}
	return ok
}

func parseModel(path string, handler *diagnostic.Handler) *system.System {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		sys, _ := loader.ParseXMLFile(path, handler)
		return sys
	default:
		sys, _ := parser.ParseXTAFile(path, handler)
		return sys
	}
}
