// Command fcc compiles a Haskell-98-subset source file (or several, as one
// batch with cross-file imports resolved) to Gallina source text.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/pipeline"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		outputDir      = flag.String("output", ".", "directory to write compiled .v files into")
		baseLibraryDir = flag.String("base-library", "", "directory containing the Base Gallina library")
		noCoqProject   = flag.Bool("no-coq-project", false, "suppress _CoqProject emission")
		watch          = flag.Bool("watch", false, "re-compile the given files on each Enter")
		helpFlag       = flag.Bool("help", false, "show this help message")
	)
	flag.Parse()

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		if flag.NArg() == 0 {
			os.Exit(1)
		}
		return
	}

	files := flag.Args()

	if *watch {
		runWatch(files, *outputDir, *baseLibraryDir, *noCoqProject)
		return
	}

	ok := compileAndWrite(files, *outputDir, *baseLibraryDir, *noCoqProject)
	if !ok {
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("fcc - Haskell-98-subset to Gallina compiler"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  fcc [flags] <file.hs> [file.hs ...]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --output DIR          directory to write compiled .v files into (default \".\")")
	fmt.Println("  --base-library DIR    directory containing the Base Gallina library")
	fmt.Println("  --no-coq-project      suppress _CoqProject emission")
	fmt.Println("  --watch               re-compile the given files on each Enter")
	fmt.Println("  --help                show this help message")
}

// compileAndWrite runs the pipeline over files and writes one .v file per
// successfully converted module into outputDir, reporting every file's
// diagnostics regardless of whether earlier files in the batch failed.
// Returns false if any file failed.
func compileAndWrite(files []string, outputDir, baseLibraryDir string, noCoqProject bool) bool {
	sources, ok := readSources(files)
	if !ok {
		return false
	}

	results, anyFatal := pipeline.Run(pipeline.Config{}, sources)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot create output directory %q: %v\n", red("Error"), outputDir, err)
		return false
	}

	var written []string
	for _, res := range results {
		printReports(res.ModuleName, res.Reports)
		if res.Fatal {
			continue
		}
		outPath := filepath.Join(outputDir, res.ModuleName+".v")
		if err := os.WriteFile(outPath, []byte(res.Gallina), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write %q: %v\n", red("Error"), outPath, err)
			return false
		}
		fmt.Printf("%s wrote %s\n", green("✓"), outPath)
		written = append(written, res.ModuleName)
	}

	if !noCoqProject && len(written) > 0 {
		if err := writeCoqProject(outputDir, baseLibraryDir, written); err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot write _CoqProject: %v\n", red("Error"), err)
			return false
		}
	}

	return !anyFatal
}

func readSources(files []string) ([]pipeline.Source, bool) {
	sources := make([]pipeline.Source, 0, len(files))
	ok := true
	for _, f := range files {
		content, err := os.ReadFile(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: cannot read file %q: %v\n", red("Error"), f, err)
			ok = false
			continue
		}
		sources = append(sources, pipeline.Source{Code: string(content), Filename: f})
	}
	return sources, ok
}

func printReports(moduleName string, reports []diagnostics.Report) {
	for _, rep := range reports {
		var label string
		switch rep.Severity {
		case diagnostics.Error:
			label = red("error")
		case diagnostics.Warning:
			label = yellow("warning")
		default:
			label = cyan("info")
		}
		fmt.Fprintf(os.Stderr, "%s: %s: [%s] %s\n", moduleName, label, rep.Code, rep.Message)
	}
}

// writeCoqProject emits a _CoqProject file listing every compiled module's
// .v file plus, if given, a -R mapping for the base library directory.
func writeCoqProject(outputDir, baseLibraryDir string, moduleNames []string) error {
	var b strings.Builder
	if baseLibraryDir != "" {
		fmt.Fprintf(&b, "-R %s Base\n", baseLibraryDir)
	}
	for _, name := range moduleNames {
		fmt.Fprintf(&b, "%s.v\n", name)
	}
	return os.WriteFile(filepath.Join(outputDir, "_CoqProject"), []byte(b.String()), 0o644)
}

// runWatch re-runs compileAndWrite over the same file set each time the
// user presses Enter at an empty line or types "r"/"reload"; :quit/:q
// exits. This is a convenience surface for iterating on a module without
// re-invoking the CLI each time, not a language REPL: no expression is
// ever evaluated, since this compiler never executes the source language
// or the Gallina it emits.
func runWatch(files []string, outputDir, baseLibraryDir string, noCoqProject bool) {
	fmt.Printf("%s watching %s\n", cyan("fcc"), strings.Join(files, ", "))
	fmt.Println("Press Enter or type r/reload to recompile, q/quit to exit.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	compileAndWrite(files, outputDir, baseLibraryDir, noCoqProject)

	for {
		input, err := line.Prompt("fcc> ")
		if err != nil {
			fmt.Println()
			return
		}
		input = strings.TrimSpace(input)
		switch input {
		case "q", "quit", ":q", ":quit":
			return
		case "", "r", "reload", ":r", ":reload":
			line.AppendHistory(input)
			compileAndWrite(files, outputDir, baseLibraryDir, noCoqProject)
		default:
			fmt.Printf("unknown command %q; press Enter or type r/reload, q/quit\n", input)
		}
	}
}
