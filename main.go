//go:build !desktop

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/feasible/pkg/kernel/sdfx"
	"github.com/chazu/feasible/pkg/polytope"
)

// The headless build evaluates one problem script and prints the result as
// JSON. Build with -tags desktop for the interactive viewer.
func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("feasible", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "problem script to evaluate (\"-\" for stdin; default problem when empty)")
	volume := fs.Bool("volume", false, "mesh the feasible region with the geometry kernel")
	kernelName := fs.String("kernel", KernelSdfx, "geometry kernel for -volume: sdfx or manifold")
	cells := fs.Int("cells", sdfx.DefaultMeshCells, "sdfx marching cubes cells along the longest axis")
	script := fs.Bool("script", false, "print the problem as a script instead of the result")
	verbose := fs.Bool("v", false, "log pipeline progress to stderr")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *verbose {
		polytope.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer polytope.SetLogger(nil)
	}

	k, err := newKernel(*kernelName, *cells)
	if err != nil {
		fmt.Fprintf(stderr, "feasible: %v\n", err)
		return 2
	}
	app := NewAppWithKernel(k)
	defer app.session.Close()
	app.SetVolume(*volume)

	result := app.Current()
	if *file != "" {
		source, err := readSource(*file, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "feasible: %v\n", err)
			return 1
		}
		result = app.Evaluate(source)
	}

	if *script {
		fmt.Fprint(stdout, app.Script())
		return exitCode(result)
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "feasible: %v\n", err)
		return 1
	}
	return exitCode(result)
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func exitCode(r EvalResult) int {
	if len(r.Errors) > 0 {
		return 1
	}
	return 0
}
