// Package maincmd implements the orec CLI's argument handling and
// top-level flow around github.com/mna/mainer. This CLI has no named
// subcommands, only flags and positional source paths, so Main dispatches
// directly rather than through a subcommand table.
package maincmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/ore/internal/embed"
)

const binName = "orec"

var allowedLints = map[string]bool{
	"all": true, "func-no-arg": true, "loop-no-expr": true,
	"no-type-guess": true, "unused-value": true, "unused-library": true,
}

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <path>...
       %[1]s --cli
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and runtime for the ore scripting language.

Each <path> is compiled as its own unit (named after the file, minus
extension) and run in the order given.

Valid flag options are:
       --cli                     Read one line from stdin and run it as
                                 the synthetic unit "<console>".
       -l --lib PATH             Library search path (default $LANG_LIB_PATH,
                                 or "./lib" when that is unset).
       -A --allow LINT           Suppress a named lint; comma-separated,
                                 or "all". One of: all, func-no-arg,
                                 loop-no-expr, no-type-guess,
                                 unused-value, unused-library.
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName)
)

// Cmd is the orec CLI's flag-bound state, parsed by mainer.Parser.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool   `flag:"h,help"`
	Version bool   `flag:"v,version"`
	CLI     bool   `flag:"cli"`
	LibPath string `flag:"l,lib"`
	Allow   string `flag:"A,allow"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	for _, lint := range strings.Split(c.Allow, ",") {
		lint = strings.TrimSpace(lint)
		if lint == "" {
			continue
		}
		if !allowedLints[lint] {
			return fmt.Errorf("unknown lint name: %s", lint)
		}
	}
	if !c.CLI && len(c.args) == 0 {
		return fmt.Errorf("no input: pass --cli or at least one source path")
	}
	return nil
}

// Main is orec's entry point, called from cmd/orec/main.go.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if c.LibPath == "" && os.Getenv("LANG_LIB_PATH") == "" {
		c.LibPath = "./lib"
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	var err error
	if c.CLI {
		err = RunConsoleLine(ctx, stdio)
	} else if len(c.args) == 0 {
		fmt.Fprintf(stdio.Stderr, "no input: pass --cli or at least one source path\n%s", shortUsage)
		return mainer.InvalidArgs
	} else {
		err = RunFilesWithLibPath(ctx, stdio, c.LibPath, c.args...)
	}
	if err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// RunFiles compiles and runs each file's root-level statements in order,
// sharing one embedding Handle so later files can call earlier ones.
func RunFiles(ctx context.Context, stdio mainer.Stdio, paths ...string) error {
	return runPaths(ctx, stdio, "", paths...)
}

// RunFilesWithLibPath is RunFiles with an explicit library search path,
// overriding LANG_LIB_PATH (e.g. the CLI's -l/--lib flag).
func RunFilesWithLibPath(ctx context.Context, stdio mainer.Stdio, libPath string, paths ...string) error {
	return runPaths(ctx, stdio, libPath, paths...)
}

func runPaths(ctx context.Context, stdio mainer.Stdio, libPath string, paths ...string) error {
	h := embed.Init()
	h.SetLibPath(libPath)
	defer h.Free()

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
		if st := h.AddFile(path, src); st != embed.Success {
			return h.Err()
		}
	}
	if st := h.Compile(); st != embed.Success {
		fmt.Fprintln(stdio.Stderr, h.Err())
		return h.Err()
	}
	if st := h.InitializeExecutor(ctx); st != embed.Success {
		fmt.Fprintln(stdio.Stderr, h.Err())
		return h.Err()
	}
	return nil
}

// RunConsoleLine reads one line from stdio's reader and compiles/runs it as
// the synthetic unit "<console>".
func RunConsoleLine(ctx context.Context, stdio mainer.Stdio) error {
	scanner := bufio.NewScanner(stdio.Stdin)
	if !scanner.Scan() {
		return scanner.Err()
	}
	line := scanner.Text()

	h := embed.Init()
	defer h.Free()
	h.AddFile("<console>", []byte(line))
	if st := h.Compile(); st != embed.Success {
		fmt.Fprintln(stdio.Stderr, h.Err())
		return h.Err()
	}
	if st := h.InitializeExecutor(ctx); st != embed.Success {
		fmt.Fprintln(stdio.Stderr, h.Err())
		return h.Err()
	}
	return nil
}
