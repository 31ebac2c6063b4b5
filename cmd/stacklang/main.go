// Command stacklang is the toolchain driver: check a source file for
// syntax/type errors, run it with the tree-walking interpreter, or build it
// to a native binary via clang. Generalized from the teacher's single-mode
// os.Args CLI (cmd/main.go) into a subcommand switch, using stdlib flag per
// subcommand rather than a CLI framework (see DESIGN.md).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"go.stacklang.dev/internal/logging"
	"go.stacklang.dev/pkg"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "check":
		os.Exit(runCheck(os.Args[2:]))
	case "run":
		os.Exit(runRun(os.Args[2:]))
	case "build":
		os.Exit(runBuild(os.Args[2:]))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: stacklang <check|run|build> [flags] <source.sl>")
}

func runCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	if fs.NArg() != 1 {
		usage()
		return 2
	}

	log := logging.Setup(os.Stderr, logLevel(*verbose))
	source := fs.Arg(0)

	prog, err := stacklang.ParseFile(source, nil)
	if err != nil {
		stacklang.Diagnose(os.Stderr, err)
		return 1
	}
	log.Debug("parsed", "file", source, "instructions", len(prog.Instructions))

	if err := stacklang.NewTypeChecker().Check(prog.Instructions); err != nil {
		stacklang.Diagnose(os.Stderr, err)
		return 1
	}

	fmt.Println("ok")
	return 0
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		usage()
		return 2
	}

	log := logging.Setup(os.Stderr, logLevel(*verbose))
	source := fs.Arg(0)
	argv := fs.Args()[1:]

	prog, err := stacklang.ParseFile(source, nil)
	if err != nil {
		stacklang.Diagnose(os.Stderr, err)
		return 1
	}
	if err := stacklang.NewTypeChecker().Check(prog.Instructions); err != nil {
		stacklang.Diagnose(os.Stderr, err)
		return 1
	}
	log.Debug("running", "file", source, "argv", argv)

	interp := stacklang.NewInterpreter(os.Stdout)
	interp.SetArgv(append([]string{source}, argv...))

	code, err := prog.Run(interp)
	if err != nil {
		stacklang.Diagnose(os.Stderr, err)
		return 1
	}
	return code
}

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	verbose := fs.Bool("v", false, "verbose logging")
	out := fs.String("o", "a.out", "output binary path")
	fs.Parse(args)

	if fs.NArg() != 1 {
		usage()
		return 2
	}

	log := logging.Setup(os.Stderr, logLevel(*verbose))
	source := fs.Arg(0)
	log.Debug("building", "file", source, "out", *out)

	driver := stacklang.NewDriver(stacklang.Target{
		Arch:   stacklang.X86_64,
		Vendor: stacklang.Unknown,
		OS:     stacklang.Linux,
	})

	if err := driver.Build(source, *out, nil); err != nil {
		stacklang.Diagnose(os.Stderr, err)
		return 1
	}

	fmt.Println("ok:", *out)
	return 0
}

func logLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
