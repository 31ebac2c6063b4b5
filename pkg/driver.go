package stacklang

import (
	"fmt"
	"io"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// Arch, Vendor and OS name the three components of a clang target triple.
// Carried over unchanged from the teacher's Compiler, which targets the
// same handful of hosted platforms.
type Arch string
type Vendor string
type OS string

const (
	X86_64 Arch = "x86_64"

	Unknown Vendor = "unknown"

	Windows OS = "windows64"
	Linux   OS = "linux"
	Darwin  OS = "darwin"
)

// Target is a clang `--target=` triple.
type Target struct {
	Arch   Arch
	Vendor Vendor
	OS     OS
}

func (t Target) String() string {
	return fmt.Sprintf("%s-%s-%s", t.Arch, t.Vendor, t.OS)
}

// Driver is the `build` engine: it never executes a Program directly, it
// lowers it to LLVM IR with LLVMEmitter and shells out to clang to turn
// that IR into a native binary, the same build shape as the teacher's
// Compiler.
type Driver struct {
	target Target
}

// NewDriver prepares a Driver that builds for target.
func NewDriver(target Target) *Driver {
	return &Driver{target: target}
}

// Build type-checks and compiles the program parsed from filename into a
// native binary named outName.
func (d *Driver) Build(filename, outName string, extraIncludes []string) error {
	prog, err := ParseFile(filename, extraIncludes)
	if err != nil {
		return err
	}
	if err := NewTypeChecker().Check(prog.Instructions); err != nil {
		return err
	}

	gen := NewLLVMEmitter()
	mod, err := gen.Emit(prog)
	if err != nil {
		return err
	}
	return d.link(mod, outName)
}

func (d *Driver) link(mod fmt.Stringer, outName string) error {
	if d.target.OS == Windows {
		outName += ".exe"
	}

	cmd := exec.Command("clang",
		"-x",
		"ir",
		"--target="+d.target.String(),
		"-o", outName,
		"-",
	)

	r, w := io.Pipe()
	cmd.Stdin = r

	errs := errgroup.Group{}
	errs.Go(func() error {
		if _, err := w.Write([]byte(mod.String())); err != nil {
			return err
		}
		return w.Close()
	})

	errs.Go(func() error {
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("%v: %s", err, out)
		}
		return nil
	})

	return errs.Wait()
}
