// Package emit writes generated modules to disk: as LLVM IR text, or compiled
// and linked by an external clang.
package emit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wrapgen/target"

	"github.com/llir/llvm/ir"
)

// Mode selects what an emitter produces.
type Mode int

const (
	ModeLLVM    Mode = iota // textual LLVM IR
	ModeObject              // one object file per unit
	ModeLibrary             // one dynamic library per unit
)

// ParseMode converts the name of an output mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "llvm", "ll":
		return ModeLLVM, nil
	case "obj", "object":
		return ModeObject, nil
	case "lib", "library", "dylib", "dll":
		return ModeLibrary, nil
	}

	return 0, fmt.Errorf("unknown output mode: `%s`", name)
}

// UnitKind tells the generated modules apart.
type UnitKind int

const (
	DesktopWrapper    UnitKind = iota // trampolines, desktop target
	WrapperImportStub                 // empty trampolines, mobile target
	MobileStub                        // stubs replacing a mobile library
)

func (k UnitKind) String() string {
	switch k {
	case DesktopWrapper:
		return "desktop wrapper"
	case WrapperImportStub:
		return "wrapper import stub"
	default:
		return "mobile stub"
	}
}

// Unit is one module to emit.
type Unit struct {
	Kind UnitKind

	// Name is the file name of the output without extension.
	Name string

	Target *target.Desc
	Module *ir.Module

	// InstallName is recorded in Mach-O libraries.
	InstallName string

	// Links are libraries the output links against when producing a library.
	Links []string
}

// Emitter produces the output file of a unit.  It returns the path of what it
// wrote.
type Emitter interface {
	Emit(u *Unit) (string, error)
}

// -----------------------------------------------------------------------------

// IRWriter writes units as `.ll` files into Dir.
type IRWriter struct {
	Dir string
}

func (w *IRWriter) Emit(u *Unit) (string, error) {
	if err := os.MkdirAll(w.Dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(w.Dir, u.Name+".ll")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create module file: %w", err)
	}
	defer f.Close()

	if _, err := u.Module.WriteTo(f); err != nil {
		return "", fmt.Errorf("failed to output module `%s`: %w", u.Name, err)
	}

	return path, nil
}

// libraryExt returns the extension of dynamic libraries on t
func libraryExt(t *target.Desc) string {
	switch t.Format {
	case target.MachO:
		return ".dylib"
	case target.COFF:
		return ".dll"
	default:
		return ".so"
	}
}

// objectExt returns the extension of object files on t
func objectExt(t *target.Desc) string {
	if t.Format == target.COFF {
		return ".obj"
	}

	return ".o"
}

// OutputPath returns the file an emitter in mode writes for u into dir.
func OutputPath(dir string, mode Mode, u *Unit) string {
	switch mode {
	case ModeObject:
		return filepath.Join(dir, u.Name+objectExt(u.Target))
	case ModeLibrary:
		return filepath.Join(dir, u.Name+libraryExt(u.Target))
	default:
		return filepath.Join(dir, u.Name+".ll")
	}
}
