package emit

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"wrapgen/target"
)

// ClangDriver compiles units with an external clang.  The IR is first written
// to a scratch directory and removed once compiled.
type ClangDriver struct {
	// Clang is the path of the clang executable.
	Clang string

	Dir  string
	Mode Mode
}

// NewClangDriver creates a driver for mode, locating clang if path is empty.
func NewClangDriver(path, dir string, mode Mode) (*ClangDriver, error) {
	if path == "" {
		var err error
		if path, err = FindClang(); err != nil {
			return nil, err
		}
	}

	return &ClangDriver{Clang: path, Dir: dir, Mode: mode}, nil
}

func (cd *ClangDriver) Emit(u *Unit) (string, error) {
	scratch, err := os.MkdirTemp("", "wrapgen-")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	irPath, err := (&IRWriter{Dir: scratch}).Emit(u)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(cd.Dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outPath := OutputPath(cd.Dir, cd.Mode, u)
	cmd := exec.Command(cd.Clang, cd.args(u, irPath, outPath)...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// clang ran but rejected the module
			return "", fmt.Errorf("clang failed on `%s`:\n%s", u.Name, string(out))
		}

		return "", fmt.Errorf("failed to run clang: %w", err)
	}

	return outPath, nil
}

// args builds the clang command line for one unit
func (cd *ClangDriver) args(u *Unit, irPath, outPath string) []string {
	args := []string{"-target", u.Target.Triple, "-O2", "-Wno-override-module"}

	if cd.Mode != ModeLibrary {
		return append(args, "-c", irPath, "-o", outPath)
	}

	switch u.Target.Format {
	case target.MachO:
		args = append(args, "-dynamiclib", "-nostdlib", "-undefined", "dynamic_lookup")
		if u.InstallName != "" {
			args = append(args, "-install_name", u.InstallName)
		}
	case target.COFF:
		args = append(args, "-shared", "-nostdlib", "-fuse-ld=lld")
	default:
		args = append(args, "-shared", "-nostdlib")
	}

	args = append(args, irPath, "-o", outPath)
	for _, link := range u.Links {
		args = append(args, linkArg(u.Target, link))
	}

	return args
}

// linkArg converts a library path into a linker input.  COFF links against
// the import library of a DLL.
func linkArg(t *target.Desc, lib string) string {
	if t.Format == target.COFF && filepath.Ext(lib) == ".dll" {
		return lib[:len(lib)-len(".dll")] + ".lib"
	}

	return lib
}

// FindClang locates the clang executable: first on the PATH, then in the
// platform's install locations.
func FindClang() (string, error) {
	if path, err := exec.LookPath("clang"); err == nil {
		return path, nil
	}

	if path, ok := findInstalledClang(); ok {
		return path, nil
	}

	return "", errors.New("unable to locate clang: add it to the PATH or set `clang` in the output section")
}
