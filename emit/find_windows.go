//go:build windows

package emit

import (
	"os"
	"path/filepath"

	"golang.org/x/sys/windows/registry"
)

// findInstalledClang looks up the LLVM installation recorded by its installer
func findInstalledClang() (string, bool) {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, `SOFTWARE\LLVM\LLVM`, registry.QUERY_VALUE)
	if err != nil {
		return "", false
	}
	defer k.Close()

	root, _, err := k.GetStringValue("")
	if err != nil {
		return "", false
	}

	path := filepath.Join(root, "bin", "clang.exe")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	return path, true
}
