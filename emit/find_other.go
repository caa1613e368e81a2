//go:build !windows

package emit

import "os"

var clangLocations = []string{
	"/usr/local/opt/llvm/bin/clang",
	"/opt/homebrew/opt/llvm/bin/clang",
	"/usr/lib/llvm/bin/clang",
}

func findInstalledClang() (string, bool) {
	for _, path := range clangLocations {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	return "", false
}
