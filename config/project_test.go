package config

import (
	"os"
	"path/filepath"
	"testing"

	"wrapgen/common"
	"wrapgen/emit"
	"wrapgen/target"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProject = `
[project]
name = "uikit-shim"
strictness = "lenient"
fail-on-errors = true

[mobile]
preset = "ios-armv7"

[desktop]
preset = "windows-i386"
global-prefix = ""

[inputs]
tbd = ["sdk/**/*.tbd", "/abs/libobjc.tbd"]
headers = ["build/headers.ll"]

[[dll-group]]
dir = "dlls"
dlls = ["UIKit.dll"]

[[dll-group]]
dir = "more"

[output]
dir = "gen"
mode = "lib"
clang = "/usr/bin/clang"
`

func TestLoad(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, common.ProjectFileName), []byte(sampleProject), 0o644))

	proj, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "uikit-shim", proj.Name)
	assert.Equal(t, Lenient, proj.Strictness)
	assert.True(t, proj.FailOnErrors)
	assert.Equal(t, "armv7", proj.RequiredArch)

	assert.Equal(t, "armv7-apple-ios10.0.0", proj.Mobile.Triple)
	assert.Equal(t, "_", proj.Mobile.GlobalPrefix)
	assert.Equal(t, "", proj.Desktop.GlobalPrefix)
	assert.Equal(t, target.COFF, proj.Desktop.Format)

	assert.Equal(t, []string{filepath.Join(root, "sdk/**/*.tbd"), "/abs/libobjc.tbd"}, proj.TBDPatterns)
	assert.Equal(t, []string{filepath.Join(root, "build/headers.ll")}, proj.Headers)

	require.Len(t, proj.Groups, 2)
	assert.Equal(t, DLLGroup{Dir: filepath.Join(root, "dlls"), DLLs: []string{"UIKit.dll"}}, proj.Groups[0])
	assert.Empty(t, proj.Groups[1].DLLs)

	assert.Equal(t, filepath.Join(root, "gen"), proj.OutputDir)
	assert.Equal(t, emit.ModeLibrary, proj.OutputMode)
	assert.Equal(t, "/usr/bin/clang", proj.Clang)
}

func TestParseDefaults(t *testing.T) {
	proj, err := Parse("/p", []byte(`
[project]
name = "x"
[mobile]
preset = "ios-arm64"
[desktop]
preset = "windows-x86_64"
[inputs]
tbd = ["a.tbd"]
headers = ["h.ll"]
[[dll-group]]
dir = "d"
`))
	require.NoError(t, err)

	assert.Equal(t, Strict, proj.Strictness)
	assert.False(t, proj.FailOnErrors)
	assert.Equal(t, emit.ModeLLVM, proj.OutputMode)
	assert.Equal(t, filepath.Join("/p", "out"), proj.OutputDir)
	assert.False(t, proj.VersionMismatch())
}

func TestCustomTarget(t *testing.T) {
	proj, err := Parse("/p", []byte(`
[project]
name = "x"
wrapgen-version = "0.0.1"
[mobile]
triple = "ppc-apple-darwin"
arch = "ppc"
word-size = 4
byte-order = "big"
global-prefix = "_"
object-format = "macho"
[desktop]
preset = "windows-i386"
[inputs]
tbd = ["a.tbd"]
headers = ["h.ll"]
[[dll-group]]
dir = "d"
`))
	require.NoError(t, err)

	assert.Equal(t, target.BigEndian, proj.Mobile.ByteOrder)
	assert.Equal(t, 4, proj.Mobile.Int64Align)
	assert.Equal(t, 4, proj.Mobile.Float64Align)
	assert.Equal(t, target.MachO, proj.Mobile.Format)
	assert.True(t, proj.VersionMismatch())
}

func TestParseErrors(t *testing.T) {
	base := `
[mobile]
preset = "ios-arm64"
[desktop]
preset = "windows-x86_64"
[inputs]
tbd = ["a.tbd"]
headers = ["h.ll"]
[[dll-group]]
dir = "d"
`
	cases := map[string]string{
		"missing name":    base,
		"bad strictness":  "[project]\nname = \"x\"\nstrictness = \"loose\"\n" + base,
		"unknown preset":  "[project]\nname = \"x\"\n[mobile]\npreset = \"android\"\n",
		"no groups":       "[project]\nname = \"x\"\n[mobile]\npreset = \"ios-arm64\"\n[desktop]\npreset = \"windows-x86_64\"\n[inputs]\ntbd = [\"a\"]\nheaders = [\"h\"]\n",
		"bad output mode": "[project]\nname = \"x\"\n" + base + "[output]\nmode = \"exe\"\n",
		"malformed toml":  "[project\nname = ",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("/p", []byte(src))
			assert.Error(t, err)
		})
	}
}
