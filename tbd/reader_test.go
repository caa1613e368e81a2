package tbd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const v3File = `--- !tapi-tbd-v3
archs:           [ armv7, arm64 ]
platform:        ios
install-name:    /System/Library/Frameworks/Foundation.framework/Foundation
exports:
  - archs:           [ armv7, arm64 ]
    symbols:         [ _NSLog, _NSStringFromClass ]
    objc-classes:    [ NSString, NSObject ]
    objc-ivars:      [ NSObject.isa ]
    re-exports:      [ /usr/lib/libobjc.A.dylib ]
  - archs:           [ arm64 ]
    weak-def-symbols: [ _only64 ]
  - archs:           [ armv7 ]
    symbols:         [ _only32 ]
    objc-eh-types:   [ NSException ]
    objc-widgets:    [ Mystery ]
...
`

func names(syms []Symbol) []string {
	var out []string
	for _, s := range syms {
		out = append(out, s.Name)
	}

	return out
}

func TestReadV3(t *testing.T) {
	recs, err := Read(strings.NewReader(v3File), "Foundation.tbd", "armv7")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "/System/Library/Frameworks/Foundation.framework/Foundation", rec.InstallName)
	assert.True(t, rec.HasArch("arm64"))
	assert.False(t, rec.HasArch("i386"))

	assert.Equal(t, []string{
		"_NSLog", "_NSStringFromClass", "NSString", "NSObject", "NSObject.isa",
		"_only32", "NSException", "Mystery",
	}, names(rec.Symbols))

	kinds := map[string]SymbolKind{}
	for _, s := range rec.Symbols {
		kinds[s.Name] = s.Kind
	}

	assert.Equal(t, GlobalSymbol, kinds["_NSLog"])
	assert.Equal(t, ClassDescriptor, kinds["NSString"])
	assert.Equal(t, InstanceVariableDescriptor, kinds["NSObject.isa"])
	assert.Equal(t, ExceptionTypeDescriptor, kinds["NSException"])
	assert.Equal(t, Unknown, kinds["Mystery"])
}

func TestReadFiltersArch(t *testing.T) {
	recs, err := Read(strings.NewReader(v3File), "Foundation.tbd", "arm64")
	require.NoError(t, err)

	got := names(recs[0].Symbols)
	assert.Contains(t, got, "_only64")
	assert.NotContains(t, got, "_only32")
}

func TestReadV1ClassUnderscore(t *testing.T) {
	src := `---
archs:           [ armv7 ]
platform:        ios
install-name:    /usr/lib/libobjc.A.dylib
exports:
  - archs:           [ armv7 ]
    symbols:         [ _objc_msgSend ]
    objc-classes:    [ _Protocol ]
...
`
	recs, err := Read(strings.NewReader(src), "libobjc.tbd", "armv7")
	require.NoError(t, err)

	assert.Equal(t, []string{"_objc_msgSend", "Protocol"}, names(recs[0].Symbols))
}

func TestReadV4Targets(t *testing.T) {
	src := `--- !tapi-tbd
tbd-version:     4
targets:         [ armv7-ios, arm64-ios ]
install-name:    /usr/lib/libz.1.dylib
exports:
  - targets:         [ armv7-ios, arm64-ios ]
    symbols:         [ _inflate ]
...
`
	recs, err := Read(strings.NewReader(src), "libz.tbd", "arm64")
	require.NoError(t, err)

	assert.Equal(t, []string{"armv7", "arm64"}, recs[0].Archs)
	assert.Equal(t, []string{"_inflate"}, names(recs[0].Symbols))
}

func TestReadMultipleDocuments(t *testing.T) {
	src := v3File + strings.Replace(v3File, "Foundation.framework/Foundation", "CoreFoundation.framework/CoreFoundation", 1)

	recs, err := Read(strings.NewReader(src), "multi.tbd", "armv7")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "/System/Library/Frameworks/CoreFoundation.framework/CoreFoundation", recs[1].InstallName)
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"not a mapping":   "--- [ 1, 2 ]\n",
		"no install name": "---\narchs: [ armv7 ]\nexports: []\n...\n",
		"malformed":       "---\narchs: [ armv7\n",
		"bad version":     "--- !tapi-tbd-vX\narchs: [ armv7 ]\ninstall-name: /usr/lib/libfoo.dylib\n...\n",
		"zero version":    "--- !tapi-tbd-v0\narchs: [ armv7 ]\ninstall-name: /usr/lib/libfoo.dylib\n...\n",
	}

	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(src), "bad.tbd", "armv7")
			assert.Error(t, err)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Foundation.tbd")
	require.NoError(t, os.WriteFile(path, []byte(v3File), 0o644))

	recs, err := ReadFile(path, "armv7")
	require.NoError(t, err)
	assert.Equal(t, path, recs[0].Path)

	_, err = ReadFile(filepath.Join(t.TempDir(), "absent.tbd"), "armv7")
	assert.Error(t, err)
}
