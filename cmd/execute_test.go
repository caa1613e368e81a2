package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"wrapgen/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, 0, Execute([]string{"wrapgen", "version"}))
}

func TestMissingProject(t *testing.T) {
	assert.Equal(t, 1, Execute([]string{"wrapgen", "build", filepath.Join(t.TempDir(), "nowhere")}))
}

func TestCheckIncompatibleTargets(t *testing.T) {
	root := t.TempDir()
	project := `
[project]
name = "be"

[mobile]
preset = "ios-arm64"
byte-order = "big"

[desktop]
preset = "windows-x86_64"

[inputs]
tbd = ["sdk"]
headers = ["headers.ll"]

[[dll-group]]
dir = "dlls"
`
	require.NoError(t, os.WriteFile(filepath.Join(root, common.ProjectFileName), []byte(project), 0o644))

	assert.Equal(t, 1, Execute([]string{"wrapgen", "check", root}))
}
