package debuginfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/llir/llvm/ir/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDump = `
library = "Foundation.dll"

[types]
"struct.tagPOINT" = "{ i32, i32 }"
"class.Foo Bar" = "{ i8*, %\"struct.tagPOINT\" }"

[[function]]
name = "_GetCursorPos"
rva = 0x1a20
return = "i32"
params = ["%struct.tagPOINT*"]

[[function]]
name = "_printf"
rva = 0x1b00
return = "i32"
params = ["i8*"]
variadic = true

[[function]]
name = "_nothing"
rva = 0x1c00

[[function]]
name = "-[Foo bar]"
rva = 0x1d00
return = "%\"class.Foo Bar\""
params = ["i8*", "i8*"]
`

func TestLoad(t *testing.T) {
	funcs, err := Load([]byte(sampleDump))
	require.NoError(t, err)
	require.Len(t, funcs, 4)

	assert.Equal(t, "_GetCursorPos", funcs[0].Name)
	assert.Equal(t, uint64(0x1a20), funcs[0].RVA)
	assert.Equal(t, uint64(0x1d00), funcs[3].RVA)
}

func TestTypeHandle(t *testing.T) {
	funcs, err := Load([]byte(sampleDump))
	require.NoError(t, err)

	sig, err := funcs[0].TypeHandle()
	require.NoError(t, err)
	assert.Equal(t, types.I32, sig.RetType)
	require.Len(t, sig.Params, 1)

	ptr, ok := sig.Params[0].(*types.PointerType)
	require.True(t, ok)
	assert.Equal(t, "struct.tagPOINT", ptr.ElemType.Name())

	sig, err = funcs[1].TypeHandle()
	require.NoError(t, err)
	assert.True(t, sig.Variadic)

	sig, err = funcs[2].TypeHandle()
	require.NoError(t, err)
	assert.Equal(t, types.Void, sig.RetType)
	assert.Empty(t, sig.Params)

	sig, err = funcs[3].TypeHandle()
	require.NoError(t, err)
	st, ok := sig.RetType.(*types.StructType)
	require.True(t, ok)
	assert.Len(t, st.Fields, 2)
}

func TestTypeHandleInvalid(t *testing.T) {
	funcs, err := Load([]byte(`
[[function]]
name = "_broken"
rva = 1
return = "%struct.Unknown"
`))
	require.NoError(t, err)

	_, err = funcs[0].TypeHandle()
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load([]byte("[[function]]\nrva = 1\n"))
	assert.Error(t, err)

	_, err = Load([]byte("[[function]\n"))
	assert.Error(t, err)
}

func TestDumpPath(t *testing.T) {
	assert.Equal(t, filepath.Join("dlls", "Foundation.symbols.toml"), DumpPath(filepath.Join("dlls", "Foundation.dll")))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Foundation.symbols.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o644))

	funcs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, funcs, 4)

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.symbols.toml"))
	assert.Error(t, err)
}
