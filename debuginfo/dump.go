// Package debuginfo reads the function enumeration of a desktop library's
// debug-info database.  The database itself is read by an external tool that
// dumps every function as a TOML entry next to the DLL.
package debuginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wrapgen/common"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir/types"
	"github.com/pelletier/go-toml"
)

// tomlDump represents a debug-info dump as it is encoded in TOML
type tomlDump struct {
	Library   string            `toml:"library"`
	Types     map[string]string `toml:"types"`
	Functions []*tomlFunction   `toml:"function"`
}

// tomlFunction represents one enumerated function as it is encoded in TOML
type tomlFunction struct {
	Name     string   `toml:"name"`
	RVA      uint64   `toml:"rva"`
	Return   string   `toml:"return"`
	Params   []string `toml:"params"`
	Variadic bool     `toml:"variadic"`
}

// Function is one function enumerated from the debug info.
type Function struct {
	// Name is the mangled name, comparable with mobile export names.
	Name string

	// RVA is the function's address relative to the library's load base.
	RVA uint64

	desc  *tomlFunction
	types map[string]string
}

// TypeHandle converts the function's type description into the in-memory
// type representation shared with the header declarations.
func (f *Function) TypeHandle() (*types.FuncType, error) {
	var sb strings.Builder

	// named types are declared in a stable order so errors are reproducible
	names := make([]string, 0, len(f.types))
	for name := range f.types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(&sb, "%%%s = type %s\n", quoteLocal(name), f.types[name])
	}

	ret := f.desc.Return
	if ret == "" {
		ret = "void"
	}

	params := strings.Join(f.desc.Params, ", ")
	if f.desc.Variadic {
		if params == "" {
			params = "..."
		} else {
			params += ", ..."
		}
	}

	fmt.Fprintf(&sb, "declare %s @f(%s)\n", ret, params)

	m, err := asm.ParseString(f.Name, sb.String())
	if err != nil {
		return nil, fmt.Errorf("invalid type description of %s: %w", f.Name, err)
	}

	return m.Funcs[0].Sig, nil
}

// quoteLocal quotes a type name unless it is a plain LLVM identifier
func quoteLocal(name string) string {
	for _, c := range name {
		if !(c == '_' || c == '.' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')) {
			return fmt.Sprintf("%q", name)
		}
	}

	return name
}

// -----------------------------------------------------------------------------

// DumpPath returns the path of the dump describing the DLL at dllPath.
func DumpPath(dllPath string) string {
	return strings.TrimSuffix(dllPath, filepath.Ext(dllPath)) + common.SymbolsFileSuffix
}

// LoadFile reads the dump at path.
func LoadFile(path string) ([]*Function, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Load(buff)
}

// Load decodes a dump.
func Load(buff []byte) ([]*Function, error) {
	td := &tomlDump{}
	if err := toml.Unmarshal(buff, td); err != nil {
		return nil, err
	}

	funcs := make([]*Function, 0, len(td.Functions))
	for i, tf := range td.Functions {
		if tf.Name == "" {
			return nil, fmt.Errorf("function #%d has no name", i)
		}

		funcs = append(funcs, &Function{Name: tf.Name, RVA: tf.RVA, desc: tf, types: td.Types})
	}

	return funcs, nil
}
