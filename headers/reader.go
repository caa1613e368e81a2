// Package headers reads the result of compiling the mobile platform's system
// headers: an LLVM IR module in which every declared function appears.
package headers

import (
	"fmt"

	"wrapgen/target"

	"github.com/llir/llvm/asm"
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// Declaration is a function declared by the headers.
type Declaration struct {
	// Name is the symbol name as the mobile linker sees it.
	Name string

	Type *types.FuncType
}

// ReadFile parses the LLVM IR file at path and returns its declarations.
func ReadFile(path string, mobile *target.Desc) ([]Declaration, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header module: %w", err)
	}

	return Declarations(m, mobile), nil
}

// ReadString parses LLVM IR source text and returns its declarations.
func ReadString(path, src string, mobile *target.Desc) ([]Declaration, error) {
	m, err := asm.ParseString(path, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header module: %w", err)
	}

	return Declarations(m, mobile), nil
}

// Declarations lists every function of m in module order, with names
// mangled for the mobile target.
func Declarations(m *ir.Module, mobile *target.Desc) []Declaration {
	decls := make([]Declaration, 0, len(m.Funcs))
	for _, f := range m.Funcs {
		// intrinsics are never exported
		if len(f.Name()) > 5 && f.Name()[:5] == "llvm." {
			continue
		}

		decls = append(decls, Declaration{
			Name: mobile.Mangle(f.Name()),
			Type: f.Sig,
		})
	}

	return decls
}
