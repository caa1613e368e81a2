// Package typing compares function types derived independently from the
// mobile headers and the desktop debug info, and computes their layout.
package typing

import (
	"fmt"

	"github.com/llir/llvm/ir/types"
)

// MismatchError describes why two function types are not equivalent.
type MismatchError struct {
	// Position is the parameter index, or -1 for the return type.
	Position int

	Expected, Found types.Type
	Reason          string
}

func (me *MismatchError) Error() string {
	var where string
	switch me.Position {
	case -1:
		where = "return type"
	case -2:
		where = "signature"
	default:
		where = fmt.Sprintf("parameter %d", me.Position)
	}

	if me.Expected == nil || me.Found == nil {
		return fmt.Sprintf("%s: %s", where, me.Reason)
	}

	return fmt.Sprintf("%s: expected %s, found %s (%s)", where, me.Expected.LLString(), me.Found.LLString(), me.Reason)
}

// Checker decides whether a desktop-derived function type describes the same
// calling contract as the canonical mobile-derived one.
type Checker struct {
	layout *Layout
}

// NewChecker creates a checker measuring types with layout.
func NewChecker(layout *Layout) *Checker {
	return &Checker{layout: layout}
}

// Equivalent returns nil if both function types agree on every parameter and
// on the return type.
func (c *Checker) Equivalent(canon, other *types.FuncType) error {
	if canon == nil || other == nil {
		return &MismatchError{Position: -2, Reason: "missing signature"}
	}

	if canon.Variadic != other.Variadic {
		return &MismatchError{Position: -2, Reason: "variadic mismatch"}
	}

	if len(canon.Params) != len(other.Params) {
		return &MismatchError{
			Position: -2,
			Reason:   fmt.Sprintf("expected %d parameters, found %d", len(canon.Params), len(other.Params)),
		}
	}

	if err := c.compare(-1, canon.RetType, other.RetType); err != nil {
		return err
	}

	for i := range canon.Params {
		if err := c.compare(i, canon.Params[i], other.Params[i]); err != nil {
			return err
		}
	}

	return nil
}

func (c *Checker) compare(pos int, expected, found types.Type) error {
	if !Equal(expected, found) {
		return &MismatchError{Position: pos, Expected: expected, Found: found, Reason: "structure differs"}
	}

	// equal structure implies equal layout on a single target; this only
	// catches types the structural walk treats as opaque
	if es, fs := c.layout.SizeOf(expected), c.layout.SizeOf(found); es != fs {
		return &MismatchError{
			Position: pos,
			Expected: expected,
			Found:    found,
			Reason:   fmt.Sprintf("%d bytes vs %d bytes", es, fs),
		}
	}

	return nil
}

// Equal reports whether two types have the same memory representation.  Type
// names are ignored and pointers compare by address space only: a pointer
// occupies a word whatever it points to.
func Equal(t, u types.Type) bool {
	switch tv := t.(type) {
	case *types.VoidType:
		_, ok := u.(*types.VoidType)
		return ok
	case *types.IntType:
		uv, ok := u.(*types.IntType)
		return ok && tv.BitSize == uv.BitSize
	case *types.FloatType:
		uv, ok := u.(*types.FloatType)
		return ok && tv.Kind == uv.Kind
	case *types.PointerType:
		uv, ok := u.(*types.PointerType)
		return ok && tv.AddrSpace == uv.AddrSpace
	case *types.ArrayType:
		uv, ok := u.(*types.ArrayType)
		return ok && tv.Len == uv.Len && Equal(tv.ElemType, uv.ElemType)
	case *types.VectorType:
		uv, ok := u.(*types.VectorType)
		return ok && tv.Len == uv.Len && Equal(tv.ElemType, uv.ElemType)
	case *types.StructType:
		uv, ok := u.(*types.StructType)
		if !ok || tv.Packed != uv.Packed || tv.Opaque != uv.Opaque {
			return false
		}

		if tv.Opaque {
			// nothing is known about opaque bodies but their name
			return tv.Name() == uv.Name()
		}

		if len(tv.Fields) != len(uv.Fields) {
			return false
		}

		for i := range tv.Fields {
			if !Equal(tv.Fields[i], uv.Fields[i]) {
				return false
			}
		}

		return true
	case *types.FuncType:
		uv, ok := u.(*types.FuncType)
		if !ok || tv.Variadic != uv.Variadic || len(tv.Params) != len(uv.Params) {
			return false
		}

		if !Equal(tv.RetType, uv.RetType) {
			return false
		}

		for i := range tv.Params {
			if !Equal(tv.Params[i], uv.Params[i]) {
				return false
			}
		}

		return true
	case nil:
		return u == nil
	}

	return t.LLString() == u.LLString()
}
