package generate

import (
	"wrapgen/typing"

	"github.com/llir/llvm/ir/types"
)

// Union is the memory layout both sides of a wrapper agree on: a structure
// holding one pointer per parameter, in declaration order, overlaid with the
// return value.
type Union struct {
	// Args is the argument structure `{T0*, T1*, ...}`.
	Args *types.StructType

	// Storage is a type large and aligned enough to hold both Args and the
	// return value.
	Storage types.Type

	// Ret is the return type; it is void for functions returning nothing.
	Ret types.Type

	// Size and Align describe Storage on the target it was laid out for.
	Size, Align int64
}

// NewUnion lays out the marshalling union of sig.
func NewUnion(layout *typing.Layout, sig *types.FuncType) *Union {
	fields := make([]types.Type, len(sig.Params))
	for i, param := range sig.Params {
		fields[i] = types.NewPointer(param)
	}

	u := &Union{Args: types.NewStruct(fields...), Ret: sig.RetType}

	members := []types.Type{u.Args}
	if !isVoid(sig.RetType) {
		members = append(members, sig.RetType)
	}

	// like a C union: the most aligned member first, then byte padding up to
	// the size of the largest member
	var anchor types.Type
	var anchorSize int64
	for _, m := range members {
		size, align := layout.SizeOf(m), layout.AlignOf(m)
		if size > u.Size {
			u.Size = size
		}

		if anchor == nil || align > u.Align || (align == u.Align && size > anchorSize) {
			anchor, anchorSize, u.Align = m, size, align
		}
	}

	u.Size = (u.Size + u.Align - 1) / u.Align * u.Align
	if pad := u.Size - anchorSize; pad > 0 {
		u.Storage = types.NewStruct(anchor, types.NewArray(uint64(pad), types.I8))
	} else {
		u.Storage = types.NewStruct(anchor)
	}

	return u
}

// ArgOffsets returns the byte offset of each argument slot.
func (u *Union) ArgOffsets(layout *typing.Layout) []int64 {
	sl := layout.Struct(u.Args)
	offsets := make([]int64, len(sl.Fields))
	for i, f := range sl.Fields {
		offsets[i] = f.Offset
	}

	return offsets
}

func isVoid(t types.Type) bool {
	_, ok := t.(*types.VoidType)
	return ok || t == nil
}
