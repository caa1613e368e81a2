package typing

import (
	"wrapgen/target"

	"github.com/llir/llvm/ir/types"
)

// Layout computes the in-memory representation of LLVM types on a target.
type Layout struct {
	target *target.Desc
}

// NewLayout creates a layout calculator for t.
func NewLayout(t *target.Desc) *Layout {
	return &Layout{target: t}
}

// Target returns the descriptor the layout was created for.
func (l *Layout) Target() *target.Desc {
	return l.target
}

// FieldInfo is the placement of one struct field.
type FieldInfo struct {
	Offset int64
	Size   int64
	Align  int64
}

// StructLayout is the placement of every field of a struct.
type StructLayout struct {
	Fields []FieldInfo
	Size   int64
	Align  int64
}

// SizeOf returns the allocation size of t in bytes (including tail padding).
func (l *Layout) SizeOf(t types.Type) int64 {
	switch v := t.(type) {
	case *types.IntType:
		return intStoreSize(v.BitSize)
	case *types.FloatType:
		return l.floatSize(v.Kind)
	case *types.PointerType:
		return int64(l.target.WordSize)
	case *types.ArrayType:
		return int64(v.Len) * alignUp(l.SizeOf(v.ElemType), l.AlignOf(v.ElemType))
	case *types.VectorType:
		return nextPowerOfTwo(int64(v.Len) * l.SizeOf(v.ElemType))
	case *types.StructType:
		return l.Struct(v).Size
	}

	// void, functions, labels and metadata occupy no memory
	return 0
}

// AlignOf returns the ABI alignment of t in bytes.
func (l *Layout) AlignOf(t types.Type) int64 {
	switch v := t.(type) {
	case *types.IntType:
		size := intStoreSize(v.BitSize)
		if size >= 8 {
			return int64(l.target.Int64Align)
		}

		return size
	case *types.FloatType:
		switch v.Kind {
		case types.FloatKindDouble:
			return int64(l.target.Float64Align)
		case types.FloatKindX86_FP80:
			if l.target.WordSize == 4 {
				return 4
			}

			return 16
		case types.FloatKindFP128, types.FloatKindPPC_FP128:
			return 16
		}

		return l.floatSize(v.Kind)
	case *types.PointerType:
		return int64(l.target.WordSize)
	case *types.ArrayType:
		return l.AlignOf(v.ElemType)
	case *types.VectorType:
		size := l.SizeOf(v)
		if size > 16 {
			return 16
		}

		return size
	case *types.StructType:
		return l.Struct(v).Align
	}

	return 1
}

// Struct lays out the fields of st in declaration order.
func (l *Layout) Struct(st *types.StructType) *StructLayout {
	sl := &StructLayout{Align: 1}
	if st.Opaque {
		return sl
	}

	offset := int64(0)
	for _, field := range st.Fields {
		size, align := l.SizeOf(field), l.AlignOf(field)
		if st.Packed {
			align = 1
		}

		if align > sl.Align {
			sl.Align = align
		}

		offset = alignUp(offset, align)
		sl.Fields = append(sl.Fields, FieldInfo{Offset: offset, Size: size, Align: align})
		offset += size
	}

	sl.Size = alignUp(offset, sl.Align)
	return sl
}

// -----------------------------------------------------------------------------

func (l *Layout) floatSize(kind types.FloatKind) int64 {
	switch kind {
	case types.FloatKindHalf:
		return 2
	case types.FloatKindFloat:
		return 4
	case types.FloatKindDouble:
		return 8
	case types.FloatKindX86_FP80:
		if l.target.WordSize == 4 {
			return 12
		}

		return 16
	}

	return 16
}

// intStoreSize rounds an integer's bit width up to a power of two bytes.
func intStoreSize(bits uint64) int64 {
	return nextPowerOfTwo(int64((bits + 7) / 8))
}

func nextPowerOfTwo(n int64) int64 {
	p := int64(1)
	for p < n {
		p <<= 1
	}

	return p
}

func alignUp(value, alignment int64) int64 {
	if alignment <= 1 {
		return value
	}

	return (value + alignment - 1) / alignment * alignment
}
