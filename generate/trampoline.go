package generate

import (
	"wrapgen/exports"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// DispatchTarget returns the runtime address of a function that is not
// exported by name, given the runtime address of the library's reference
// function and the relative virtual addresses of both within the image.
// Wrapping arithmetic keeps the result correct for exports located below
// the reference function.
func DispatchTarget(refAddr, refRVA, rva uint64) uint64 {
	return refAddr + (rva - refRVA)
}

// DesktopWrappers generates the trampolines of every export matched in lib.
// Exports that cannot be wrapped are reported and skipped; the returned error
// is only set for fatal inconsistencies in the registry.
func (g *Generator) DesktopWrappers(lib *exports.DesktopLibrary) (*DesktopOutput, error) {
	out := &DesktopOutput{}

	mb := newModuleBuilder(lib.Name, g.desktop)
	stub := newModuleBuilder(lib.Name, g.mobile)

	var ref *exports.Export
	if lib.HasReferenceFunc() {
		ref = g.ctx.Export(lib.ReferenceFunc)
	}

	for _, id := range lib.Exports {
		exp := g.ctx.Export(id)
		if err := g.mustBeMatched(exp); err != nil {
			return nil, err
		}

		if !g.checkSignature(exp) {
			continue
		}

		var callee value.Value
		if exp.ObjCMethod {
			if ref == nil {
				g.ctx.Log.Error(
					"Codegen",
					"cannot wrap %s: library %s has no reference function to compute its address from",
					exp.Name, lib.Name,
				)
				continue
			}
		} else {
			original := mb.declareFunc(g.irName(exp), exp.Type)
			original.DLLStorageClass = enum.DLLStorageClassDLLImport
			callee = original
		}

		tramp := mb.declareWrapper(exp)
		tramp.DLLStorageClass = enum.DLLStorageClassDLLExport
		tramp.FuncAttrs = append(tramp.FuncAttrs, enum.FuncAttrNoUnwind)

		entry := tramp.NewBlock("entry")
		if callee == nil {
			callee = g.dispatch(mb, entry, exp, ref)
		}

		g.buildTrampoline(entry, tramp.Params[0], exp.Type, callee)

		// the matching empty definition for the mobile linker
		imp := stub.declareWrapper(exp)
		imp.NewBlock("entry").NewRet(nil)

		out.Wrapped = append(out.Wrapped, id)
	}

	out.Module, out.ImportStub = mb.mod, stub.mod
	return out, nil
}

// dispatch computes the address of exp from the address of ref.  The offset
// is applied as a byte-wise getelementptr on the reference function.
func (g *Generator) dispatch(mb *moduleBuilder, block *ir.Block, exp, ref *exports.Export) value.Value {
	refFunc := mb.declareFunc(g.irName(ref), ref.Type)
	refFunc.DLLStorageClass = enum.DLLStorageClassDLLImport
	mb.defineTypes(exp.Type)

	offsetType := types.NewInt(uint64(g.desktop.WordSize * 8))
	offset := constant.NewInt(offsetType, int64(exp.RVA-ref.RVA))

	base := block.NewBitCast(refFunc, types.I8Ptr)
	base.SetName("ref")

	addr := block.NewGetElementPtr(types.I8, base, offset)
	addr.InBounds = true
	addr.SetName("addr")

	fn := block.NewBitCast(addr, types.NewPointer(exp.Type))
	fn.SetName("fn")

	return fn
}

// buildTrampoline fills in the body of a trampoline: unpack the arguments
// from the union, call the original and store its result back into the
// union.
func (g *Generator) buildTrampoline(block *ir.Block, union *ir.Param, sig *types.FuncType, callee value.Value) {
	u := NewUnion(g.desktopLayout, sig)

	sp := block.NewBitCast(union, types.NewPointer(u.Args))
	sp.SetName("args")

	args := make([]value.Value, len(sig.Params))
	for i, pt := range sig.Params {
		slot := block.NewGetElementPtr(u.Args, sp, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i)))
		slot.InBounds = true

		ptr := block.NewLoad(types.NewPointer(pt), slot)
		args[i] = block.NewLoad(pt, ptr)
	}

	call := block.NewCall(callee, args...)

	if !isVoid(sig.RetType) {
		rp := block.NewBitCast(union, types.NewPointer(sig.RetType))
		rp.SetName("ret")
		block.NewStore(call, rp)
	}

	block.NewRet(nil)
}
