package generate

import (
	"wrapgen/exports"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// MobileStubs generates a stub for every export of lib whose trampoline was
// generated.  The stubs carry the original names and signatures so that they
// can replace the mobile library at link time.
func (g *Generator) MobileStubs(lib *exports.MobileLibrary) *MobileOutput {
	out := &MobileOutput{}
	mb := newModuleBuilder(lib.InstallName, g.mobile)

	links := make(map[exports.DesktopLibID]bool)
	for _, id := range lib.Exports {
		exp := g.ctx.Export(id)
		if exp.Status != exports.Generated {
			continue
		}

		stub := mb.declareFunc(g.irName(exp), exp.Type)
		stub.FuncAttrs = append(stub.FuncAttrs, enum.FuncAttrNoUnwind)

		tramp := mb.declareWrapper(exp)
		g.buildStub(stub, tramp)

		out.Stubbed = append(out.Stubbed, id)
		if !links[exp.DesktopLib] {
			links[exp.DesktopLib] = true
			out.Links = append(out.Links, exp.DesktopLib)
		}
	}

	out.Module = mb.mod
	return out
}

// buildStub fills in the body of a stub: store every argument in its own
// slot, record the slot addresses in the union, call the trampoline and load
// the result from the union.
func (g *Generator) buildStub(stub, tramp *ir.Func) {
	sig := stub.Sig
	u := NewUnion(g.mobileLayout, sig)

	block := stub.NewBlock("entry")

	storage := block.NewAlloca(u.Storage)
	storage.SetName("union")

	sp := block.NewBitCast(storage, types.NewPointer(u.Args))
	sp.SetName("args")

	for i, param := range stub.Params {
		slot := block.NewAlloca(param.Typ)
		block.NewStore(param, slot)

		field := block.NewGetElementPtr(u.Args, sp, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, int64(i)))
		field.InBounds = true
		block.NewStore(slot, field)
	}

	raw := block.NewBitCast(storage, types.I8Ptr)
	block.NewCall(tramp, raw)

	if isVoid(sig.RetType) {
		block.NewRet(nil)
		return
	}

	rp := block.NewBitCast(storage, types.NewPointer(sig.RetType))
	rp.SetName("ret")

	block.NewRet(block.NewLoad(sig.RetType, rp))
}
