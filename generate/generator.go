// Package generate emits the wrapper modules bridging the two platforms: for
// each desktop library a module of trampolines exported from the wrapper DLL,
// and for each mobile library a module of stubs with the original signatures
// that forward to those trampolines through the marshalling union.
package generate

import (
	"wrapgen/common"
	"wrapgen/exports"
	"wrapgen/target"
	"wrapgen/typing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
)

// Generator converts matched exports into LLVM modules.  Generation never
// mutates the registry: the caller advances statuses once the modules were
// emitted.
type Generator struct {
	ctx *exports.Context

	mobile, desktop             *target.Desc
	mobileLayout, desktopLayout *typing.Layout
}

// NewGenerator creates a generator for the given platform pair.  The targets
// must have passed target.ValidateCompatibility.
func NewGenerator(ctx *exports.Context, mobile, desktop *target.Desc) *Generator {
	return &Generator{
		ctx:           ctx,
		mobile:        mobile,
		desktop:       desktop,
		mobileLayout:  typing.NewLayout(mobile),
		desktopLayout: typing.NewLayout(desktop),
	}
}

// WrapperName returns the IR name of the trampoline of exp.  It is a literal
// name so that both platforms produce the same symbol regardless of their
// global prefixes.
func WrapperName(exp *exports.Export) string {
	return "\x01" + common.WrapperPrefix + exp.Name
}

// DesktopOutput is the result of generating one desktop library.
type DesktopOutput struct {
	// Module holds the trampolines (desktop target).
	Module *ir.Module

	// ImportStub defines every trampoline as an empty function for the
	// mobile target; it stands in for the wrapper DLL when linking stubs.
	ImportStub *ir.Module

	// Wrapped lists the exports whose trampoline was generated.
	Wrapped []exports.ExportID
}

// MobileOutput is the result of generating one mobile library.
type MobileOutput struct {
	Module *ir.Module

	// Stubbed lists the exports that received a stub.
	Stubbed []exports.ExportID

	// Links are the desktop libraries whose trampolines the stubs call.
	Links []exports.DesktopLibID
}

// -----------------------------------------------------------------------------

// moduleBuilder wraps a module under construction
type moduleBuilder struct {
	mod    *ir.Module
	target *target.Desc

	// funcs caches declarations by IR name
	funcs map[string]*ir.Func

	// typeDefs tracks the named types already defined in the module
	typeDefs map[types.Type]bool
}

func newModuleBuilder(name string, t *target.Desc) *moduleBuilder {
	mod := ir.NewModule()
	mod.SourceFilename = name
	mod.TargetTriple = t.Triple
	mod.DataLayout = t.DataLayout

	return &moduleBuilder{
		mod:      mod,
		target:   t,
		funcs:    make(map[string]*ir.Func),
		typeDefs: make(map[types.Type]bool),
	}
}

// declareFunc declares (once) a function with the given IR name and
// signature.
func (mb *moduleBuilder) declareFunc(name string, sig *types.FuncType) *ir.Func {
	if f, ok := mb.funcs[name]; ok {
		return f
	}

	mb.defineTypes(sig)

	params := make([]*ir.Param, len(sig.Params))
	for i, pt := range sig.Params {
		params[i] = ir.NewParam("", pt)
	}

	f := mb.mod.NewFunc(name, sig.RetType, params...)
	f.Sig.Variadic = sig.Variadic
	f.Linkage = enum.LinkageExternal
	mb.funcs[name] = f
	return f
}

// declareWrapper declares the trampoline `void (i8*)` of exp.
func (mb *moduleBuilder) declareWrapper(exp *exports.Export) *ir.Func {
	return mb.declareFunc(WrapperName(exp), types.NewFunc(types.Void, types.I8Ptr))
}

// defineTypes adds a definition for every named struct type reachable from t
func (mb *moduleBuilder) defineTypes(t types.Type) {
	switch v := t.(type) {
	case *types.PointerType:
		mb.defineTypes(v.ElemType)
	case *types.ArrayType:
		mb.defineTypes(v.ElemType)
	case *types.VectorType:
		mb.defineTypes(v.ElemType)
	case *types.FuncType:
		mb.defineTypes(v.RetType)
		for _, p := range v.Params {
			mb.defineTypes(p)
		}
	case *types.StructType:
		if v.Name() != "" {
			if mb.typeDefs[v] {
				return
			}

			mb.typeDefs[v] = true
			mb.mod.TypeDefs = append(mb.mod.TypeDefs, v)
		}

		for _, f := range v.Fields {
			mb.defineTypes(f)
		}
	}
}

// checkSignature reports exports whose wrapper cannot be generated regardless
// of the side being generated
func (g *Generator) checkSignature(exp *exports.Export) bool {
	if exp.Type == nil {
		g.ctx.Log.Error("Codegen", "no signature known, cannot emit wrapper (%s)", exp.Name)
		return false
	}

	if exp.Type.Variadic {
		g.ctx.Log.Error("Codegen", "variadic functions are not supported (%s)", exp.Name)
		return false
	}

	return true
}

// irName returns the IR name of an export's original function on target t.
// Export names are mobile symbol names; the desktop mangler is expected to
// reproduce them.
func (g *Generator) irName(exp *exports.Export) string {
	return g.mobile.IRName(exp.Name)
}

func (g *Generator) mustBeMatched(exp *exports.Export) error {
	if exp.Status != exports.FoundInDLL {
		return &exports.StatusError{Export: exp.Name, Status: exp.Status, Stage: "wrapper generation"}
	}

	return nil
}
