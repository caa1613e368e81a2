package ingest

import (
	"wrapgen/common"
	"wrapgen/exports"
	"wrapgen/headers"
	"wrapgen/typing"
)

// HeaderDeclarations records the canonical signature of every known export
// declared by the mobile headers.  It must run before any desktop matching:
// meeting an export that was already matched is fatal.
func HeaderDeclarations(ctx *exports.Context, decls []headers.Declaration) error {
	for _, decl := range decls {
		if err := headerDeclaration(ctx, decl); err != nil {
			return err
		}
	}

	return nil
}

func headerDeclaration(ctx *exports.Context, decl headers.Declaration) error {
	// only symbols known from interface files are interesting
	exp, ok := ctx.Find(decl.Name)
	if !ok {
		if exp, ok = methodOfKnownClass(ctx, decl.Name); !ok {
			return nil
		}
	}

	switch exp.Status {
	case exports.NotFound:
		exp.Status = exports.Found
		exp.Type = decl.Type
	case exports.Found:
		// several translation units may include the same header
		if typing.Equal(exp.Type, decl.Type) {
			return nil
		}

		exp.Status = exports.Overloaded
		ctx.Log.Error("Header", "function overloaded (%s)", exp.Name)
	case exports.Overloaded:
		// already reported
	default:
		return &exports.StatusError{Export: exp.Name, Status: exp.Status, Stage: "header matching"}
	}

	return nil
}

// methodOfKnownClass registers an Objective-C method declared by the headers.
// Interface files only list classes, so methods are exported by every library
// declaring their class.
func methodOfKnownClass(ctx *exports.Context, name string) (*exports.Export, bool) {
	cls, ok := common.ObjCMethodClass(name)
	if !ok {
		return nil, false
	}

	dc, ok := ctx.Class(cls)
	if !ok {
		return nil, false
	}

	exp := ctx.AddOrGet(name)
	for _, lib := range dc.Libraries {
		ctx.AddExportTo(ctx.MobileLibrary(lib), exp)
	}

	return exp, true
}
