package ingest

import (
	"wrapgen/debuginfo"
	"wrapgen/exports"
	"wrapgen/typing"
)

// DebugSymbols matches the functions enumerated from lib's debug info against
// the registry.  A signature mismatch is reported but the export still
// proceeds to code generation.
func DebugSymbols(ctx *exports.Context, lib *exports.DesktopLibrary, funcs []*debuginfo.Function, checker *typing.Checker) error {
	for _, fn := range funcs {
		exp, ok := ctx.Find(fn.Name)

		// only singly declared mobile exports can be matched
		if !ok || exp.Status != exports.Found {
			continue
		}

		if err := ctx.MarkFoundInDLL(exp, lib, fn.RVA); err != nil {
			return err
		}

		typ, err := fn.TypeHandle()
		if err != nil {
			ctx.Log.Error("Debug Info", "%s (%s)", err, lib.Name)
			continue
		}

		if err := checker.Equivalent(exp.Type, typ); err != nil {
			ctx.Log.Error("Type", "functions' signatures are not equivalent (%s): %s", exp.Name, err)
		}
	}

	return nil
}
