// Package ingest feeds the output of the external readers (interface files,
// header declarations, debug info) into the export registry, driving every
// export through its status machine.
package ingest

import (
	"path/filepath"

	"wrapgen/common"
	"wrapgen/exports"
	"wrapgen/tbd"
)

// ExportName returns the export name of an interface-file symbol.  It returns
// false for symbols of unknown kind.
func ExportName(sym tbd.Symbol) (string, bool) {
	switch sym.Kind {
	case tbd.GlobalSymbol:
		return sym.Name, true
	case tbd.ClassDescriptor:
		return common.ObjCClassPrefix + sym.Name, true
	case tbd.InstanceVariableDescriptor:
		return common.ObjCIvarPrefix + sym.Name, true
	case tbd.ExceptionTypeDescriptor:
		return common.ObjCEHTypePrefix + sym.Name, true
	}

	return "", false
}

// InterfaceFile registers the libraries declared by one interface file.  arch
// is the architecture every accepted file must support.
func InterfaceFile(ctx *exports.Context, records []*tbd.Record, arch string) {
	for _, rec := range records {
		interfaceRecord(ctx, rec, arch)
	}
}

func interfaceRecord(ctx *exports.Context, rec *tbd.Record, arch string) {
	if !rec.HasArch(arch) {
		ctx.Log.Error("TBD", "interface file does not contain architecture %s (%s)", arch, rec.Path)
		return
	}

	lib, isNew := ctx.AddMobileLibrary(rec.InstallName)
	if !isNew {
		// interface files sharing an install name are assumed identical
		ctx.Log.Note("TBD", "skipping duplicate library %s (%s)", rec.InstallName, rec.Path)
		return
	}

	for _, sym := range rec.Symbols {
		name, ok := ExportName(sym)
		if !ok {
			ctx.Log.Error("TBD", "unrecognized symbol type (%s) in %s", sym.AnnotatedName(), rec.Path)
			continue
		}

		if sym.Kind == tbd.ClassDescriptor {
			ctx.AddClass(sym.Name, lib.ID)
		}

		ctx.AddExportTo(lib, ctx.AddOrGet(name))
	}
}

// InterfacePath reads and ingests the interface file at path.  Read failures
// are reported and the file is skipped.
func InterfacePath(ctx *exports.Context, path, arch string) {
	hasExt := filepath.Ext(path) == ".tbd"

	records, err := tbd.ReadFile(path, arch)
	if err != nil {
		// files without the extension are only probed
		if hasExt {
			ctx.Log.Error("TBD", "%s", err)
		}

		return
	}

	if !hasExt {
		ctx.Log.Warn("TBD", "TBD file without `.tbd` extension (%s)", path)
	}

	InterfaceFile(ctx, records, arch)
}
