package common

const (
	ProjectFileName   = "wrapgen.toml"
	SymbolsFileSuffix = ".symbols.toml"
	WrapgenVersion    = "0.1.0"
)

// Naming conventions used by the generated modules.
const (
	// WrapperPrefix is prepended to an export's name to form the name of its
	// desktop-side trampoline.
	WrapperPrefix = "$__wrapgen_wrapper_"

	// WrapperSuffix is appended to the base name of a DLL to name the
	// wrapper library generated for it.
	WrapperSuffix = ".wrapper"

	// WrapperInstallDir is the install directory recorded in wrapper import
	// stubs, so mobile stubs never refer to the build directory.
	WrapperInstallDir = "/Wrappers/"
)

// Export name prefixes of Objective-C runtime artifacts.
const (
	ObjCClassPrefix  = "_OBJC_CLASS_$_"
	ObjCIvarPrefix   = "_OBJC_IVAR_$_"
	ObjCEHTypePrefix = "_OBJC_EHTYPE_$_"
)
