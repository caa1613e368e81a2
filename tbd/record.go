// Package tbd reads text-based dynamic library stubs (`.tbd` files): YAML
// documents declaring a library's install name, architectures and exported
// symbols without any implementation.
package tbd

// SymbolKind is the closed set of symbol kinds an interface file declares.
type SymbolKind int

const (
	GlobalSymbol SymbolKind = iota
	ClassDescriptor
	InstanceVariableDescriptor
	ExceptionTypeDescriptor

	// Unknown is a symbol listed under a key the reader does not recognize.
	Unknown
)

func (k SymbolKind) String() string {
	switch k {
	case GlobalSymbol:
		return "global"
	case ClassDescriptor:
		return "objc-class"
	case InstanceVariableDescriptor:
		return "objc-ivar"
	case ExceptionTypeDescriptor:
		return "objc-eh-type"
	}

	return "unknown"
}

// Symbol is one exported symbol of an interface file.
type Symbol struct {
	Kind SymbolKind
	Name string

	// Section is the YAML key the symbol was listed under.
	Section string
}

// AnnotatedName returns the symbol name prefixed with its section, used in
// diagnostics.
func (s Symbol) AnnotatedName() string {
	return s.Section + ": " + s.Name
}

// Record is one library declared by an interface file.
type Record struct {
	// Path is the file the record was read from.
	Path string

	InstallName string
	Archs       []string
	Symbols     []Symbol
}

// HasArch reports whether the record supports arch.
func (r *Record) HasArch(arch string) bool {
	return contains(r.Archs, arch)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}

	return false
}
