// Package exports holds the canonical symbol table of the tool: every export
// observed in interface files, header declarations or debug info, together
// with the libraries that own them.  Records live in arenas and refer to each
// other by ID; nothing here owns anything it points at except the Context.
package exports

import (
	"fmt"

	"wrapgen/logging"

	"github.com/llir/llvm/ir/types"
)

// Status is the resolution state of an export.  It only ever advances.
type Status int

const (
	NotFound   Status = iota // known from an interface file only
	Found                    // singly declared in the mobile headers
	Overloaded               // declared more than once with distinct signatures
	FoundInDLL               // matched against a desktop library's debug info
	Generated                // desktop trampoline generated and emitted
)

var statusNames = [...]string{"NotFound", "Found", "Overloaded", "FoundInDLL", "Generated"}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// Matched reports whether the export has been resolved on the desktop side.
func (s Status) Matched() bool {
	return s == FoundInDLL || s == Generated
}

// ExportID is the stable index of an export in the registry.
type ExportID int

// Arena IDs of the other records.
type (
	MobileLibID  int
	DesktopLibID int
	GroupID      int
	ClassID      int
)

// NoID marks an unset back-reference.
const NoID = -1

// Export is one exported symbol.
type Export struct {
	ID   ExportID
	Name string

	Status Status

	// Type is the canonical signature taken from the mobile headers.  It is
	// nil until the status reaches Found.
	Type *types.FuncType

	// Libraries are the mobile libraries that export this symbol.
	Libraries []MobileLibID

	// ObjCMethod is set for Objective-C methods: these are not exported by
	// name from the desktop libraries and are reached through the library's
	// reference function.
	ObjCMethod bool

	// RVA, DesktopLib and Group are only meaningful once Status.Matched().
	RVA        uint64
	DesktopLib DesktopLibID
	Group      GroupID
}

// OwnedBy reports whether lib lists this export.
func (e *Export) OwnedBy(lib MobileLibID) bool {
	for _, id := range e.Libraries {
		if id == lib {
			return true
		}
	}

	return false
}

// StatusError is an unexpected status transition.  It is always fatal.
type StatusError struct {
	Export string
	Status Status
	Stage  string
}

func (se *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %s of export %s during %s", se.Status, se.Export, se.Stage)
}

func (se *StatusError) Unwrap() error {
	return logging.ErrFatal
}
