package exports

// MobileLibrary is one mobile-platform dynamic library, keyed by install name.
type MobileLibrary struct {
	ID          MobileLibID
	InstallName string

	// Exports are kept in interface-file order without duplicates.
	Exports []ExportID
}

// DynamicClass is an Objective-C class declared by one or more mobile
// libraries.
type DynamicClass struct {
	ID        ClassID
	Name      string
	Libraries []MobileLibID

	// Methods are the method exports observed for this class.
	Methods []ExportID
}

// DesktopLibrary is one desktop DLL with its debug-info database.
type DesktopLibrary struct {
	ID    DesktopLibID
	Group GroupID
	Name  string
	Dir   string

	// Exports are the exports matched in this DLL, in debug-info order.
	Exports []ExportID

	// ReferenceFunc anchors the address computation of Objective-C methods.
	// It is NoID until a plain (non-method) export is matched.
	ReferenceFunc ExportID
}

// HasReferenceFunc reports whether a reference function was adopted.
func (d *DesktopLibrary) HasReferenceFunc() bool {
	return d.ReferenceFunc != NoID
}

// DesktopGroup is a directory of DLLs that are processed and linked together.
type DesktopGroup struct {
	ID        GroupID
	Dir       string
	Libraries []DesktopLibID
}
