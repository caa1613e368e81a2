package exports

import (
	"sort"

	"wrapgen/common"
	"wrapgen/logging"
)

// Context is the explicit state shared by every step of a run: the export
// registry and the library arenas.  It is built once by the orchestrator.
type Context struct {
	Log *logging.Logger

	exports []*Export
	byName  map[string]ExportID

	mobileLibs   []*MobileLibrary
	mobileByName map[string]MobileLibID

	classes     []*DynamicClass
	classByName map[string]ClassID
	desktopLibs []*DesktopLibrary
	groups      []*DesktopGroup
}

// NewContext creates an empty context reporting to log.
func NewContext(log *logging.Logger) *Context {
	return &Context{
		Log:          log,
		byName:       make(map[string]ExportID),
		mobileByName: make(map[string]MobileLibID),
		classByName:  make(map[string]ClassID),
	}
}

// -----------------------------------------------------------------------------

// Find looks up an export by name.
func (c *Context) Find(name string) (*Export, bool) {
	if id, ok := c.byName[name]; ok {
		return c.exports[id], true
	}

	return nil, false
}

// AddOrGet returns the export with the given name, creating it with status
// NotFound if it does not exist yet.
func (c *Context) AddOrGet(name string) *Export {
	if exp, ok := c.Find(name); ok {
		return exp
	}

	exp := &Export{
		ID:         ExportID(len(c.exports)),
		Name:       name,
		Status:     NotFound,
		ObjCMethod: common.IsObjCMethodName(name),
		DesktopLib: NoID,
		Group:      NoID,
	}
	c.exports = append(c.exports, exp)
	c.byName[name] = exp.ID

	// methods of known classes are remembered by their class
	if cls, ok := common.ObjCMethodClass(name); ok {
		if id, ok := c.classByName[cls]; ok {
			c.classes[id].Methods = append(c.classes[id].Methods, exp.ID)
		}
	}

	return exp
}

// Export returns the export with the given ID.
func (c *Context) Export(id ExportID) *Export {
	return c.exports[id]
}

// Exports returns every export in creation order.
func (c *Context) Exports() []*Export {
	return c.exports
}

// Len returns the number of registered exports.
func (c *Context) Len() int {
	return len(c.exports)
}

// -----------------------------------------------------------------------------

// AddMobileLibrary registers a mobile library.  If a library with the same
// install name already exists, it is returned with false.
func (c *Context) AddMobileLibrary(installName string) (*MobileLibrary, bool) {
	if id, ok := c.mobileByName[installName]; ok {
		return c.mobileLibs[id], false
	}

	lib := &MobileLibrary{ID: MobileLibID(len(c.mobileLibs)), InstallName: installName}
	c.mobileLibs = append(c.mobileLibs, lib)
	c.mobileByName[installName] = lib.ID
	return lib, true
}

// MobileLibrary returns the mobile library with the given ID.
func (c *Context) MobileLibrary(id MobileLibID) *MobileLibrary {
	return c.mobileLibs[id]
}

// MobileLibraries returns all mobile libraries in registration order.
func (c *Context) MobileLibraries() []*MobileLibrary {
	return c.mobileLibs
}

// AddExportTo appends exp to lib's export list and records the ownership.
// Adding the same export twice is a no-op.
func (c *Context) AddExportTo(lib *MobileLibrary, exp *Export) {
	if exp.OwnedBy(lib.ID) {
		return
	}

	exp.Libraries = append(exp.Libraries, lib.ID)
	lib.Exports = append(lib.Exports, exp.ID)
}

// AddClass records that lib declares the Objective-C class name.
func (c *Context) AddClass(name string, lib MobileLibID) *DynamicClass {
	id, ok := c.classByName[name]
	if !ok {
		id = ClassID(len(c.classes))
		c.classes = append(c.classes, &DynamicClass{ID: id, Name: name})
		c.classByName[name] = id
	}

	cls := c.classes[id]
	for _, l := range cls.Libraries {
		if l == lib {
			return cls
		}
	}

	cls.Libraries = append(cls.Libraries, lib)
	return cls
}

// Class looks up an Objective-C class by name.
func (c *Context) Class(name string) (*DynamicClass, bool) {
	if id, ok := c.classByName[name]; ok {
		return c.classes[id], true
	}

	return nil, false
}

// Classes returns every known class.
func (c *Context) Classes() []*DynamicClass {
	return c.classes
}

// -----------------------------------------------------------------------------

// AddGroup registers a group of desktop libraries living in dir.
func (c *Context) AddGroup(dir string) *DesktopGroup {
	g := &DesktopGroup{ID: GroupID(len(c.groups)), Dir: dir}
	c.groups = append(c.groups, g)
	return g
}

// AddDesktopLibrary registers a DLL as a member of group.
func (c *Context) AddDesktopLibrary(group *DesktopGroup, name string) *DesktopLibrary {
	lib := &DesktopLibrary{
		ID:            DesktopLibID(len(c.desktopLibs)),
		Group:         group.ID,
		Name:          name,
		Dir:           group.Dir,
		ReferenceFunc: NoID,
	}
	c.desktopLibs = append(c.desktopLibs, lib)
	group.Libraries = append(group.Libraries, lib.ID)
	return lib
}

// Groups returns all desktop library groups.
func (c *Context) Groups() []*DesktopGroup {
	return c.groups
}

// DesktopLibrary returns the DLL with the given ID.
func (c *Context) DesktopLibrary(id DesktopLibID) *DesktopLibrary {
	return c.desktopLibs[id]
}

// DesktopLibraries returns all DLLs in registration order.
func (c *Context) DesktopLibraries() []*DesktopLibrary {
	return c.desktopLibs
}

// -----------------------------------------------------------------------------

// MarkFoundInDLL records that exp was matched in lib at the given RVA.  It
// adopts exp as lib's reference function when lib has none and exp is not an
// Objective-C method.
func (c *Context) MarkFoundInDLL(exp *Export, lib *DesktopLibrary, rva uint64) error {
	if exp.Status != Found {
		return &StatusError{Export: exp.Name, Status: exp.Status, Stage: "desktop matching"}
	}

	exp.Status = FoundInDLL
	exp.RVA = rva
	exp.DesktopLib = lib.ID
	exp.Group = lib.Group
	lib.Exports = append(lib.Exports, exp.ID)

	if !lib.HasReferenceFunc() && !exp.ObjCMethod {
		lib.ReferenceFunc = exp.ID
	}

	return nil
}

// MarkGenerated records that the trampoline of exp exists.
func (c *Context) MarkGenerated(exp *Export) error {
	if exp.Status != FoundInDLL {
		return &StatusError{Export: exp.Name, Status: exp.Status, Stage: "code generation"}
	}

	exp.Status = Generated
	return nil
}

// Unimplemented returns the exports that never reached FoundInDLL, sorted by
// name.
func (c *Context) Unimplemented() []*Export {
	var unimpl []*Export
	for _, exp := range c.exports {
		if !exp.Status.Matched() {
			unimpl = append(unimpl, exp)
		}
	}

	sort.Slice(unimpl, func(i, j int) bool {
		return unimpl[i].Name < unimpl[j].Name
	})

	return unimpl
}

// StatusCounts returns the number of exports in each status.
func (c *Context) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	for _, exp := range c.exports {
		counts[exp.Status]++
	}

	return counts
}
