package common

import "strings"

// IsObjCMethodName reports whether a mangled symbol name denotes an
// Objective-C method (`-[Class selector]` or `+[Class selector]`).  A leading
// `\x01` (the LLVM "do not mangle" marker) is ignored.
func IsObjCMethodName(name string) bool {
	name = strings.TrimPrefix(name, "\x01")
	return len(name) > 2 && (name[0] == '-' || name[0] == '+') && name[1] == '['
}

// ObjCMethodClass returns the class name of an Objective-C method symbol
// (`-[NSString length]` yields `NSString`).  Category names are dropped.
func ObjCMethodClass(name string) (string, bool) {
	if !IsObjCMethodName(name) {
		return "", false
	}

	name = strings.TrimPrefix(name, "\x01")[2:]
	end := strings.IndexAny(name, " (")
	if end <= 0 {
		return "", false
	}

	return name[:end], true
}
