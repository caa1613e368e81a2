package tbd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlDocument is a TBD document as it is encoded in YAML
type yamlDocument struct {
	Archs       []string    `yaml:"archs"`
	Targets     []string    `yaml:"targets"`
	Platform    string      `yaml:"platform"`
	InstallName string      `yaml:"install-name"`
	Exports     []yaml.Node `yaml:"exports"`
}

// sectionKinds maps export section keys to symbol kinds
var sectionKinds = map[string]SymbolKind{
	"symbols":              GlobalSymbol,
	"weak-def-symbols":     GlobalSymbol,
	"thread-local-symbols": GlobalSymbol,
	"objc-classes":         ClassDescriptor,
	"objc-ivars":           InstanceVariableDescriptor,
	"objc-eh-types":        ExceptionTypeDescriptor,
}

// ignoredSections are export keys that don't list symbols of the library
var ignoredSections = map[string]bool{
	"re-exports": true,
}

// ReadFile reads every record of the interface file at path.  Only the
// symbols of export sections containing arch are kept.
func ReadFile(path, arch string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f, path, arch)
}

// Read reads every record of an interface file from r.
func Read(r io.Reader, path, arch string) ([]*Record, error) {
	var records []*Record

	dec := yaml.NewDecoder(r)
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("%s: %w", path, err)
		}

		rec, err := decodeDocument(&node, path, arch)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty interface file", path)
	}

	return records, nil
}

// decodeDocument converts one YAML document into a record
func decodeDocument(node *yaml.Node, path, arch string) (*Record, error) {
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = node.Content[0]
	}

	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s:%d: interface file expected", path, node.Line)
	}

	// the document tag (`!tapi-tbd-v3`) selects the format version; v1 files
	// have no tag at all
	version := 1
	if strings.HasPrefix(node.Tag, "!tapi-tbd-v") {
		v, err := strconv.Atoi(strings.TrimPrefix(node.Tag, "!tapi-tbd-v"))
		if err != nil || v < 1 {
			return nil, fmt.Errorf("%s:%d: unsupported interface file version `%s`", path, node.Line, node.Tag)
		}
		version = v
	} else if strings.HasPrefix(node.Tag, "!tapi-tbd") {
		version = 4
	}
	node.Tag = ""

	doc := &yamlDocument{}
	if err := node.Decode(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if doc.InstallName == "" {
		return nil, fmt.Errorf("%s:%d: missing install-name", path, node.Line)
	}

	archs := doc.Archs
	if len(archs) == 0 {
		archs = targetArchs(doc.Targets)
	}

	rec := &Record{Path: path, InstallName: doc.InstallName, Archs: archs}
	for _, section := range doc.Exports {
		syms, err := decodeSection(&section, version, arch)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, section.Line, err)
		}

		rec.Symbols = append(rec.Symbols, syms...)
	}

	return rec, nil
}

// decodeSection extracts the symbols of an export section
func decodeSection(section *yaml.Node, version int, arch string) ([]Symbol, error) {
	if section.Kind != yaml.MappingNode {
		return nil, errors.New("export section must be a mapping")
	}

	var archs []string
	entries := make(map[string][]string)
	var keys []string

	for i := 0; i+1 < len(section.Content); i += 2 {
		key := section.Content[i].Value
		var values []string
		if err := section.Content[i+1].Decode(&values); err != nil {
			return nil, fmt.Errorf("section key %s: %w", key, err)
		}

		switch key {
		case "archs":
			archs = values
			continue
		case "targets":
			archs = targetArchs(values)
			continue
		}

		entries[key] = values
		keys = append(keys, key)
	}

	if archs != nil && !contains(archs, arch) {
		return nil, nil
	}

	var syms []Symbol
	for _, key := range keys {
		if ignoredSections[key] {
			continue
		}

		kind, ok := sectionKinds[key]
		if !ok {
			kind = Unknown
		}

		for _, name := range entries[key] {
			// v1 and v2 spell classes with their C symbol underscore
			if kind == ClassDescriptor && version < 3 {
				name = strings.TrimPrefix(name, "_")
			}

			syms = append(syms, Symbol{Kind: kind, Name: name, Section: key})
		}
	}

	return syms, nil
}

// targetArchs extracts the architectures of v4 targets (`armv7-ios`)
func targetArchs(targets []string) []string {
	var archs []string
	for _, t := range targets {
		if i := strings.IndexByte(t, '-'); i > 0 {
			t = t[:i]
		}

		if !contains(archs, t) {
			archs = append(archs, t)
		}
	}

	return archs
}
