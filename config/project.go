// Package config loads the project file describing one wrapper build.
package config

import (
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"wrapgen/common"
	"wrapgen/emit"
	"wrapgen/target"

	"github.com/pelletier/go-toml"
)

// Strictness decides how exports left unimplemented are reported.
type Strictness int

const (
	Strict  Strictness = iota // unimplemented exports are errors
	Lenient                   // unimplemented exports are warnings
)

func (s Strictness) String() string {
	if s == Lenient {
		return "lenient"
	}

	return "strict"
}

// ParseStrictness converts the name of a strictness level.
func ParseStrictness(name string) (Strictness, error) {
	switch strings.ToLower(name) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}

	return 0, fmt.Errorf("invalid strictness: `%s` (expected `strict` or `lenient`)", name)
}

// Project is a validated project file with every path made absolute.
type Project struct {
	// Root is the directory containing the project file.
	Root string
	Name string

	// FileVersion is the tool version the project file was written for.
	FileVersion string

	Strictness   Strictness
	FailOnErrors bool

	// RequiredArch selects the interface file sections to read.  It defaults
	// to the mobile target's architecture.
	RequiredArch string

	Mobile, Desktop target.Desc

	// TBDPatterns are glob patterns of interface files.
	TBDPatterns []string
	Headers     []string

	Groups []DLLGroup

	OutputDir  string
	OutputMode emit.Mode
	Clang      string
}

// DLLGroup is a directory of desktop libraries.  An empty DLL list selects
// every `.dll` of the directory.
type DLLGroup struct {
	Dir  string
	DLLs []string
}

// -----------------------------------------------------------------------------

// tomlProjectFile represents the project file as it is encoded in TOML
type tomlProjectFile struct {
	Project *tomlProject `toml:"project"`
	Mobile  *tomlTarget  `toml:"mobile"`
	Desktop *tomlTarget  `toml:"desktop"`
	Inputs  *tomlInputs  `toml:"inputs"`
	Groups  []*tomlGroup `toml:"dll-group"`
	Output  *tomlOutput  `toml:"output"`
}

type tomlProject struct {
	Name         string `toml:"name"`
	Version      string `toml:"wrapgen-version,omitempty"`
	Strictness   string `toml:"strictness,omitempty"`
	FailOnErrors bool   `toml:"fail-on-errors"`
	RequiredArch string `toml:"required-arch,omitempty"`
}

// tomlTarget is a preset with optional overrides
type tomlTarget struct {
	Preset       string  `toml:"preset"`
	Triple       string  `toml:"triple,omitempty"`
	DataLayout   string  `toml:"data-layout,omitempty"`
	Arch         string  `toml:"arch,omitempty"`
	WordSize     int     `toml:"word-size,omitempty"`
	ByteOrder    string  `toml:"byte-order,omitempty"`
	Int64Align   int     `toml:"int64-align,omitempty"`
	Float64Align int     `toml:"float64-align,omitempty"`
	GlobalPrefix *string `toml:"global-prefix,omitempty"`
	ObjectFormat string  `toml:"object-format,omitempty"`
}

type tomlInputs struct {
	TBD     []string `toml:"tbd"`
	Headers []string `toml:"headers"`
}

type tomlGroup struct {
	Dir  string   `toml:"dir"`
	DLLs []string `toml:"dlls,omitempty"`
}

type tomlOutput struct {
	Dir   string `toml:"dir,omitempty"`
	Mode  string `toml:"mode,omitempty"`
	Clang string `toml:"clang,omitempty"`
}

// Load loads and validates the project file in dir.
func Load(dir string) (*Project, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(root, common.ProjectFileName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return Parse(root, buff)
}

// Parse decodes and validates a project file whose relative paths are
// relative to root.
func Parse(root string, buff []byte) (*Project, error) {
	tpf := &tomlProjectFile{}
	if err := toml.Unmarshal(buff, tpf); err != nil {
		return nil, fmt.Errorf("malformed project file: %w", err)
	}

	if tpf.Project == nil || tpf.Project.Name == "" {
		return nil, errors.New("missing project name")
	}

	proj := &Project{
		Root:         root,
		Name:         tpf.Project.Name,
		FileVersion:  tpf.Project.Version,
		FailOnErrors: tpf.Project.FailOnErrors,
		OutputDir:    filepath.Join(root, "out"),
	}

	var err error
	if proj.Strictness, err = ParseStrictness(tpf.Project.Strictness); err != nil {
		return nil, err
	}

	if tpf.Mobile == nil || tpf.Desktop == nil {
		return nil, errors.New("both a `mobile` and a `desktop` target must be specified")
	}

	if proj.Mobile, err = convertTarget("mobile", tpf.Mobile); err != nil {
		return nil, err
	}

	if proj.Desktop, err = convertTarget("desktop", tpf.Desktop); err != nil {
		return nil, err
	}

	proj.RequiredArch = tpf.Project.RequiredArch
	if proj.RequiredArch == "" {
		proj.RequiredArch = proj.Mobile.Arch
	}

	if tpf.Inputs == nil || len(tpf.Inputs.TBD) == 0 {
		return nil, errors.New("no interface files specified in `inputs.tbd`")
	}

	if len(tpf.Inputs.Headers) == 0 {
		return nil, errors.New("no header compilation output specified in `inputs.headers`")
	}

	for _, pattern := range tpf.Inputs.TBD {
		proj.TBDPatterns = append(proj.TBDPatterns, proj.resolve(pattern))
	}

	for _, header := range tpf.Inputs.Headers {
		proj.Headers = append(proj.Headers, proj.resolve(header))
	}

	if len(tpf.Groups) == 0 {
		return nil, errors.New("at least one `dll-group` must be specified")
	}

	for i, tg := range tpf.Groups {
		if tg.Dir == "" {
			return nil, fmt.Errorf("dll group %d has no directory", i+1)
		}

		proj.Groups = append(proj.Groups, DLLGroup{Dir: proj.resolve(tg.Dir), DLLs: tg.DLLs})
	}

	if out := tpf.Output; out != nil {
		if out.Dir != "" {
			proj.OutputDir = proj.resolve(out.Dir)
		}

		if proj.OutputMode, err = emit.ParseMode(out.Mode); err != nil {
			return nil, err
		}

		proj.Clang = out.Clang
	}

	return proj, nil
}

// VersionMismatch reports whether the project file was written for another
// version of the tool.
func (p *Project) VersionMismatch() bool {
	return p.FileVersion != "" && p.FileVersion != common.WrapgenVersion
}

// resolve makes a project relative path absolute
func (p *Project) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(p.Root, path)
}

// convertTarget applies the overrides of tt to its preset
func convertTarget(section string, tt *tomlTarget) (target.Desc, error) {
	var desc target.Desc
	if tt.Preset != "" {
		var ok bool
		if desc, ok = target.Preset(tt.Preset); !ok {
			return desc, fmt.Errorf("unknown %s target preset: `%s`", section, tt.Preset)
		}
	} else {
		desc.Name = section
	}

	if tt.Triple != "" {
		desc.Triple = tt.Triple
	}

	if tt.DataLayout != "" {
		desc.DataLayout = tt.DataLayout
	}

	if tt.Arch != "" {
		desc.Arch = tt.Arch
	}

	if tt.WordSize != 0 {
		desc.WordSize = tt.WordSize
	}

	if tt.Int64Align != 0 {
		desc.Int64Align = tt.Int64Align
	}

	if tt.Float64Align != 0 {
		desc.Float64Align = tt.Float64Align
	}

	if tt.GlobalPrefix != nil {
		desc.GlobalPrefix = *tt.GlobalPrefix
	}

	var err error
	if tt.ByteOrder != "" {
		if desc.ByteOrder, err = target.ParseByteOrder(tt.ByteOrder); err != nil {
			return desc, fmt.Errorf("%s target: %w", section, err)
		}
	}

	if tt.ObjectFormat != "" {
		if desc.Format, err = target.ParseObjectFormat(tt.ObjectFormat); err != nil {
			return desc, fmt.Errorf("%s target: %w", section, err)
		}
	}

	if desc.Triple == "" || desc.WordSize == 0 {
		return desc, fmt.Errorf("%s target must name a preset or give at least a triple and a word size", section)
	}

	if desc.Int64Align == 0 {
		desc.Int64Align = desc.WordSize
	}

	if desc.Float64Align == 0 {
		desc.Float64Align = desc.Int64Align
	}

	return desc, nil
}
