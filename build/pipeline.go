// Package build drives a whole run: ingestion of the interface files, the
// header declarations and the debug info, the unimplemented report, and the
// generation and emission of every wrapper module.
package build

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"wrapgen/common"
	"wrapgen/config"
	"wrapgen/debuginfo"
	"wrapgen/emit"
	"wrapgen/exports"
	"wrapgen/generate"
	"wrapgen/headers"
	"wrapgen/ingest"
	"wrapgen/logging"
	"wrapgen/target"
	"wrapgen/typing"
)

// Outcome is the overall result of a run.
type Outcome int

const (
	Completed           Outcome = iota // no recoverable errors
	CompletedWithErrors                // recoverable errors were reported
	Fatal                              // the run was aborted
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case CompletedWithErrors:
		return "completed with errors"
	default:
		return "fatal"
	}
}

// Result summarizes a run.
type Result struct {
	Outcome Outcome

	// Err is the error that aborted the run.
	Err error

	// Unimplemented are the names of the exports that were never matched.
	Unimplemented []string

	// Outputs are the paths of every emitted file.
	Outputs []string

	Counts map[exports.Status]int
}

// ExitCode maps the result onto the process exit status.
func (r *Result) ExitCode(failOnErrors bool) int {
	switch r.Outcome {
	case Fatal:
		return 1
	case CompletedWithErrors:
		if failOnErrors {
			return 2
		}
	}

	return 0
}

// Pipeline is the orchestrator of one run over one project.
type Pipeline struct {
	proj    *config.Project
	ctx     *exports.Context
	emitter emit.Emitter

	// importStubs are the emitted import stubs by desktop library
	importStubs map[exports.DesktopLibID]string
}

// NewPipeline creates a pipeline reporting to log.  emitter may be nil for
// pipelines that are only checked.
func NewPipeline(proj *config.Project, log *logging.Logger, emitter emit.Emitter) *Pipeline {
	return &Pipeline{
		proj:        proj,
		ctx:         exports.NewContext(log),
		emitter:     emitter,
		importStubs: make(map[exports.DesktopLibID]string),
	}
}

// Context returns the registry built by the pipeline.
func (p *Pipeline) Context() *exports.Context {
	return p.ctx
}

// Run executes the whole pipeline.
func (p *Pipeline) Run() *Result {
	return p.run(true)
}

// Check executes ingestion and matching only and reports the unimplemented
// exports.
func (p *Pipeline) Check() *Result {
	return p.run(false)
}

func (p *Pipeline) run(generateCode bool) *Result {
	res := &Result{}
	if err := p.execute(res, generateCode); err != nil {
		p.ctx.Log.Fatal(err)
		res.Outcome = Fatal
		res.Err = err
	} else if p.ctx.Log.ShouldProceed() {
		res.Outcome = Completed
	} else {
		res.Outcome = CompletedWithErrors
	}

	res.Counts = p.ctx.StatusCounts()
	return res
}

func (p *Pipeline) execute(res *Result, generateCode bool) error {
	log := p.ctx.Log

	// nothing can be marshalled between incompatible targets
	if err := target.ValidateCompatibility(&p.proj.Mobile, &p.proj.Desktop); err != nil {
		return err
	}

	if p.proj.VersionMismatch() {
		log.Warn(
			"Project",
			"project `%s` was written for wrapgen v%s (running v%s)",
			p.proj.Name, p.proj.FileVersion, common.WrapgenVersion,
		)
	}

	log.BeginPhase("Interfaces")
	p.loadInterfaces()

	log.BeginPhase("Headers")
	if err := p.loadHeaders(); err != nil {
		return err
	}

	log.BeginPhase("Debug Info")
	if err := p.loadDebugInfo(); err != nil {
		return err
	}
	log.EndPhase()

	res.Unimplemented = p.reportUnimplemented()

	if !generateCode {
		return nil
	}

	log.BeginPhase("Generating")
	outputs, err := p.generate()
	res.Outputs = outputs
	if err != nil {
		return err
	}
	log.EndPhase()

	return nil
}

// -----------------------------------------------------------------------------

// loadInterfaces ingests every interface file matched by the project's
// patterns.  A pattern naming a directory selects every `.tbd` file below it.
func (p *Pipeline) loadInterfaces() {
	for _, pattern := range p.proj.TBDPatterns {
		paths, err := expandPattern(pattern)
		if err != nil {
			p.ctx.Log.Error("TBD", "invalid pattern `%s`: %s", pattern, err)
			continue
		}

		if len(paths) == 0 {
			p.ctx.Log.Warn("TBD", "no interface files match `%s`", pattern)
			continue
		}

		for _, path := range paths {
			ingest.InterfacePath(p.ctx, path, p.proj.RequiredArch)
		}
	}
}

func expandPattern(pattern string) ([]string, error) {
	if finfo, err := os.Stat(pattern); err == nil && finfo.IsDir() {
		var paths []string
		err := filepath.WalkDir(pattern, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if !d.IsDir() && filepath.Ext(path) == ".tbd" {
				paths = append(paths, path)
			}

			return nil
		})

		return paths, err
	}

	paths, err := filepath.Glob(pattern)
	sort.Strings(paths)
	return paths, err
}

// loadHeaders ingests the declarations of the mobile headers.  Without them
// nothing can be matched, so failing to read them is fatal.
func (p *Pipeline) loadHeaders() error {
	for _, path := range p.proj.Headers {
		decls, err := headers.ReadFile(path, &p.proj.Mobile)
		if err != nil {
			return logging.Fatalf("failed to load header declarations: %s", err)
		}

		if err := ingest.HeaderDeclarations(p.ctx, decls); err != nil {
			return err
		}
	}

	return nil
}

// loadDebugInfo matches the exports against the debug info of every DLL.
func (p *Pipeline) loadDebugInfo() error {
	checker := typing.NewChecker(typing.NewLayout(&p.proj.Desktop))

	for _, group := range p.proj.Groups {
		dlls, err := groupDLLs(group)
		if err != nil {
			p.ctx.Log.Error("Debug Info", "failed to list DLL group `%s`: %s", group.Dir, err)
			continue
		}

		dg := p.ctx.AddGroup(group.Dir)
		for _, dll := range dlls {
			lib := p.ctx.AddDesktopLibrary(dg, dll)

			funcs, err := debuginfo.LoadFile(debuginfo.DumpPath(filepath.Join(group.Dir, dll)))
			if err != nil {
				p.ctx.Log.Error("Debug Info", "%s", err)
				continue
			}

			if err := ingest.DebugSymbols(p.ctx, lib, funcs, checker); err != nil {
				return err
			}
		}
	}

	return nil
}

// groupDLLs returns the configured DLLs of a group or every DLL in its
// directory
func groupDLLs(group config.DLLGroup) ([]string, error) {
	if len(group.DLLs) > 0 {
		return group.DLLs, nil
	}

	entries, err := os.ReadDir(group.Dir)
	if err != nil {
		return nil, err
	}

	var dlls []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".dll") {
			dlls = append(dlls, entry.Name())
		}
	}

	if len(dlls) == 0 {
		return nil, errors.New("no DLLs in directory")
	}

	return dlls, nil
}

// reportUnimplemented lists every export never matched in a DLL, once each.
func (p *Pipeline) reportUnimplemented() []string {
	var names []string
	for _, exp := range p.ctx.Unimplemented() {
		names = append(names, exp.Name)

		if p.proj.Strictness == config.Strict {
			p.ctx.Log.Error("Unimplemented", "function not found: %s (%s)", exp.Name, exp.Status)
		} else {
			p.ctx.Log.Warn("Unimplemented", "function not found: %s (%s)", exp.Name, exp.Status)
		}
	}

	return names
}

// -----------------------------------------------------------------------------

// generate emits the wrapper library and import stub of every DLL, then the
// stubs of every mobile library.  Failed emissions are recoverable: their
// exports stay unmarked and receive no stubs.
func (p *Pipeline) generate() ([]string, error) {
	gen := generate.NewGenerator(p.ctx, &p.proj.Mobile, &p.proj.Desktop)

	var outputs []string
	for _, lib := range p.ctx.DesktopLibraries() {
		out, err := gen.DesktopWrappers(lib)
		if err != nil {
			return outputs, err
		}

		if len(out.Wrapped) == 0 {
			p.ctx.Log.Note("Codegen", "nothing to wrap in %s", lib.Name)
			continue
		}

		base := strings.TrimSuffix(lib.Name, filepath.Ext(lib.Name))
		path, ok := p.emit(&emit.Unit{
			Kind:   emit.DesktopWrapper,
			Name:   base + common.WrapperSuffix,
			Target: &p.proj.Desktop,
			Module: out.Module,
			Links:  []string{filepath.Join(lib.Dir, lib.Name)},
		})
		if !ok {
			continue
		}
		outputs = append(outputs, path)

		for _, id := range out.Wrapped {
			if err := p.ctx.MarkGenerated(p.ctx.Export(id)); err != nil {
				return outputs, err
			}
		}

		if path, ok := p.emit(&emit.Unit{
			Kind:        emit.WrapperImportStub,
			Name:        lib.Name,
			Target:      &p.proj.Mobile,
			Module:      out.ImportStub,
			InstallName: common.WrapperInstallDir + lib.Name,
		}); ok {
			outputs = append(outputs, path)
			p.importStubs[lib.ID] = path
		}
	}

	for _, lib := range p.ctx.MobileLibraries() {
		out := gen.MobileStubs(lib)
		if len(out.Stubbed) == 0 {
			continue
		}

		var links []string
		for _, id := range out.Links {
			if path, ok := p.importStubs[id]; ok {
				links = append(links, path)
			}
		}

		if path, ok := p.emit(&emit.Unit{
			Kind:        emit.MobileStub,
			Name:        stubName(lib.InstallName),
			Target:      &p.proj.Mobile,
			Module:      out.Module,
			InstallName: lib.InstallName,
			Links:       links,
		}); ok {
			outputs = append(outputs, path)
		}
	}

	return outputs, nil
}

func (p *Pipeline) emit(u *emit.Unit) (string, bool) {
	path, err := p.emitter.Emit(u)
	if err != nil {
		p.ctx.Log.Error("Emit", "failed to emit %s `%s`: %s", u.Kind, u.Name, err)
		return "", false
	}

	return path, true
}

// stubName derives the output name of a mobile library from its install name
func stubName(installName string) string {
	base := filepath.Base(installName)
	return strings.TrimSuffix(base, ".dylib")
}
