package cmd

import (
	"path/filepath"

	"wrapgen/build"
	"wrapgen/common"
	"wrapgen/config"
	"wrapgen/emit"
	"wrapgen/logging"

	"github.com/ComedicChimera/olive"
)

// Execute runs the main `wrapgen` application and returns its exit status
func Execute(args []string) int {
	// set up the argument parser and all its extended commands and arguments
	cli := olive.NewCLI("wrapgen", "wrapgen generates wrappers running mobile libraries on desktop DLLs", true)
	logLvlArg := cli.AddSelectorArg("loglevel", "ll", "the log level", false, []string{"silent", "error", "warn", "verbose"})
	logLvlArg.SetDefaultValue("verbose")

	buildCmd := cli.AddSubcommand("build", "generate and emit the wrappers of a project", true)
	buildCmd.AddPrimaryArg("project-path", "the path to the project directory", true)
	buildCmd.AddSelectorArg("strictness", "s", "how unimplemented functions are reported", false, []string{"strict", "lenient"})
	buildCmd.AddFlag("fail-on-errors", "fe", "exit with a non-zero status if any error was reported")

	checkCmd := cli.AddSubcommand("check", "match the exports of a project without generating anything", true)
	checkCmd.AddPrimaryArg("project-path", "the path to the project directory", true)
	checkCmd.AddSelectorArg("strictness", "s", "how unimplemented functions are reported", false, []string{"strict", "lenient"})
	checkCmd.AddFlag("fail-on-errors", "fe", "exit with a non-zero status if any error was reported")

	cli.AddSubcommand("version", "print the wrapgen version", false)

	// run the argument parser
	result, err := olive.ParseArgs(cli, args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		return 1
	}

	loglevel := logging.ParseLogLevel(result.Arguments["loglevel"].(string))

	// process the inputed command line
	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		return execProjectCommand(subResult, loglevel, true)
	case "check":
		return execProjectCommand(subResult, loglevel, false)
	case "version":
		logging.PrintInfoMessage("wrapgen Version", common.WrapgenVersion)
	}

	return 0
}

// execProjectCommand executes the build and check subcommands and handles all
// errors
func execProjectCommand(result *olive.ArgParseResult, loglevel int, generate bool) int {
	// extract CLI data
	projectRelPath, _ := result.PrimaryArg()

	projectPath, err := filepath.Abs(projectRelPath)
	if err != nil {
		logging.PrintErrorMessage("Path Error", err)
		return 1
	}

	proj, err := config.Load(projectPath)
	if err != nil {
		logging.PrintErrorMessage("Project Load Error", err)
		return 1
	}

	// command line flags override the project file
	if strictArg, ok := result.Arguments["strictness"]; ok {
		if proj.Strictness, err = config.ParseStrictness(strictArg.(string)); err != nil {
			logging.PrintErrorMessage("CLI Usage Error", err)
			return 1
		}
	}

	if result.HasFlag("fail-on-errors") {
		proj.FailOnErrors = true
	}

	log := logging.NewLogger(loglevel)

	var res *build.Result
	if generate {
		emitter, err := newEmitter(proj)
		if err != nil {
			logging.PrintErrorMessage("Toolchain Error", err)
			return 1
		}

		res = build.NewPipeline(proj, log, emitter).Run()
	} else {
		res = build.NewPipeline(proj, log, nil).Check()
	}

	log.Finish(res.Outcome == build.Completed)
	return res.ExitCode(proj.FailOnErrors)
}

// newEmitter creates the emitter matching the project's output mode
func newEmitter(proj *config.Project) (emit.Emitter, error) {
	if proj.OutputMode == emit.ModeLLVM {
		return &emit.IRWriter{Dir: proj.OutputDir}, nil
	}

	return emit.NewClangDriver(proj.Clang, proj.OutputDir, proj.OutputMode)
}
