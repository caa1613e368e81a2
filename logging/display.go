package logging

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// PrintErrorMessage prints a standard Go error to the console
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints an informational message to the user
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// -----------------------------------------------------------------------------

// displayDiagnostic prints one diagnostic as a single line
func (l *Logger) displayDiagnostic(d Diagnostic) {
	var line string
	switch d.Severity {
	case SeverityError:
		line = ErrorStyleBG.Sprint(d.Kind+" Error") + " " + ErrorColorFG.Sprint(d.Message)
	case SeverityWarning:
		line = WarnStyleBG.Sprint(d.Kind+" Warning") + " " + WarnColorFG.Sprint(d.Message)
	default:
		line = InfoStyleBG.Sprint(d.Kind) + " " + d.Message
	}

	fmt.Fprintln(l.out, line)
}

func (l *Logger) displayFatal(msg string) {
	fmt.Fprint(l.out, "\n")
	fmt.Fprintln(l.out, ErrorStyleBG.Sprint("Fatal Error")+" "+ErrorColorFG.Sprint(msg))
}

// -----------------------------------------------------------------------------

// phase is a pipeline phase currently being displayed
type phase struct {
	name    string
	start   time.Time
	spinner *pterm.SpinnerPrinter
}

const maxPhaseLength = len("Generating")

// BeginPhase displays the beginning of a pipeline phase
func (l *Logger) BeginPhase(name string) {
	l.endPhase(true)

	p := &phase{name: name, start: time.Now()}
	l.phase = p

	if l.LogLevel < LogLevelVerbose {
		return
	}

	p.spinner = pterm.DefaultSpinner.WithStyle(pterm.NewStyle(InfoColorFG))
	p.spinner.SuccessPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: SuccessStyleBG,
			Text:  "Done",
		},
	}
	p.spinner.FailPrinter = &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: ErrorStyleBG,
			Text:  "Fail",
		},
	}

	p.spinner.Start(padPhase(name) + "...")
}

// EndPhase displays the end of the current phase
func (l *Logger) EndPhase() {
	l.endPhase(true)
}

func (l *Logger) endPhase(success bool) {
	p := l.phase
	if p == nil {
		return
	}
	l.phase = nil

	if p.spinner == nil {
		return
	}

	if success {
		p.spinner.Success(padPhase(p.name), fmt.Sprintf("(%.3fs)", time.Since(p.start).Seconds()))
	} else {
		p.spinner.Fail(padPhase(p.name))
	}
}

func padPhase(name string) string {
	if len(name) >= maxPhaseLength {
		return name + "  "
	}

	return name + strings.Repeat(" ", maxPhaseLength-len(name)+2)
}

// Finish displays the closing summary of a run
func (l *Logger) Finish(success bool) {
	l.endPhase(success)

	if l.LogLevel == LogLevelSilent {
		return
	}

	fmt.Fprint(l.out, "\n")
	if success {
		fmt.Fprint(l.out, SuccessColorFG.Sprint("All done! "))
	} else {
		fmt.Fprint(l.out, ErrorColorFG.Sprint("Oh no! "))
	}

	fmt.Fprintf(l.out, "(%s, %s)\n",
		countColor(l.errorCount, ErrorColorFG).Sprint(plural(l.errorCount, "error")),
		countColor(l.warningCount, WarnColorFG).Sprint(plural(l.warningCount, "warning")),
	)
}

func countColor(n int, c pterm.Color) pterm.Color {
	if n == 0 {
		return SuccessColorFG
	}

	return c
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}

	return fmt.Sprintf("%d %ss", n, noun)
}
