// Package repl is a line-oriented shell over an editor session. Each line is one command; names are
// separated by whitespace.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	u "github.com/araddon/gou"
	"github.com/kr/pretty"
	"github.com/manifoldco/promptui"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	automaton "github.com/geange/automaton-editor"
	"github.com/geange/automaton-editor/diagram"
	"github.com/geange/automaton-editor/session"
)

// EpsilonAlias is accepted wherever the shell expects a symbol and stands for automaton.Epsilon.
const EpsilonAlias = "eps"

// ErrUsage is returned for a malformed command line.
var ErrUsage = errors.New("usage")

const helpText = `Commands:
  state add|del NAME          add or delete a state
  symbol add|del NAME         add or delete an input symbol
  trans add|del FROM SYM TO   add or delete a transition (SYM may be eps)
  start NAME                  set the start state
  final NAME                  toggle whether NAME is final
  sample | reset              load the sample NFA or clear everything
  convert                     build the DFA from the NFA
  mode [NFA|DFA]              show or switch the active automaton
  table | def | dump          transition table, formal definition, raw structure
  sim INPUT                   run INPUT through the active automaton
  simdfa INPUT                run INPUT through the converted DFA
  analysis                    unreachable and dead states
  diagram [current|NFA|DFA]   print the graph in DOT
  help | quit
`

type command func(sh *Shell, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":     (*Shell).help,
		"state":    (*Shell).state,
		"symbol":   (*Shell).symbol,
		"trans":    (*Shell).trans,
		"start":    (*Shell).start,
		"final":    (*Shell).final,
		"sample":   (*Shell).sample,
		"reset":    (*Shell).reset,
		"convert":  (*Shell).convert,
		"mode":     (*Shell).mode,
		"table":    (*Shell).table,
		"def":      (*Shell).definition,
		"dump":     (*Shell).dump,
		"sim":      (*Shell).simulate,
		"simdfa":   (*Shell).simulateDFA,
		"analysis": (*Shell).analysis,
		"diagram":  (*Shell).diagram,
	}
}

// Shell executes commands against a session and writes their output to out.
type Shell struct {
	session *session.Session
	out     io.Writer
}

// New returns a shell over sess writing to out.
func New(sess *session.Session, out io.Writer) *Shell {
	return &Shell{session: sess, out: out}
}

// Exec runs one command line. quit is true once the user asked to leave. Blank lines do nothing.
func (sh *Shell) Exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	if name == "quit" || name == "exit" {
		return true, nil
	}

	cmd, ok := commands[name]
	if !ok {
		return false, fmt.Errorf("%w: unknown command %q, try help", ErrUsage, name)
	}
	u.Debugf("repl: %s %v", name, args)
	return false, cmd(sh, args)
}

func (sh *Shell) printf(format string, args ...any) {
	fmt.Fprintf(sh.out, format, args...)
}

func (sh *Shell) ok(message string) {
	sh.printf("%s\n", promptui.Styler(promptui.FGGreen)(message))
}

func want(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s", ErrUsage, usage)
	}
	return nil
}

func symbolArg(s string) string {
	if s == EpsilonAlias {
		return string(automaton.Epsilon)
	}
	return s
}

func (sh *Shell) help(args []string) error {
	sh.printf("%s", helpText)
	return nil
}

func (sh *Shell) state(args []string) error {
	if err := want(args, 2, "state add|del NAME"); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		if _, err := sh.session.AddState(args[1]); err != nil {
			return err
		}
		sh.ok("State " + args[1] + " added")
	case "del":
		if _, err := sh.session.DeleteState(args[1]); err != nil {
			return err
		}
		sh.ok("State " + args[1] + " deleted")
	default:
		return fmt.Errorf("%w: state add|del NAME", ErrUsage)
	}
	return nil
}

func (sh *Shell) symbol(args []string) error {
	if err := want(args, 2, "symbol add|del NAME"); err != nil {
		return err
	}
	switch args[0] {
	case "add":
		if _, err := sh.session.AddSymbol(args[1]); err != nil {
			return err
		}
		sh.ok("Symbol " + args[1] + " added")
	case "del":
		if _, err := sh.session.DeleteSymbol(args[1]); err != nil {
			return err
		}
		sh.ok("Symbol " + args[1] + " deleted")
	default:
		return fmt.Errorf("%w: symbol add|del NAME", ErrUsage)
	}
	return nil
}

func (sh *Shell) trans(args []string) error {
	if err := want(args, 4, "trans add|del FROM SYM TO"); err != nil {
		return err
	}
	from, sym, to := args[1], symbolArg(args[2]), args[3]
	t := automaton.Transition{Source: automaton.State(from), Symbol: automaton.Symbol(sym), Target: automaton.State(to)}
	switch args[0] {
	case "add":
		if _, err := sh.session.AddTransition(from, sym, to); err != nil {
			return err
		}
		sh.ok("Transition " + t.String() + " added")
	case "del":
		if _, err := sh.session.DeleteTransition(from, sym, to); err != nil {
			return err
		}
		sh.ok("Transition " + t.String() + " deleted")
	default:
		return fmt.Errorf("%w: trans add|del FROM SYM TO", ErrUsage)
	}
	return nil
}

func (sh *Shell) start(args []string) error {
	if err := want(args, 1, "start NAME"); err != nil {
		return err
	}
	if _, err := sh.session.SetStart(args[0]); err != nil {
		return err
	}
	sh.ok("Start state is " + args[0])
	return nil
}

func (sh *Shell) final(args []string) error {
	if err := want(args, 1, "final NAME"); err != nil {
		return err
	}
	if _, err := sh.session.ToggleFinal(args[0]); err != nil {
		return err
	}
	sh.ok("Toggled final " + args[0])
	return nil
}

func (sh *Shell) sample(args []string) error {
	sh.session.LoadSample()
	sh.ok("Sample NFA loaded")
	return nil
}

func (sh *Shell) reset(args []string) error {
	sh.session.Reset()
	sh.ok("Automaton cleared")
	return nil
}

func (sh *Shell) convert(args []string) error {
	result := sh.session.Convert()
	if !result.Success {
		sh.printf("%s\n", promptui.Styler(promptui.FGRed)(result.Message))
		return nil
	}
	sh.ok(result.Message)
	return nil
}

func (sh *Shell) mode(args []string) error {
	switch len(args) {
	case 0:
	case 1:
		if _, err := sh.session.SelectMode(args[0]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: mode [NFA|DFA]", ErrUsage)
	}
	sh.printf("Mode: %s\n", sh.session.Mode())
	return nil
}

func (sh *Shell) table(args []string) error {
	t := sh.session.TransitionTable()
	// Symbols are case sensitive, so headers are printed verbatim.
	table := tablewriter.NewTable(sh.out, tablewriter.WithHeaderAutoFormat(tw.Off))
	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	table.Header(header...)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func (sh *Shell) definition(args []string) error {
	sh.printf("%s\n", sh.session.Definition())
	return nil
}

func (sh *Shell) dump(args []string) error {
	sh.printf("%s\n", pretty.Sprintf("%# v", sh.session.Serialized()))
	return nil
}

func (sh *Shell) simulate(args []string) error {
	result, err := sh.session.SimulateCurrent(strings.Join(args, " "))
	if err != nil {
		return err
	}
	sh.printResult(result)
	return nil
}

func (sh *Shell) simulateDFA(args []string) error {
	result, err := sh.session.SimulateDFA(strings.Join(args, " "))
	if err != nil {
		return err
	}
	sh.printResult(result)
	return nil
}

func (sh *Shell) printResult(result *automaton.SimulationResult) {
	for _, step := range result.Steps {
		sh.printf("%s\n", promptui.Styler(promptui.FGCyan)(step))
	}
	color := promptui.FGRed
	if result.Accepted {
		color = promptui.FGGreen
	}
	sh.printf("%s\n", promptui.Styler(color, promptui.FGBold)(result.Message))
}

func (sh *Shell) analysis(args []string) error {
	a := sh.session.Analysis()
	sh.printf("Deterministic: %t\n", a.Deterministic)
	sh.printf("Epsilon moves: %t\n", a.HasEpsilon)
	sh.printf("Empty language: %t\n", a.EmptyLanguage)
	sh.printf("Unreachable: %s\n", joinStates(a.Unreachable))
	sh.printf("Dead: %s\n", joinStates(a.Dead))
	return nil
}

func joinStates(states []automaton.State) string {
	if len(states) == 0 {
		return "none"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func (sh *Shell) diagram(args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: diagram [current|NFA|DFA]", ErrUsage)
	}
	sel := session.SelectCurrent
	if len(args) == 1 {
		sel = session.Selector(args[0])
	}
	g, err := sh.session.Diagram(sel)
	if err != nil {
		return err
	}
	return diagram.WriteDOT(sh.out, g)
}
