package mixfix

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dekarrin/mixfix/internal/exprparse"
	"github.com/dekarrin/mixfix/internal/input"
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/dekarrin/rosed"
)

const consoleOutputWidth = 80

// Shell reads expressions one line at a time from an input stream, parses
// each as an expression of its current type, and writes what was parsed to
// an output stream.
type Shell struct {
	compiler    *Compiler
	in          input.LineReader
	out         *bufio.Writer
	typ         *types.Type
	forceDirect bool
	running     bool
	line        int
}

// NewShell creates a Shell that parses expressions of type typeName with c.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. Readline is used if and only if both streams
// are the standard ones and forceDirect is not set.
func NewShell(c *Compiler, inputStream io.Reader, outputStream io.Writer, typeName string, forceDirect bool) (*Shell, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}

	t, err := c.Model().TypeByName(typeName)
	if err != nil {
		return nil, fmt.Errorf("expression type: %w", err)
	}

	sh := &Shell{
		compiler:    c,
		out:         bufio.NewWriter(outputStream),
		typ:         t,
		forceDirect: forceDirect,
	}

	useReadline := !forceDirect && inputStream == os.Stdin && outputStream == os.Stdout
	if useReadline {
		sh.in, err = input.NewInteractiveReader(sh.prompt())
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		sh.in = input.NewDirectReader(inputStream)
	}

	return sh, nil
}

func (sh *Shell) prompt() string {
	return sh.typ.String() + "> "
}

// Close closes all resources associated with the Shell, including any
// readline resources created for interactive mode.
func (sh *Shell) Close() error {
	if sh.running {
		return fmt.Errorf("cannot close a running shell")
	}

	if err := sh.in.Close(); err != nil {
		return fmt.Errorf("close line reader: %w", err)
	}
	return nil
}

func (sh *Shell) write(s string) error {
	if _, err := sh.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := sh.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}

// RunUntilQuit reads and parses lines until the input ends or the :quit
// command is given.
func (sh *Shell) RunUntilQuit() error {
	introMsg := "mixfix expression shell\n"
	if sh.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "=======================\n"
	introMsg += "Type :help for commands.\n"
	if err := sh.write(introMsg); err != nil {
		return err
	}

	sh.running = true
	defer func() {
		sh.running = false
	}()

	for sh.running {
		line, err := sh.in.ReadLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("get input line: %w", err)
		}
		sh.line++

		var output string
		if strings.HasPrefix(line, ":") {
			output = sh.command(line)
		} else {
			output = sh.parse(line)
		}

		if output != "" {
			if err := sh.write(output + "\n"); err != nil {
				return err
			}
		}
	}

	return sh.write("Goodbye\n")
}

func (sh *Shell) parse(src string) string {
	env := exprparse.NewEnv(nil, true)
	expr, d := sh.compiler.Parse(src, "<input>", sh.line, sh.typ, env)
	if d != nil {
		d.File = ""
		d.Line = 0
		return d.SourceLineWithCursor() + "\n" + rosed.Edit("error: "+d.Message).Wrap(consoleOutputWidth).String()
	}

	output := fmt.Sprintf("%s : %s", expr, expr.Type())
	for _, th := range env.Thrown(expr) {
		output += fmt.Sprintf("\n  throws %s", th.Type)
	}
	return output
}

func (sh *Shell) command(line string) string {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":q", ":quit":
		sh.running = false
		return ""
	case ":type":
		if len(fields) != 2 {
			return "usage: :type NAME"
		}
		t, err := sh.compiler.Model().TypeByName(fields[1])
		if err != nil {
			return err.Error()
		}
		sh.typ = t
		if icr, ok := sh.in.(*input.InteractiveReader); ok {
			icr.SetPrompt(sh.prompt())
		}
		return "now parsing expressions of type " + t.String()
	case ":table":
		return sh.compiler.DumpTable(sh.typ, consoleOutputWidth)
	case ":help":
		help := "Each line is parsed as an expression of the current type (" + sh.typ.String() + "). " +
			"Commands are :type NAME to change the type, :table to show the operators that " +
			"produce the type, and :quit to leave."
		return rosed.Edit(help).Wrap(consoleOutputWidth).String()
	default:
		return fmt.Sprintf("unknown command %q; type :help for commands", fields[0])
	}
}
