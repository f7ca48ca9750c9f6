// Package mixfix compiles the bodies of a grammar unit: each body is parsed as
// one expression of its expected type, using the mixfix operators that the
// unit declares together with plain host expressions.
package mixfix

import (
	"fmt"
	"io"
	"log"

	"github.com/dekarrin/mixfix/internal/diag"
	"github.com/dekarrin/mixfix/internal/exprparse"
	"github.com/dekarrin/mixfix/internal/host"
	"github.com/dekarrin/mixfix/internal/mxu"
	"github.com/dekarrin/mixfix/internal/optable"
	"github.com/dekarrin/mixfix/internal/packrat"
	"github.com/dekarrin/mixfix/internal/syntax"
	"github.com/dekarrin/mixfix/internal/types"
	"github.com/dekarrin/mixfix/internal/util"
)

// Result is the outcome of compiling one Body.
type Result struct {
	Body mxu.Body

	// Expr is the parsed body. It is nil if the body could not be parsed.
	Expr syntax.Expr

	// Thrown are the exception types the body may throw.
	Thrown []exprparse.Thrown
}

// Ok returns whether the body parsed.
func (res Result) Ok() bool {
	return res.Expr != nil
}

// Compiler compiles bodies against one host model. It is not safe for
// concurrent use.
type Compiler struct {
	model   *host.Model
	table   *optable.Table
	cache   *exprparse.Cache
	bodies  map[*types.Type]*packrat.Parser[syntax.Expr]
	log     *log.Logger
	verbose bool
}

// NewCompiler creates a Compiler that uses every operator in model. Progress
// is written to logger; DEBUG lines are only written if verbose is set. If
// logger is nil, nothing is logged.
func NewCompiler(model *host.Model, logger *log.Logger, verbose bool) *Compiler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	c := &Compiler{
		model:   model,
		table:   optable.New("unit", model),
		cache:   exprparse.NewCache(model),
		bodies:  map[*types.Type]*packrat.Parser[syntax.Expr]{},
		log:     logger,
		verbose: verbose,
	}
	return c
}

func (c *Compiler) debugf(format string, a ...interface{}) {
	if c.verbose {
		c.log.Printf("DEBUG "+format, a...)
	}
}

// Model returns the host model the Compiler compiles against.
func (c *Compiler) Model() *host.Model {
	return c.model
}

// Table returns the operator table the Compiler uses.
func (c *Compiler) Table() *optable.Table {
	return c.table
}

// bodyParser returns the parser of a complete body of type t.
func (c *Compiler) bodyParser(t *types.Type) *packrat.Parser[syntax.Expr] {
	if p, ok := c.bodies[t]; ok {
		return p
	}
	b := c.cache.Builder(c.table)
	p := packrat.Left(b.Expression(t), packrat.End).Named("body " + t.String())
	c.bodies[t] = p
	return p
}

// Parse parses src as one complete expression of type t in env. If it does not
// parse, the diagnostic for the best failure is returned.
func (c *Compiler) Parse(src string, file string, line int, t *types.Type, env *exprparse.Env) (syntax.Expr, *diag.Diagnostic) {
	r := packrat.NewReader(src, file, line, env)
	res := c.bodyParser(t).Apply(r)

	if f, failed := res.Failure(); failed {
		d := diag.FromFailure(r, r.BestFailure(f))
		return nil, &d
	}
	return res.Value(), nil
}

// Compile compiles one body. Every problem found is recorded in sink.
func (c *Compiler) Compile(b mxu.Body, sink diag.Sink) Result {
	c.debugf("compiling %s as %s", b, b.Type)

	env := exprparse.NewEnv(b.Owner, b.Static)
	for _, p := range b.Params {
		env.Declare(p.Name, p.Type)
	}

	res := Result{Body: b}

	expr, d := c.Parse(b.Source, b.File, b.Line, b.Type, env)
	if d != nil {
		c.debugf("%s did not parse: %s", b, d.Message)
		sink.Record(*d)
		return res
	}

	res.Expr = expr
	res.Thrown = env.Thrown(expr)

	for _, th := range c.unhandled(b, res.Thrown) {
		sink.Record(diag.At(b.File, th.Line, fmt.Sprintf("unhandled exception type %s", th.Type)))
	}

	c.debugf("%s parsed as %s", b, expr)
	return res
}

// CompileAll compiles each body independently, in order. A body that fails
// does not stop the rest from being compiled.
func (c *Compiler) CompileAll(bodies []mxu.Body, sink diag.Sink) []Result {
	results := make([]Result, len(bodies))
	failed := 0
	for i := range bodies {
		counter := &countingSink{sink: sink}
		results[i] = c.Compile(bodies[i], counter)
		if counter.n > 0 {
			failed++
		}
	}

	c.log.Printf("INFO  compiled %d bodies, %d with errors", len(bodies), failed)
	return results
}

// unhandled returns the thrown types of a body that it does not declare, once
// for each line they are thrown on. Only expression bodies can declare what
// they throw.
func (c *Compiler) unhandled(b mxu.Body, thrown []exprparse.Thrown) []exprparse.Thrown {
	type key struct {
		t    *types.Type
		line int
	}
	seen := util.NewKeySet[key]()

	var out []exprparse.Thrown
	for _, th := range thrown {
		if b.Kind == mxu.ExpressionBody && c.handled(th.Type, b.Throws) {
			continue
		}
		if seen.Add(key{th.Type, th.Line}) {
			out = append(out, th)
		}
	}
	return out
}

func (c *Compiler) handled(t *types.Type, declared []*types.Type) bool {
	for _, d := range declared {
		if c.model.IsSubtype(t, d) {
			return true
		}
	}
	return false
}

// DumpTable returns the operators that produce t, as a text table no wider
// than width.
func (c *Compiler) DumpTable(t *types.Type, width int) string {
	return c.table.Dump(t, width)
}

type countingSink struct {
	sink diag.Sink
	n    int
}

func (cs *countingSink) Record(d diag.Diagnostic) {
	cs.n++
	cs.sink.Record(d)
}
