package mixfix

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/dekarrin/mixfix/internal/diag"
	"github.com/dekarrin/mixfix/internal/mxu"
	"github.com/stretchr/testify/assert"
)

const testUnit = `
format = "MXU"
type = "UNIT"

[[class]]
name = "Arith"

[[class]]
name = "Io"

[[class]]
name = "IOException"

[[class]]
name = "FileNotFound"
super = "IOException"

[[method]]
owner = "Io"
name = "read"
return = "int"
static = true
throws = ["IOException"]

[[method]]
owner = "Io"
name = "open"
return = "int"
static = true
throws = ["FileNotFound"]

[[operator]]
owner = "Arith"
name = "plus"
result = "int"
priority = 10

  [[operator.pattern]]
  operand = "int"
  inclusive = true

  [[operator.pattern]]
  keyword = "+"

  [[operator.pattern]]
  operand = "int"

[[operator]]
owner = "Arith"
name = "times"
result = "int"
priority = 20

  [[operator.pattern]]
  operand = "int"
  inclusive = true

  [[operator.pattern]]
  keyword = "*"

  [[operator.pattern]]
  operand = "int"
`

// loadBodies decodes testUnit with extra body declarations appended.
func loadBodies(t *testing.T, bodies string) mxu.Unit {
	unit, err := mxu.Decode([]byte(testUnit+bodies), "test.mxu")
	if err != nil {
		t.Fatal(err)
	}
	return unit
}

func Test_Compiler_Compile(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		expect     string
		expectDiag []string
	}{
		{
			name:   "field with operators",
			body:   "kind = \"field\"\ntype = \"int\"\nsource = \"1 + 2 * 3\"",
			expect: "plus(1, times(2, 3))",
		},
		{
			name:   "expression with parameter",
			body:   "type = \"int\"\nsource = \"n + n\"\n[[body.param]]\nname = \"n\"\ntype = \"int\"",
			expect: "plus(n, n)",
		},
		{
			name:       "unknown variable",
			body:       "type = \"int\"\nline = 4\nsource = \"1 + y\"",
			expectDiag: []string{"test.mxu: around line 4, char 6: unknown variable: y"},
		},
		{
			name:   "declared exception",
			body:   "type = \"int\"\nsource = \"Io.read()\"\nthrows = [\"IOException\"]",
			expect: "Io.read()",
		},
		{
			name:   "declared supertype of exception",
			body:   "type = \"int\"\nsource = \"Io.open()\"\nthrows = [\"IOException\"]",
			expect: "Io.open()",
		},
		{
			name:   "undeclared exceptions on two lines",
			body:   "type = \"int\"\nline = 7\nsource = \"Io.read() +\\n  Io.read() * Io.read()\"",
			expect: "plus(Io.read(), times(Io.read(), Io.read()))",
			expectDiag: []string{
				"test.mxu: line 7: unhandled exception type IOException",
				"test.mxu: line 8: unhandled exception type IOException",
			},
		},
		{
			name:       "field cannot declare exceptions",
			body:       "kind = \"field\"\ntype = \"int\"\nsource = \"Io.read()\"\nthrows = [\"IOException\"]",
			expect:     "Io.read()",
			expectDiag: []string{"test.mxu: line 1: unhandled exception type IOException"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			unit := loadBodies(t, "\n[[body]]\nowner = \"Arith\"\nname = \"b\"\nstatic = true\n"+tc.body+"\n")
			c := NewCompiler(unit.Model, nil, false)

			var sink diag.List
			res := c.Compile(unit.Bodies[0], &sink)

			var diags []string
			for _, d := range sink.Items {
				diags = append(diags, d.Error())
			}
			assert.Equal(tc.expectDiag, diags)

			if tc.expect == "" {
				assert.False(res.Ok())
				return
			}
			if assert.True(res.Ok()) {
				assert.Equal(tc.expect, res.Expr.String())
			}
		})
	}
}

func Test_Compiler_CompileAll(t *testing.T) {
	assert := assert.New(t)
	unit := loadBodies(t, `
[[body]]
owner = "Arith"
name = "first"
type = "int"
source = "1 +"

[[body]]
owner = "Arith"
name = "second"
type = "int"
source = "2 * 2"
`)
	var logBuf bytes.Buffer
	c := NewCompiler(unit.Model, log.New(&logBuf, "", 0), true)

	var sink diag.List
	results := c.CompileAll(unit.Bodies, &sink)

	if assert.Len(results, 2) {
		assert.False(results[0].Ok())
		assert.True(results[1].Ok())
		assert.Equal("times(2, 2)", results[1].Expr.String())
	}
	if assert.Equal(1, sink.Len()) {
		assert.Equal(1, sink.Items[0].Line)
		assert.Equal("test.mxu", sink.Items[0].File)
	}

	logged := logBuf.String()
	assert.Contains(logged, "DEBUG compiling expression Arith.first as int")
	assert.Contains(logged, "INFO  compiled 2 bodies, 1 with errors")
}

func Test_Compiler_quietWithoutVerbose(t *testing.T) {
	assert := assert.New(t)
	unit := loadBodies(t, "\n[[body]]\nowner = \"Arith\"\nname = \"b\"\ntype = \"int\"\nsource = \"1\"\n")

	var logBuf bytes.Buffer
	c := NewCompiler(unit.Model, log.New(&logBuf, "", 0), false)
	c.CompileAll(unit.Bodies, &diag.List{})

	assert.NotContains(logBuf.String(), "DEBUG")
}

func Test_Compiler_DumpTable(t *testing.T) {
	assert := assert.New(t)
	unit := loadBodies(t, "")
	c := NewCompiler(unit.Model, nil, false)

	table := c.DumpTable(unit.Model.MustType("int"), 80)

	assert.True(strings.Contains(table, "Arith.plus"))
	assert.True(strings.Contains(table, "Arith.times"))
	assert.Equal("no operators produce String in unit", c.DumpTable(unit.Model.MustType("String"), 80))
}
