package packrat

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

// sumGrammar is E -> E '+' Num | Num, building a parenthesized string so that
// associativity is visible in the result.
func sumGrammar() *Parser[string] {
	var expr *Parser[string]
	exprRef := Ref(func() *Parser[string] { return expr })
	num := Map(Integer, strconv.Itoa)

	expr = Choice(
		Map(Seq(Postfix(exprRef, "+"), num), func(p Pair[string, string]) string {
			return "(" + p.First + "+" + p.Second + ")"
		}),
		num,
	)
	return expr
}

func Test_LeftRecursion(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    string
		expectEnd int
	}{
		{
			name:      "single number",
			input:     "1",
			expect:    "1",
			expectEnd: 1,
		},
		{
			name:      "two terms",
			input:     "1+2",
			expect:    "(1+2)",
			expectEnd: 3,
		},
		{
			name:      "three terms grows left-associative",
			input:     "1+2+3",
			expect:    "((1+2)+3)",
			expectEnd: 5,
		},
		{
			name:      "spaces and trailing operator",
			input:     "10 + 20 + 30 +",
			expect:    "((10+20)+30)",
			expectEnd: 12,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, _ := Parse(sumGrammar(), tc.input, nil)

			assert.True(actual.Ok(), "result: %v", actual)
			assert.Equal(tc.expect, actual.Value())
			assert.Equal(tc.expectEnd, actual.End())
		})
	}
}

func Test_LeftRecursion_memoizedAfterGrowth(t *testing.T) {
	assert := assert.New(t)

	expr := sumGrammar()
	r := NewReader("1+2+3", "", 1, nil)

	first := expr.Apply(r)
	r.SetPos(0)
	second := expr.Apply(r)

	assert.Equal(first, second)
	assert.Equal(5, r.Pos())
}

func Test_Apply_deterministic(t *testing.T) {
	assert := assert.New(t)

	calls := 0
	p := New("counting", func(r *Reader) Result[int] {
		calls++
		return Success(calls, r.Pos()+1)
	})

	r := NewReader("abc", "", 1, nil)
	first := p.Apply(r)
	r.SetPos(0)
	second := p.Apply(r)

	assert.Equal(first, second)
	assert.Equal(1, calls)
}

func Test_memoEntry_successNotDemoted(t *testing.T) {
	assert := assert.New(t)

	e := &memoEntry{state: stateSettled}
	e.memoize(Success("ok", 2), 2)
	e.memoize(Fail[string]("bad", 0, 100), 0)

	res := e.result.(Result[string])
	assert.True(res.Ok())
	assert.Equal("ok", res.Value())
	assert.Equal(2, e.end)

	// a failure may be replaced by a success
	e2 := &memoEntry{state: stateSettled}
	e2.memoize(Fail[string]("bad", 0, 0), 0)
	e2.memoize(Success("ok", 1), 1)
	assert.True(e2.result.(Result[string]).Ok())
}

func Test_Apply_settledSuccessKeptAfterEnvChange(t *testing.T) {
	assert := assert.New(t)

	allowed := map[string]bool{"x": true}
	p := Bind(Identifier, func(name string) *Parser[string] {
		return Depends(func(env map[string]bool) *Parser[string] {
			if !env[name] {
				return Failing[string]("unknown "+name, 5)
			}
			return Unit(name)
		})
	})

	r := NewReader("x", "", 1, allowed)
	first := p.Apply(r)
	if !assert.True(first.Ok()) {
		return
	}

	r.env = map[string]bool{}
	r.SetPos(0)
	second := p.Apply(r)

	assert.True(second.Ok())
	assert.Equal("x", second.Value())
	assert.Equal(1, r.Pos())
}

func Test_Choice_bestFailure(t *testing.T) {
	testCases := []struct {
		name   string
		alts   []*Parser[int]
		expect string
	}{
		{
			name:   "higher score second",
			alts:   []*Parser[int]{Failing[int]("low", 3), Failing[int]("high", 10)},
			expect: "high",
		},
		{
			name:   "higher score first",
			alts:   []*Parser[int]{Failing[int]("high", 10), Failing[int]("low", 3)},
			expect: "high",
		},
		{
			name:   "tie goes to the later alternative",
			alts:   []*Parser[int]{Failing[int]("first", 4), Failing[int]("second", 4)},
			expect: "second",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, _ := Parse(Choice(tc.alts...), "x", nil)

			f, failed := actual.Failure()
			assert.True(failed)
			assert.Equal(tc.expect, f.Message)
		})
	}
}

func Test_Choice_firstSuccessWins(t *testing.T) {
	assert := assert.New(t)

	p := Choice(Map(Keyword("a"), func(string) int { return 1 }), Map(Keyword("a"), func(string) int { return 2 }))
	actual, _ := Parse(p, "a", nil)

	assert.True(actual.Ok())
	assert.Equal(1, actual.Value())
}

func Test_Seq_restoresPosition(t *testing.T) {
	assert := assert.New(t)

	p := Seq(Keyword("a"), Keyword("b"))
	r := NewReader("a c", "", 1, nil)

	actual := p.Apply(r)
	f, failed := actual.Failure()

	assert.True(failed)
	assert.Equal(`expected "b"`, f.Message)
	assert.Equal(2, f.Pos)
	assert.Equal(0, r.Pos())
}

func Test_Rep(t *testing.T) {
	testCases := []struct {
		name      string
		parser    *Parser[[]int]
		input     string
		expect    []int
		expectEnd int
		expectErr bool
	}{
		{
			name:      "rep of nothing",
			parser:    Rep(Integer),
			input:     "",
			expect:    []int{},
			expectEnd: 0,
		},
		{
			name:      "rep without separator",
			parser:    Rep(Integer),
			input:     "1 2 3",
			expect:    []int{1, 2, 3},
			expectEnd: 5,
		},
		{
			name:      "rep with separator drops dangling separator",
			parser:    RepSep(Integer, ","),
			input:     "1, 2,",
			expect:    []int{1, 2},
			expectEnd: 4,
		},
		{
			name:      "rep1 with none fails",
			parser:    Rep1Sep(Integer, ","),
			input:     "x",
			expectErr: true,
		},
		{
			name:      "rep1 with one",
			parser:    Rep1Sep(Integer, ","),
			input:     "7",
			expect:    []int{7},
			expectEnd: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, _ := Parse(tc.parser, tc.input, nil)
			if tc.expectErr {
				assert.False(actual.Ok())
				return
			}

			assert.True(actual.Ok())
			assert.Equal(tc.expect, actual.Value())
			assert.Equal(tc.expectEnd, actual.End())
		})
	}
}

func Test_Rep_zeroWidthTerminates(t *testing.T) {
	assert := assert.New(t)

	actual, _ := Parse(Rep(Unit(1)), "abc", nil)

	assert.True(actual.Ok())
	assert.Equal([]int{1}, actual.Value())
}

func Test_Optional(t *testing.T) {
	assert := assert.New(t)

	p := Optional(Integer, -1)

	present, _ := Parse(p, "42", nil)
	absent, _ := Parse(p, "x", nil)

	assert.Equal(42, present.Value())
	assert.Equal(2, present.End())
	assert.Equal(-1, absent.Value())
	assert.Equal(0, absent.End())
}

func Test_Predicates_zeroWidth(t *testing.T) {
	assert := assert.New(t)

	and := Seq(AndPredicate(Integer), Integer)
	not := Seq(NotPredicate(Keyword("x")), Integer)

	andRes, _ := Parse(and, "5", nil)
	notRes, _ := Parse(not, "5", nil)
	notFail, _ := Parse(Seq(NotPredicate(Integer), Integer), "5", nil)

	assert.True(andRes.Ok())
	assert.Equal(Pair[int, int]{5, 5}, andRes.Value())
	assert.Equal(1, andRes.End())
	assert.True(notRes.Ok())
	assert.Equal(1, notRes.End())
	assert.False(notFail.Ok())
}

func Test_Bind(t *testing.T) {
	assert := assert.New(t)

	// a count followed by exactly that many x's
	p := Bind(Integer, func(n int) *Parser[string] {
		kws := make([]string, n)
		for i := range kws {
			kws[i] = "x"
		}
		return Keywords(kws...)
	})

	ok, _ := Parse(Left(p, End), "3 x x x", nil)
	bad, _ := Parse(Left(p, End), "3 x x", nil)

	assert.True(ok.Ok())
	assert.Equal("x x x", ok.Value())
	assert.False(bad.Ok())
}

func Test_Depends_and_Effect(t *testing.T) {
	assert := assert.New(t)

	type env struct {
		word string
		seen []string
	}

	p := Effect(Depends(func(e *env) *Parser[string] {
		return Keyword(e.word)
	}), func(e *env, v string, r *Reader) {
		e.seen = append(e.seen, v)
	})

	e := &env{word: "hello"}
	r := NewReader("  hello", "", 1, e)
	actual := p.Apply(r)

	assert.True(actual.Ok())
	assert.Equal([]string{"hello"}, e.seen)

	noEnv, _ := Parse(p, "hello", nil)
	assert.False(noEnv.Ok())
}

func Test_Error(t *testing.T) {
	assert := assert.New(t)

	actual, _ := Parse(Error[int](errors.New("type Foo not found")), "", nil)

	f, failed := actual.Failure()
	assert.True(failed)
	assert.Equal("type Foo not found", f.Message)
}

func Test_Lexical(t *testing.T) {
	assert := assert.New(t)

	str, _ := Parse(String, `  "a\"b\n"`, nil)
	ch, _ := Parse(Char, `'\t'`, nil)
	hex, _ := Parse(Hex, "0x1F", nil)
	dbl, _ := Parse(Decimal, "2.5", nil)
	flt, _ := Parse(Float, "3f", nil)
	ident, _ := Parse(Identifier, "name1 x", nil)
	reserved, _ := Parse(Identifier, "null", nil)
	wordKw, _ := Parse(Keyword("in"), "int", nil)
	intOverDecimal, _ := Parse(Integer, "1.5", nil)

	assert.Equal("a\"b\n", str.Value())
	assert.Equal('\t', ch.Value())
	assert.Equal(31, hex.Value())
	assert.Equal(2.5, dbl.Value())
	assert.Equal(3.0, flt.Value())
	assert.Equal("name1", ident.Value())
	assert.False(reserved.Ok())
	assert.False(wordKw.Ok())
	assert.Equal(1, intOverDecimal.Value())
	assert.Same(Keyword("+"), Keyword("+"))
}

func Test_Reader_lines(t *testing.T) {
	assert := assert.New(t)

	r := NewReader("ab\ncd\n\nef", "file.mx", 10, nil)

	assert.Equal(10, r.Line(0))
	assert.Equal(10, r.Line(2))
	assert.Equal(11, r.Line(3))
	assert.Equal(13, r.Line(7))
	assert.Equal(2, r.Column(4))
	assert.Equal("cd", r.LineText(4))
	assert.Equal("ef", r.LineText(8))
	assert.Equal("file.mx", r.File())
}

func Test_Reader_BestFailure(t *testing.T) {
	assert := assert.New(t)

	p := Choice(
		Seq(Keyword("a"), Failing[string]("deep and specific", 5)),
		Seq(Keyword("a"), Keyword("c")),
	)
	r := NewReader("a b", "", 1, nil)
	res := p.Apply(r)

	f, failed := res.Failure()
	assert.True(failed)

	best := r.BestFailure(f)
	assert.Equal("deep and specific", best.Message)

	// the memo scan wins ties over the direct failure
	tie := r.BestFailure(Failure{Message: "direct", Score: 5})
	assert.Equal("deep and specific", tie.Message)

	higher := r.BestFailure(Failure{Message: "direct", Score: 6})
	assert.Equal("direct", higher.Message)
}
