package diag

import (
	"bytes"
	"testing"

	"github.com/dekarrin/mixfix/internal/packrat"
	"github.com/dekarrin/mixfix/internal/version"
	"github.com/dekarrin/rezi"
	"github.com/stretchr/testify/assert"
)

func Test_Diagnostic_Error(t *testing.T) {
	testCases := []struct {
		name   string
		input  Diagnostic
		expect string
	}{
		{
			name:   "no position",
			input:  Diagnostic{Message: "bad"},
			expect: "error: bad",
		},
		{
			name:   "line only",
			input:  Diagnostic{File: "a.mxu", Line: 3, Message: "bad"},
			expect: "a.mxu: line 3: bad",
		},
		{
			name:   "line and column",
			input:  Diagnostic{File: "a.mxu", Line: 3, Column: 7, Message: "bad"},
			expect: "a.mxu: around line 3, char 7: bad",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.input.Error())
		})
	}
}

func Test_Diagnostic_SourceLineWithCursor(t *testing.T) {
	testCases := []struct {
		name   string
		input  Diagnostic
		expect string
	}{
		{
			name:   "no source",
			input:  Diagnostic{Line: 1, Column: 2},
			expect: "",
		},
		{
			name:   "first column",
			input:  Diagnostic{Line: 1, Column: 1, SourceLine: "x + y"},
			expect: "x + y\n^",
		},
		{
			name:   "later column",
			input:  Diagnostic{Line: 1, Column: 5, SourceLine: "x + y"},
			expect: "x + y\n    ^",
		},
		{
			name:   "tabs are kept",
			input:  Diagnostic{Line: 1, Column: 3, SourceLine: "\tx y"},
			expect: "\tx y\n\t ^",
		},
		{
			name:   "past end of line",
			input:  Diagnostic{Line: 1, Column: 4, SourceLine: "ab"},
			expect: "ab\n   ^",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.input.SourceLineWithCursor())
		})
	}
}

func Test_Diagnostic_FullMessage(t *testing.T) {
	assert := assert.New(t)
	d := Diagnostic{Line: 2, Column: 3, Message: "unknown variable: y", SourceLine: "1 y"}

	actual := d.FullMessage(0)

	assert.Equal("1 y\n  ^\naround line 2, char 3: unknown variable: y", actual)
}

func Test_FromFailure(t *testing.T) {
	assert := assert.New(t)
	r := packrat.NewReader("first\nsecond line", "f.mxu", 10, nil)

	d := FromFailure(r, packrat.Failure{Message: "oops", Pos: 9, Score: 5})

	assert.Equal(Diagnostic{
		File:       "f.mxu",
		Line:       11,
		Column:     4,
		Message:    "oops",
		SourceLine: "second line",
	}, d)
}

func Test_List(t *testing.T) {
	assert := assert.New(t)
	var l List
	var sink Sink = &l

	assert.NoError(l.Err())

	sink.Record(At("b.mxu", 1, "one"))
	sink.Record(Diagnostic{File: "a.mxu", Line: 4, Column: 2, Message: "two"})
	sink.Record(Diagnostic{File: "a.mxu", Line: 4, Column: 1, Message: "three"})

	assert.Equal(3, l.Len())
	var order []string
	for _, d := range l.Sorted() {
		order = append(order, d.Message)
	}
	assert.Equal([]string{"three", "two", "one"}, order)
	assert.Equal("one", l.Items[0].Message)
	assert.EqualError(l.Err(), "b.mxu: line 1: one (and 2 more)")
}

func Test_SinkFunc(t *testing.T) {
	assert := assert.New(t)
	var got []string

	var sink Sink = SinkFunc(func(d Diagnostic) {
		got = append(got, d.Message)
	})
	sink.Record(At("", 1, "x"))

	assert.Equal([]string{"x"}, got)
}

func Test_Report_roundTrip(t *testing.T) {
	assert := assert.New(t)
	input := []Diagnostic{
		{File: "a.mxu", Line: 1, Column: 2, Message: "first", SourceLine: "x y"},
		{File: "", Line: 9, Message: "unhandled exception type IOException"},
	}

	var buf bytes.Buffer
	err := WriteReport(&buf, input)
	if !assert.NoError(err) {
		return
	}

	rep, err := ReadReport(&buf)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(input, rep.Diagnostics)
}

func Test_Report_empty(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(WriteReport(&buf, nil))

	rep, err := ReadReport(&buf)
	assert.NoError(err)
	assert.Empty(rep.Diagnostics)
}

func Test_ReadReport_notAReport(t *testing.T) {
	assert := assert.New(t)

	_, err := ReadReport(bytes.NewReader([]byte("hello")))

	assert.Error(err)
}

// encodedReport is a report body that is written as-is.
type encodedReport []byte

func (er encodedReport) MarshalBinary() ([]byte, error) {
	return er, nil
}

func Test_ReadReport_malformed(t *testing.T) {
	oneDiag := rezi.EncBinary(Diagnostic{File: "a.mxu", Line: 1, Column: 1, Message: "bad"})

	testCases := []struct {
		name  string
		count int
		body  []byte
	}{
		{name: "negative count", count: -1},
		{name: "count larger than data", count: 1 << 30},
		{name: "truncated body", count: 1, body: oneDiag[:len(oneDiag)-2]},
		{name: "fewer diagnostics than count", count: 2, body: oneDiag},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			payload := rezi.EncString(version.ReportFormat)
			payload = append(payload, rezi.EncInt(tc.count)...)
			payload = append(payload, tc.body...)
			data := rezi.EncBinary(encodedReport(payload))

			var err error
			assert.NotPanics(func() {
				_, err = ReadReport(bytes.NewReader(data))
			})
			assert.Error(err)
		})
	}
}
