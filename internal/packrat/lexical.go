package packrat

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// reservedWords can never be read as an Identifier.
var reservedWords = map[string]bool{
	"new":   true,
	"null":  true,
	"true":  true,
	"false": true,
	"this":  true,
}

var (
	keywordMu    sync.Mutex
	keywordCache = map[string]*Parser[string]{}
)

// SkipSpace moves the cursor past any whitespace and comments.
func SkipSpace(r *Reader) {
	for r.HasNext() {
		ch, size := r.Peek()
		if unicode.IsSpace(ch) {
			r.pos += size
			continue
		}

		rest := r.Rest()
		if strings.HasPrefix(rest, "//") {
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				r.pos = len(r.source)
			} else {
				r.pos += end + 1
			}
			continue
		}
		if strings.HasPrefix(rest, "/*") {
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				r.pos = len(r.source)
			} else {
				r.pos += end + 4
			}
			continue
		}
		return
	}
}

func isIdentStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || unicode.IsDigit(ch)
}

// Keyword returns the parser that matches the exact text kw after any leading
// whitespace. A keyword that ends in an identifier character does not match
// when the input continues with another identifier character, so "in" does not
// match the start of "int". Keyword parsers are shared; asking for the same
// keyword twice gives the same parser.
func Keyword(kw string) *Parser[string] {
	keywordMu.Lock()
	defer keywordMu.Unlock()

	if p, ok := keywordCache[kw]; ok {
		return p
	}

	last, _ := utf8.DecodeLastRuneInString(kw)
	wordLike := isIdentPart(last)

	p := New("keyword "+kw, func(r *Reader) Result[string] {
		SkipSpace(r)
		pos := r.pos
		if !strings.HasPrefix(r.Rest(), kw) {
			return Fail[string](fmt.Sprintf("expected %q", kw), pos, 0)
		}
		end := pos + len(kw)
		if wordLike && end < len(r.source) {
			next, _ := utf8.DecodeRuneInString(r.source[end:])
			if isIdentPart(next) {
				return Fail[string](fmt.Sprintf("expected %q", kw), pos, 0)
			}
		}
		return Success(kw, end)
	})
	keywordCache[kw] = p
	return p
}

// Identifier matches a name that is not a reserved word.
var Identifier = New("identifier", func(r *Reader) Result[string] {
	SkipSpace(r)
	start := r.pos
	ch, size := r.Peek()
	if size == 0 || !isIdentStart(ch) {
		return Fail[string]("expected identifier", start, 0)
	}
	end := start + size
	for end < len(r.source) {
		ch, size = utf8.DecodeRuneInString(r.source[end:])
		if !isIdentPart(ch) {
			break
		}
		end += size
	}

	name := r.source[start:end]
	if reservedWords[name] {
		return Fail[string](fmt.Sprintf("%q is a reserved word", name), start, 0)
	}
	return Success(name, end)
})

// Letter matches a single letter.
var Letter = New("letter", func(r *Reader) Result[rune] {
	SkipSpace(r)
	ch, size := r.Peek()
	if size == 0 || !unicode.IsLetter(ch) {
		return Fail[rune]("expected letter", r.pos, 0)
	}
	return Success(ch, r.pos+size)
})

func scanDigits(s string, i int, isDigit func(byte) bool) int {
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return i
}

func isDecDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isHexDigit(b byte) bool {
	return isDecDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func followedByIdent(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	ch, _ := utf8.DecodeRuneInString(s[i:])
	return isIdentPart(ch)
}

// Integer matches a decimal integer literal that fits in 32 bits.
var Integer = New("integer", func(r *Reader) Result[int] {
	SkipSpace(r)
	start := r.pos
	end := scanDigits(r.source, start, isDecDigit)
	if end == start || followedByIdent(r.source, end) {
		return Fail[int]("expected integer", start, 0)
	}
	v, err := strconv.ParseInt(r.source[start:end], 10, 32)
	if err != nil {
		return Fail[int](fmt.Sprintf("integer %s is out of range", r.source[start:end]), start, 10)
	}
	return Success(int(v), end)
})

// Hex matches a hexadecimal integer literal such as 0x1F.
var Hex = New("hexadecimal", func(r *Reader) Result[int] {
	SkipSpace(r)
	start := r.pos
	rest := r.Rest()
	if !strings.HasPrefix(rest, "0x") && !strings.HasPrefix(rest, "0X") {
		return Fail[int]("expected hexadecimal integer", start, 0)
	}
	end := scanDigits(r.source, start+2, isHexDigit)
	if end == start+2 || followedByIdent(r.source, end) {
		return Fail[int]("expected hexadecimal integer", start, 0)
	}
	v, err := strconv.ParseUint(r.source[start+2:end], 16, 32)
	if err != nil {
		return Fail[int](fmt.Sprintf("integer %s is out of range", r.source[start:end]), start, 10)
	}
	return Success(int(int32(v)), end)
})

// scanDecimal returns the end of a decimal floating-point literal body that
// begins at start, or start if there is none. A literal needs a fraction or an
// exponent.
func scanDecimal(s string, start int) int {
	i := scanDigits(s, start, isDecDigit)
	intDigits := i - start
	isFloat := false

	if i < len(s) && s[i] == '.' {
		fracEnd := scanDigits(s, i+1, isDecDigit)
		if intDigits == 0 && fracEnd == i+1 {
			return start
		}
		if fracEnd > i+1 || intDigits > 0 {
			i = fracEnd
			isFloat = true
		}
	} else if intDigits == 0 {
		return start
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expEnd := scanDigits(s, j, isDecDigit)
		if expEnd > j {
			i = expEnd
			isFloat = true
		}
	}

	if !isFloat {
		return start
	}
	return i
}

// Decimal matches a double literal such as 1.5, 2e10 or 3.0d.
var Decimal = New("decimal", func(r *Reader) Result[float64] {
	SkipSpace(r)
	start := r.pos
	end := scanDecimal(r.source, start)
	if end == start {
		return Fail[float64]("expected decimal number", start, 0)
	}
	text := r.source[start:end]
	if end < len(r.source) && (r.source[end] == 'd' || r.source[end] == 'D') {
		end++
	}
	if followedByIdent(r.source, end) {
		return Fail[float64]("expected decimal number", start, 0)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Fail[float64](fmt.Sprintf("bad decimal number %s", text), start, 10)
	}
	return Success(v, end)
})

// Float matches a float literal, which is a number followed by f or F.
var Float = New("float", func(r *Reader) Result[float64] {
	SkipSpace(r)
	start := r.pos
	end := scanDecimal(r.source, start)
	if end == start {
		end = scanDigits(r.source, start, isDecDigit)
	}
	if end == start || end >= len(r.source) || (r.source[end] != 'f' && r.source[end] != 'F') {
		return Fail[float64]("expected float number", start, 0)
	}
	text := r.source[start:end]
	if followedByIdent(r.source, end+1) {
		return Fail[float64]("expected float number", start, 0)
	}
	v, err := strconv.ParseFloat(text, 32)
	if err != nil {
		return Fail[float64](fmt.Sprintf("bad float number %s", text), start, 10)
	}
	return Success(v, end+1)
})

// readEscaped reads one possibly-escaped character of a quoted literal at i.
func readEscaped(s string, i int) (rune, int, error) {
	ch, size := utf8.DecodeRuneInString(s[i:])
	if ch != '\\' {
		return ch, i + size, nil
	}
	if i+1 >= len(s) {
		return 0, i, fmt.Errorf("unterminated escape sequence")
	}
	switch s[i+1] {
	case 'n':
		return '\n', i + 2, nil
	case 't':
		return '\t', i + 2, nil
	case 'r':
		return '\r', i + 2, nil
	case 'b':
		return '\b', i + 2, nil
	case 'f':
		return '\f', i + 2, nil
	case '0':
		return 0, i + 2, nil
	case '\\', '\'', '"':
		return rune(s[i+1]), i + 2, nil
	case 'u':
		if i+6 > len(s) {
			return 0, i, fmt.Errorf("bad unicode escape")
		}
		v, err := strconv.ParseUint(s[i+2:i+6], 16, 32)
		if err != nil {
			return 0, i, fmt.Errorf("bad unicode escape")
		}
		return rune(v), i + 6, nil
	default:
		return 0, i, fmt.Errorf("unknown escape sequence \\%c", s[i+1])
	}
}

// String matches a double-quoted string literal and gives its unescaped value.
var String = New("string", func(r *Reader) Result[string] {
	SkipSpace(r)
	start := r.pos
	if !strings.HasPrefix(r.Rest(), `"`) {
		return Fail[string]("expected string literal", start, 0)
	}

	var sb strings.Builder
	i := start + 1
	for {
		if i >= len(r.source) || r.source[i] == '\n' {
			return Fail[string]("unterminated string literal", start, 10)
		}
		if r.source[i] == '"' {
			break
		}
		ch, next, err := readEscaped(r.source, i)
		if err != nil {
			return Fail[string](err.Error(), i, 10)
		}
		sb.WriteRune(ch)
		i = next
	}
	return Success(sb.String(), i+1)
})

// Char matches a single-quoted character literal.
var Char = New("character", func(r *Reader) Result[rune] {
	SkipSpace(r)
	start := r.pos
	if !strings.HasPrefix(r.Rest(), "'") || start+1 >= len(r.source) {
		return Fail[rune]("expected character literal", start, 0)
	}
	ch, next, err := readEscaped(r.source, start+1)
	if err != nil {
		return Fail[rune](err.Error(), start+1, 10)
	}
	if next >= len(r.source) || r.source[next] != '\'' {
		return Fail[rune]("unterminated character literal", start, 10)
	}
	return Success(ch, next+1)
})

// End matches the end of the input, allowing trailing whitespace and comments.
var End = New("end", func(r *Reader) Result[struct{}] {
	SkipSpace(r)
	if r.HasNext() {
		ch, _ := r.Peek()
		return Fail[struct{}](fmt.Sprintf("unexpected %q; expected end of input", ch), r.pos, 0)
	}
	return Success(struct{}{}, r.pos)
})
