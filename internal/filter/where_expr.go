package filter

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vburojevic/logscope/internal/domain"
)

// Grammar:
//
//	expr    = all { ("OR" | "||") all }
//	all     = factor { ("AND" | "&&") factor }
//	factor  = ("NOT" | "!") factor | "(" expr ")" | field op value
//	value   = word | number | "quoted" | 'quoted' | /regex/flags

type whereKind int

const (
	tokEnd whereKind = iota
	tokWord
	tokNumber
	tokText
	tokPattern
	tokOpen
	tokClose
	tokAnd
	tokOr
	tokNot
	tokCompare
)

type whereToken struct {
	kind whereKind
	text string
	num  float64
	col  int
}

func (t whereToken) describe() string {
	if t.kind == tokEnd {
		return "end of expression"
	}
	return strconv.Quote(t.text)
}

// whereSymbols is matched longest first
var whereSymbols = []string{"!=", "!~", ">=", "<=", "==", "&&", "||", "=", "~", ">", "<", "^", "$", "!", "(", ")"}

func symbolToken(sym string, col int) whereToken {
	switch sym {
	case "&&":
		return whereToken{kind: tokAnd, text: sym, col: col}
	case "||":
		return whereToken{kind: tokOr, text: sym, col: col}
	case "!":
		return whereToken{kind: tokNot, text: sym, col: col}
	case "(":
		return whereToken{kind: tokOpen, text: sym, col: col}
	case ")":
		return whereToken{kind: tokClose, text: sym, col: col}
	case "==":
		return whereToken{kind: tokCompare, text: "=", col: col}
	default:
		return whereToken{kind: tokCompare, text: sym, col: col}
	}
}

func isWhereBreak(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(`()&|!<>=~^$'"/`, r)
}

// numeric words start with a digit, or a sign or point followed by one
func looksNumeric(w string) bool {
	if w == "" {
		return false
	}
	if w[0] == '-' || w[0] == '+' || w[0] == '.' {
		w = strings.TrimPrefix(w[1:], ".")
	}
	return w != "" && w[0] >= '0' && w[0] <= '9'
}

// whereScanner splits an expression into tokens. Columns are 1-based.
type whereScanner struct {
	src string
	pos int
}

func scanWhere(src string) ([]whereToken, error) {
	s := &whereScanner{src: src}
	var toks []whereToken
	for {
		tok, err := s.scan()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.kind == tokEnd {
			return toks, nil
		}
	}
}

func (s *whereScanner) scan() (whereToken, error) {
	rest := strings.TrimLeftFunc(s.src[s.pos:], unicode.IsSpace)
	s.pos = len(s.src) - len(rest)
	col := s.pos + 1
	if rest == "" {
		return whereToken{kind: tokEnd, col: col}, nil
	}

	switch rest[0] {
	case '"', '\'':
		return s.quoted(col)
	case '/':
		return s.pattern(col)
	}
	for _, sym := range whereSymbols {
		if strings.HasPrefix(rest, sym) {
			s.pos += len(sym)
			return symbolToken(sym, col), nil
		}
	}

	n := strings.IndexFunc(rest, isWhereBreak)
	if n < 0 {
		n = len(rest)
	}
	if n == 0 {
		return whereToken{}, fmt.Errorf("where: stray %q at column %d (join comparisons with && / || or AND / OR)", rest[:1], col)
	}
	word := rest[:n]
	s.pos += n
	tok := whereToken{kind: tokWord, text: word, col: col}
	if looksNumeric(word) {
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			tok.kind, tok.num = tokNumber, f
		}
	}
	return tok, nil
}

// quoted reads a double-quoted Go string or a single-quoted literal where
// only \' is an escape
func (s *whereScanner) quoted(col int) (whereToken, error) {
	quote := s.src[s.pos]
	for i := s.pos + 1; i < len(s.src); i++ {
		switch s.src[i] {
		case '\\':
			i++
		case quote:
			lit := s.src[s.pos : i+1]
			s.pos = i + 1
			if quote == '\'' {
				body := strings.ReplaceAll(lit[1:len(lit)-1], `\'`, `'`)
				return whereToken{kind: tokText, text: body, col: col}, nil
			}
			text, err := strconv.Unquote(lit)
			if err != nil {
				return whereToken{}, fmt.Errorf("where: bad string %s at column %d: %w", lit, col, err)
			}
			return whereToken{kind: tokText, text: text, col: col}, nil
		}
	}
	return whereToken{}, fmt.Errorf("where: string at column %d is not closed", col)
}

// pattern reads /regex/flags. \/ stands for a literal slash; flags are
// i, m and s.
func (s *whereScanner) pattern(col int) (whereToken, error) {
	var body strings.Builder
	i := s.pos + 1
	for ; i < len(s.src) && s.src[i] != '/'; i++ {
		if s.src[i] == '\\' && i+1 < len(s.src) {
			if s.src[i+1] != '/' {
				body.WriteByte('\\')
			}
			i++
		}
		body.WriteByte(s.src[i])
	}
	if i >= len(s.src) {
		return whereToken{}, fmt.Errorf("where: regex at column %d is not closed", col)
	}

	end := i + 1
	for end < len(s.src) && unicode.IsLetter(rune(s.src[end])) {
		end++
	}
	flags := s.src[i+1 : end]
	s.pos = end
	if strings.Trim(flags, "ims") != "" {
		return whereToken{}, fmt.Errorf("where: regex flags %q at column %d (allowed: i, m, s)", flags, col)
	}
	text := body.String()
	if flags != "" {
		text = "(?" + flags + ")" + text
	}
	return whereToken{kind: tokPattern, text: text, col: col}, nil
}

type whereNode interface {
	Match(a *domain.Anomaly) bool
}

type allNode []whereNode

func (n allNode) Match(a *domain.Anomaly) bool {
	for _, c := range n {
		if !c.Match(a) {
			return false
		}
	}
	return true
}

type anyNode []whereNode

func (n anyNode) Match(a *domain.Anomaly) bool {
	for _, c := range n {
		if c.Match(a) {
			return true
		}
	}
	return false
}

type notNode struct{ inner whereNode }

func (n notNode) Match(a *domain.Anomaly) bool {
	return !n.inner.Match(a)
}

type whereParser struct {
	src  string
	toks []whereToken
	i    int
}

func parseWhere(src string) (whereNode, error) {
	toks, err := scanWhere(src)
	if err != nil {
		return nil, err
	}
	p := &whereParser{src: src, toks: toks}
	node, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEnd {
		return nil, p.fail(t, "unexpected "+t.describe())
	}
	return node, nil
}

func (p *whereParser) peek() whereToken {
	return p.toks[p.i]
}

func (p *whereParser) take() whereToken {
	t := p.toks[p.i]
	if t.kind != tokEnd {
		p.i++
	}
	return t
}

// accept consumes the next token if it has kind, or is the keyword spelled
// out as a bare word
func (p *whereParser) accept(kind whereKind, keyword string) bool {
	t := p.peek()
	if t.kind == kind || (keyword != "" && t.kind == tokWord && strings.EqualFold(t.text, keyword)) {
		p.i++
		return true
	}
	return false
}

func (p *whereParser) fail(t whereToken, msg string) error {
	return fmt.Errorf("where %q: %s at column %d", p.src, msg, t.col)
}

func (p *whereParser) expr() (whereNode, error) {
	var alts anyNode
	for {
		n, err := p.all()
		if err != nil {
			return nil, err
		}
		alts = append(alts, n)
		if !p.accept(tokOr, "or") {
			break
		}
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return alts, nil
}

func (p *whereParser) all() (whereNode, error) {
	var terms allNode
	for {
		n, err := p.factor()
		if err != nil {
			return nil, err
		}
		terms = append(terms, n)
		if !p.accept(tokAnd, "and") {
			break
		}
	}
	if len(terms) == 1 {
		return terms[0], nil
	}
	return terms, nil
}

func (p *whereParser) factor() (whereNode, error) {
	if p.accept(tokNot, "not") {
		inner, err := p.factor()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	if open := p.peek(); p.accept(tokOpen, "") {
		inner, err := p.expr()
		if err != nil {
			return nil, err
		}
		if !p.accept(tokClose, "") {
			return nil, p.fail(p.peek(), fmt.Sprintf("missing ')' for '(' at column %d", open.col))
		}
		return inner, nil
	}
	return p.comparison()
}

func (p *whereParser) comparison() (whereNode, error) {
	field := p.take()
	if field.kind != tokWord {
		return nil, p.fail(field, "expected a field name, got "+field.describe())
	}
	op := p.take()
	if op.kind != tokCompare {
		return nil, p.fail(op, fmt.Sprintf("expected an operator after %q, got %s", field.text, op.describe()))
	}
	val := p.take()
	switch val.kind {
	case tokWord, tokNumber, tokText, tokPattern:
	default:
		return nil, p.fail(val, fmt.Sprintf("expected a value after %s%s", field.text, op.text))
	}
	return newWhereClause(field.text, op.text, val)
}
