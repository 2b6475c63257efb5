package expand

import (
	"errors"
	"html"
	"strconv"
	"strings"

	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

var errInvalidCondition = errors.New("invalid condition")

type itemType uint8

const (
	itemIdent itemType = iota
	itemString
	itemNumber
	itemOp
	itemLParen
	itemRParen
)

type item struct {
	typ itemType
	val string
}

// lexCondition splits a condition into items.
func lexCondition(src string) ([]item, error) {
	var items []item
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			items = append(items, item{itemLParen, "("})
			i++
		case c == ')':
			items = append(items, item{itemRParen, ")"})
			i++
		case c == '"' || c == '\'':
			s, n, err := lexString(src[i:])
			if err != nil {
				return nil, err
			}
			items = append(items, item{itemString, s})
			i += n
		case c == '#' && strings.HasPrefix(src[i:], "##"):
			end := strings.Index(src[i+2:], "##")
			if end <= 0 {
				return nil, errInvalidCondition
			}
			items = append(items, item{itemIdent, src[i+2 : i+2+end]})
			i += end + 4
		case isDigit(c) || (c == '-' && i+1 < len(src) && isDigit(src[i+1])):
			j := i + 1
			for j < len(src) && (isDigit(src[j]) || src[j] == '.') {
				j++
			}
			items = append(items, item{itemNumber, src[i:j]})
			i = j
		case isIdentStart(c):
			j := i + 1
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			word := src[i:j]
			switch strings.ToLower(word) {
			case "and":
				items = append(items, item{itemOp, "&&"})
			case "or":
				items = append(items, item{itemOp, "||"})
			default:
				items = append(items, item{itemIdent, word})
			}
			i = j
		default:
			op, n := lexOperator(src[i:])
			if n == 0 {
				return nil, errInvalidCondition
			}
			items = append(items, item{itemOp, op})
			i += n
		}
	}
	return items, nil
}

func lexString(src string) (string, int, error) {
	quote := src[0]
	var sb strings.Builder
	for i := 1; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			i++
			sb.WriteByte(src[i])
		case c == quote:
			return sb.String(), i + 1, nil
		default:
			sb.WriteByte(c)
		}
	}
	return "", 0, errInvalidCondition
}

var operators = []string{"===", "!==", "==", "!=", "<=", ">=", "&&", "||", "<", ">", "!", "="}

// lexOperator returns the operator at the start of src and its length in src.
// A single "=" is read as "==".
func lexOperator(src string) (string, int) {
	for _, op := range operators {
		if strings.HasPrefix(src, op) {
			if op == "=" {
				return "==", 1
			}
			return op, len(op)
		}
	}
	return "", 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == ':' || c == '-'
}

type kind uint8

const (
	kindString kind = iota
	kindNumber
	kindBool
	kindNull
)

type value struct {
	kind kind
	s    string
	n    float64
	b    bool
}

func (v value) number() (float64, bool) {
	switch v.kind {
	case kindNumber:
		return v.n, true
	case kindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		return f, err == nil
	}
	return 0, false
}

func (v value) String() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case kindBool:
		if v.b {
			return "1"
		}
		return ""
	case kindNull:
		return ""
	}
	return v.s
}

func (v value) truthy() bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindNull:
		return false
	case kindNumber:
		return v.n != 0
	}
	s := strings.TrimSpace(v.s)
	if s == "" || strings.EqualFold(s, "false") {
		return false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f != 0
	}
	return true
}

func looseEqual(a, b value) bool {
	if a.kind == kindBool || b.kind == kindBool {
		return a.truthy() == b.truthy()
	}
	if a.kind == kindNull || b.kind == kindNull {
		return a.String() == b.String()
	}
	if x, ok := a.number(); ok {
		if y, ok := b.number(); ok {
			return x == y
		}
	}
	return a.String() == b.String()
}

func order(a, b value) int {
	if x, ok := a.number(); ok {
		if y, ok := b.number(); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(a.String(), b.String())
}

type condParser struct {
	items []item
	pos   int
	toks  tokens.Tokens
}

// evalCondition reports whether src holds for toks. Invalid input is false.
// evalCondition decodes HTML entities first, so conditions typed into a rich
// text editor (a==&quot;1&quot;) read the same as plain ones.
func evalCondition(src string, toks tokens.Tokens) bool {
	items, err := lexCondition(html.UnescapeString(src))
	if err != nil || len(items) == 0 {
		return false
	}
	p := &condParser{items: items, toks: toks}
	v, err := p.parseOr()
	if err != nil || p.pos != len(p.items) {
		return false
	}
	return v.truthy()
}

func (p *condParser) peek() (item, bool) {
	if p.pos >= len(p.items) {
		return item{}, false
	}
	return p.items[p.pos], true
}

func (p *condParser) acceptOp(ops ...string) (string, bool) {
	it, ok := p.peek()
	if !ok || it.typ != itemOp {
		return "", false
	}
	for _, op := range ops {
		if it.val == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *condParser) parseOr() (value, error) {
	left, err := p.parseAnd()
	if err != nil {
		return value{}, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return value{}, err
		}
		left = value{kind: kindBool, b: left.truthy() || right.truthy()}
	}
}

func (p *condParser) parseAnd() (value, error) {
	left, err := p.parseUnary()
	if err != nil {
		return value{}, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return value{}, err
		}
		left = value{kind: kindBool, b: left.truthy() && right.truthy()}
	}
}

func (p *condParser) parseUnary() (value, error) {
	if _, ok := p.acceptOp("!"); ok {
		v, err := p.parseUnary()
		if err != nil {
			return value{}, err
		}
		return value{kind: kindBool, b: !v.truthy()}, nil
	}
	return p.parseCompare()
}

func (p *condParser) parseCompare() (value, error) {
	left, err := p.parseOperand()
	if err != nil {
		return value{}, err
	}
	op, ok := p.acceptOp("===", "!==", "==", "!=", "<=", ">=", "<", ">")
	if !ok {
		return left, nil
	}
	right, err := p.parseOperand()
	if err != nil {
		return value{}, err
	}

	var res bool
	switch op {
	case "==":
		res = looseEqual(left, right)
	case "!=":
		res = !looseEqual(left, right)
	case "===":
		res = left.String() == right.String()
	case "!==":
		res = left.String() != right.String()
	case "<":
		res = order(left, right) < 0
	case "<=":
		res = order(left, right) <= 0
	case ">":
		res = order(left, right) > 0
	case ">=":
		res = order(left, right) >= 0
	}
	return value{kind: kindBool, b: res}, nil
}

func (p *condParser) parseOperand() (value, error) {
	it, ok := p.peek()
	if !ok {
		return value{}, errInvalidCondition
	}
	p.pos++

	switch it.typ {
	case itemString:
		return value{kind: kindString, s: it.val}, nil
	case itemNumber:
		n, err := strconv.ParseFloat(it.val, 64)
		if err != nil {
			return value{}, errInvalidCondition
		}
		return value{kind: kindNumber, n: n}, nil
	case itemIdent:
		switch strings.ToLower(it.val) {
		case "true":
			return value{kind: kindBool, b: true}, nil
		case "false":
			return value{kind: kindBool, b: false}, nil
		case "null":
			return value{kind: kindNull}, nil
		}
		return value{kind: kindString, s: p.toks.Lookup(it.val)}, nil
	case itemLParen:
		v, err := p.parseOr()
		if err != nil {
			return value{}, err
		}
		if next, ok := p.peek(); !ok || next.typ != itemRParen {
			return value{}, errInvalidCondition
		}
		p.pos++
		return v, nil
	}
	return value{}, errInvalidCondition
}
