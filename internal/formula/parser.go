package formula

import (
	"strconv"

	"github.com/vk/curvefit/internal/table"
)

// parser is a recursive-descent parser over the lexed token stream. It
// classifies identifiers as it encounters them: builtin function names
// first, then column-bound variables, then free parameters.
type parser struct {
	toks     []token
	i        int
	headers  *table.Headers
	builtins Builtins

	vars     []binding
	params   []string
	varIdx   map[string]int
	paramIdx map[string]int
}

func parseFormula(src string, headers *table.Headers, builtins Builtins) (astNode, []binding, []string, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, nil, nil, err
	}

	p := &parser{
		toks:     toks,
		headers:  headers,
		builtins: builtins,
		varIdx:   map[string]int{},
		paramIdx: map[string]int{},
	}

	root, err := p.parseAdditive()
	if err != nil {
		return nil, nil, nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, nil, nil, errAt(tok.pos, "unexpected %v after the expression", tok.kind)
	}

	return root, p.vars, p.params, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) expect(kind tokenKind) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, errAt(tok.pos, "expected %v, found %v", kind, tok.kind)
	}
	return tok, nil
}

// parseAdditive := parseTerm (('+' | '-') parseTerm)*
func (p *parser) parseAdditive() (astNode, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokPlus, tokMinus:
			op := p.next().kind
			rhs, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			lhs = &binaryNode{op: op, lhs: lhs, rhs: rhs}
		default:
			return lhs, nil
		}
	}
}

// parseTerm := parseUnary (('*' | '/') parseUnary)*
func (p *parser) parseTerm() (astNode, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().kind {
		case tokStar, tokSlash:
			op := p.next().kind
			rhs, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			lhs = &binaryNode{op: op, lhs: lhs, rhs: rhs}
		default:
			return lhs, nil
		}
	}
}

// parseUnary := '-' parseUnary | parsePower
//
// Unary minus binds looser than '^', so -x^2 is -(x^2).
func (p *parser) parseUnary() (astNode, error) {
	if p.peek().kind == tokMinus {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &negNode{operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower := parseAtom ('^' parseUnary)?
//
// The exponent recurses through parseUnary, making '^' right associative
// and allowing a signed exponent (2^-3).
func (p *parser) parsePower() (astNode, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokCaret {
		p.next()
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: tokCaret, lhs: base, rhs: exp}, nil
	}
	return base, nil
}

// parseAtom := number | '(' expr ')' | ident | ident '(' expr ')'
func (p *parser) parseAtom() (astNode, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		val, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, errAt(tok.pos, "invalid number literal %q", tok.text)
		}
		return &litNode{val: val}, nil

	case tokLParen:
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return inner, nil

	case tokIdent:
		return p.parseIdent(tok)

	default:
		return nil, errAt(tok.pos, "expected a value, found %v", tok.kind)
	}
}

// parseIdent resolves an identifier. Builtin function names are resolved
// first and are never treated as variables or parameters, even when a
// column shares the name.
func (p *parser) parseIdent(tok token) (astNode, error) {
	if fn, ok := p.builtins[tok.text]; ok {
		if _, err := p.expect(tokLParen); err != nil {
			return nil, errAt(tok.pos, "built-in function %q must be called with an argument", tok.text)
		}
		arg, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return &callNode{fn: fn, arg: arg}, nil
	}

	if col, ok := p.headers.FindIgnoreCaseAndWS(tok.text); ok {
		idx, seen := p.varIdx[tok.text]
		if !seen {
			idx = len(p.vars)
			p.varIdx[tok.text] = idx
			p.vars = append(p.vars, binding{name: tok.text, col: col})
		}
		return &varNode{idx: idx}, nil
	}

	idx, seen := p.paramIdx[tok.text]
	if !seen {
		idx = len(p.params)
		p.paramIdx[tok.text] = idx
		p.params = append(p.params, tok.text)
	}
	return &paramNode{idx: idx, name: tok.text}, nil
}
