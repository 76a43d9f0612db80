// Package frparse implements a recursive-descent parser over
// internal/frlex's tokens, producing astfr/extensions terms per spec
// §6's grammar (core Block/Term/LVal plus the if/else, tuple, and
// function-declaration extension productions).
package frparse

import (
	"strconv"

	"github.com/fwrust/fwrust/internal/astfr"
	"github.com/fwrust/fwrust/internal/diagnostic"
	"github.com/fwrust/fwrust/internal/extensions"
	"github.com/fwrust/fwrust/internal/frlex"
	"github.com/fwrust/fwrust/internal/position"
)

// Parser holds a current/peek token pair over a token stream, in the
// same shape as the compiler's own recursive-descent parser
// (current/peek lookahead, an accumulated error list rather than
// panicking on the first mistake).
type Parser struct {
	tokens []frlex.Token
	pos    int

	current frlex.Token
	peek    frlex.Token

	errors []*diagnostic.Diagnostic
}

// New builds a Parser over src's full token stream.
func New(src string) *Parser {
	toks := frlex.New(src).Tokenize()

	p := &Parser{tokens: toks}
	p.advance()
	p.advance()

	return p
}

func (p *Parser) advance() {
	p.current = p.peek

	if p.pos < len(p.tokens) {
		p.peek = p.tokens[p.pos]
		p.pos++
	} else {
		p.peek = frlex.Token{Kind: frlex.EOF}
	}
}

func (p *Parser) spanOf(tok frlex.Token) position.Span {
	start := position.Position{Line: tok.Line, Column: tok.Column, Offset: tok.Offset}
	end := position.Position{Line: tok.Line, Column: tok.Column + len(tok.Literal), Offset: tok.Offset + len(tok.Literal)}

	return position.Span{Start: start, End: end}
}

func (p *Parser) errorf(tok frlex.Token, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostic.Syntax(p.spanOf(tok), format, args...))
}

// Errors returns every syntax diagnostic accumulated during parsing.
func (p *Parser) Errors() []*diagnostic.Diagnostic { return p.errors }

func (p *Parser) expect(kind frlex.Kind) frlex.Token {
	tok := p.current

	if tok.Kind != kind {
		p.errorf(tok, "expected %s, got %s %q", kind, tok.Kind, tok.Literal)
	} else {
		p.advance()
	}

	return tok
}

// ParseProgram parses zero or more function declarations followed by
// exactly one top-level Block (spec §6 extended with function
// declarations, written "fn name('a,...)(x: T,...) -> T Block"; see
// parseFnDecl).
func ParseProgram(src string) ([]*extensions.FnDecl, astfr.Term, []*diagnostic.Diagnostic) {
	p := New(src)

	var decls []*extensions.FnDecl

	for p.current.Kind == frlex.KwFn {
		decls = append(decls, p.parseFnDecl())
	}

	term := p.parseBlock()

	if p.current.Kind != frlex.EOF {
		p.errorf(p.current, "unexpected trailing token %s %q", p.current.Kind, p.current.Literal)
	}

	return decls, term, p.errors
}

// Parse parses a single top-level Block with no leading declarations —
// the common case for seed scenarios and fuzz-generated programs.
func Parse(src string) (astfr.Term, []*diagnostic.Diagnostic) {
	_, term, errs := ParseProgram(src)

	return term, errs
}

func (p *Parser) parseBlock() *astfr.Block {
	start := p.current
	p.expect(frlex.LBrace)

	block := &astfr.Block{Sp: p.spanOf(start)}

	for p.current.Kind != frlex.RBrace && p.current.Kind != frlex.EOF {
		term := p.parseTerm()
		block.Terms = append(block.Terms, term)

		if p.current.Kind == frlex.Semi {
			p.advance()
		} else {
			break
		}
	}

	p.expect(frlex.RBrace)

	return block
}

// parseTerm parses one Term production (spec §6), including the if/else
// and tuple extension forms.
func (p *Parser) parseTerm() astfr.Term {
	start := p.current

	switch p.current.Kind {
	case frlex.KwLet:
		return p.parseLet()

	case frlex.Amp:
		return p.parseBorrow()

	case frlex.KwBox:
		p.advance()

		return &astfr.BoxTerm{Sp: p.spanOf(start), Inner: p.parseTerm()}

	case frlex.Bang:
		p.advance()
		lv := p.parseLVal()

		return &astfr.Access{Sp: p.spanOf(start), Kind: astfr.AccessCopy, LVal: lv}

	case frlex.Question:
		p.advance()
		lv := p.parseLVal()

		return &astfr.Access{Sp: p.spanOf(start), Kind: astfr.AccessUnspecified, LVal: lv}

	case frlex.KwIf:
		return p.parseIfElse()

	case frlex.Integer:
		return p.parseIntOrTuple(start)

	case frlex.LParen:
		return p.parseParenTerm(start)

	case frlex.LBrace:
		return p.parseBlock()

	case frlex.Ident:
		return p.parseIdentLed(start)

	case frlex.Star:
		lv := p.parseLVal()
		if p.current.Kind == frlex.Assign {
			p.advance()
			rhs := p.parseTerm()

			return &astfr.Assign{Sp: p.spanOf(start), LVal: lv, Rhs: rhs}
		}

		return &astfr.Access{Sp: p.spanOf(start), Kind: astfr.AccessMove, LVal: lv}

	default:
		p.errorf(p.current, "unexpected token %s %q at start of term", p.current.Kind, p.current.Literal)
		p.advance()

		return &astfr.IntLit{Sp: p.spanOf(start)}
	}
}

func (p *Parser) parseLet() astfr.Term {
	start := p.current
	p.expect(frlex.KwLet)
	p.expect(frlex.KwMut)

	name := p.expect(frlex.Ident).Literal

	p.expect(frlex.Assign)

	rhs := p.parseTerm()

	return &astfr.Let{Sp: p.spanOf(start), Name: name, Rhs: rhs}
}

func (p *Parser) parseBorrow() astfr.Term {
	start := p.current
	p.expect(frlex.Amp)

	mut := false
	if p.current.Kind == frlex.KwMut {
		mut = true

		p.advance()
	}

	lv := p.parseLVal()

	return &astfr.Borrow{Sp: p.spanOf(start), Mut: mut, LVal: lv}
}

func (p *Parser) parseIfElse() astfr.Term {
	start := p.current
	p.expect(frlex.KwIf)

	left := p.parseLVal()

	negate := false

	switch p.current.Kind {
	case frlex.Eq:
		p.advance()
	case frlex.Ne:
		negate = true

		p.advance()
	default:
		p.errorf(p.current, "expected == or != in if condition, got %s", p.current.Kind)
	}

	right := p.parseLVal()

	then := p.parseBlock()
	p.expect(frlex.KwElse)
	els := p.parseBlock()

	return &extensions.IfElse{Sp: p.spanOf(start), Left: left, Right: right, Negate: negate, Then: then, Else: els}
}

// parseIntOrTuple disambiguates a bare integer literal from nothing
// extra — integers never start a tuple, this branch exists only to keep
// the dispatch table above readable.
func (p *Parser) parseIntOrTuple(start frlex.Token) astfr.Term {
	lit := p.expect(frlex.Integer)

	n, err := strconv.ParseInt(lit.Literal, 10, 64)
	if err != nil {
		p.errorf(lit, "invalid integer literal %q: %v", lit.Literal, err)
	}

	return &astfr.IntLit{Sp: p.spanOf(start), Value: n}
}

// parseParenTerm parses a parenthesized term or, when a comma follows,
// a tuple literal `(t1, t2, ...)` (spec §4.6 extension production).
func (p *Parser) parseParenTerm(start frlex.Token) astfr.Term {
	p.expect(frlex.LParen)

	first := p.parseTerm()

	if p.current.Kind != frlex.Comma {
		p.expect(frlex.RParen)

		return first
	}

	elems := []astfr.Term{first}

	for p.current.Kind == frlex.Comma {
		p.advance()

		if p.current.Kind == frlex.RParen {
			break
		}

		elems = append(elems, p.parseTerm())
	}

	p.expect(frlex.RParen)

	return &extensions.TupleLit{Sp: p.spanOf(start), Elems: elems}
}

// parseIdentLed handles every Term production that begins with a bare
// identifier: a move/LVal-read, an assignment, or a function call.
func (p *Parser) parseIdentLed(start frlex.Token) astfr.Term {
	name := p.current.Literal

	if p.peek.Kind == frlex.LParen {
		p.advance()

		return p.parseCall(start, name)
	}

	lv := p.parseLVal()

	if p.current.Kind == frlex.Assign {
		p.advance()
		rhs := p.parseTerm()

		return &astfr.Assign{Sp: p.spanOf(start), LVal: lv, Rhs: rhs}
	}

	return &astfr.Access{Sp: p.spanOf(start), Kind: astfr.AccessMove, LVal: lv}
}

func (p *Parser) parseCall(start frlex.Token, name string) astfr.Term {
	p.expect(frlex.LParen)

	var args []astfr.Term

	for p.current.Kind != frlex.RParen && p.current.Kind != frlex.EOF {
		args = append(args, p.parseTerm())

		if p.current.Kind == frlex.Comma {
			p.advance()
		} else {
			break
		}
	}

	p.expect(frlex.RParen)

	return &extensions.Call{Sp: p.spanOf(start), Name: name, Args: args}
}

// parseLVal parses the LVal grammar: '*' LVal | Ident ('.' Int)*, plus
// the parenthesized-dereference surface form '*(' LVal ')'.
func (p *Parser) parseLVal() astfr.LVal {
	if p.current.Kind == frlex.Star {
		p.advance()

		if p.current.Kind == frlex.LParen {
			p.advance()

			inner := p.parseLVal()
			p.expect(frlex.RParen)

			return inner.Deref()
		}

		return p.parseLVal().Deref()
	}

	name := p.expect(frlex.Ident).Literal
	lv := astfr.NewLVal(name)

	for p.current.Kind == frlex.Dot {
		p.advance()

		idx := p.expect(frlex.Integer)

		n, err := strconv.Atoi(idx.Literal)
		if err != nil {
			p.errorf(idx, "invalid field index %q", idx.Literal)
		}

		lv = lv.FieldAt(n)
	}

	return lv
}

// parseFnDecl parses `fn name('a, 'b: 'a,...)(x: T,...) -> T Block` (spec
// §4.6); the lifetime clause is optional.
func (p *Parser) parseFnDecl() *extensions.FnDecl {
	p.expect(frlex.KwFn)

	name := p.expect(frlex.Ident).Literal

	var (
		params []string
		bounds []extensions.OutlivesBound
	)

	// '<' is not in this grammar's punctuation set, so a lifetime-
	// parameter list is written as a parenthesized `('a, 'b: 'a)` clause
	// directly after the function name, disambiguated from the value
	// parameter list by its leading lifetime tag.
	if p.current.Kind == frlex.LParen && p.peek.Kind == frlex.LifetimeTag {
		p.advance()

		for p.current.Kind == frlex.LifetimeTag {
			lt := p.current.Literal
			p.advance()
			params = append(params, lt)

			if p.current.Kind == frlex.Colon {
				p.advance()

				bound := p.expect(frlex.LifetimeTag).Literal
				bounds = append(bounds, extensions.OutlivesBound{Longer: bound, Shorter: lt})
			}

			if p.current.Kind == frlex.Comma {
				p.advance()
			}
		}

		p.expect(frlex.RParen)
	}

	p.expect(frlex.LParen)

	var fnParams []extensions.Param

	for p.current.Kind != frlex.RParen && p.current.Kind != frlex.EOF {
		pname := p.expect(frlex.Ident).Literal
		p.expect(frlex.Colon)

		ptype := p.parseType()

		fnParams = append(fnParams, extensions.Param{Name: pname, Type: ptype})

		if p.current.Kind == frlex.Comma {
			p.advance()
		} else {
			break
		}
	}

	p.expect(frlex.RParen)
	p.expect(frlex.Arrow)

	ret := p.parseType()

	body := p.parseBlock()

	return &extensions.FnDecl{
		Name:           name,
		LifetimeParams: params,
		Bounds:         bounds,
		Params:         fnParams,
		ReturnType:     ret,
		Body:           body,
	}
}

// parseType parses a minimal surface type grammar sufficient for
// function signatures: `int`, `&x`/`&mut x` (x names the referent
// variable), `box T` (nested box types),
// recognized as bare identifiers/punctuation rather than full Type
// syntax, since spec §6 does not define one beyond "x: T".
func (p *Parser) parseType() astfr.Type {
	switch p.current.Kind {
	case frlex.Amp:
		p.advance()

		mut := astfr.Shared
		if p.current.Kind == frlex.KwMut {
			mut = astfr.Mut

			p.advance()
		}

		// Surface function signatures name a referent variable so the
		// checker has a concrete LVal to build the borrow's set from.
		name := p.expect(frlex.Ident).Literal

		return astfr.BorrowOf(mut, []astfr.LVal{astfr.NewLVal(name)})

	case frlex.KwBox:
		p.advance()

		return astfr.BoxOf(p.parseType())

	case frlex.Ident:
		tok := p.current
		p.advance()

		if tok.Literal == "int" {
			return astfr.Int()
		}

		p.errorf(tok, "unknown type name %q", tok.Literal)

		return astfr.Int()

	default:
		p.errorf(p.current, "expected a type, got %s", p.current.Kind)

		return astfr.Int()
	}
}
