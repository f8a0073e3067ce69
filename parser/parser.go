// Package parser builds an AST from a token stream, honoring the
// precedence and associativity table in spec.md §4.2.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Idorobots/org-cli/ast"
	"github.com/Idorobots/org-cli/lexer"
	"github.com/Idorobots/org-cli/orgerrors"
	"github.com/Idorobots/org-cli/token"
)

// Parser consumes a fixed token slice and builds an ast.Node.
type Parser struct {
	toks []token.Token
	pos  int
}

// Parse tokenizes src and parses it into a single AST covering the whole
// input (spec.md §6's Parse entry point).
func Parse(src string) (ast.Node, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	node, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	if !p.at(token.EOF) {
		return nil, p.errorf("unexpected trailing token %s", p.cur())
	}
	return node, nil
}

func (p *Parser) cur() token.Token  { return p.toks[p.pos] }
func (p *Parser) at(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if !p.at(k) {
		return token.Token{}, p.errorf("expected %s, got %s", k, p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return orgerrors.NewParseError(orgerrors.ErrUnexpectedToken, fmt.Sprintf(format, args...)).
		WithPos(p.cur().Pos)
}

// ---- Level 1: pipe (right-assoc) ----

func (p *Parser) parsePipe() (ast.Node, error) {
	left, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if p.at(token.PIPE) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		return ast.NewPipe(pos, left, right), nil
	}
	return left, nil
}

// ---- Level 2: sequence (left-assoc ;) ----

func (p *Parser) parseSequence() (ast.Node, error) {
	left, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	for p.at(token.SEMI) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		left = ast.NewSequence(pos, left, right)
	}
	return left, nil
}

// ---- Level 3: assignment (right-assoc, restricted target shapes) ----

func (p *Parser) parseAssign() (ast.Node, error) {
	left, err := p.parseAsBinding()
	if err != nil {
		return nil, err
	}
	if p.at(token.ASSIGN) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseAssign()
		if err != nil {
			return nil, err
		}
		switch t := left.(type) {
		case *ast.FieldAccess:
			return ast.NewAssignField(pos, t.Inner, t.Name, right), nil
		case *ast.BracketAccess:
			return ast.NewAssignBracket(pos, t.Inner, t.Key, right), nil
		case *ast.Index:
			return ast.NewAssignBracket(pos, t.Inner, t.Idx, right), nil
		default:
			return nil, orgerrors.NewParseError(orgerrors.ErrInvalidAssignTarget,
				"assignment target must be a field access (path.field) or bracket access (path[key])").
				WithPos(pos)
		}
	}
	return left, nil
}

// ---- Level 4: `as $name` binding (right-assoc, binds tail of pipeline) ----

func (p *Parser) parseAsBinding() (ast.Node, error) {
	value, err := p.parseTuple()
	if err != nil {
		return nil, err
	}
	if p.at(token.AS) {
		pos := p.cur().Pos
		p.advance()
		nameTok, err := p.expect(token.VARIABLE)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.PIPE); err != nil {
			return nil, err
		}
		body, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		return ast.NewAsBinding(pos, value, nameTok.Lexeme, body), nil
	}
	return value, nil
}

// ---- Level 5: tuple (`,`, left-assoc, flattened to N-ary) ----

func (p *Parser) parseTuple() (ast.Node, error) {
	first, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.at(token.COMMA) {
		return first, nil
	}
	pos := p.cur().Pos
	children := []ast.Node{first}
	for p.at(token.COMMA) {
		p.advance()
		next, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		children = append(children, next)
	}
	return ast.NewTuple(pos, children), nil
}

// ---- Level 6: or / and ----

func (p *Parser) parseOr() (ast.Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.at(token.OR) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, ast.OpOr, left, right)
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Node, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.at(token.AND) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, ast.OpAnd, left, right)
	}
	return left, nil
}

// ---- Level 7: comparison / membership / regex (non-associative) ----

var comparisonOps = map[token.Kind]ast.BinaryOp{
	token.EQ:      ast.OpEq,
	token.NEQ:     ast.OpNeq,
	token.GT:      ast.OpGt,
	token.LT:      ast.OpLt,
	token.GE:      ast.OpGe,
	token.LE:      ast.OpLe,
	token.IN:      ast.OpIn,
	token.MATCHES: ast.OpMatches,
}

func (p *Parser) parseComparison() (ast.Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.cur().Kind]; ok {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(pos, op, left, right), nil
	}
	return left, nil
}

// ---- Level 8: additive (left-assoc) ----

func (p *Parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(token.PLUS) || p.at(token.MINUS) {
		op := ast.OpAdd
		if p.at(token.MINUS) {
			op = ast.OpSub
		}
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
	return left, nil
}

// ---- Level 9: multiplicative (left-assoc) ----

var multiplicativeOps = map[token.Kind]ast.BinaryOp{
	token.STAR:  ast.OpMul,
	token.SLASH: ast.OpDiv,
	token.MOD:   ast.OpMod,
	token.REM:   ast.OpRem,
	token.QUOT:  ast.OpQuot,
}

func (p *Parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := multiplicativeOps[p.cur().Kind]
		if !ok {
			return left, nil
		}
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinary(pos, op, left, right)
	}
}

// ---- Level 10: unary minus (prefix) ----

func (p *Parser) parseUnary() (ast.Node, error) {
	if p.at(token.MINUS) {
		pos := p.cur().Pos
		p.advance()
		inner, err := p.parsePow()
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryMinus(pos, inner), nil
	}
	return p.parsePow()
}

// ---- Level 11: power (right-assoc) ----

func (p *Parser) parsePow() (ast.Node, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.at(token.POW) {
		pos := p.cur().Pos
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewBinary(pos, ast.OpPow, left, right), nil
	}
	return left, nil
}

// ---- Level 12: postfix chain (`.field`, `[]`, `[k]`, `[a:b]`) ----

func (p *Parser) parsePostfix() (ast.Node, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Kind {
		case token.DOT:
			pos := p.cur().Pos
			p.advance()
			nameTok, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			base = ast.NewFieldAccess(pos, base, nameTok.Lexeme)
		case token.LBRACKET:
			base, err = p.parseBracketSuffix(base)
			if err != nil {
				return nil, err
			}
		default:
			return base, nil
		}
	}
}

// parseBracketSuffix parses the `[...]` that follows base: `[]` (iterate),
// `[k]` (index/bracket-get, dispatched at runtime), or `[a:b]` (slice, with
// either bound optional).
func (p *Parser) parseBracketSuffix(base ast.Node) (ast.Node, error) {
	pos := p.cur().Pos
	p.advance() // consume '['

	if p.at(token.RBRACKET) {
		p.advance()
		return ast.NewIterate(pos, base), nil
	}

	if p.at(token.COLON) {
		p.advance()
		end, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return ast.NewSlice(pos, base, nil, end), nil
	}

	first, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.at(token.COLON) {
		p.advance()
		var end ast.Node
		if !p.at(token.RBRACKET) {
			end, err = p.parseOr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return ast.NewSlice(pos, base, first, end), nil
	}
	if _, err := p.expect(token.RBRACKET); err != nil {
		return nil, err
	}
	return ast.NewIndex(pos, base, first), nil
}

// ---- Level 13: primary ----

func (p *Parser) parsePrimary() (ast.Node, error) {
	t := p.cur()
	switch t.Kind {
	case token.NUMBER:
		p.advance()
		return parseNumber(t)
	case token.STRING:
		p.advance()
		return ast.NewStr(t.Pos, t.Lexeme), nil
	case token.TRUE:
		p.advance()
		return ast.NewBool(t.Pos, true), nil
	case token.FALSE:
		p.advance()
		return ast.NewBool(t.Pos, false), nil
	case token.NONE:
		p.advance()
		return ast.NewNone(t.Pos), nil
	case token.VARIABLE:
		p.advance()
		return ast.NewVariable(t.Pos, t.Lexeme), nil
	case token.DOT:
		p.advance()
		if p.at(token.IDENT) {
			nameTok := p.advance()
			return ast.NewFieldAccess(t.Pos, ast.NewIdentity(t.Pos), nameTok.Lexeme), nil
		}
		return ast.NewIdentity(t.Pos), nil
	case token.LPAREN:
		p.advance()
		inner, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil
	case token.LBRACKET:
		p.advance()
		if p.at(token.RBRACKET) {
			p.advance()
			return ast.NewFold(t.Pos, nil), nil
		}
		inner, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		return ast.NewFold(t.Pos, inner), nil
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.IDENT:
		p.advance()
		if p.at(token.LPAREN) {
			p.advance()
			var args []ast.Node
			if !p.at(token.RPAREN) {
				for {
					arg, err := p.parseOr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.at(token.COMMA) {
						break
					}
					p.advance()
				}
			}
			if _, err := p.expect(token.RPAREN); err != nil {
				return nil, err
			}
			return ast.NewFunctionCall(t.Pos, t.Lexeme, args), nil
		}
		return ast.NewNullaryFunctionRef(t.Pos, t.Lexeme), nil
	default:
		return nil, p.errorf("unexpected token %s", t)
	}
}

func parseNumber(t token.Token) (ast.Node, error) {
	if strings.ContainsRune(t.Lexeme, '.') {
		v, err := strconv.ParseFloat(t.Lexeme, 64)
		if err != nil {
			return nil, orgerrors.NewParseError(orgerrors.ErrUnexpectedToken,
				fmt.Sprintf("invalid number literal %q", t.Lexeme)).WithPos(t.Pos)
		}
		return ast.NewFloat(t.Pos, v), nil
	}
	v, err := strconv.ParseInt(t.Lexeme, 10, 64)
	if err != nil {
		return nil, orgerrors.NewParseError(orgerrors.ErrUnexpectedToken,
			fmt.Sprintf("invalid number literal %q", t.Lexeme)).WithPos(t.Pos)
	}
	return ast.NewInt(t.Pos, v), nil
}

// parseLet parses `let VALUE as $name in BODY`.
func (p *Parser) parseLet() (ast.Node, error) {
	pos := p.cur().Pos
	p.advance() // consume 'let'
	value, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.AS); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.VARIABLE)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.IN); err != nil {
		return nil, err
	}
	body, err := p.parsePipe()
	if err != nil {
		return nil, err
	}
	return ast.NewLetBinding(pos, value, nameTok.Lexeme, body), nil
}

// parseIf parses `if COND then BODY (elif COND then BODY)* else BODY`,
// desugaring the elif chain into right-nested IfThenElse nodes.
func (p *Parser) parseIf() (ast.Node, error) {
	pos := p.cur().Pos
	p.advance() // consume 'if'
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.THEN); err != nil {
		return nil, err
	}
	then, err := p.parsePipe()
	if err != nil {
		return nil, err
	}

	type branch struct {
		pos  token.Position
		cond ast.Node
		then ast.Node
	}
	var elifs []branch
	for p.at(token.ELIF) {
		bp := p.cur().Pos
		p.advance()
		c, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.THEN); err != nil {
			return nil, err
		}
		b, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		elifs = append(elifs, branch{bp, c, b})
	}

	if _, err := p.expect(token.ELSE); err != nil {
		return nil, err
	}
	elseBranch, err := p.parsePipe()
	if err != nil {
		return nil, err
	}

	for i := len(elifs) - 1; i >= 0; i-- {
		e := elifs[i]
		elseBranch = ast.NewIfThenElse(e.pos, e.cond, e.then, elseBranch)
	}
	return ast.NewIfThenElse(pos, cond, then, elseBranch), nil
}
