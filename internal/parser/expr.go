package parser

import (
	"github.com/mna/ore/internal/ast"
	"github.com/mna/ore/internal/lexer"
	"github.com/mna/ore/internal/token"
)

// bindingPower returns the (left, right) binding power pair for an infix
// operator token (postfix operators use postfixBindingPower), following the
// table in the language design: an
// odd/even gap between left and right encodes associativity (left = right-1
// is left-associative, left = right+1 is right-associative).
func bindingPower(k token.Kind) (left, right int, ok bool) {
	switch {
	case k.IsAssignOp():
		return 2, 1, true
	case k == token.LAND || k == token.LOR:
		return 3, 4, true
	case k == token.PIPE:
		return 5, 6, true
	case k == token.CARET:
		return 7, 8, true
	case k == token.AMP:
		return 9, 10, true
	case k == token.EQL || k == token.NEQ:
		return 11, 12, true
	case k == token.GE || k == token.LE || k == token.LT || k == token.GT:
		return 13, 14, true
	case k == token.SHR || k == token.SHL:
		return 15, 16, true
	case k == token.PLUS || k == token.MINUS:
		return 17, 18, true
	case k == token.STAR || k == token.SLASH || k == token.PERCENT:
		return 19, 20, true
	case k == token.DOT:
		return 30, 29, true
	default:
		return 0, 0, false
	}
}

// postfixBindingPower returns the left binding power of a postfix operator
// (++, --, call, index); there is no right side to a postfix operator.
func postfixBindingPower(k token.Kind) (left int, ok bool) {
	switch k {
	case token.INC, token.DEC:
		return 21, true
	case token.LPAREN, token.LBRACK:
		return 27, true
	default:
		return 0, false
	}
}

const prefixUnaryBP = 23
const prefixIncDecBP = 21

var binOpFromTok = map[token.Kind]ast.BinOp{
	token.PLUS:       ast.OpAdd,
	token.MINUS:      ast.OpSub,
	token.STAR:       ast.OpMul,
	token.SLASH:      ast.OpDiv,
	token.PERCENT:    ast.OpMod,
	token.AMP:        ast.OpBitAnd,
	token.PIPE:       ast.OpBitOr,
	token.CARET:      ast.OpBitXor,
	token.SHL:        ast.OpShl,
	token.SHR:        ast.OpShr,
	token.LT:         ast.OpLt,
	token.GT:         ast.OpGt,
	token.LE:         ast.OpLe,
	token.GE:         ast.OpGe,
	token.EQL:        ast.OpEq,
	token.NEQ:        ast.OpNeq,
	token.LAND:       ast.OpAnd,
	token.LOR:        ast.OpOr,
	token.ASSIGN:     ast.OpAssign,
	token.PLUS_EQ:    ast.OpAddAssign,
	token.MINUS_EQ:   ast.OpSubAssign,
	token.STAR_EQ:    ast.OpMulAssign,
	token.SLASH_EQ:   ast.OpDivAssign,
	token.PERCENT_EQ: ast.OpModAssign,
	token.AMP_EQ:     ast.OpAndAssign,
	token.PIPE_EQ:    ast.OpOrAssign,
	token.CARET_EQ:   ast.OpXorAssign,
}

// parseExpr is the Pratt entry point: it parses the prefix part of an
// expression then folds in infix/postfix operators whose left binding
// power exceeds minBP.
func (p *Parser) parseExpr(minBP int) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		tok := p.peek()

		if lbp, ok := postfixBindingPower(tok.Kind); ok && lbp > minBP {
			switch tok.Kind {
			case token.INC, token.DEC:
				p.next()
				left = &ast.UnaryOp{Tok: tok, Op: postUnOp(tok.Kind), Operand: left, IsPrefix: false}
			case token.LPAREN:
				left = p.parseCallArgs(left)
			case token.LBRACK:
				left = p.parseIndex(left)
			}
			continue
		}

		lbp, rbp, ok := bindingPower(tok.Kind)
		if !ok || lbp <= minBP {
			break
		}
		p.next()
		right := p.parseExpr(rbp)
		if right == nil {
			p.errorf(tok, IllegalExpression, "missing right-hand operand for %q", tok.Kind)
			return left
		}
		op, known := binOpFromTok[tok.Kind]
		if !known {
			op = ast.OpMember
		}
		left = &ast.BinaryOp{Tok: tok, Op: op, Left: left, Right: right}
	}
	return left
}

func postUnOp(k token.Kind) ast.UnOp {
	if k == token.INC {
		return ast.UnPostInc
	}
	return ast.UnPostDec
}

func (p *Parser) parsePrefix() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case token.INT:
		p.next()
		v, err := parseIntLit(tok.Text)
		if err != nil {
			p.errorf(tok, IllegalExpression, "invalid integer literal %q", tok.Text)
		}
		return &ast.Literal{Tok: tok, Int: v, IsInt: true}
	case token.FLOAT:
		p.next()
		v, err := parseFloatLit(tok.Text)
		if err != nil {
			p.errorf(tok, IllegalExpression, "invalid float literal %q", tok.Text)
		}
		return &ast.Literal{Tok: tok, Float: v, IsFloat: true}
	case token.STRING:
		p.next()
		return &ast.Literal{Tok: tok, Str: lexer.DecodeStringLiteral(tok.Text), IsStr: true}
	case token.TRUE:
		p.next()
		return &ast.Literal{Tok: tok, Bool: true, IsBool: true}
	case token.FALSE:
		p.next()
		return &ast.Literal{Tok: tok, Bool: false, IsBool: true}
	case token.NULL:
		p.next()
		return &ast.Literal{Tok: tok, IsNull: true}
	case token.THIS:
		p.next()
		return &ast.This{Tok: tok}
	case token.IDENT:
		p.next()
		return &ast.Variable{Tok: tok, Name: tok.Text}
	case token.LPAREN:
		p.next()
		inner := p.parseExpr(0)
		p.expectGroupClose(tok, ")")
		return inner
	case token.NOT, token.PLUS, token.MINUS:
		p.next()
		operand := p.parseExpr(prefixUnaryBP)
		if operand == nil {
			p.errorf(tok, IllegalExpression, "missing operand after unary %q", tok.Kind)
			return nil
		}
		return &ast.UnaryOp{Tok: tok, Op: preUnOp(tok.Kind), Operand: operand, IsPrefix: true}
	case token.INC, token.DEC:
		p.next()
		operand := p.parseExpr(prefixIncDecBP)
		if operand == nil {
			p.errorf(tok, IllegalExpression, "missing operand after prefix %q", tok.Kind)
			return nil
		}
		op := ast.UnPreInc
		if tok.Kind == token.DEC {
			op = ast.UnPreDec
		}
		return &ast.UnaryOp{Tok: tok, Op: op, Operand: operand, IsPrefix: true}
	default:
		p.errorf(tok, IllegalExpression, "unexpected token %q in expression", tok.Kind)
		return nil
	}
}

func preUnOp(k token.Kind) ast.UnOp {
	switch k {
	case token.MINUS:
		return ast.UnNeg
	case token.PLUS:
		return ast.UnPos
	default:
		return ast.UnNot
	}
}

// parseCallArgs parses the `(` arg1, arg2, ... `)` suffix of a call
// expression, tracking paren nesting so commas inside nested calls or
// parenthesized subexpressions do not split the argument list.
func (p *Parser) parseCallArgs(callee ast.Expr) ast.Expr {
	open := p.next() // consume '('
	var args []ast.Expr
	if p.peek().Kind != token.RPAREN {
		for {
			arg := p.parseExpr(0)
			if arg == nil {
				p.errorf(p.peek(), IllegalArgument, "illegal call argument")
				break
			}
			args = append(args, arg)
			if p.peek().Kind != token.COMMA {
				break
			}
			p.next()
		}
	}
	p.expectGroupClose(open, ")")
	return &ast.Call{Tok: open, Callee: callee, Args: args}
}

// parseIndex parses the `[` expr `]` suffix of an index expression.
func (p *Parser) parseIndex(operand ast.Expr) ast.Expr {
	open := p.next() // consume '['
	idx := p.parseExpr(0)
	if idx == nil {
		p.errorf(open, IllegalKey, "missing index expression")
	}
	p.expectGroupClose(open, "]")
	return &ast.BinaryOp{Tok: open, Op: ast.OpIndex, Left: operand, Right: idx}
}
