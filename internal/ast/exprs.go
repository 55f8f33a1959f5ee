package ast

import "github.com/mna/ore/internal/token"

// Literal is an int, float, string, bool, or null constant.
type Literal struct {
	Tok   token.Token
	Int   int64
	Float float64
	Str   string
	Bool  bool
	IsInt, IsFloat, IsStr, IsBool, IsNull bool
}

func (*Literal) exprNode()          {}
func (l *Literal) Pos() token.Token { return l.Tok }

// Variable is a bare identifier reference.
type Variable struct {
	Tok  token.Token
	Name string
}

func (*Variable) exprNode()          {}
func (v *Variable) Pos() token.Token { return v.Tok }

// This is the `this` keyword, referring to the current compilation unit's
// short name; the VM resolves it to that Ref when it is pushed.
type This struct {
	Tok token.Token
}

func (*This) exprNode()          {}
func (t *This) Pos() token.Token { return t.Tok }

// BinaryOp is any binary expression, including assignment, member access
// (`.`) and indexing (`[]`).
type BinaryOp struct {
	Tok         token.Token
	Op          BinOp
	Left, Right Expr
}

func (*BinaryOp) exprNode()          {}
func (b *BinaryOp) Pos() token.Token { return b.Tok }

// UnaryOp is any unary expression, prefix or postfix.
type UnaryOp struct {
	Tok      token.Token
	Op       UnOp
	Operand  Expr
	IsPrefix bool
}

func (*UnaryOp) exprNode()          {}
func (u *UnaryOp) Pos() token.Token { return u.Tok }

// Call is a function call; Callee is typically a Variable, This, or a
// member-access BinaryOp (`module.function`).
type Call struct {
	Tok    token.Token
	Callee Expr
	Args   []Expr
}

func (*Call) exprNode()          {}
func (c *Call) Pos() token.Token { return c.Tok }
