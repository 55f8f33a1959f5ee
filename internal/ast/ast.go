// Package ast defines the abstract syntax tree produced by the parser and
// consumed by the semantic lowering stage.
package ast

import "github.com/mna/ore/internal/token"

// Expr is any expression node.
type Expr interface {
	exprNode()
	Pos() token.Token
}

// Stmt is any statement node.
type Stmt interface {
	stmtNode()
	Pos() token.Token
}

// BinOp is the closed set of binary operator tags.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq
	OpAnd
	OpOr
	OpAssign
	OpAddAssign
	OpSubAssign
	OpMulAssign
	OpDivAssign
	OpModAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpMember // .
	OpIndex  // []
)

// UnOp is the closed set of unary operator tags.
type UnOp int

const (
	UnNeg UnOp = iota
	UnPos
	UnNot
	UnPreInc
	UnPreDec
	UnPostInc
	UnPostDec
)
