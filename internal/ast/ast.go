// Package ast declares the node shapes the compile pipeline consumes.
// Tokenization and parsing are out of scope (spec.md §1); this package is
// the contract a parser is assumed to produce, built by hand in tests.
package ast

import "github.com/funvibe/funxy/internal/token"

// Node is the base interface every AST node satisfies.
type Node interface {
	Tok() token.Token
}

// Statement is a Node appearing in statement position.
type Statement interface {
	Node
	stmtNode()
}

// Expression is a Node appearing in expression position.
type Expression interface {
	Node
	exprNode()
}

// TypeSpec is a Node appearing in type-annotation position, consumed by
// resolveTypeSpecNode (spec.md §4.3).
type TypeSpec interface {
	Node
	typeSpecNode()
}

// Program is one chunk's parsed source (spec.md glossary: "Chunk").
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return token.Token{}
}

// base embeds the position every node carries.
type base struct{ Token token.Token }

func (b base) Tok() token.Token { return b.Token }
