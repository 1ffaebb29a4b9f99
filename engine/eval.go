package engine

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// CompileEval compiles the engine's evaluation language to a chunk. The
// language is a deliberately small expression subset: literals,
// identifiers, assignment, property access, method and function calls,
// `+` / `-` / `==` / `<`, and throw statements, with `;` separating
// statements. The value of the last statement is the result of the
// evaluation.
func CompileEval(code string) (*Chunk, error) {
	return CompileEvalAs(code, IntroducedByEval)
}

// CompileEvalAs is CompileEval with an explicit introduction type
// recorded on the chunk's source.
func CompileEvalAs(code string, intro IntroductionType) (*Chunk, error) {
	toks, err := lexEval(code)
	if err != nil {
		return nil, err
	}
	p := &evalParser{toks: toks}
	stmts, err := p.parseProgram()
	if err != nil {
		return nil, err
	}

	chunk := NewChunk()
	chunk.StartLine = 1
	chunk.Source = NewSource(code, "", intro)
	chunk.SourceLength = uint32(len(code))

	for i, stmt := range stmts {
		chunk.AddSourceLocation(uint32(chunk.CurrentOffset()), 1, uint16(stmt.pos()+1))
		if err := compileStmt(chunk, stmt); err != nil {
			return nil, err
		}
		if i < len(stmts)-1 {
			chunk.Emit(OpPop)
		}
	}
	if len(stmts) == 0 {
		chunk.Emit(OpUndefined)
	}
	chunk.Emit(OpReturn)
	return chunk, nil
}

// ---------------------------------------------------------------------------
// Lexer
// ---------------------------------------------------------------------------

type evalTokenKind int

const (
	tokIdent evalTokenKind = iota
	tokNumber
	tokString
	tokPunct
	tokEOF
)

type evalToken struct {
	kind evalTokenKind
	text string
	pos  int
}

func lexEval(code string) ([]evalToken, error) {
	var toks []evalToken
	i := 0
	for i < len(code) {
		ch := code[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++

		case unicode.IsLetter(rune(ch)) || ch == '_' || ch == '$':
			start := i
			for i < len(code) && (unicode.IsLetter(rune(code[i])) || unicode.IsDigit(rune(code[i])) || code[i] == '_' || code[i] == '$') {
				i++
			}
			toks = append(toks, evalToken{tokIdent, code[start:i], start})

		case unicode.IsDigit(rune(ch)):
			start := i
			for i < len(code) && (unicode.IsDigit(rune(code[i])) || code[i] == '.') {
				i++
			}
			toks = append(toks, evalToken{tokNumber, code[start:i], start})

		case ch == '"' || ch == '\'':
			quote := ch
			start := i
			i++
			var sb strings.Builder
			for i < len(code) && code[i] != quote {
				if code[i] == '\\' && i+1 < len(code) {
					i++
				}
				sb.WriteByte(code[i])
				i++
			}
			if i >= len(code) {
				return nil, fmt.Errorf("unterminated string at position %d", start)
			}
			i++
			toks = append(toks, evalToken{tokString, sb.String(), start})

		case ch == '=' && i+1 < len(code) && code[i+1] == '=':
			toks = append(toks, evalToken{tokPunct, "==", i})
			i += 2

		case strings.IndexByte("=+-<.(),;", ch) >= 0:
			toks = append(toks, evalToken{tokPunct, string(ch), i})
			i++

		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
		}
	}
	toks = append(toks, evalToken{tokEOF, "", len(code)})
	return toks, nil
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

type evalNode interface {
	pos() int
}

type litNode struct {
	at  int
	val Value
}

type identNode struct {
	at   int
	name string
}

type memberNode struct {
	at   int
	obj  evalNode
	name string
}

type callNode struct {
	at   int
	fn   evalNode
	args []evalNode
}

type binaryNode struct {
	at   int
	op   string
	a, b evalNode
}

type assignNode struct {
	at     int
	target evalNode // identNode or memberNode
	val    evalNode
}

type throwNode struct {
	at   int
	expr evalNode
}

func (n *litNode) pos() int    { return n.at }
func (n *identNode) pos() int  { return n.at }
func (n *memberNode) pos() int { return n.at }
func (n *callNode) pos() int   { return n.at }
func (n *binaryNode) pos() int { return n.at }
func (n *assignNode) pos() int { return n.at }
func (n *throwNode) pos() int  { return n.at }

type evalParser struct {
	toks []evalToken
	cur  int
}

func (p *evalParser) peek() evalToken {
	return p.toks[p.cur]
}

func (p *evalParser) next() evalToken {
	t := p.toks[p.cur]
	if t.kind != tokEOF {
		p.cur++
	}
	return t
}

func (p *evalParser) acceptPunct(text string) bool {
	if t := p.peek(); t.kind == tokPunct && t.text == text {
		p.cur++
		return true
	}
	return false
}

func (p *evalParser) parseProgram() ([]evalNode, error) {
	var stmts []evalNode
	for p.peek().kind != tokEOF {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if !p.acceptPunct(";") {
			break
		}
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
	}
	return stmts, nil
}

func (p *evalParser) parseStmt() (evalNode, error) {
	if t := p.peek(); t.kind == tokIdent && t.text == "throw" {
		p.next()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &throwNode{at: t.pos, expr: expr}, nil
	}
	return p.parseExpr()
}

func (p *evalParser) parseExpr() (evalNode, error) {
	lhs, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if p.acceptPunct("=") {
		switch lhs.(type) {
		case *identNode, *memberNode:
		default:
			return nil, fmt.Errorf("invalid assignment target at position %d", lhs.pos())
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &assignNode{at: lhs.pos(), target: lhs, val: val}, nil
	}
	return lhs, nil
}

func (p *evalParser) parseComparison() (evalNode, error) {
	lhs, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokPunct || (t.text != "==" && t.text != "<") {
			return lhs, nil
		}
		p.next()
		rhs, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		lhs = &binaryNode{at: lhs.pos(), op: t.text, a: lhs, b: rhs}
	}
}

func (p *evalParser) parseAdditive() (evalNode, error) {
	lhs, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokPunct || (t.text != "+" && t.text != "-") {
			return lhs, nil
		}
		p.next()
		rhs, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		lhs = &binaryNode{at: lhs.pos(), op: t.text, a: lhs, b: rhs}
	}
}

func (p *evalParser) parsePostfix() (evalNode, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.acceptPunct("."):
			t := p.next()
			if t.kind != tokIdent {
				return nil, fmt.Errorf("expected property name at position %d", t.pos)
			}
			node = &memberNode{at: node.pos(), obj: node, name: t.text}

		case p.acceptPunct("("):
			var args []evalNode
			if !p.acceptPunct(")") {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if p.acceptPunct(")") {
						break
					}
					if !p.acceptPunct(",") {
						return nil, fmt.Errorf("expected , or ) at position %d", p.peek().pos)
					}
				}
			}
			node = &callNode{at: node.pos(), fn: node, args: args}

		default:
			return node, nil
		}
	}
}

func (p *evalParser) parsePrimary() (evalNode, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		n, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q at position %d", t.text, t.pos)
		}
		return &litNode{at: t.pos, val: Number(n)}, nil

	case tokString:
		return &litNode{at: t.pos, val: String(t.text)}, nil

	case tokIdent:
		switch t.text {
		case "true":
			return &litNode{at: t.pos, val: Boolean(true)}, nil
		case "false":
			return &litNode{at: t.pos, val: Boolean(false)}, nil
		case "null":
			return &litNode{at: t.pos, val: Null()}, nil
		case "undefined":
			return &litNode{at: t.pos, val: Undefined()}, nil
		}
		return &identNode{at: t.pos, name: t.text}, nil

	case tokPunct:
		if t.text == "(" {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if !p.acceptPunct(")") {
				return nil, fmt.Errorf("expected ) at position %d", p.peek().pos)
			}
			return expr, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
}

// ---------------------------------------------------------------------------
// Code generation
// ---------------------------------------------------------------------------

func compileStmt(chunk *Chunk, node evalNode) error {
	if tn, ok := node.(*throwNode); ok {
		if err := compileExpr(chunk, tn.expr); err != nil {
			return err
		}
		chunk.Emit(OpThrow)
		// Unreachable, keeps the one-value-per-statement stack invariant.
		chunk.Emit(OpUndefined)
		return nil
	}
	return compileExpr(chunk, node)
}

func compileExpr(chunk *Chunk, node evalNode) error {
	switch n := node.(type) {
	case *litNode:
		switch n.val.Kind {
		case KindUndefined:
			chunk.Emit(OpUndefined)
		case KindNull:
			chunk.Emit(OpNull)
		case KindBoolean:
			if n.val.BoolVal {
				chunk.Emit(OpTrue)
			} else {
				chunk.Emit(OpFalse)
			}
		case KindString:
			chunk.EmitU16(OpConst, chunk.AddConstant(n.val.StrVal))
		case KindNumber:
			chunk.EmitU16(OpNumber, chunk.AddNumber(n.val.NumVal))
		}
		return nil

	case *identNode:
		chunk.EmitU16(OpGetVar, chunk.AddConstant(n.name))
		return nil

	case *memberNode:
		if err := compileExpr(chunk, n.obj); err != nil {
			return err
		}
		chunk.EmitU16(OpGetProp, chunk.AddConstant(n.name))
		return nil

	case *binaryNode:
		if err := compileExpr(chunk, n.a); err != nil {
			return err
		}
		if err := compileExpr(chunk, n.b); err != nil {
			return err
		}
		switch n.op {
		case "+":
			chunk.Emit(OpAdd)
		case "-":
			chunk.Emit(OpSub)
		case "==":
			chunk.Emit(OpEq)
		case "<":
			chunk.Emit(OpLt)
		}
		return nil

	case *assignNode:
		switch target := n.target.(type) {
		case *identNode:
			if err := compileExpr(chunk, n.val); err != nil {
				return err
			}
			chunk.EmitU16(OpSetVar, chunk.AddConstant(target.name))
		case *memberNode:
			if err := compileExpr(chunk, target.obj); err != nil {
				return err
			}
			if err := compileExpr(chunk, n.val); err != nil {
				return err
			}
			chunk.EmitU16(OpSetProp, chunk.AddConstant(target.name))
		}
		return nil

	case *callNode:
		if member, ok := n.fn.(*memberNode); ok {
			// obj.m(args): the receiver becomes the this value.
			if err := compileExpr(chunk, member.obj); err != nil {
				return err
			}
			chunk.Emit(OpDup)
			chunk.EmitU16(OpGetProp, chunk.AddConstant(member.name))
			chunk.Emit(OpSwap) // [fn, this]
		} else {
			if err := compileExpr(chunk, n.fn); err != nil {
				return err
			}
			chunk.Emit(OpUndefined) // this
		}
		for _, arg := range n.args {
			if err := compileExpr(chunk, arg); err != nil {
				return err
			}
		}
		chunk.EmitU8(OpCall, uint8(len(n.args)))
		return nil

	default:
		return fmt.Errorf("cannot compile node at position %d", node.pos())
	}
}
