package parser

import (
	"fmt"
	"strconv"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/lexer"
)

// This file parses mesh's actor/service/supervisor declarations and the
// do/end-delimited control-flow forms that go with them (spec §4.9, §4.12).
// Function bodies keep the teacher's brace-delimited parseFunctionBody;
// actors, services, supervisors, while, for and receive use do/end instead,
// per the ast_mesh.go grammar comments.

// parseDoEndBlock parses a do/end-delimited sequence of semicolon-separated
// expressions. Assumes curToken is DO; leaves curToken at the last token of
// the block body so the caller can expectPeek(lexer.END).
func (p *Parser) parseDoEndBlock() ast.Expr {
	startPos := p.curPos()
	p.nextToken() // move past DO

	if p.curTokenIs(lexer.END) {
		return &ast.Block{Exprs: []ast.Expr{}, Pos: startPos}
	}

	var exprs []ast.Expr
	expr := p.parseExpression(LOWEST)
	if expr != nil {
		exprs = append(exprs, expr)
	}

	for p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken() // move to SEMICOLON
		p.nextToken() // move past SEMICOLON

		if p.curTokenIs(lexer.END) {
			break
		}

		expr = p.parseExpression(LOWEST)
		if expr != nil {
			exprs = append(exprs, expr)
		}
	}

	if len(exprs) == 1 {
		return exprs[0]
	}
	return &ast.Block{Exprs: exprs, Pos: startPos}
}

// parseActorDecl parses `actor Name(state params) do <body> end`.
func (p *Parser) parseActorDecl() ast.Node {
	startPos := p.curPos()
	decl := &ast.ActorDecl{Pos: startPos}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	decl.StateParams = p.parseParams()

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	decl.Body = p.parseDoEndBlock()
	if !p.expectPeek(lexer.END) {
		return nil
	}

	decl.Span = ast.Span{Start: startPos, End: p.curPos()}
	return decl
}

// parseServiceDecl parses `service Name do init(...) do ... end
// call h(...) :: T do ... end cast h(...) do ... end end`. init/call/cast
// are contextual keywords, not reserved words.
func (p *Parser) parseServiceDecl() ast.Node {
	startPos := p.curPos()
	decl := &ast.ServiceDecl{Pos: startPos}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	p.nextToken() // move past DO to first member

	for !p.curTokenIs(lexer.END) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.report("PAR_SERVICE_MEMBER", fmt.Sprintf("expected 'init', 'call', or 'cast' in service body, got %s", p.curToken.Type), "Define service members with init/call/cast")
			return decl
		}

		switch p.curToken.Literal {
		case "init":
			decl.Init = p.parseServiceInit()
		case "call":
			if h := p.parseCallHandler(); h != nil {
				decl.CallHandlers = append(decl.CallHandlers, h)
			}
		case "cast":
			if h := p.parseCastHandler(); h != nil {
				decl.CastHandlers = append(decl.CastHandlers, h)
			}
		default:
			p.report("PAR_SERVICE_MEMBER", fmt.Sprintf("expected 'init', 'call', or 'cast', got '%s'", p.curToken.Literal), "Define service members with init/call/cast")
			return decl
		}

		p.nextToken()
	}

	decl.Span = ast.Span{Start: startPos, End: p.curPos()}
	return decl
}

// parseServiceInit parses `init(params) do body end`, producing the
// FuncDecl a ServiceDecl.Init holds.
func (p *Parser) parseServiceInit() *ast.FuncDecl {
	startPos := p.curPos()
	fn := &ast.FuncDecl{Name: "init", Pos: startPos, Origin: "service_init"}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	fn.Params = p.parseParams()

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	fn.Body = p.parseDoEndBlock()
	if !p.expectPeek(lexer.END) {
		return nil
	}

	fn.Span = ast.Span{Start: startPos, End: p.curPos()}
	return fn
}

// parseCallHandler parses `call Name(params) :: ReplyTy do body end`.
// Assumes curToken is the 'call' identifier.
func (p *Parser) parseCallHandler() *ast.CallHandler {
	h := &ast.CallHandler{Pos: p.curPos()}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	h.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	h.Params = p.parseParams()

	if !p.expectPeek(lexer.DCOLON) {
		return nil
	}
	p.nextToken()
	h.ReplyType = p.parseType()

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	h.Body = p.parseDoEndBlock()
	if !p.expectPeek(lexer.END) {
		return nil
	}

	return h
}

// parseCastHandler parses `cast Name(params) do body end`. Assumes
// curToken is the 'cast' identifier.
func (p *Parser) parseCastHandler() *ast.CastHandler {
	h := &ast.CastHandler{Pos: p.curPos()}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	h.Name = p.curToken.Literal

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	h.Params = p.parseParams()

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	h.Body = p.parseDoEndBlock()
	if !p.expectPeek(lexer.END) {
		return nil
	}

	return h
}

// parseSupervisorDecl parses `supervisor Name do strategy S max_restarts N
// max_seconds N child { ... } ... end`. strategy/max_restarts/max_seconds
// are contextual keywords with bare-value syntax (no colon), matching
// child's record-literal-like syntax being the exception.
func (p *Parser) parseSupervisorDecl() ast.Node {
	startPos := p.curPos()
	decl := &ast.SupervisorDecl{Pos: startPos, Strategy: "one_for_one", MaxRestarts: 3, MaxSeconds: 5}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	decl.Name = p.curToken.Literal

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	p.nextToken() // move past DO to first member

	for !p.curTokenIs(lexer.END) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.report("PAR_SUPERVISOR_MEMBER", fmt.Sprintf("unexpected token in supervisor body: %s", p.curToken.Type), "Use strategy/max_restarts/max_seconds/child")
			return decl
		}

		switch p.curToken.Literal {
		case "strategy":
			p.nextToken()
			decl.Strategy = p.curToken.Literal
		case "max_restarts":
			p.nextToken()
			decl.MaxRestarts = p.intLiteralValue()
		case "max_seconds":
			p.nextToken()
			decl.MaxSeconds = p.intLiteralValue()
		case "child":
			if c := p.parseChildSpec(); c != nil {
				decl.Children = append(decl.Children, c)
			}
		default:
			p.report("PAR_SUPERVISOR_MEMBER", fmt.Sprintf("unexpected member '%s' in supervisor body", p.curToken.Literal), "Use strategy/max_restarts/max_seconds/child")
			return decl
		}

		p.nextToken()
	}

	decl.Span = ast.Span{Start: startPos, End: p.curPos()}
	return decl
}

// parseChildSpec parses a `child { name: ..., start: ..., restart: ...,
// shutdown: ..., type: ... }` entry. Assumes curToken is the 'child'
// identifier.
func (p *Parser) parseChildSpec() *ast.ChildSpec {
	startPos := p.curPos()
	spec := &ast.ChildSpec{Pos: startPos}

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	p.nextToken() // move past LBRACE

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		if !p.curTokenIs(lexer.IDENT) {
			p.report("PAR_CHILD_FIELD", "expected a field name in child spec", "Use name/start/restart/shutdown/type: value")
			return spec
		}
		field := p.curToken.Literal

		if !p.expectPeek(lexer.COLON) {
			return spec
		}
		p.nextToken() // move to value

		switch field {
		case "name":
			spec.Name = p.curToken.Literal
		case "start":
			spec.Start = p.parseExpression(LOWEST)
		case "restart":
			spec.Restart = p.curToken.Literal
		case "shutdown":
			spec.Shutdown = p.parseExpression(LOWEST)
		case "type":
			spec.Type = p.curToken.Literal
		default:
			p.parseExpression(LOWEST)
		}

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken() // move to COMMA
			p.nextToken() // move past COMMA
		} else {
			p.nextToken()
		}
	}

	if !p.curTokenIs(lexer.RBRACE) {
		p.reportExpected(lexer.RBRACE, "Close child spec with '}'")
	}

	return spec
}

func (p *Parser) intLiteralValue() int {
	if !p.curTokenIs(lexer.INT) {
		p.reportExpected(lexer.INT, "Expected an integer literal")
		return 0
	}
	v, _ := strconv.Atoi(p.curToken.Literal)
	return v
}

// parseSpawnExpression parses `spawn(func)`, `spawn(func, [args])`,
// `spawn(func, [args], priority)` or `spawn(func, [args], priority,
// terminate)` (spec §4.12).
func (p *Parser) parseSpawnExpression() ast.Expr {
	spawn := &ast.Spawn{Pos: p.curPos()}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	spawn.Func = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		if p.curTokenIs(lexer.LBRACKET) {
			if list, ok := p.parseListLiteral().(*ast.List); ok {
				spawn.Args = list.Elements
			}
		} else {
			spawn.Args = []ast.Expr{p.parseExpression(LOWEST)}
		}
	}

	if p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		spawn.Priority = p.parseExpression(LOWEST)
	}

	if p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		p.nextToken()
		spawn.Terminate = p.parseExpression(LOWEST)
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	return spawn
}

// parseSelfExpression parses `self` or `self()` (spec §4.12).
func (p *Parser) parseSelfExpression() ast.Expr {
	pos := p.curPos()
	if p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		if !p.expectPeek(lexer.RPAREN) {
			return nil
		}
	}
	return &ast.SelfRef{Pos: pos}
}

// parseLinkExpression parses `link(pid)`.
func (p *Parser) parseLinkExpression() ast.Expr {
	link := &ast.Link{Pos: p.curPos()}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	link.Target = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return link
}

// parseActorSendExpression parses `send(target, msg)`. A `target ! msg`
// infix form was considered but BANG carries zero precedence in
// Token.Precedence() (like the pre-existing LARROW channel-send), which
// would make it unreachable from the common parseExpression(LOWEST) entry
// point; the call-style prefix form sidesteps that.
func (p *Parser) parseActorSendExpression() ast.Expr {
	send := &ast.ActorSend{Pos: p.curPos()}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	send.Target = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.COMMA) {
		return nil
	}
	p.nextToken()
	send.Message = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return send
}

// parsePanicExpression parses `panic(msg)`.
func (p *Parser) parsePanicExpression() ast.Expr {
	panicExpr := &ast.Panic{Pos: p.curPos()}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	panicExpr.Message = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return panicExpr
}

// parseReturnExpression parses `return` and `return expr`.
func (p *Parser) parseReturnExpression() ast.Expr {
	pos := p.curPos()
	switch p.peekToken.Type {
	case lexer.SEMICOLON, lexer.RBRACE, lexer.END, lexer.EOF:
		return &ast.Return{Pos: pos}
	}
	p.nextToken()
	return &ast.Return{Value: p.parseExpression(LOWEST), Pos: pos}
}

// parseWhileExpression parses `while cond do body end`.
func (p *Parser) parseWhileExpression() ast.Expr {
	w := &ast.While{Pos: p.curPos()}

	p.nextToken()
	w.Cond = p.parseExpression(LOWEST)

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	w.Body = p.parseDoEndBlock()
	if !p.expectPeek(lexer.END) {
		return nil
	}

	return w
}

// parseForExpression parses `for binder in iterable [if filter] do body end`
// and the two-binder map form `for k, v in iterable do body end`. Range,
// set and iterator for-loops are disambiguated by the iterable's type, not
// its surface syntax (spec §4.8 "For-in"), and mesh's grammar has no
// dedicated range/set literal syntax yet; the parser assigns ForMap when
// two binders are present and ForList otherwise, leaving ForRange/ForSet/
// ForIterator reachable only through direct AST/MIR construction until the
// grammar grows that syntax.
func (p *Parser) parseForExpression() ast.Expr {
	f := &ast.For{Pos: p.curPos(), Kind: ast.ForList}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	f.Binder = p.curToken.Literal

	if p.peekTokenIs(lexer.COMMA) {
		p.nextToken()
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		f.Binder2 = p.curToken.Literal
		f.Kind = ast.ForMap
	}

	if !p.expectPeek(lexer.IN) {
		return nil
	}
	p.nextToken()
	f.Iterable = p.parseExpression(LOWEST)

	if p.peekTokenIs(lexer.IF) {
		p.nextToken()
		p.nextToken()
		f.Filter = p.parseExpression(LOWEST)
	}

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	f.Body = p.parseDoEndBlock()
	if !p.expectPeek(lexer.END) {
		return nil
	}

	return f
}

func (p *Parser) parseBreakExpression() ast.Expr {
	return &ast.Break{Pos: p.curPos()}
}

func (p *Parser) parseContinueExpression() ast.Expr {
	return &ast.Continue{Pos: p.curPos()}
}

// parseReceiveExpression parses `receive do arm ... [after ms do body end]
// end`, an actor's mailbox primitive. Arms use `->` (ARROW), matching the
// literal ast_mesh.go grammar comment; `match` arms use `=>` (FARROW) via
// parseCase, so receive gets its own arm parser.
func (p *Parser) parseReceiveExpression() ast.Expr {
	recv := &ast.Receive{Pos: p.curPos()}

	if !p.expectPeek(lexer.DO) {
		return nil
	}
	p.nextToken() // move past DO to first arm, AFTER, or END

	for !p.curTokenIs(lexer.END) && !p.curTokenIs(lexer.AFTER) && !p.curTokenIs(lexer.EOF) {
		c := p.parseReceiveCase()
		if c != nil {
			recv.Arms = append(recv.Arms, c)
		}
		p.nextToken() // move past the arm body

		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
		}
	}

	if p.curTokenIs(lexer.AFTER) {
		after := &ast.AfterClause{Pos: p.curPos()}
		p.nextToken() // move to timeout expression
		after.TimeoutMs = p.parseExpression(LOWEST)

		if !p.expectPeek(lexer.DO) {
			return nil
		}
		after.Body = p.parseDoEndBlock()
		if !p.expectPeek(lexer.END) {
			return nil
		}
		recv.After = after
		p.nextToken() // move past after's own 'end' to receive's closing 'end'
	}

	if !p.curTokenIs(lexer.END) {
		p.reportExpected(lexer.END, "Close 'receive' with 'end'")
		return recv
	}

	return recv
}

// parseReceiveCase parses one `pattern [if guard] -> body` receive arm.
func (p *Parser) parseReceiveCase() *ast.Case {
	c := &ast.Case{Pos: p.curPos()}
	c.Pattern = p.parsePattern()

	if p.peekTokenIs(lexer.IF) {
		p.nextToken()
		p.nextToken()
		c.Guard = p.parseExpression(LOWEST)
	}

	if !p.expectPeek(lexer.ARROW) {
		return nil
	}
	p.nextToken()
	c.Body = p.parseExpression(LOWEST)

	return c
}
