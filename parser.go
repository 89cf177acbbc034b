// parser.go: typed AST and recursive-descent parser.
//
// The parser consumes the lexer's token stream and produces a statement
// tree once per script; the evaluator walks that tree. Statements are the
// script forms the editor's authors use: assignments, if/elseif/else,
// while, numeric for, function definitions, return, break, and bare calls.
// Expressions are parsed by precedence climbing.
//
// Error discipline: ParseProgram parses top-level statements one at a
// time. A syntax error inside a simple statement is recorded and the
// parser resynchronizes at the next statement boundary (a ';' or the next
// source line), so later statements still parse and run (per-statement
// isolation). A malformed block construct
// (missing 'end') consumes the rest of the input and thus fails the whole
// script — its body cannot be bounded.
package luaengine

// ---- AST ----------------------------------------------------------------

// Stmt is a statement node. Pos returns the 1-based source position.
type Stmt interface {
	Pos() (line, col int)
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Pos() (line, col int)
	exprNode()
}

type nodePos struct {
	Line, Col int
}

func (n nodePos) Pos() (int, int) { return n.Line, n.Col }

// AssignStmt is `target = value`. Target is a NameExpr, FieldExpr or
// IndexExpr. A leading `local` is accepted and ignored: the engine keeps a
// single flat namespace.
type AssignStmt struct {
	nodePos
	Target Expr
	Value  Expr
	Local  bool
}

// CallStmt is a bare function-call statement.
type CallStmt struct {
	nodePos
	Call *CallExpr
}

// IfBranch is one arm of an if-chain. Cond is nil for the `else` arm.
type IfBranch struct {
	Cond Expr
	Body []Stmt
}

type IfStmt struct {
	nodePos
	Branches []IfBranch
}

type WhileStmt struct {
	nodePos
	Cond Expr
	Body []Stmt
}

// ForStmt is the numeric for: `for Var = Start, Stop[, Step] do ... end`.
// Step is nil when omitted (defaults to 1 at runtime).
type ForStmt struct {
	nodePos
	Var   string
	Start Expr
	Stop  Expr
	Step  Expr
	Body  []Stmt
}

type FuncStmt struct {
	nodePos
	Name   string
	Params []string
	Body   []Stmt
}

// ReturnStmt carries an optional value. At the top level it simply stops
// the script.
type ReturnStmt struct {
	nodePos
	Value Expr
}

type BreakStmt struct {
	nodePos
}

func (*AssignStmt) stmtNode() {}
func (*CallStmt) stmtNode()   {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ForStmt) stmtNode()    {}
func (*FuncStmt) stmtNode()   {}
func (*ReturnStmt) stmtNode() {}
func (*BreakStmt) stmtNode()  {}

type NilExpr struct{ nodePos }

type BoolExpr struct {
	nodePos
	Value bool
}

type NumberExpr struct {
	nodePos
	Value float64
}

type StringExpr struct {
	nodePos
	Value string
}

type NameExpr struct {
	nodePos
	Name string
}

// TableItem is one entry of a table constructor. Key is nil for
// array-style items (which receive 1-based string keys at runtime).
type TableItem struct {
	Key   Expr
	Value Expr
}

type TableExpr struct {
	nodePos
	Items []TableItem
}

// FieldExpr is dotted access `Obj.Name`.
type FieldExpr struct {
	nodePos
	Obj  Expr
	Name string
}

// IndexExpr is bracketed access `Obj[Key]`.
type IndexExpr struct {
	nodePos
	Obj Expr
	Key Expr
}

// CallExpr invokes a named callable. Name may be dotted ("math.floor");
// resolution order at runtime is user function, standard-library entry,
// then a function value reachable through variables.
type CallExpr struct {
	nodePos
	Name string
	Args []Expr
}

type UnaryExpr struct {
	nodePos
	Op TokenType // NOT or MINUS
	X  Expr
}

type BinaryExpr struct {
	nodePos
	Op   TokenType
	L, R Expr
}

func (*NilExpr) exprNode()    {}
func (*BoolExpr) exprNode()   {}
func (*NumberExpr) exprNode() {}
func (*StringExpr) exprNode() {}
func (*NameExpr) exprNode()   {}
func (*TableExpr) exprNode()  {}
func (*FieldExpr) exprNode()  {}
func (*IndexExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}

// ---- parser -------------------------------------------------------------

type parser struct {
	toks      []Token
	pos       int
	loopDepth int
}

// ParseProgram lexes and parses src into top-level statements. Statements
// that parsed cleanly are returned alongside any errors collected during
// resynchronization; callers run the former and report the latter.
func ParseProgram(src string) ([]Stmt, []*ScriptError) {
	toks, err := NewLexer(src).Lex()
	if err != nil {
		return nil, []*ScriptError{err.(*ScriptError)}
	}
	p := &parser{toks: toks}
	var stmts []Stmt
	var errs []*ScriptError
	for {
		p.skipSemis()
		if p.peek().Type == EOF {
			break
		}
		st, err := p.parseStatement()
		if err != nil {
			errs = append(errs, err.(*ScriptError))
			p.syncToNextStatement()
			continue
		}
		stmts = append(stmts, st)
	}
	return stmts, errs
}

// ParseExpression parses src as a single expression (used by Evaluate).
func ParseExpression(src string) (Expr, error) {
	toks, err := NewLexer(src).Lex()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, perr := p.parseExpr()
	if perr != nil {
		return nil, perr
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, syntaxErr(tok.Line, tok.Col, "unexpected %q after expression", tok.Lexeme)
	}
	return e, nil
}

func (p *parser) peek() Token { return p.toks[p.pos] }

func (p *parser) peekN(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(tt TokenType) bool {
	if p.peek().Type == tt {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(tt TokenType, what string) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return Token{}, syntaxErr(tok.Line, tok.Col, "%s near %q", what, describeToken(tok))
	}
	return p.next(), nil
}

func (p *parser) skipSemis() {
	for p.peek().Type == SEMI {
		p.pos++
	}
}

// syncToNextStatement discards tokens up to the next statement boundary: a
// ';' on the error's line (consumed, siblings on the same line still get
// attempted) or the start of the next line.
func (p *parser) syncToNextStatement() {
	line := p.peek().Line
	for p.peek().Type != EOF && p.peek().Line <= line {
		if p.peek().Type == SEMI {
			p.pos++
			return
		}
		p.pos++
	}
}

func describeToken(tok Token) string {
	if tok.Type == EOF {
		return "<eof>"
	}
	return tok.Lexeme
}

func at(tok Token) nodePos { return nodePos{Line: tok.Line, Col: tok.Col} }

// ---- statements ---------------------------------------------------------

func (p *parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case FUNCTION:
		return p.parseFunction()
	case RETURN:
		return p.parseReturn()
	case BREAK:
		p.next()
		if p.loopDepth == 0 {
			return nil, syntaxErr(tok.Line, tok.Col, "'break' outside a loop")
		}
		return &BreakStmt{nodePos: at(tok)}, nil
	case LOCAL:
		p.next()
		name, err := p.expect(IDENT, "variable name expected after 'local'")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(ASSIGN, "'=' expected"); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		target := &NameExpr{nodePos: at(name), Name: name.Lexeme}
		return &AssignStmt{nodePos: at(tok), Target: target, Value: val, Local: true}, nil
	}
	return p.parseExprStatement()
}

// parseExprStatement handles assignments and bare calls, the only two
// statement forms that start with an expression.
func (p *parser) parseExprStatement() (Stmt, error) {
	tok := p.peek()
	e, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.peek().Type == ASSIGN {
		p.next()
		switch e.(type) {
		case *NameExpr, *FieldExpr, *IndexExpr:
		default:
			return nil, syntaxErr(tok.Line, tok.Col, "cannot assign to this expression")
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &AssignStmt{nodePos: at(tok), Target: e, Value: val}, nil
	}
	if call, ok := e.(*CallExpr); ok {
		return &CallStmt{nodePos: at(tok), Call: call}, nil
	}
	return nil, syntaxErr(tok.Line, tok.Col, "unexpected expression statement near %q", describeToken(tok))
}

// parseBlock parses statements until one of the stop tokens (or EOF, which
// is an error: the enclosing construct is unterminated). The stop token is
// left for the caller to consume.
func (p *parser) parseBlock(open string, openLine int, stops ...TokenType) ([]Stmt, error) {
	var body []Stmt
	for {
		p.skipSemis()
		tok := p.peek()
		if tok.Type == EOF {
			return nil, syntaxErr(tok.Line, tok.Col, "'end' expected to close '%s' (opened at line %d)", open, openLine)
		}
		for _, s := range stops {
			if tok.Type == s {
				return body, nil
			}
		}
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		body = append(body, st)
	}
}

func (p *parser) parseIf() (Stmt, error) {
	kw := p.next() // 'if'
	stmt := &IfStmt{nodePos: at(kw)}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(THEN, "'then' expected"); err != nil {
		return nil, err
	}
	body, err := p.parseBlock("if", kw.Line, ELSEIF, ELSE, END)
	if err != nil {
		return nil, err
	}
	stmt.Branches = append(stmt.Branches, IfBranch{Cond: cond, Body: body})

	for p.accept(ELSEIF) {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(THEN, "'then' expected"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock("if", kw.Line, ELSEIF, ELSE, END)
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, IfBranch{Cond: cond, Body: body})
	}
	if p.accept(ELSE) {
		body, err := p.parseBlock("if", kw.Line, END)
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, IfBranch{Cond: nil, Body: body})
	}
	if _, err := p.expect(END, "'end' expected"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	kw := p.next() // 'while'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(DO, "'do' expected"); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseBlock("while", kw.Line, END)
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(END, "'end' expected"); err != nil {
		return nil, err
	}
	return &WhileStmt{nodePos: at(kw), Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	kw := p.next() // 'for'
	name, err := p.expect(IDENT, "loop variable expected")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "'=' expected in numeric 'for'"); err != nil {
		return nil, err
	}
	start, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(COMMA, "',' expected in numeric 'for'"); err != nil {
		return nil, err
	}
	stop, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var step Expr
	if p.accept(COMMA) {
		if step, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(DO, "'do' expected"); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseBlock("for", kw.Line, END)
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(END, "'end' expected"); err != nil {
		return nil, err
	}
	return &ForStmt{nodePos: at(kw), Var: name.Lexeme, Start: start, Stop: stop, Step: step, Body: body}, nil
}

func (p *parser) parseFunction() (Stmt, error) {
	kw := p.next() // 'function'
	name, err := p.expect(IDENT, "function name expected")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LPAREN, "'(' expected after function name"); err != nil {
		return nil, err
	}
	var params []string
	if p.peek().Type != RPAREN {
		for {
			pn, err := p.expect(IDENT, "parameter name expected")
			if err != nil {
				return nil, err
			}
			params = append(params, pn.Lexeme)
			if !p.accept(COMMA) {
				break
			}
		}
	}
	if _, err := p.expect(RPAREN, "')' expected after parameters"); err != nil {
		return nil, err
	}
	// Function bodies get a fresh loop context: a 'break' inside the body
	// may only target the body's own loops.
	savedLoop := p.loopDepth
	p.loopDepth = 0
	body, err := p.parseBlock("function", kw.Line, END)
	p.loopDepth = savedLoop
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(END, "'end' expected"); err != nil {
		return nil, err
	}
	return &FuncStmt{nodePos: at(kw), Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *parser) parseReturn() (Stmt, error) {
	kw := p.next() // 'return'
	stmt := &ReturnStmt{nodePos: at(kw)}
	next := p.peek()
	// The grammar has no statement terminator, so a bare 'return' must not
	// capture the next line's statement as its value: the value expression
	// has to start on the 'return' line.
	if next.Line != kw.Line {
		return stmt, nil
	}
	switch next.Type {
	case EOF, END, ELSE, ELSEIF, SEMI:
		return stmt, nil
	}
	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	stmt.Value = val
	return stmt, nil
}

// ---- expressions --------------------------------------------------------

// Binding powers, low to high. Comparisons are non-associative in spirit
// but parse left-associatively like the rest.
func bindingPower(tt TokenType) int {
	switch tt {
	case OR:
		return 1
	case AND:
		return 2
	case EQ, NEQ, LT, LE, GT, GE:
		return 3
	case CONCAT:
		return 4
	case PLUS, MINUS:
		return 5
	case STAR, SLASH, PERCENT:
		return 6
	}
	return 0
}

func (p *parser) parseExpr() (Expr, error) { return p.parseBinary(1) }

func (p *parser) parseBinary(minBP int) (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		bp := bindingPower(op.Type)
		if bp < minBP || bp == 0 {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(bp + 1)
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{nodePos: at(op), Op: op.Type, L: left, R: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	tok := p.peek()
	if tok.Type == NOT || tok.Type == MINUS {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{nodePos: at(tok), Op: tok.Type, X: x}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by any chain of
// '.field', '[index]' and '(args)' suffixes.
func (p *parser) parsePostfix() (Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().Type {
		case DOT:
			dot := p.next()
			name, err := p.expect(IDENT, "field name expected after '.'")
			if err != nil {
				return nil, err
			}
			e = &FieldExpr{nodePos: at(dot), Obj: e, Name: name.Lexeme}
		case LBRACKET:
			br := p.next()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET, "']' expected"); err != nil {
				return nil, err
			}
			e = &IndexExpr{nodePos: at(br), Obj: e, Key: key}
		case LPAREN:
			name, ok := callableName(e)
			if !ok {
				tok := p.peek()
				return nil, syntaxErr(tok.Line, tok.Col, "only named functions can be called")
			}
			p.next()
			var args []Expr
			if p.peek().Type != RPAREN {
				for {
					a, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, a)
					if !p.accept(COMMA) {
						break
					}
				}
			}
			if _, err := p.expect(RPAREN, "')' expected to close call"); err != nil {
				return nil, err
			}
			line, col := e.Pos()
			e = &CallExpr{nodePos: nodePos{Line: line, Col: col}, Name: name, Args: args}
		default:
			return e, nil
		}
	}
}

// callableName flattens a pure name/dotted-name chain ("f", "math.floor",
// "npc.greet") into the dotted string used for callable resolution.
func callableName(e Expr) (string, bool) {
	switch n := e.(type) {
	case *NameExpr:
		return n.Name, true
	case *FieldExpr:
		base, ok := callableName(n.Obj)
		if !ok {
			return "", false
		}
		return base + "." + n.Name, true
	}
	return "", false
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NIL:
		p.next()
		return &NilExpr{nodePos: at(tok)}, nil
	case TRUE:
		p.next()
		return &BoolExpr{nodePos: at(tok), Value: true}, nil
	case FALSE:
		p.next()
		return &BoolExpr{nodePos: at(tok), Value: false}, nil
	case NUMBER:
		p.next()
		return &NumberExpr{nodePos: at(tok), Value: tok.Literal.(float64)}, nil
	case STRING:
		p.next()
		return &StringExpr{nodePos: at(tok), Value: tok.Literal.(string)}, nil
	case IDENT:
		p.next()
		return &NameExpr{nodePos: at(tok), Name: tok.Lexeme}, nil
	case LPAREN:
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, "')' expected"); err != nil {
			return nil, err
		}
		return e, nil
	case LBRACE:
		return p.parseTable()
	}
	return nil, syntaxErr(tok.Line, tok.Col, "unexpected %q in expression", describeToken(tok))
}

func (p *parser) parseTable() (Expr, error) {
	brace := p.next() // '{'
	table := &TableExpr{nodePos: at(brace)}
	for {
		if p.accept(RBRACE) {
			return table, nil
		}
		var item TableItem
		switch {
		case p.peek().Type == IDENT && p.peekN(1).Type == ASSIGN:
			name := p.next()
			p.next() // '='
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item = TableItem{Key: &StringExpr{nodePos: at(name), Value: name.Lexeme}, Value: val}
		case p.peek().Type == LBRACKET:
			p.next()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RBRACKET, "']' expected in table key"); err != nil {
				return nil, err
			}
			if _, err := p.expect(ASSIGN, "'=' expected in table entry"); err != nil {
				return nil, err
			}
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item = TableItem{Key: key, Value: val}
		default:
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item = TableItem{Value: val}
		}
		table.Items = append(table.Items, item)
		if !p.accept(COMMA) && !p.accept(SEMI) {
			if _, err := p.expect(RBRACE, "'}' expected to close table"); err != nil {
				return nil, err
			}
			return table, nil
		}
	}
}
