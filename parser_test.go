package luaengine

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) Stmt {
	t.Helper()
	stmts, errs := ParseProgram(src)
	if len(errs) > 0 {
		t.Fatalf("parse errors for %q: %v", src, errs)
	}
	if len(stmts) != 1 {
		t.Fatalf("%q: want 1 statement, got %d", src, len(stmts))
	}
	return stmts[0]
}

func Test_Parser_Assignments(t *testing.T) {
	st := parseOne(t, "x = 1 + 2").(*AssignStmt)
	if st.Target.(*NameExpr).Name != "x" {
		t.Fatalf("bad target: %#v", st.Target)
	}
	if _, ok := st.Value.(*BinaryExpr); !ok {
		t.Fatalf("bad value: %#v", st.Value)
	}

	st = parseOne(t, "t.hp = 3").(*AssignStmt)
	if _, ok := st.Target.(*FieldExpr); !ok {
		t.Fatalf("bad field target: %#v", st.Target)
	}

	st = parseOne(t, `t["hp"] = 3`).(*AssignStmt)
	if _, ok := st.Target.(*IndexExpr); !ok {
		t.Fatalf("bad index target: %#v", st.Target)
	}
}

func Test_Parser_IfChainStructure(t *testing.T) {
	st := parseOne(t, "if a then\n x = 1\nelseif b then\n x = 2\nelse\n x = 3\nend").(*IfStmt)
	if len(st.Branches) != 3 {
		t.Fatalf("want 3 branches, got %d", len(st.Branches))
	}
	if st.Branches[0].Cond == nil || st.Branches[1].Cond == nil {
		t.Fatal("conditioned branches lost their conditions")
	}
	if st.Branches[2].Cond != nil {
		t.Fatal("else branch must have nil condition")
	}
}

func Test_Parser_NestedBlocksKeepDepth(t *testing.T) {
	st := parseOne(t, `
if a then
  while b do
    x = 1
  end
else
  x = 2
end`).(*IfStmt)
	if len(st.Branches) != 2 {
		t.Fatalf("inner 'end' confused the outer chain: %d branches", len(st.Branches))
	}
	if _, ok := st.Branches[0].Body[0].(*WhileStmt); !ok {
		t.Fatalf("inner while lost: %#v", st.Branches[0].Body)
	}
}

func Test_Parser_ForWithAndWithoutStep(t *testing.T) {
	st := parseOne(t, "for i = 1, 10 do\n x = i\nend").(*ForStmt)
	if st.Var != "i" || st.Step != nil {
		t.Fatalf("bad for: %#v", st)
	}
	st = parseOne(t, "for i = 10, 1, -1 do\n x = i\nend").(*ForStmt)
	if st.Step == nil {
		t.Fatal("step lost")
	}
}

func Test_Parser_FunctionDefinition(t *testing.T) {
	st := parseOne(t, "function greet(name, mood)\n return name\nend").(*FuncStmt)
	if st.Name != "greet" || len(st.Params) != 2 || st.Params[1] != "mood" {
		t.Fatalf("bad function: %#v", st)
	}
	if _, ok := st.Body[0].(*ReturnStmt); !ok {
		t.Fatalf("bad body: %#v", st.Body)
	}
}

func Test_Parser_BareReturnKeepsNextLine(t *testing.T) {
	st := parseOne(t, "function f()\n return\n x = 1\nend").(*FuncStmt)
	if len(st.Body) != 2 {
		t.Fatalf("want 2 body statements, got %d", len(st.Body))
	}
	ret, ok := st.Body[0].(*ReturnStmt)
	if !ok || ret.Value != nil {
		t.Fatalf("bare return swallowed the next statement: %#v", st.Body[0])
	}
	if _, ok := st.Body[1].(*AssignStmt); !ok {
		t.Fatalf("statement after bare return lost: %#v", st.Body[1])
	}

	// A value on the return line is still captured.
	st = parseOne(t, "function g()\n return 5\nend").(*FuncStmt)
	if st.Body[0].(*ReturnStmt).Value == nil {
		t.Fatal("same-line return value lost")
	}
}

func Test_Parser_DottedCallNames(t *testing.T) {
	st := parseOne(t, "x = math.floor(1.5)").(*AssignStmt)
	call, ok := st.Value.(*CallExpr)
	if !ok || call.Name != "math.floor" {
		t.Fatalf("bad call: %#v", st.Value)
	}
}

func Test_Parser_SemicolonsSplitStatements(t *testing.T) {
	stmts, errs := ParseProgram("a = 1; b = 2; print(a)")
	if len(errs) > 0 || len(stmts) != 3 {
		t.Fatalf("want 3 statements, got %d (errs %v)", len(stmts), errs)
	}
}

func Test_Parser_RecoversAtNextLine(t *testing.T) {
	stmts, errs := ParseProgram("a = 1\nb = = 2\nc = 3")
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	if len(stmts) != 2 {
		t.Fatalf("want 2 surviving statements, got %d", len(stmts))
	}
}

func Test_Parser_RecoversAtSemicolon(t *testing.T) {
	// Siblings after a ';' on the error's own line are still attempted.
	stmts, errs := ParseProgram("a = 1; b = = 2; c = 3")
	if len(errs) != 1 {
		t.Fatalf("want 1 error, got %v", errs)
	}
	if len(stmts) != 2 {
		t.Fatalf("want 2 surviving statements, got %d", len(stmts))
	}
	if stmts[1].(*AssignStmt).Target.(*NameExpr).Name != "c" {
		t.Fatalf("wrong surviving statement: %#v", stmts[1])
	}
}

func Test_Parser_UnclosedBlockFailsWholeScript(t *testing.T) {
	stmts, errs := ParseProgram("x = 1\nwhile true do\n y = 2\nz = 3")
	if len(errs) != 1 || !strings.Contains(errs[0].Msg, "'end' expected") {
		t.Fatalf("want unclosed-block error, got %v", errs)
	}
	// Only the statement before the unbounded construct survives.
	if len(stmts) != 1 {
		t.Fatalf("want 1 statement, got %d", len(stmts))
	}
}

func Test_Parser_ErrorMessages(t *testing.T) {
	cases := map[string]string{
		"if x\n y = 1\nend":          "'then' expected",
		"while x\n y = 1\nend":       "'do' expected",
		"for = 1, 2 do\nend":         "loop variable expected",
		"function (a)\nend":          "function name expected",
		"break":                      "'break' outside a loop",
		"x = }":                      "unexpected",
		"5 = x":                      "cannot assign",
	}
	for src, want := range cases {
		_, errs := ParseProgram(src)
		if len(errs) == 0 {
			t.Fatalf("%q: want error", src)
		}
		if !strings.Contains(errs[0].Msg, want) {
			t.Fatalf("%q: want %q in %q", src, want, errs[0].Msg)
		}
	}
}

func Test_Parser_TableConstructorForms(t *testing.T) {
	st := parseOne(t, `t = {1, 2, name = "a", ["k"] = 3}`).(*AssignStmt)
	table := st.Value.(*TableExpr)
	if len(table.Items) != 4 {
		t.Fatalf("want 4 items, got %d", len(table.Items))
	}
	if table.Items[0].Key != nil || table.Items[1].Key != nil {
		t.Fatal("array items must have nil keys")
	}
	if table.Items[2].Key == nil || table.Items[3].Key == nil {
		t.Fatal("keyed items lost their keys")
	}
}

func Test_Parser_ExpressionEntryPoint(t *testing.T) {
	e, err := ParseExpression("1 + 2 * 3")
	if err != nil {
		t.Fatalf("ParseExpression: %v", err)
	}
	root := e.(*BinaryExpr)
	if root.Op != PLUS {
		t.Fatalf("precedence wrong: %#v", root)
	}
	if _, err := ParseExpression("1 + 2 junk"); err == nil {
		t.Fatal("want trailing-token error")
	}
}

func Test_Parser_PositionsOnNodes(t *testing.T) {
	stmts, _ := ParseProgram("\n\n  x = 1")
	line, col := stmts[0].Pos()
	if line != 3 || col != 3 {
		t.Fatalf("want 3:3, got %d:%d", line, col)
	}
}
