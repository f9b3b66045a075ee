package parser

import "testing"

func noGlob(p string) ([]string, error) { return []string{p}, nil }

func TestSimplePipeline(t *testing.T) {
	n, err := Parse("echo a | cat | wc -c", noGlob)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := n.(*Pipeline)
	if !ok {
		t.Fatalf("expected *Pipeline, got %T", n)
	}
	if len(p.Commands) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(p.Commands))
	}
	if p.Commands[0].Argv[0] != "echo" || p.Commands[0].Argv[1] != "a" {
		t.Fatalf("unexpected argv: %v", p.Commands[0].Argv)
	}
}

func TestRedirections(t *testing.T) {
	n, err := Parse("cat < in.txt > out.txt", noGlob)
	if err != nil {
		t.Fatal(err)
	}
	p := n.(*Pipeline)
	c := p.Commands[0]
	if c.Infile != "in.txt" || c.Outfile != "out.txt" || c.Append {
		t.Fatalf("unexpected command: %+v", c)
	}
}

func TestLaterRedirectionWins(t *testing.T) {
	n, _ := Parse("cat > a.txt >> b.txt", noGlob)
	c := n.(*Pipeline).Commands[0]
	if c.Outfile != "b.txt" || !c.Append {
		t.Fatalf("unexpected: %+v", c)
	}
}

func TestBackground(t *testing.T) {
	n, err := Parse("sleep 30 &", noGlob)
	if err != nil {
		t.Fatal(err)
	}
	p := n.(*Pipeline)
	if !p.Background {
		t.Fatalf("expected background flag")
	}
	if len(p.Commands[0].Argv) != 2 {
		t.Fatalf("unexpected argv: %v", p.Commands[0].Argv)
	}
}

func TestQuoting(t *testing.T) {
	n, _ := Parse(`echo "hello world"`, noGlob)
	c := n.(*Pipeline).Commands[0]
	if len(c.Argv) != 2 || c.Argv[1] != "hello world" {
		t.Fatalf("unexpected argv: %v", c.Argv)
	}
}

func TestUnterminatedQuoteEndsAtEOF(t *testing.T) {
	n, _ := Parse(`echo "hello`, noGlob)
	c := n.(*Pipeline).Commands[0]
	if c.Argv[1] != "hello" {
		t.Fatalf("unexpected argv: %v", c.Argv)
	}
}

func TestConditional(t *testing.T) {
	n, err := Parse("if echo x then echo yes else echo no fi", noGlob)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := n.(*Conditional)
	if !ok {
		t.Fatalf("expected *Conditional, got %T", n)
	}
	if c.Condition != "echo x" || c.Then != "echo yes" || c.Else != "echo no" {
		t.Fatalf("unexpected conditional: %+v", c)
	}
}

func TestConditionalMissingThenIsError(t *testing.T) {
	if _, err := Parse("if echo x fi", noGlob); err == nil {
		t.Fatal("expected error for missing then")
	}
}

func TestConditionalMissingFiIsError(t *testing.T) {
	if _, err := Parse("if echo x then echo y", noGlob); err == nil {
		t.Fatal("expected error for missing fi")
	}
}

func TestNestedIfIsError(t *testing.T) {
	if _, err := Parse("if if echo x then echo y fi then echo z fi", noGlob); err == nil {
		t.Fatal("expected error for nested if")
	}
}

func TestBackgroundOnConditionalIsError(t *testing.T) {
	if _, err := Parse("if echo x then echo y fi &", noGlob); err == nil {
		t.Fatal("expected error for '&' on conditional")
	}
}

func TestGlobExpansionAppliedPerToken(t *testing.T) {
	glob := func(p string) ([]string, error) {
		if p == "*.txt" {
			return []string{"a.txt", "b.txt"}, nil
		}
		return []string{p}, nil
	}
	n, err := Parse("echo *.txt", glob)
	if err != nil {
		t.Fatal(err)
	}
	c := n.(*Pipeline).Commands[0]
	if len(c.Argv) != 3 || c.Argv[1] != "a.txt" || c.Argv[2] != "b.txt" {
		t.Fatalf("unexpected argv: %v", c.Argv)
	}
}
