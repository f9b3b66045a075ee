// Package parser splits a shell line into a Pipeline (commands joined by
// pipes, with redirections and an optional background flag) or a
// Conditional (if/then/else/fi), per the two-layer grammar: a conditional
// layer that recognizes "if ... then ... [else ...] fi", and a pipeline
// layer beneath it that handles "|", "<", ">", ">>", "&" and simple
// quoting.
package parser

import (
	"fmt"
	"strings"
)

// Command is a single parsed command: its argument vector after
// tokenization and glob expansion, plus optional input/output
// redirections.
type Command struct {
	Argv    []string
	Infile  string
	Outfile string
	Append  bool
}

// Pipeline is a non-empty ordered sequence of Commands sharing a single
// background flag.
type Pipeline struct {
	Commands   []Command
	Background bool
}

// Conditional is "if Condition then Then [else Else] fi", where Condition,
// Then and Else are raw lines for recursive parsing.
type Conditional struct {
	Condition string
	Then      string
	Else      string // empty if no else block
}

// Node is either a *Pipeline or a *Conditional.
type Node interface{}

// Globber expands a single wildcard token against the current directory,
// returning the token unchanged (as the sole element) if it has no
// wildcards or nothing matches.
type Globber func(pattern string) ([]string, error)

// Parse parses one input line into a Node: a Conditional if the first
// word is "if", otherwise a Pipeline. glob may be nil, in which case no
// glob expansion is performed (tokens pass through unchanged).
func Parse(line string, glob Globber) (Node, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return &Pipeline{}, nil
	}
	words := tokenizeWords(line)
	if len(words) > 0 && words[0].text == "if" {
		return parseConditional(line, words, glob)
	}
	return parsePipeline(line, words, glob)
}

// parseConditional implements the conditional layer. It deliberately does
// not replicate the source's naive find_keyword substring search: a
// nested "if" anywhere before the matching "then"/"else"/"fi" is rejected
// as a parse error, since the core grammar supports no nesting.
func parseConditional(line string, words []word, glob Globber) (Node, error) {
	if containsBackground(words) {
		return nil, fmt.Errorf("ushell: parse error: '&' is not supported on a conditional line")
	}

	// words[0] is "if". Find "then", rejecting nested "if" before it.
	thenIdx := -1
	for i := 1; i < len(words); i++ {
		switch words[i].text {
		case "if":
			return nil, fmt.Errorf("ushell: parse error: nested 'if' is not supported")
		case "then":
			thenIdx = i
		}
		if thenIdx >= 0 {
			break
		}
	}
	if thenIdx < 0 {
		return nil, fmt.Errorf("ushell: parse error: missing 'then'")
	}

	condEnd := words[thenIdx].start
	condition := rawSlice(line, words[0].end, condEnd)
	if condition == "" {
		return nil, fmt.Errorf("ushell: parse error: empty condition")
	}

	elseIdx, fiIdx := -1, -1
	for i := thenIdx + 1; i < len(words); i++ {
		switch words[i].text {
		case "if":
			return nil, fmt.Errorf("ushell: parse error: nested 'if' is not supported")
		case "else":
			if elseIdx < 0 && fiIdx < 0 {
				elseIdx = i
			}
		case "fi":
			if fiIdx < 0 {
				fiIdx = i
			}
		}
		if fiIdx >= 0 {
			break
		}
	}
	if fiIdx < 0 {
		return nil, fmt.Errorf("ushell: parse error: missing 'fi'")
	}

	var thenBlock, elseBlock string
	if elseIdx >= 0 && elseIdx < fiIdx {
		thenBlock = rawSlice(line, words[thenIdx].end, words[elseIdx].start)
		elseBlock = rawSlice(line, words[elseIdx].end, words[fiIdx].start)
	} else {
		thenBlock = rawSlice(line, words[thenIdx].end, words[fiIdx].start)
	}
	if thenBlock == "" {
		return nil, fmt.Errorf("ushell: parse error: empty then-block")
	}
	_ = glob // blocks are re-parsed (and globbed) recursively by the caller
	return &Conditional{Condition: condition, Then: thenBlock, Else: elseBlock}, nil
}

func containsBackground(words []word) bool {
	for _, w := range words {
		if w.text == "&" {
			return true
		}
	}
	return false
}

// parsePipeline implements the pipeline layer: trailing "&", "|"-splitting,
// per-segment redirection scanning, and glob expansion.
func parsePipeline(line string, words []word, glob Globber) (Node, error) {
	background := false
	if n := len(words); n > 0 && words[n-1].text == "&" {
		background = true
		words = words[:n-1]
	}
	if len(words) == 0 {
		if background {
			return nil, fmt.Errorf("ushell: parse error: '&' with no command")
		}
		return &Pipeline{}, nil
	}

	segments := splitOnPipe(words)
	p := &Pipeline{Background: background}
	for _, seg := range segments {
		cmd, err := parseSegment(seg, glob)
		if err != nil {
			return nil, err
		}
		if len(cmd.Argv) == 0 {
			return nil, fmt.Errorf("ushell: parse error: empty command in pipeline")
		}
		p.Commands = append(p.Commands, cmd)
	}
	if len(p.Commands) == 0 {
		return nil, fmt.Errorf("ushell: parse error: empty pipeline")
	}
	return p, nil
}

func splitOnPipe(words []word) [][]word {
	var segments [][]word
	var cur []word
	for _, w := range words {
		if w.text == "|" {
			segments = append(segments, cur)
			cur = nil
			continue
		}
		cur = append(cur, w)
	}
	segments = append(segments, cur)
	return segments
}

func parseSegment(words []word, glob Globber) (Command, error) {
	var cmd Command
	for i := 0; i < len(words); i++ {
		switch words[i].text {
		case "<":
			if i+1 >= len(words) {
				return Command{}, fmt.Errorf("ushell: parse error: missing filename after '<'")
			}
			cmd.Infile = words[i+1].text
			i++
		case ">":
			if i+1 >= len(words) {
				return Command{}, fmt.Errorf("ushell: parse error: missing filename after '>'")
			}
			cmd.Outfile = words[i+1].text
			cmd.Append = false
			i++
		case ">>":
			if i+1 >= len(words) {
				return Command{}, fmt.Errorf("ushell: parse error: missing filename after '>>'")
			}
			cmd.Outfile = words[i+1].text
			cmd.Append = true
			i++
		default:
			if glob != nil {
				expanded, err := glob(words[i].text)
				if err != nil {
					return Command{}, err
				}
				cmd.Argv = append(cmd.Argv, expanded...)
			} else {
				cmd.Argv = append(cmd.Argv, words[i].text)
			}
		}
	}
	return cmd, nil
}
