package paramstore

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Block is one parsed "name { key value ... subblock { ... } }" node from
// a controls file. Reading into Controls only needs a handful of named
// blocks (general, discretization, solver, piso, diffusion, transport,
// turbulence); any other top-level block, prepare, decomposition and
// refinement included, is parsed but has no keys enrolled, so its keys
// are logged as UNKNOWN, never an error.
type Block struct {
	Name     string
	Entries  []Entry
	Children []*Block
}

// Entry is one "key value..." line inside a block, tokens already split
// on whitespace. A list entry ("key N { v1 ... vN }") keeps its braces
// and count in Tokens verbatim; callers that enroll lists parse Tokens
// themselves.
type Entry struct {
	Key    string
	Tokens []string
}

type token struct {
	text string
	line int
}

// Parse tokenizes and parses a controls file into its top-level blocks.
// Grammar: file := block*; block := NAME '{' (entry|block)* '}'; entry :=
// KEY token+, where the value tokens are whatever follows the key on its
// own source line, except a list literal ("N { v1 v2 ... }") which may
// span multiple lines and is captured up to its matching '}'.
func Parse(r io.Reader) ([]*Block, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var blocks []*Block
	for !p.done() {
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func tokenize(r io.Reader) ([]token, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	var toks []token
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx] // '#' starts a comment to end of line
		}
		line = strings.ReplaceAll(line, "{", " { ")
		line = strings.ReplaceAll(line, "}", " } ")
		for _, f := range strings.Fields(line) {
			toks = append(toks, token{text: f, line: lineNo})
		}
	}
	return toks, sc.Err()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.done() {
		return token{}
	}
	return p.toks[p.pos]
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) parseBlock() (*Block, error) {
	name := p.next()
	if name.text == "" {
		return nil, fmt.Errorf("paramstore: unexpected end of input, expected a block name")
	}
	if brace := p.next(); brace.text != "{" {
		return nil, fmt.Errorf("paramstore: line %d: expected '{' after block name %q", brace.line, name.text)
	}
	b := &Block{Name: name.text}
	for {
		if p.done() {
			return nil, fmt.Errorf("paramstore: unterminated block %q", name.text)
		}
		if p.peek().text == "}" {
			p.next()
			return b, nil
		}
		key := p.next()
		if p.peek().text == "{" {
			// NAME '{' starts a sub-block: rewind and recurse.
			p.pos--
			p.toks[p.pos] = key
			child, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			b.Children = append(b.Children, child)
			continue
		}
		tokens := p.collectEntryTokens(key.line)
		b.Entries = append(b.Entries, Entry{Key: key.text, Tokens: tokens})
	}
}

// collectEntryTokens gathers every value token that belongs to the entry
// started on sourceLine: everything still on that same line, plus — if a
// list literal opens before the line ends — everything up through its
// matching '}', however many lines that spans.
func (p *parser) collectEntryTokens(sourceLine int) []string {
	var out []string
	depth := 0
	for !p.done() {
		t := p.peek()
		if depth == 0 && t.line != sourceLine {
			break
		}
		if t.text == "}" {
			if depth == 0 {
				break
			}
			depth--
		} else if t.text == "{" {
			depth++
		}
		out = append(out, p.next().text)
		if depth == 0 && out[len(out)-1] == "}" {
			break
		}
	}
	return out
}

// Bind walks b's entries into table and recurses into child blocks whose
// name matches a key in children, so a caller can write:
//
//	Bind(block, generalTable, map[string]*Table{"turbulence": turbTable})
func Bind(b *Block, table *Table, children map[string]*Table) error {
	for _, e := range b.Entries {
		if err := table.Set(e.Key, e.Tokens); err != nil {
			return err
		}
	}
	for _, child := range b.Children {
		if ct, ok := children[child.Name]; ok {
			if err := Bind(child, ct, nil); err != nil {
				return err
			}
		}
	}
	return nil
}
