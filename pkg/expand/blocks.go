package expand

import (
	"regexp"
	"strings"

	"github.com/dmitrymomot/notifycenter/pkg/tokens"
)

var blockTagRegex = regexp.MustCompile(`\{(if|elseif)(\s[^{}]*)?\}|\{(else|endif)\}`)

type node interface {
	render(sb *strings.Builder, toks tokens.Tokens)
}

type textNode string

func (n textNode) render(sb *strings.Builder, _ tokens.Tokens) {
	sb.WriteString(string(n))
}

type branch struct {
	cond string
	body []node
}

type ifNode struct {
	branches []branch
	elseBody []node
}

// render evaluates branches in order; nested blocks are only evaluated when
// their enclosing branch is chosen.
func (n *ifNode) render(sb *strings.Builder, toks tokens.Tokens) {
	for _, b := range n.branches {
		if evalCondition(b.cond, toks) {
			renderNodes(sb, b.body, toks)
			return
		}
	}
	renderNodes(sb, n.elseBody, toks)
}

// unwrap returns the content of the first branch; the alternatives of a block
// that was never closed are dropped.
func (n *ifNode) unwrap() []node {
	return n.branches[0].body
}

type frame struct {
	node   *ifNode
	inElse bool
}

func (f *frame) add(n node) {
	if f.inElse {
		f.node.elseBody = append(f.node.elseBody, n)
		return
	}
	last := &f.node.branches[len(f.node.branches)-1]
	last.body = append(last.body, n)
}

// parseBlocks builds the block tree. Stray elseif/else/endif tags are dropped and
// unclosed blocks are unwrapped into their parent.
func parseBlocks(text string) []node {
	var (
		root  []node
		stack []*frame
	)

	add := func(n node) {
		if len(stack) == 0 {
			root = append(root, n)
			return
		}
		stack[len(stack)-1].add(n)
	}

	pos := 0
	for _, m := range blockTagRegex.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > pos {
			add(textNode(text[pos:m[0]]))
		}
		pos = m[1]

		kind := ""
		cond := ""
		switch {
		case m[2] >= 0:
			kind = text[m[2]:m[3]]
			if m[4] >= 0 {
				cond = strings.TrimSpace(text[m[4]:m[5]])
			}
		case m[6] >= 0:
			kind = text[m[6]:m[7]]
		}

		switch kind {
		case "if":
			stack = append(stack, &frame{node: &ifNode{branches: []branch{{cond: cond}}}})
		case "elseif":
			if len(stack) == 0 || stack[len(stack)-1].inElse {
				continue
			}
			top := stack[len(stack)-1]
			top.node.branches = append(top.node.branches, branch{cond: cond})
		case "else":
			if len(stack) == 0 || stack[len(stack)-1].inElse {
				continue
			}
			stack[len(stack)-1].inElse = true
		case "endif":
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			add(top.node)
		}
	}
	if pos < len(text) {
		add(textNode(text[pos:]))
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range top.node.unwrap() {
			add(n)
		}
	}

	return root
}

func renderNodes(sb *strings.Builder, nodes []node, toks tokens.Tokens) {
	for _, n := range nodes {
		n.render(sb, toks)
	}
}

func renderBlocks(text string, toks tokens.Tokens) string {
	if !blockTagRegex.MatchString(text) {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text))
	renderNodes(&sb, parseBlocks(text), toks)
	return sb.String()
}
