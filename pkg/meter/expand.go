package meter

import (
	"fmt"

	"github.com/oisee/z80-asm-meter/pkg/syntax"
)

// maxExpanded bounds block expansion when no LoC limit is set.
const maxExpanded = 1 << 20

type statement struct {
	line int
	text string
}

type block struct {
	count int
	body  []statement
}

// expand replicates repeat blocks, innermost first. A block left open at
// the end of input is closed there. A closing directive with no open block
// is kept as an ordinary statement.
func expand(stmts []statement, rep syntax.Repetition, limit int) ([]statement, error) {
	if limit <= 0 {
		limit = maxExpanded
	}
	stack := []*block{{count: 1}}

	pop := func() error {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := stack[len(stack)-1]
		if len(top.body) == 0 {
			return nil
		}
		if top.count > (limit-len(parent.body))/len(top.body) {
			return fmt.Errorf("%w: repeat blocks expand beyond %d statements", ErrTooManyLoC, limit)
		}
		for i := 0; i < top.count; i++ {
			parent.body = append(parent.body, top.body...)
		}
		return nil
	}

	for _, s := range stmts {
		if n, ok := rep.Open(s.text); ok {
			stack = append(stack, &block{count: n})
			continue
		}
		if len(stack) > 1 && rep.Close(s.text) {
			if err := pop(); err != nil {
				return nil, err
			}
			continue
		}
		top := stack[len(stack)-1]
		top.body = append(top.body, s)
	}
	for len(stack) > 1 {
		if err := pop(); err != nil {
			return nil, err
		}
	}
	return stack[0].body, nil
}
