package rule

import (
	"runtime"

	"golang.org/x/sync/errgroup"

	"bslint/internal/token"
)

// TokenFinding is what a TokenCheck reports for one token.
type TokenFinding struct {
	Loc  Location
	Opts []AddOption
}

// Scanner walks tokens and lines instead of the tree.
//
// Token sees default-channel tokens, Hidden sees whitespace, newlines and
// comments, Line sees every source line (1-based). TokenCheck is a pure
// per-token predicate over the full stream; it runs in parallel chunks and must
// not touch rule state.
type Scanner struct {
	Token      func(ctx *Context, tok token.Token)
	Hidden     func(ctx *Context, tok token.Token)
	Line       func(ctx *Context, line int, text string)
	TokenCheck func(ctx *Context, tok token.Token) (TokenFinding, bool)
	// ChunkSize is the number of tokens per parallel task; 0 means 512.
	ChunkSize int
}

func (s *Scanner) Check(ctx *Context) {
	toks := ctx.Unit.Tokens()
	if s.Token != nil || s.Hidden != nil {
		for _, tok := range toks {
			switch {
			case tok.Kind == token.EOF:
			case tok.Channel == token.ChannelHidden:
				if s.Hidden != nil {
					s.Hidden(ctx, tok)
				}
			case s.Token != nil:
				s.Token(ctx, tok)
			}
		}
	}
	if s.Line != nil {
		for i, line := range ctx.Unit.Lines() {
			s.Line(ctx, i+1, line)
		}
	}
	if s.TokenCheck != nil {
		s.checkParallel(ctx, toks)
	}
}

func (s *Scanner) checkParallel(ctx *Context, toks []token.Token) {
	size := s.ChunkSize
	if size <= 0 {
		size = 512
	}
	chunks := (len(toks) + size - 1) / size
	results := make([][]TokenFinding, chunks)
	// паника в горутине errgroup роняет процесс: ловим её в задаче и
	// поднимаем заново здесь, где её перехватит изоляция правила
	panics := make([]any, chunks)

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < chunks; i++ {
		lo := i * size
		hi := min(lo+size, len(toks))
		g.Go(func() error {
			defer func() {
				if v := recover(); v != nil {
					panics[i] = v
				}
			}()
			var found []TokenFinding
			for _, tok := range toks[lo:hi] {
				if f, ok := s.TokenCheck(ctx, tok); ok {
					found = append(found, f)
				}
			}
			results[i] = found
			return nil
		})
	}
	_ = g.Wait()
	for _, v := range panics {
		if v != nil {
			panic(v)
		}
	}

	for _, chunk := range results {
		for _, f := range chunk {
			ctx.Add(f.Loc, f.Opts...)
		}
	}
}
