// Package session drives the interactive refinement loop: repeated
// fetch rounds whose queries are derived from user commands and
// suggestion selections, accumulating a deduplicated session-wide
// result set. Control flow is an explicit queue of pending rounds
// rather than recursion, so deep refinement sessions cannot grow the
// call stack.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	oserrors "github.com/omnisearch-dev/omnisearch/internal/errors"
	"github.com/omnisearch-dev/omnisearch/internal/pipeline"
	"github.com/omnisearch-dev/omnisearch/internal/provider"
	"github.com/omnisearch-dev/omnisearch/internal/refine"
	"github.com/omnisearch-dev/omnisearch/internal/render"
	"github.com/omnisearch-dev/omnisearch/internal/ui"
)

// ErrQuit signals a clean /quit termination. The caller should treat
// it as a normal exit, not a failure.
var ErrQuit = errors.New("session terminated by user")

// DefaultMaxDepth is the refinement depth at which the session asks
// for confirmation before going deeper.
const DefaultMaxDepth = 3

// displayLimit bounds the fresh results shown per round.
const displayLimit = 10

// resultsLimit bounds the /results listing.
const resultsLimit = 20

// Round records one executed search round.
type Round struct {
	Query       string
	Depth       int
	Results     []provider.Result
	Suggestions []refine.Suggestion
}

// pendingRound is a queued search the state machine has yet to run.
type pendingRound struct {
	query string
	depth int
}

// Session owns the accumulated result set and round history of one
// interactive search.
type Session struct {
	pipe       *pipeline.Pipeline
	refiner    *refine.Refiner
	in         *bufio.Scanner
	out        io.Writer
	styles     ui.Styles
	logger     *slog.Logger
	maxDepth   int
	searchOpts provider.Options
	renderOpts render.Options
	exportEnds bool

	originalQuery string
	accumulated   []provider.Result
	providersSeen map[string]struct{}
	errsSeen      []*oserrors.ProviderError
	history       []Round
	lastSelection []string
}

// Option configures a Session.
type Option func(*Session)

// WithInput sets the command input stream (default os.Stdin is wired
// by the CLI).
func WithInput(r io.Reader) Option {
	return func(s *Session) { s.in = bufio.NewScanner(r) }
}

// WithOutput sets the display stream.
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// WithStyles sets the display styles.
func WithStyles(styles ui.Styles) Option {
	return func(s *Session) { s.styles = styles }
}

// WithMaxDepth sets the confirmation depth.
func WithMaxDepth(depth int) Option {
	return func(s *Session) {
		if depth > 0 {
			s.maxDepth = depth
		}
	}
}

// WithSearchOptions sets the provider options used for every round.
func WithSearchOptions(opts provider.Options) Option {
	return func(s *Session) { s.searchOpts = opts }
}

// WithRenderOptions sets the /export rendering options.
func WithRenderOptions(opts render.Options) Option {
	return func(s *Session) { s.renderOpts = opts }
}

// WithRefiner overrides the default suggestion refiner.
func WithRefiner(r *refine.Refiner) Option {
	return func(s *Session) { s.refiner = r }
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithExportEnding makes /export terminate the session after
// printing, which is how the CLI wires it.
func WithExportEnding() Option {
	return func(s *Session) { s.exportEnds = true }
}

// New creates a Session over a pipeline.
func New(pipe *pipeline.Pipeline, opts ...Option) *Session {
	s := &Session{
		pipe:          pipe,
		refiner:       refine.New(),
		in:            bufio.NewScanner(strings.NewReader("")),
		out:           io.Discard,
		styles:        ui.NoColorStyles(),
		logger:        slog.Default(),
		maxDepth:      DefaultMaxDepth,
		renderOpts:    render.DefaultOptions(),
		providersSeen: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the executed rounds in order.
func (s *Session) History() []Round {
	return s.history
}

// Run executes the session starting from the initial query and
// returns the final report: the accumulated set rescored against the
// original query. A /quit returns ErrQuit; running out of input ends
// the session like /done.
func (s *Session) Run(ctx context.Context, query string) (*pipeline.Report, error) {
	s.originalQuery = strings.TrimSpace(query)
	if s.originalQuery == "" {
		return nil, oserrors.ValidationError("empty initial query", nil)
	}

	queue := []pendingRound{{query: s.originalQuery, depth: 0}}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		if next.depth >= s.maxDepth && !s.confirmDeeper(next) {
			// Refusal ends this branch; accumulated results stay.
			continue
		}

		round, err := s.executeRound(ctx, next)
		if err != nil {
			return nil, err
		}
		s.displayRound(round)

		followups, done, quit := s.commandLoop(ctx, round)
		if quit {
			return nil, ErrQuit
		}
		if done {
			break
		}
		// Depth-first: follow-ups run before older queued rounds.
		queue = append(followups, queue...)
	}

	return s.finalReport(), nil
}

// executeRound fetches the round's query, merges fresh results into
// the accumulated set, and mines suggestions from the fresh batch
// only.
func (s *Session) executeRound(ctx context.Context, p pendingRound) (*Round, error) {
	s.printf("%s\n", s.styles.Header.Render(fmt.Sprintf("— Searching: %s (depth %d)", p.query, p.depth)))

	agg := s.pipe.Fetch(ctx, p.query, s.searchOpts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, name := range agg.Providers {
		s.providersSeen[name] = struct{}{}
	}
	s.errsSeen = append(s.errsSeen, agg.Errors...)
	for _, perr := range agg.Errors {
		s.printf("%s\n", s.styles.Warning.Render("provider "+perr.Provider+" failed: "+perr.Message))
	}

	// The accumulated set is already deduplicated; concatenating the
	// fresh batch and deduplicating again is O(total) per round.
	s.accumulated = s.pipe.Deduplicate(append(s.accumulated, agg.Results...))

	round := Round{
		Query:       p.query,
		Depth:       p.depth,
		Results:     agg.Results,
		Suggestions: s.refiner.Suggest(p.query, agg.Results),
	}
	s.history = append(s.history, round)
	s.logger.Debug("round executed",
		"query", p.query,
		"depth", p.depth,
		"fresh", len(agg.Results),
		"accumulated", len(s.accumulated))
	return &s.history[len(s.history)-1], nil
}

func (s *Session) displayRound(round *Round) {
	if len(round.Results) == 0 {
		s.printf("%s\n", s.styles.Warning.Render("No results. Enter a new query with /query <q>, or /done to finish."))
		return
	}

	shown := round.Results
	if len(shown) > displayLimit {
		shown = shown[:displayLimit]
	}
	for i, r := range shown {
		s.printf("%2d. %s\n    %s\n", i+1,
			s.styles.Title.Render(r.Title),
			s.styles.URL.Render(r.URL))
		if snippet := render.TruncateWords(r.Snippet, 120); snippet != "" {
			s.printf("    %s\n", s.styles.Snippet.Render(snippet))
		}
	}
	s.printf("%s\n", s.styles.Dim.Render(fmt.Sprintf("(%d fresh, %d accumulated)", len(round.Results), len(s.accumulated))))

	if len(round.Suggestions) > 0 {
		s.printf("%s\n", s.styles.Header.Render("Refinements:"))
		for i, sg := range round.Suggestions {
			s.printf("%2d. %s %s\n", i+1,
				sg.Term,
				s.styles.Caption.Render(fmt.Sprintf("(%.2f)", sg.Score)))
		}
	}
}

// confirmDeeper asks before exceeding the configured depth. Anything
// but an explicit yes refuses.
func (s *Session) confirmDeeper(p pendingRound) bool {
	s.printf("%s ", s.styles.Prompt.Render(
		fmt.Sprintf("Depth %d reached for %q. Continue deeper? [y/N]", s.maxDepth, p.query)))
	line, ok := s.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// finalReport rescores the accumulated set against the original
// query and reports every provider seen across all rounds.
func (s *Session) finalReport() *pipeline.Report {
	providers := make([]string, 0, len(s.providersSeen))
	for name := range s.providersSeen {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return s.pipe.Rescore(s.originalQuery, s.accumulated, providers, s.errsSeen)
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return s.in.Text(), true
}

func (s *Session) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
