package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/omnisearch-dev/omnisearch/internal/refine"
	"github.com/omnisearch-dev/omnisearch/internal/render"
)

// Follow-up round caps per strategy.
const (
	expandRoundCap = 3
	narrowRoundCap = 2
	pivotRoundCap  = 1
)

// commandLoop reads input after a round until something decides the
// session's next move. It returns follow-up rounds to queue, or done
// (end loop, keep results), or quit (discard everything).
func (s *Session) commandLoop(ctx context.Context, round *Round) (followups []pendingRound, done, quit bool) {
	for {
		s.printf("%s ", s.styles.Prompt.Render(">"))
		line, ok := s.readLine()
		if !ok {
			// Input exhausted: finish cleanly with what we have.
			return nil, true, false
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			followups, done, quit, handled := s.dispatch(round, line)
			if handled {
				return followups, done, quit
			}
			continue
		}

		// Numeric selection against the displayed suggestions; any
		// other text becomes a literal refinement term.
		if selected := s.selectTerms(round, line); len(selected) > 0 {
			s.lastSelection = selected
			strategy := s.promptStrategy()
			return s.buildFollowups(round, selected, strategy), false, false
		}

		return []pendingRound{{
			query: round.Query + " " + line,
			depth: round.Depth + 1,
		}}, false, false
	}
}

// dispatch handles a "/"-prefixed command. handled=false means the
// loop keeps prompting (informational commands).
func (s *Session) dispatch(round *Round, line string) (followups []pendingRound, done, quit, handled bool) {
	fields := strings.Fields(line)
	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	arg := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch command {
	case "done", "finish":
		return nil, true, false, true

	case "quit", "exit":
		return nil, false, true, true

	case "add":
		if arg == "" {
			s.warn("usage: /add <term>")
			return nil, false, false, false
		}
		return []pendingRound{{query: round.Query + " " + arg, depth: round.Depth + 1}}, false, false, true

	case "query":
		if arg == "" {
			s.warn("usage: /query <query>")
			return nil, false, false, false
		}
		return []pendingRound{{query: arg, depth: 0}}, false, false, true

	case "expand", "narrow", "pivot":
		if len(s.lastSelection) == 0 {
			s.warn("select suggestion numbers first (e.g. 1,3-5)")
			return nil, false, false, false
		}
		return s.buildFollowups(round, s.lastSelection, refine.ParseStrategy(command)), false, false, true

	case "results":
		s.showResults()
		return nil, false, false, false

	case "export":
		s.export()
		if s.exportEnds {
			return nil, true, false, true
		}
		return nil, false, false, false

	case "history":
		s.showHistory()
		return nil, false, false, false

	case "help":
		s.showHelp()
		return nil, false, false, false

	default:
		s.warn("unknown command: /" + command + " (try /help)")
		return nil, false, false, false
	}
}

// selectTerms resolves a selection expression to suggestion terms,
// empty when the input is not a usable selection.
func (s *Session) selectTerms(round *Round, line string) []string {
	indexes := refine.ParseSelection(line, len(round.Suggestions))
	terms := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		terms = append(terms, round.Suggestions[idx-1].Term)
	}
	return terms
}

// promptStrategy asks which strategy to apply to a selection,
// defaulting to expand.
func (s *Session) promptStrategy() refine.Strategy {
	s.printf("%s ", s.styles.Prompt.Render("Strategy (expand/narrow/pivot) [expand]:"))
	line, _ := s.readLine()
	return refine.ParseStrategy(line)
}

// buildFollowups turns selected terms into queued rounds, capped per
// strategy.
func (s *Session) buildFollowups(round *Round, terms []string, strategy refine.Strategy) []pendingRound {
	queries := refine.BuildRefinedQueries(round.Query, terms, strategy)

	limit := expandRoundCap
	switch strategy {
	case refine.StrategyNarrow:
		limit = narrowRoundCap
	case refine.StrategyPivot:
		limit = pivotRoundCap
	}
	if len(queries) > limit {
		queries = queries[:limit]
	}

	followups := make([]pendingRound, len(queries))
	for i, q := range queries {
		followups[i] = pendingRound{query: q, depth: round.Depth + 1}
	}
	return followups
}

// showResults prints the session-wide top results, freshly rescored
// against the original initial query.
func (s *Session) showResults() {
	report := s.finalReport()
	results := report.Results
	if len(results) > resultsLimit {
		results = results[:resultsLimit]
	}
	s.printf("%s\n", s.styles.Header.Render(
		fmt.Sprintf("Top %d of %d (scored against %q):", len(results), report.TotalResults, s.originalQuery)))
	for i, r := range results {
		s.printf("%2d. %s %s\n    %s\n", i+1,
			s.styles.Score.Render(fmt.Sprintf("%.2f", r.Score)),
			s.styles.Title.Render(r.Title),
			s.styles.URL.Render(r.URL))
	}
}

// export renders the final report and prints the document.
func (s *Session) export() {
	report := s.finalReport()
	switch s.renderOpts.Format {
	case render.FormatJSON:
		doc, err := render.JSON(report)
		if err != nil {
			s.warn("export failed: " + err.Error())
			return
		}
		s.printf("%s\n", doc)
	default:
		s.printf("%s", render.Markdown(report, s.renderOpts))
	}
}

func (s *Session) showHistory() {
	for i, round := range s.history {
		s.printf("%2d. %s %s\n", i+1,
			round.Query,
			s.styles.Caption.Render(fmt.Sprintf("(depth %d, %d results)", round.Depth, len(round.Results))))
	}
}

func (s *Session) showHelp() {
	help := []string{
		"/done, /finish       end the session and return accumulated results",
		"/quit, /exit         terminate immediately, discarding results",
		"/add <term>          search again with the term appended",
		"/query <q>           start over with a new query",
		"/expand /narrow /pivot   refine using the last selection",
		"/results             show top accumulated results",
		"/export              render and print the final document",
		"/history             list executed rounds",
		"1,3-5                select suggestions, then pick a strategy",
		"<words>              append literal terms to the current query",
	}
	for _, line := range help {
		s.printf("  %s\n", line)
	}
}

func (s *Session) warn(msg string) {
	s.printf("%s\n", s.styles.Warning.Render(msg))
}
