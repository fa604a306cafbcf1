package bot

import "fmt"

type symbol uint8

const (
	symEmpty symbol = iota
	symOwn
	symOpp
)

// template is a line fragment matched cell by cell against a line.
type template []symbol

type patternGroup struct {
	weight    int
	templates []template
}

// Templates are written with 'p' for the evaluated side, 't' for a blocking
// opponent piece and '_' for an empty cell.
var rawPatterns = []struct {
	weight    int
	templates []string
}{
	// pairs
	{1, []string{"_pp__", "__pp_", "p_p__", "p__p_", "p___p", "_p_p_", "_p__p", "__p_p", "___pp", "pp___"}},
	// threes blocked on one end
	{2, []string{"tppp__", "tp_pp_", "tp_p_p", "tp__pp", "t_ppp_", "t_pp_p", "t_p_pp", "t__pppt", "t_ppp_t", "__pppt", "_pp_pt", "p_p_pt", "pp__pt", "_ppp_t", "p_pp_t", "pp_p_t"}},
	// open threes
	{4, []string{"_ppp_", "_p_pp_", "_pp_p_"}},
	// fours blocked on one end
	{6, []string{"_ppppt", "tpppp_"}},
	// open fours
	{10, []string{"_pppp_"}},
}

// patternTable is compiled once and shared read-only by every evaluation.
var patternTable = mustCompilePatterns()

func mustCompilePatterns() []patternGroup {
	groups := make([]patternGroup, 0, len(rawPatterns))
	for _, raw := range rawPatterns {
		group := patternGroup{weight: raw.weight}
		for _, s := range raw.templates {
			tmpl, err := compileTemplate(s)
			if err != nil {
				panic(err)
			}
			group.templates = append(group.templates, tmpl)
		}
		groups = append(groups, group)
	}
	return groups
}

func compileTemplate(s string) (template, error) {
	tmpl := make(template, len(s))
	for i, ch := range s {
		switch ch {
		case 'p':
			tmpl[i] = symOwn
		case 't':
			tmpl[i] = symOpp
		case '_':
			tmpl[i] = symEmpty
		default:
			return nil, fmt.Errorf("bot: bad symbol %q in pattern %q", ch, s)
		}
	}
	return tmpl, nil
}

// countMatches counts non-overlapping occurrences of tmpl in line, scanning
// left to right and resuming after the end of each match.
func countMatches(line []symbol, tmpl template) int {
	count := 0
	n, m := len(line), len(tmpl)
	for i := 0; i+m <= n; {
		if matchesAt(line, tmpl, i) {
			count++
			i += m
			continue
		}
		i++
	}
	return count
}

func matchesAt(line []symbol, tmpl template, start int) bool {
	for j, s := range tmpl {
		if line[start+j] != s {
			return false
		}
	}
	return true
}
