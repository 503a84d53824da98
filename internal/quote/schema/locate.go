package schema

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"quote-service/internal/quote/model"
)

// Criteria is the structured query for the row locator. TargetRow, when
// in range, short-circuits scoring entirely.
type Criteria struct {
	ItemName  string
	Brand     string
	Model     string
	Spec      string
	TargetRow int
}

// Params tunes the locator. WeakNameLen is the inherited heuristic
// boundary below which a bare name query counts as weak; it is
// configuration, not a hard contract.
type Params struct {
	MaxCandidates int
	MaxScanRows   int
	WeakNameLen   int
}

func (p Params) withDefaults() Params {
	if p.MaxCandidates <= 0 {
		p.MaxCandidates = 5
	}
	if p.MaxScanRows <= 0 {
		p.MaxScanRows = 3000
	}
	if p.WeakNameLen <= 0 {
		p.WeakNameLen = 2
	}
	return p
}

// Scoring tiers per field. Model mismatches disqualify the row outright;
// spec mismatches disqualify only when a model criterion was also given.
const (
	nameExact  = 1200
	nameSubst  = 350
	nameSuper  = 200
	brandExact = 800
	brandSubst = 250
	modelExact = 1600
	modelSubst = 500
	specExact  = 900
	specSubst  = 250
)

// Locate scores every data row against the supplied criteria and returns
// the top candidates. Ambiguous is raised only for weak queries (short
// bare name, or brand without name) that still matched more than one row.
func Locate(grid [][]any, c Criteria, p Params) model.LocateResult {
	p = p.withDefaults()

	if c.TargetRow > 1 && c.TargetRow <= len(grid) {
		return model.LocateResult{
			Candidates: []model.CandidateRow{{Row: c.TargetRow, Score: 0}},
		}
	}
	if len(grid) < 2 {
		return model.LocateResult{Candidates: []model.CandidateRow{}}
	}

	cols := Build(grid).ItemCols
	qName := NormalizeHeader(c.ItemName)
	qBrand := NormalizeHeader(c.Brand)
	qModel := NormalizeHeader(c.Model)
	qSpec := NormalizeHeader(c.Spec)
	if qName == "" && qBrand == "" && qModel == "" && qSpec == "" {
		return model.LocateResult{Candidates: []model.CandidateRow{}}
	}

	weakOnly := false
	switch {
	case qModel != "" || qSpec != "":
		// model/spec queries are never weak
	case qName != "" && runeLen(qName) <= p.WeakNameLen && qBrand == "":
		weakOnly = true
	case qBrand != "" && qName == "":
		weakOnly = true
	}

	type scored struct {
		row   int
		score int
	}
	var hits []scored
	for i := 1; i < len(grid); i++ {
		rowNum := i + 1
		if rowNum > p.MaxScanRows {
			break
		}
		row := grid[i]

		nh := normCell(row, cols.Name)
		bh := normCell(row, cols.Brand)
		mh := normCell(row, cols.Model)
		sh := normCell(row, cols.Spec)

		score := 0
		if qName != "" && nh != "" {
			switch {
			case qName == nh:
				score += nameExact
			case strings.Contains(nh, qName):
				score += nameSubst + min2(runeLen(qName), 50)
			case strings.Contains(qName, nh):
				score += nameSuper + min2(runeLen(nh), 50)
			}
		}
		if qBrand != "" && bh != "" {
			switch {
			case qBrand == bh:
				score += brandExact
			case strings.Contains(bh, qBrand) || strings.Contains(qBrand, bh):
				score += brandSubst + min2(runeLen(qBrand), 30)
			}
		}
		if qModel != "" && mh != "" {
			switch {
			case qModel == mh:
				score += modelExact
			case strings.Contains(mh, qModel) || strings.Contains(qModel, mh):
				score += modelSubst + min2(runeLen(qModel), 30)
			default:
				score = 0
			}
		}
		if qSpec != "" && sh != "" {
			switch {
			case qSpec == sh:
				score += specExact
			case strings.Contains(sh, qSpec) || strings.Contains(qSpec, sh):
				score += specSubst + min2(runeLen(qSpec), 30)
			default:
				if qModel != "" {
					score = 0
				}
			}
		}

		if score > 0 {
			hits = append(hits, scored{row: rowNum, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if len(hits) > p.MaxCandidates {
		hits = hits[:p.MaxCandidates]
	}

	candidates := make([]model.CandidateRow, 0, len(hits))
	for _, h := range hits {
		row := grid[h.row-1]
		candidates = append(candidates, model.CandidateRow{
			Row:   h.row,
			Score: float64(h.score),
			Name:  rawCell(row, cols.Name),
			Brand: rawCell(row, cols.Brand),
			Model: rawCell(row, cols.Model),
			Spec:  rawCell(row, cols.Spec),
		})
	}

	return model.LocateResult{
		Candidates: candidates,
		Ambiguous:  weakOnly && len(candidates) > 1,
	}
}

// FindCandidateRows scans name (then brand/spec haystack) for the raw
// message text and returns up to maxCandidates row numbers, exact name
// match winning outright. Used for the lightweight prompt context.
func FindCandidateRows(grid [][]any, query string, maxCandidates int) []int {
	if len(grid) < 2 {
		return nil
	}
	q := NormalizeHeader(query)
	if q == "" {
		return nil
	}
	cols := Build(grid).ItemCols
	if cols.Name < 0 {
		return nil
	}

	type scored struct {
		row   int
		score int
	}
	var hits []scored
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		name := CellText(cellAt(row, cols.Name))
		if name == "" {
			continue
		}
		nh := NormalizeHeader(name)
		if q == nh {
			return []int{i + 1}
		}
		score := 0
		if strings.Contains(nh, q) {
			score = 1000 + runeLen(q)
		} else {
			hay := NormalizeHeader(strings.Join([]string{
				name,
				CellText(cellAt(row, cols.Brand)),
				CellText(cellAt(row, cols.Spec)),
			}, "|"))
			if !strings.Contains(hay, q) {
				continue
			}
			score = 100 + min2(runeLen(q), 20)
		}
		hits = append(hits, scored{row: i + 1, score: score})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })
	if len(hits) > maxCandidates {
		hits = hits[:maxCandidates]
	}
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.row
	}
	return out
}

var rowRefRe = regexp.MustCompile(`第?\s*(\d+)\s*行`)

// ExtractRowFromMessage pulls an explicit "第N行" reference out of a chat
// message, 0 when absent.
func ExtractRowFromMessage(message string) int {
	m := rowRefRe.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func cellAt(row []any, idx int) any {
	if idx < 0 || idx >= len(row) {
		return nil
	}
	return row[idx]
}

func normCell(row []any, idx int) string {
	return NormalizeHeader(CellText(cellAt(row, idx)))
}

func rawCell(row []any, idx int) any {
	return CellValue(cellAt(row, idx))
}

func runeLen(s string) int { return len([]rune(s)) }
