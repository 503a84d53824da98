package schema

import (
	"sort"

	"quote-service/internal/quote/model"
)

// brandCutoff is the fixed similarity floor a row's brand must clear
// when a brand filter is supplied; below it the row is excluded outright.
const brandCutoff = 70

// DefaultFuzzyThreshold is the inclusion floor for fuzzy matches.
const DefaultFuzzyThreshold = 80

// FuzzyMatch finds rows whose model, name or spec textually resemble the
// query, by continuous similarity only, without disqualification rules. The
// best similarity across the three fields (model first on ties) becomes
// the row's score; rows at or above threshold are returned sorted by
// score descending, capped at maxResults. The result feeds the decision
// oracle's "relevant rows" context.
func FuzzyMatch(grid [][]any, query, brandFilter string, threshold float64, maxResults int) []model.CandidateRow {
	if len(grid) < 2 || NormalizeHeader(query) == "" {
		return nil
	}
	cols := Build(grid).ItemCols

	var results []model.CandidateRow
	for i := 1; i < len(grid); i++ {
		row := grid[i]

		name := CellText(cellAt(row, cols.Name))
		brand := CellText(cellAt(row, cols.Brand))
		mdl := CellText(cellAt(row, cols.Model))
		spec := CellText(cellAt(row, cols.Spec))

		if brandFilter != "" && Similarity(brandFilter, brand) < brandCutoff {
			continue
		}

		best := 0.0
		field := ""
		for _, f := range []struct{ label, value string }{
			{"型号", mdl},
			{"产品名称", name},
			{"规格", spec},
		} {
			if f.value == "" {
				continue
			}
			if s := Similarity(query, f.value); s > best {
				best = s
				field = f.label
			}
		}

		if best >= threshold {
			results = append(results, model.CandidateRow{
				Row:        i + 1,
				Score:      best,
				MatchField: field,
				Name:       nonEmpty(name),
				Brand:      nonEmpty(brand),
				Model:      nonEmpty(mdl),
				Spec:       nonEmpty(spec),
			})
		}
	}

	sort.SliceStable(results, func(a, b int) bool { return results[a].Score > results[b].Score })
	if maxResults > 0 && len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
