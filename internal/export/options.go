package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fmuoria/resume-shortlisting/internal/models"
)

const (
	SortByScore = "score"
	SortByName  = "name"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Options controls which candidates are exported and in what order
type Options struct {
	MinScore float64
	SortBy   string
	Order    string
}

// Validate rejects unknown sort keys and orders
func (o Options) Validate() error {
	switch o.SortBy {
	case "", SortByScore, SortByName:
	default:
		return fmt.Errorf("sort must be %q or %q", SortByScore, SortByName)
	}
	switch o.Order {
	case "", OrderAsc, OrderDesc:
	default:
		return fmt.Errorf("order must be %q or %q", OrderAsc, OrderDesc)
	}
	if o.MinScore < 0 || o.MinScore > 10 {
		return fmt.Errorf("min_score must be between 0 and 10")
	}
	return nil
}

// Apply returns a copy of result keeping candidates scoring at least MinScore,
// sorted by SortBy (score descending by default). TotalCandidates is unchanged.
func Apply(result models.ShortlistResult, opts Options) models.ShortlistResult {
	kept := make([]models.CandidateRecord, 0, len(result.Candidates))
	for _, c := range result.Candidates {
		if c.Score >= opts.MinScore {
			kept = append(kept, c)
		}
	}

	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortByScore
	}
	ascending := opts.Order == OrderAsc

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if sortBy == SortByName {
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if ascending {
				return an < bn
			}
			return an > bn
		}
		if ascending {
			return a.Score < b.Score
		}
		return a.Score > b.Score
	})

	result.Candidates = kept
	return result
}

// Stats summarises the exported candidates
type Stats struct {
	Shortlisted  int
	AverageScore float64
	HighestScore float64
	LowestScore  float64
}

// Summarize computes the summary figures shown in exports
func Summarize(candidates []models.CandidateRecord) Stats {
	if len(candidates) == 0 {
		return Stats{}
	}

	s := Stats{
		Shortlisted:  len(candidates),
		HighestScore: candidates[0].Score,
		LowestScore:  candidates[0].Score,
	}
	var total float64
	for _, c := range candidates {
		total += c.Score
		s.HighestScore = max(s.HighestScore, c.Score)
		s.LowestScore = min(s.LowestScore, c.Score)
	}
	s.AverageScore = total / float64(len(candidates))
	return s
}
