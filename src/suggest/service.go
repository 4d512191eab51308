package suggest

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/sajari/fuzzy"
)

// Options tunes the suggestion model.
type Options struct {
	// Depth is the edit distance searched by the model and the ranking cut-off.
	Depth int
	// Threshold is the minimum training count for a candidate.
	Threshold int
	// Max caps the number of suggestions.
	Max int
}

// Service proposes known element paths close to a path that was not found.
type Service struct {
	opts       Options
	model      *fuzzy.Model
	candidates []string
}

// NewService constructs an untrained service.
func NewService(opts Options) *Service {
	if opts.Max <= 0 {
		opts.Max = 3
	}
	if opts.Depth <= 0 {
		opts.Depth = 2
	}
	return &Service{opts: opts, model: newModel(opts)}
}

func newModel(opts Options) *fuzzy.Model {
	model := fuzzy.NewModel()
	model.SetDepth(opts.Depth)
	model.SetThreshold(opts.Threshold)
	return model
}

// Train replaces the known candidates.
func (s *Service) Train(candidates []string) {
	if s == nil {
		return
	}
	s.model = newModel(s.opts)
	s.model.Train(candidates)
	s.candidates = append(s.candidates[:0], candidates...)
}

// Suggest returns up to Max known candidates nearest to query, closest first.
func (s *Service) Suggest(query string) []string {
	if s == nil || len(s.candidates) == 0 {
		return nil
	}
	type candidate struct {
		value string
		dist  int
	}
	seen := map[string]struct{}{}
	var ranked []candidate
	add := func(value string) {
		if value == query {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		ranked = append(ranked, candidate{value: value, dist: levenshtein.ComputeDistance(query, value)})
	}
	for _, value := range s.model.Suggestions(query, false) {
		add(value)
	}
	for _, value := range s.candidates {
		if levenshtein.ComputeDistance(query, value) <= s.opts.Depth {
			add(value)
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].dist == ranked[j].dist {
			return ranked[i].value < ranked[j].value
		}
		return ranked[i].dist < ranked[j].dist
	})
	limit := s.opts.Max
	if len(ranked) < limit {
		limit = len(ranked)
	}
	result := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		result = append(result, ranked[i].value)
	}
	return result
}
