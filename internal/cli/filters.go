package cli

import (
	"regexp"

	"github.com/vburojevic/logscope/internal/filter"
)

// buildFilters compiles regex and where filters for list commands. The result
// is nil when no predicate was given.
func buildFilters(patternStr string, exclude []string, where []string) (*filter.Pipeline, error) {
	var pattern *regexp.Regexp
	if patternStr != "" {
		var err error
		pattern, err = regexp.Compile(patternStr)
		if err != nil {
			return nil, err
		}
	}

	var excludePatterns []*regexp.Regexp
	for _, excl := range exclude {
		re, err := regexp.Compile(excl)
		if err != nil {
			return nil, err
		}
		excludePatterns = append(excludePatterns, re)
	}

	var whereFilter *filter.WhereFilter
	if len(where) > 0 {
		wf, err := filter.NewWhereFilter(where)
		if err != nil {
			return nil, err
		}
		whereFilter = wf
	}

	return filter.NewPipeline(pattern, excludePatterns, whereFilter), nil
}

// listFilter combines the pipeline with type include/exclude lists
func listFilter(pipeline *filter.Pipeline, types, excludeTypes []string) filter.Filter {
	chain := filter.NewChain()
	if pipeline != nil {
		chain.Add(pipeline)
	}
	if len(types) > 0 {
		chain.Add(filter.NewTypeFilter(types))
	}
	if len(excludeTypes) > 0 {
		chain.Add(filter.NewExcludeTypeFilter(excludeTypes))
	}
	if chain.Len() == 0 {
		return nil
	}
	return chain
}
