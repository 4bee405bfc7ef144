// Package metadata computes the next metadata document of a drawing and its
// provenance map. Keys present in the provenance map were set by a person;
// absent keys are system sourced.
package metadata

import (
	"sort"
	"strings"

	types "github.com/yungbote/drawhub-backend/internal/domain"
)

const SourceHuman = "HUMAN"

type Result struct {
	Metadata types.Metadata
	Sources  types.Metadata

	// Marked lists keys newly or again attributed to a human, sorted.
	Marked []string
	// Removed lists provenance entries dropped with their keys, sorted.
	Removed []string
}

// Changed reports whether the result differs from the inputs it was computed from.
func (r Result) Changed(oldMeta types.Metadata) bool {
	return len(r.Removed) > 0 || !r.Metadata.Equal(oldMeta)
}

// Replace treats next as the complete new metadata document. Keys whose value
// changed or that are new become HUMAN; keys missing from next are deleted
// together with their provenance; untouched keys keep their prior source.
func Replace(oldMeta, oldSources, next types.Metadata) Result {
	res := Result{
		Metadata: next.Clone(),
		Sources:  types.Metadata{},
	}
	for k, v := range oldSources {
		if _, kept := next[k]; kept {
			res.Sources[k] = v
		} else {
			res.Removed = append(res.Removed, k)
		}
	}
	for k, v := range next {
		prev, existed := oldMeta[k]
		if !existed || prev != v {
			res.Sources[k] = SourceHuman
			res.Marked = append(res.Marked, k)
		}
	}
	sort.Strings(res.Marked)
	sort.Strings(res.Removed)
	return res
}

// Merge applies incoming column values on top of the existing document.
// Values that are blank after trimming are skipped; the rest overwrite or add
// the key (trimmed) and mark it HUMAN. Keys not mentioned stay as they were.
func Merge(oldMeta, oldSources types.Metadata, incoming map[string]string) Result {
	res := Result{
		Metadata: oldMeta.Clone(),
		Sources:  oldSources.Clone(),
	}
	for k, raw := range incoming {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		res.Metadata[k] = v
		res.Sources[k] = SourceHuman
		res.Marked = append(res.Marked, k)
	}
	sort.Strings(res.Marked)
	return res
}
