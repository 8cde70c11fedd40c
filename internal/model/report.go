package model

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/ppiankov/calais/internal/calais"
)

// Report is the rendered annotation of one source document
type Report struct {
	Subject      string     `json:"subject"`              // Document title or file name
	Source       string     `json:"source"`               // File path or URL that was annotated
	ContentType  string     `json:"content_type"`         // Input content type sent to the service
	Language     string     `json:"language"`             // Document language
	DocumentHash string     `json:"document_hash"`        // sha256 of the submitted document
	AnnotatedAt  time.Time  `json:"annotated_at"`         // When the annotation completed
	FetchMeta    *FetchMeta `json:"fetch_meta,omitempty"` // HTTP metadata for URL sources

	Topics     []calais.Topic     `json:"topics"`
	Entities   []EntityGroup      `json:"entities"`
	SocialTags []calais.SocialTag `json:"social_tags"`

	Raw json.RawMessage `json:"raw,omitempty"` // Raw service response, when requested
}

// EntityGroup holds the entities of one type
type EntityGroup struct {
	Type     string          `json:"type"`
	Entities []calais.Entity `json:"entities"`
}

// FetchMeta contains HTTP metadata from fetching a URL source
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// EntityCount returns the number of entities across all groups
func (r *Report) EntityCount() int {
	n := 0
	for _, g := range r.Entities {
		n += len(g.Entities)
	}
	return n
}

// SortedTopics orders topics by descending score, then name
func SortedTopics(topics calais.Topics) []calais.Topic {
	out := make([]calais.Topic, 0, len(topics))
	for _, t := range topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SortedSocialTags orders tags by importance (1 is most important), then name
func SortedSocialTags(tags calais.SocialTags) []calais.SocialTag {
	out := make([]calais.SocialTag, 0, len(tags))
	for _, t := range tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Importance != out[j].Importance {
			return out[i].Importance < out[j].Importance
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// GroupEntities orders entity types by name and entities by descending relevance
func GroupEntities(entities calais.Entities) []EntityGroup {
	types := make([]string, 0, len(entities))
	for typ := range entities {
		types = append(types, typ)
	}
	sort.Strings(types)

	groups := make([]EntityGroup, 0, len(types))
	for _, typ := range types {
		group := EntityGroup{Type: typ}
		for _, e := range entities[typ] {
			group.Entities = append(group.Entities, e)
		}
		sort.Slice(group.Entities, func(i, j int) bool {
			a, b := group.Entities[i], group.Entities[j]
			if a.Relevance != b.Relevance {
				return a.Relevance > b.Relevance
			}
			return a.Name < b.Name
		})
		groups = append(groups, group)
	}
	return groups
}
