package calais

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Discriminator values found in the response graph.
const (
	groupTopics    = "topics"
	groupSocialTag = "socialTag"
	groupEntities  = "entities"
)

// Topic is a document-level category.
type Topic struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SocialTag is a folksonomy-style label.
type SocialTag struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Importance    float64 `json:"importance"`
	OriginalValue string  `json:"originalValue"`
}

// Instance is one textual occurrence of an entity in the document.
type Instance struct {
	Detection string `json:"detection"`
	Exact     string `json:"exact"`
	Offset    int    `json:"offset"`
	Length    int    `json:"length,omitempty"`
	Prefix    string `json:"prefix"`
	Suffix    string `json:"suffix"`
}

// Entity is a named entity recognised in the document.
type Entity struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Name       string             `json:"name"`
	CommonName string             `json:"commonName"`
	Relevance  float64            `json:"relevance"`
	Instances  []Instance         `json:"instances"`
	Confidence map[string]float64 `json:"confidence,omitempty"`
}

// Topics are keyed by topic name.
type Topics map[string]Topic

// SocialTags are keyed by tag name.
type SocialTags map[string]SocialTag

// Entities are keyed by entity type, then by entity name.
type Entities map[string]map[string]Entity

// Count returns the number of entities across all types.
func (e Entities) Count() int {
	n := 0
	for _, byName := range e {
		n += len(byName)
	}
	return n
}

// Member is one top-level member of a response, resolved by its discriminator.
// It is one of TopicMember, SocialTagMember, EntityMember or Unrecognized.
type Member interface {
	memberKey() string
}

// TopicMember is a member whose _typeGroup is "topics".
type TopicMember struct {
	Key   string
	Topic Topic
}

// SocialTagMember is a member whose _typeGroup is "socialTag".
type SocialTagMember struct {
	Key string
	Tag SocialTag
}

// EntityMember is a member whose _typeGroup is "entities". Entity.Type holds
// the _type discriminator used for grouping.
type EntityMember struct {
	Key    string
	Entity Entity
}

// Unrecognized covers members without a discriminator, with an unknown one,
// or that are not objects at all. These are expected and carry no error.
// A member with a known discriminator whose fields fail to decode also lands
// here with Err set; the remaining members still route.
type Unrecognized struct {
	Key   string
	Group string
	Err   error
}

func (m TopicMember) memberKey() string     { return m.Key }
func (m SocialTagMember) memberKey() string { return m.Key }
func (m EntityMember) memberKey() string    { return m.Key }
func (m Unrecognized) memberKey() string    { return m.Key }

// number accepts JSON numbers and numeric strings.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", data)
	}
	*n = number(f)
	return nil
}

type discriminator struct {
	TypeGroup string `json:"_typeGroup"`
}

type topicWire struct {
	Name  string `json:"name"`
	Score number `json:"score"`
}

type socialTagWire struct {
	Name          string `json:"name"`
	Importance    number `json:"importance"`
	OriginalValue string `json:"originalValue"`
}

type instanceWire struct {
	Detection string `json:"detection"`
	Exact     string `json:"exact"`
	Offset    number `json:"offset"`
	Length    number `json:"length"`
	Prefix    string `json:"prefix"`
	Suffix    string `json:"suffix"`
}

type entityWire struct {
	Type       string                     `json:"_type"`
	Name       string                     `json:"name"`
	CommonName string                     `json:"commonname"`
	Relevance  number                     `json:"relevance"`
	Instances  []instanceWire             `json:"instances"`
	Confidence map[string]json.RawMessage `json:"confidence"`
}

// decodeMembers splits a response body into its top-level members, in document order.
func decodeMembers(body []byte) ([]Member, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: not an object (%s)", ErrParse, jsonKind(tok))
	}

	var members []Member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		key, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: member %q: %v", ErrParse, key, err)
		}

		members = append(members, decodeMember(key, raw))
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return members, nil
}

// decodeMember inspects the discriminator before decoding the full member.
func decodeMember(key string, raw json.RawMessage) Member {
	var d discriminator
	if err := json.Unmarshal(raw, &d); err != nil {
		return Unrecognized{Key: key}
	}

	malformed := func(err error) Member {
		return Unrecognized{Key: key, Group: d.TypeGroup, Err: err}
	}

	switch d.TypeGroup {
	case groupTopics:
		var w topicWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return malformed(err)
		}
		return TopicMember{Key: key, Topic: Topic{ID: key, Name: w.Name, Score: float64(w.Score)}}

	case groupSocialTag:
		var w socialTagWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return malformed(err)
		}
		return SocialTagMember{Key: key, Tag: SocialTag{
			ID:            key,
			Name:          w.Name,
			Importance:    float64(w.Importance),
			OriginalValue: w.OriginalValue,
		}}

	case groupEntities:
		var w entityWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return malformed(err)
		}
		return EntityMember{Key: key, Entity: w.toEntity(key)}

	default:
		return Unrecognized{Key: key, Group: d.TypeGroup}
	}
}

func (w entityWire) toEntity(key string) Entity {
	e := Entity{
		ID:         key,
		Type:       w.Type,
		Name:       w.Name,
		CommonName: w.CommonName,
		Relevance:  float64(w.Relevance),
		Instances:  make([]Instance, 0, len(w.Instances)),
	}

	for _, in := range w.Instances {
		e.Instances = append(e.Instances, Instance{
			Detection: in.Detection,
			Exact:     in.Exact,
			Offset:    int(in.Offset),
			Length:    int(in.Length),
			Prefix:    in.Prefix,
			Suffix:    in.Suffix,
		})
	}

	// confidence values that are not numeric (e.g. "resultype":"system") are skipped
	for k, raw := range w.Confidence {
		var n number
		if err := json.Unmarshal(raw, &n); err != nil {
			continue
		}
		if e.Confidence == nil {
			e.Confidence = make(map[string]float64)
		}
		e.Confidence[k] = float64(n)
	}

	return e
}

func jsonKind(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "array"
		}
		return string(v)
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", tok)
	}
}

// collections is the parsed state swapped into the client after a successful parse.
type collections struct {
	topics     Topics
	socialTags SocialTags
	entities   Entities
}

func newCollections() collections {
	return collections{
		topics:     make(Topics),
		socialTags: make(SocialTags),
		entities:   make(Entities),
	}
}

// route folds members into fresh collections. Later members win on key collisions.
func route(members []Member) collections {
	out := newCollections()
	for _, m := range members {
		switch m := m.(type) {
		case TopicMember:
			out.topics[m.Topic.Name] = m.Topic
		case SocialTagMember:
			out.socialTags[m.Tag.Name] = m.Tag
		case EntityMember:
			byName, ok := out.entities[m.Entity.Type]
			if !ok {
				byName = make(map[string]Entity)
				out.entities[m.Entity.Type] = byName
			}
			byName[m.Entity.Name] = m.Entity
		case Unrecognized:
		}
	}
	return out
}
