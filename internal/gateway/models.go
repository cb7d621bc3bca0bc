package gateway

import (
	"log"
	"sort"
)

// DefaultMaxTokens is the completion budget for models not in the catalog.
const DefaultMaxTokens = 2048

// Model describes a supported model.
type Model struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MaxTokens int    `json:"maxTokens"`
}

var catalog = map[string]Model{
	"gpt-4o-mini":  {ID: "gpt-4o-mini", Name: "GPT-4o mini", MaxTokens: 4096},
	"gpt-4.1-mini": {ID: "gpt-4.1-mini", Name: "GPT-4.1 mini", MaxTokens: 4096},
	"gpt-4.1-nano": {ID: "gpt-4.1-nano", Name: "GPT-4.1 nano", MaxTokens: 2048},
	"gpt-5-mini":   {ID: "gpt-5-mini", Name: "GPT-5 mini", MaxTokens: 8192},
}

// Models returns the catalog sorted by ID.
func Models() []Model {
	out := make([]Model, 0, len(catalog))
	for _, m := range catalog {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupModel returns the catalog entry for id. Unknown models are allowed:
// a warning is logged and a default entry returned.
func LookupModel(id string) Model {
	if m, ok := catalog[id]; ok {
		return m
	}
	log.Printf("WARNING: gateway: model %q not in catalog, using %d max tokens", id, DefaultMaxTokens)
	return Model{ID: id, Name: id, MaxTokens: DefaultMaxTokens}
}

// KnownModel reports whether id is in the catalog.
func KnownModel(id string) bool {
	_, ok := catalog[id]
	return ok
}
