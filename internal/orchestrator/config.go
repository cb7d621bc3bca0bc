package orchestrator

import (
	"github.com/dusk-indust/scenariogen/internal/bdd"
	"github.com/dusk-indust/scenariogen/internal/persona"
)

// Config holds the request-independent settings of a Pipeline.
type Config struct {
	// Roster is the persona set used in multi_agent mode. The zero value
	// selects persona.Default().
	Roster persona.Roster

	// SingleRoster is the persona set used in single mode. The zero value
	// selects persona.Single().
	SingleRoster persona.Roster
}

// rosterFor returns the roster a request in mode runs with: the configured
// override when set, otherwise persona.ForMode.
func (c Config) rosterFor(mode bdd.Mode) persona.Roster {
	override := c.SingleRoster
	if mode == bdd.ModeMultiAgent {
		override = c.Roster
	}
	if override.Len() > 0 {
		return override
	}
	return persona.ForMode(mode)
}
