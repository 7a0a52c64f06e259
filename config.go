package warehouse

import "github.com/driftforge/warehouse/table"

// Config holds global configuration for the table system.
var Config config = config{}

type config struct {
	tableEvents table.TableEvents
}

// SetTableEvents configures the table event callbacks fired on every
// insert/remove/migrate across every Storage in the process.
func (c *config) SetTableEvents(te table.TableEvents) {
	c.tableEvents = te
}
