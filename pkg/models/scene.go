package models

import "fmt"

// ResolveConnections returns a copy of conns whose denormalized endpoint
// fields are filled from the current icon list. Connections referencing a
// missing icon keep their stored snapshot.
func ResolveConnections(icons []Icon, conns []Connection) []Connection {
	byID := make(map[string]Icon, len(icons))
	for _, ic := range icons {
		byID[ic.ID] = ic
	}

	out := make([]Connection, len(conns))
	for i, c := range conns {
		if from, ok := byID[c.From]; ok {
			c.FromPos = from.Position
			c.FromName = from.Name
		}
		if to, ok := byID[c.To]; ok {
			c.ToPos = to.Position
			c.ToName = to.Name
		}
		out[i] = c
	}
	return out
}

// ValidateScene checks the structural rules of a diagram: icon ids are
// unique and non-empty, icon types come from the catalog and are placeable,
// and every connection links two distinct icons of the same scene.
func ValidateScene(icons []Icon, conns []Connection) error {
	ids := make(map[string]struct{}, len(icons))
	for i, ic := range icons {
		if ic.ID == "" {
			return NewValidationError(fmt.Sprintf("icon %d has no id", i), "icons")
		}
		if _, dup := ids[ic.ID]; dup {
			return NewValidationError(fmt.Sprintf("duplicate icon id %q", ic.ID), "icons")
		}
		ids[ic.ID] = struct{}{}

		t, ok := LookupIconType(ic.Type)
		if !ok {
			return NewValidationError(fmt.Sprintf("icon %q has unknown type %q", ic.ID, ic.Type), "icons")
		}
		if t.IsConnector {
			return NewValidationError(fmt.Sprintf("icon %q: type %q cannot be placed", ic.ID, ic.Type), "icons")
		}
		if err := ic.Position.check(); err != nil {
			return NewValidationError(fmt.Sprintf("icon %q: %v", ic.ID, err), "icons")
		}
	}

	connIDs := make(map[string]struct{}, len(conns))
	for i, c := range conns {
		if c.ID == "" {
			return NewValidationError(fmt.Sprintf("connection %d has no id", i), "connections")
		}
		if _, dup := connIDs[c.ID]; dup {
			return NewValidationError(fmt.Sprintf("duplicate connection id %q", c.ID), "connections")
		}
		connIDs[c.ID] = struct{}{}

		if _, ok := ids[c.From]; !ok {
			return NewValidationError(fmt.Sprintf("connection %q references unknown icon %q", c.ID, c.From), "connections")
		}
		if _, ok := ids[c.To]; !ok {
			return NewValidationError(fmt.Sprintf("connection %q references unknown icon %q", c.ID, c.To), "connections")
		}
		if c.From == c.To {
			return NewValidationError(fmt.Sprintf("connection %q links icon %q to itself", c.ID, c.From), "connections")
		}
	}
	return nil
}
