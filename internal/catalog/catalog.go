// Package catalog holds the static program (ixtisas) lookup: seat quotas and
// subject-group membership. The catalog is an immutable value constructed once
// and injected into services, so tests can swap in alternate plans.
package catalog

import (
	"sort"

	"github.com/verba-edu/scholarship-api/internal/models"
)

// ProgramCatalog maps program identifiers to their definitions.
type ProgramCatalog struct {
	programs map[int]models.ProgramDefinition
}

// New builds a catalog from the given definitions.
func New(programs []models.ProgramDefinition) *ProgramCatalog {
	byID := make(map[int]models.ProgramDefinition, len(programs))
	for _, p := range programs {
		byID[p.ID] = p
	}
	return &ProgramCatalog{programs: byID}
}

// Default returns the institutional admission plan.
func Default() *ProgramCatalog {
	return New([]models.ProgramDefinition{
		{ID: 250104, Name: "IT", FreeSeats: 20, PayableSeats: 10, Group: models.GroupRI},
		{ID: 250108, Name: "CE", FreeSeats: 20, PayableSeats: 30, Group: models.GroupRI},
		{ID: 250107, Name: "CS", FreeSeats: 20, PayableSeats: 30, Group: models.GroupRI},
		{ID: 250103, Name: "PAM", FreeSeats: 30, PayableSeats: 20, Group: models.GroupRI},
		{ID: 250110, Name: "DA", FreeSeats: 20, PayableSeats: 10, Group: models.GroupRI},
		{ID: 250101, Name: "PE", FreeSeats: 30, PayableSeats: 30, Group: models.GroupRK},
		{ID: 250102, Name: "CE", FreeSeats: 50, PayableSeats: 50, Group: models.GroupRK},
		{ID: 250109, Name: "Finance", FreeSeats: 20, PayableSeats: 30, Group: models.GroupTwo},
		{ID: 250111, Name: "BM", FreeSeats: 20, PayableSeats: 30, Group: models.GroupTwo},
	})
}

// Lookup returns the program definition and whether it is known. Unknown
// programs degrade to a zero-seat definition with no subject group so
// malformed imports never abort a batch.
func (c *ProgramCatalog) Lookup(programID int) (models.ProgramDefinition, bool) {
	p, ok := c.programs[programID]
	if !ok {
		return models.ProgramDefinition{ID: programID, Name: "Unknown"}, false
	}
	return p, true
}

// List returns all known programs ordered by identifier.
func (c *ProgramCatalog) List() []models.ProgramDefinition {
	out := make([]models.ProgramDefinition, 0, len(c.programs))
	for _, p := range c.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
