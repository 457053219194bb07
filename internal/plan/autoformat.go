package plan

import (
	"cmp"
	"slices"
	"strings"

	"github.com/listenupapp/tagengine/internal/domain"
	"github.com/listenupapp/tagengine/internal/normalize"
)

// Skip reasons reported by PlanAutoFormat.
const (
	ReasonExistingCollision        = "existing collision"
	ReasonCollisionAfterFormatting = "collision after formatting"
	ReasonEmptyAfterFormatting     = "empty after formatting"
)

// Rename is one planned name change.
type Rename struct {
	ID      string `json:"id"`
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// Skip records a tag the pass left alone and why.
type Skip struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// AutoFormatPlan is the outcome of planning a formatting pass.
type AutoFormatPlan struct {
	Updates []Rename
	Skipped []Skip
}

// PlanAutoFormat decides which tags can take their formatted name without
// creating a case-insensitive duplicate.
//
// Tags are processed by current name ascending (ties by id) so collision
// decisions are the same on every run. A formatted name that matches
// another tag's current name is skipped as an existing collision; one that
// matches a name already planned in this pass is skipped as a collision
// after formatting. Tags whose name is already formatted are neither
// updated nor skipped.
func PlanAutoFormat(tags []*domain.Tag, format normalize.Formatter) AutoFormatPlan {
	ordered := slices.Clone(tags)
	slices.SortFunc(ordered, func(a, b *domain.Tag) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	// Current names by key. Pre-existing duplicates keep every owner.
	current := make(map[string][]string, len(ordered))
	for _, t := range ordered {
		key := t.NameKey()
		current[key] = append(current[key], t.ID)
	}

	reserved := make(map[string]string)
	var out AutoFormatPlan

	for _, t := range ordered {
		formatted := format(t.Name)
		if formatted == t.Name {
			continue
		}

		key := normalize.Name(formatted)
		switch {
		case strings.TrimSpace(formatted) == "":
			out.Skipped = append(out.Skipped, Skip{ID: t.ID, Name: t.Name, Reason: ReasonEmptyAfterFormatting})
		case ownedByOther(current[key], t.ID):
			out.Skipped = append(out.Skipped, Skip{ID: t.ID, Name: t.Name, Reason: ReasonExistingCollision})
		case reserved[key] != "" && reserved[key] != t.ID:
			out.Skipped = append(out.Skipped, Skip{ID: t.ID, Name: t.Name, Reason: ReasonCollisionAfterFormatting})
		default:
			reserved[key] = t.ID
			out.Updates = append(out.Updates, Rename{ID: t.ID, OldName: t.Name, NewName: formatted})
		}
	}

	return out
}

func ownedByOther(owners []string, id string) bool {
	for _, o := range owners {
		if o != id {
			return true
		}
	}
	return false
}
