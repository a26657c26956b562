package domain

import "sort"

// AssociationOutcome reports what a single add or remove did to a ticket relationship.
type AssociationOutcome string

const (
	OutcomeAdded             AssociationOutcome = "added"
	OutcomeAlreadyAssociated AssociationOutcome = "already associated"
	OutcomeRemoved           AssociationOutcome = "removed"
	OutcomeNotAssociated     AssociationOutcome = "not associated"
)

// Changed reports whether the outcome altered membership.
func (o AssociationOutcome) Changed() bool {
	return o == OutcomeAdded || o == OutcomeRemoved
}

// AssociationChange is one applied step of a batch edit.
type AssociationChange struct {
	ID      int64
	Outcome AssociationOutcome
}

// Association is the set of entity ids linked to a ticket on one many-to-many
// relationship. The zero value and nil are both empty sets.
type Association struct {
	members map[int64]struct{}
}

// NewAssociation builds a set from ids; duplicates collapse.
func NewAssociation(ids ...int64) *Association {
	a := &Association{members: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.members[id] = struct{}{}
	}
	return a
}

// Has reports membership.
func (a *Association) Has(id int64) bool {
	if a == nil {
		return false
	}
	_, ok := a.members[id]
	return ok
}

// Len returns the number of members.
func (a *Association) Len() int {
	if a == nil {
		return 0
	}
	return len(a.members)
}

// IDs returns members in ascending order.
func (a *Association) IDs() []int64 {
	ids := make([]int64, 0, a.Len())
	if a == nil {
		return ids
	}
	for id := range a.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Add moves id from absent to present. A present id is left untouched and
// reported as OutcomeAlreadyAssociated.
func (a *Association) Add(id int64) AssociationOutcome {
	if a.Has(id) {
		return OutcomeAlreadyAssociated
	}
	if a.members == nil {
		a.members = make(map[int64]struct{})
	}
	a.members[id] = struct{}{}
	return OutcomeAdded
}

// Remove moves id from present to absent. An absent id is reported as
// OutcomeNotAssociated.
func (a *Association) Remove(id int64) AssociationOutcome {
	if !a.Has(id) {
		return OutcomeNotAssociated
	}
	delete(a.members, id)
	return OutcomeRemoved
}

// ApplyBatch applies every removal and then every addition. Ids for which
// exists returns false are skipped without an entry in the result. The
// returned changes are in application order.
func (a *Association) ApplyBatch(removeIDs, addIDs []int64, exists func(int64) bool) []AssociationChange {
	changes := make([]AssociationChange, 0, len(removeIDs)+len(addIDs))
	for _, id := range removeIDs {
		if exists != nil && !exists(id) {
			continue
		}
		changes = append(changes, AssociationChange{ID: id, Outcome: a.Remove(id)})
	}
	for _, id := range addIDs {
		if exists != nil && !exists(id) {
			continue
		}
		changes = append(changes, AssociationChange{ID: id, Outcome: a.Add(id)})
	}
	return changes
}

// Diff returns the ids that must be inserted and deleted to turn before into after.
func Diff(before, after *Association) (added, removed []int64) {
	for _, id := range after.IDs() {
		if !before.Has(id) {
			added = append(added, id)
		}
	}
	for _, id := range before.IDs() {
		if !after.Has(id) {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// Clone returns an independent copy.
func (a *Association) Clone() *Association {
	return NewAssociation(a.IDs()...)
}
