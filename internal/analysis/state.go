package analysis

import "DealVault/internal/model"

// State is the store's snapshot: saved analyses in insertion order plus the
// id of the selected one. The selection is resolved by lookup on every read,
// so deleting a record can never leave a dangling selection.
type State struct {
	Analyses   []model.SavedAnalysis
	SelectedID string
}

// Selected returns the selected analysis, if the selection still resolves.
func (s State) Selected() (model.SavedAnalysis, bool) {
	if s.SelectedID == "" {
		return model.SavedAnalysis{}, false
	}
	if i := s.index(s.SelectedID); i >= 0 {
		return s.Analyses[i], true
	}
	return model.SavedAnalysis{}, false
}

func (s State) index(id string) int {
	for i, a := range s.Analyses {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// clone returns a deep copy safe to hand to callers.
func (s State) clone() State {
	out := State{SelectedID: s.SelectedID}
	if s.Analyses != nil {
		out.Analyses = make([]model.SavedAnalysis, len(s.Analyses))
		for i, a := range s.Analyses {
			out.Analyses[i] = a.Clone()
		}
	}
	return out
}

// action is the closed set of state transitions.
type action interface {
	isAction()
}

type saveAction struct{ analysis model.SavedAnalysis }
type loadAction struct{ id string }
type deleteAction struct{ id string }
type setAnalysesAction struct{ analyses []model.SavedAnalysis }

func (saveAction) isAction()        {}
func (loadAction) isAction()        {}
func (deleteAction) isAction()      {}
func (setAnalysesAction) isAction() {}

// reduce applies a to s and returns the next state. s is never modified;
// slices are copied before they change.
func reduce(s State, a action) State {
	switch a := a.(type) {
	case saveAction:
		analyses := make([]model.SavedAnalysis, len(s.Analyses), len(s.Analyses)+1)
		copy(analyses, s.Analyses)
		return State{
			Analyses:   append(analyses, a.analysis),
			SelectedID: a.analysis.ID,
		}

	case loadAction:
		next := s
		next.SelectedID = ""
		if s.index(a.id) >= 0 {
			next.SelectedID = a.id
		}
		return next

	case deleteAction:
		i := s.index(a.id)
		if i < 0 {
			return s
		}
		analyses := make([]model.SavedAnalysis, 0, len(s.Analyses)-1)
		analyses = append(analyses, s.Analyses[:i]...)
		analyses = append(analyses, s.Analyses[i+1:]...)
		next := State{Analyses: analyses, SelectedID: s.SelectedID}
		if s.SelectedID == a.id {
			next.SelectedID = ""
		}
		return next

	case setAnalysesAction:
		next := State{Analyses: a.analyses}
		if next.index(s.SelectedID) >= 0 {
			next.SelectedID = s.SelectedID
		}
		return next
	}
	return s
}
