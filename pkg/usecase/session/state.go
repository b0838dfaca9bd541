package session

import (
	"github.com/m-mizutani/whisker/pkg/model"
)

// Phase is the state of the session state machine
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseLoading    Phase = "loading"
	PhaseDisplaying Phase = "displaying"
	PhaseError      Phase = "error"
)

// State is the whole session state. Values are treated as immutable: Reduce
// returns a new State and never modifies the ban list or catalog it was given.
type State struct {
	Phase Phase

	Catalog      []*model.Breed
	CatalogReady bool
	CatalogErr   error

	Bans    *model.BanList
	Current *model.DisplayRecord
	Loading bool
	Err     error
}

// NewState returns the state of a fresh session
func NewState() State {
	return State{
		Phase: PhaseIdle,
		Bans:  model.NewBanList(),
	}
}

// CatalogPending reports whether the catalog load has not finished yet
func (s State) CatalogPending() bool {
	return !s.CatalogReady && s.CatalogErr == nil
}

// Event is an input of Reduce
type Event interface {
	isEvent()
}

type CatalogLoaded struct{ Breeds []*model.Breed }
type CatalogFailed struct{ Err error }
type DiscoverStarted struct{}
type SelectionSucceeded struct{ Record *model.DisplayRecord }
type SelectionFailed struct{ Err error }
type ErrorDismissed struct{}
type Banned struct{ Token string }
type Unbanned struct{ Token string }

func (CatalogLoaded) isEvent()      {}
func (CatalogFailed) isEvent()      {}
func (DiscoverStarted) isEvent()    {}
func (SelectionSucceeded) isEvent() {}
func (SelectionFailed) isEvent()    {}
func (ErrorDismissed) isEvent()     {}
func (Banned) isEvent()             {}
func (Unbanned) isEvent()           {}

// Reduce applies ev to s and returns the next state
func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case CatalogLoaded:
		s.Catalog = ev.Breeds
		s.CatalogReady = true
		s.CatalogErr = nil

	case CatalogFailed:
		s.Catalog = nil
		s.CatalogReady = false
		s.CatalogErr = ev.Err

	case DiscoverStarted:
		s.Phase = PhaseLoading
		s.Loading = true
		s.Err = nil

	case SelectionSucceeded:
		s.Phase = PhaseDisplaying
		s.Loading = false
		s.Current = ev.Record
		s.Err = nil

	case SelectionFailed:
		// previous record stays visible
		s.Phase = PhaseError
		s.Loading = false
		s.Err = ev.Err

	case ErrorDismissed:
		if s.Phase == PhaseError {
			s.Err = nil
			s.Phase = PhaseIdle
			if s.Current != nil {
				s.Phase = PhaseDisplaying
			}
		}

	case Banned:
		if !s.Bans.Contains(ev.Token) {
			bans := s.Bans.Clone()
			bans.Add(ev.Token)
			s.Bans = bans
		}

	case Unbanned:
		if s.Bans.Contains(ev.Token) {
			bans := s.Bans.Clone()
			bans.Remove(ev.Token)
			s.Bans = bans
		}
	}

	return s
}
