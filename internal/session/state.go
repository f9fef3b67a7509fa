package session

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// StorageKey is the fixed key the session record is persisted under.
	StorageKey = "airaware_v2"

	// DefaultCategory is selected when nothing else has been chosen.
	DefaultCategory = "weight-loss"
)

// ExerciseSet is a set of completed exercise ids.
type ExerciseSet map[string]struct{}

func (s ExerciseSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// IDs returns the members in sorted order.
func (s ExerciseSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s ExerciseSet) clone() ExerciseSet {
	out := make(ExerciseSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// State is the persisted per-user session. Empty CurrentCity and
// LastVisitDate mean "absent".
type State struct {
	CurrentCity   string
	Completed     ExerciseSet
	LastVisitDate string
	Category      string
}

// Defaults returns the state used when nothing has been persisted.
func Defaults() State {
	return State{
		Completed: ExerciseSet{},
		Category:  DefaultCategory,
	}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Completed = s.Completed.clone()
	return s
}

// record is the wire shape of State.
type record struct {
	CurrentCity        *string  `json:"currentCity"`
	CompletedExercises []string `json:"completedExercises"`
	LastVisitDate      *string  `json:"lastVisitDate"`
	Category           string   `json:"category"`
}

// Encode serializes s to its persisted JSON form.
func Encode(s State) ([]byte, error) {
	rec := record{
		CompletedExercises: s.Completed.IDs(),
		Category:           s.Category,
	}
	if s.CurrentCity != "" {
		rec.CurrentCity = &s.CurrentCity
	}
	if s.LastVisitDate != "" {
		rec.LastVisitDate = &s.LastVisitDate
	}
	return json.Marshal(rec)
}

// Decode merges a persisted record over Defaults. Missing or null fields keep
// their default. On a malformed record Decode returns Defaults and the error.
func Decode(data []byte) (State, error) {
	rec := record{Category: DefaultCategory}
	if err := json.Unmarshal(data, &rec); err != nil {
		return Defaults(), fmt.Errorf("decode session record: %w", err)
	}

	s := Defaults()
	if rec.CurrentCity != nil {
		s.CurrentCity = *rec.CurrentCity
	}
	if rec.LastVisitDate != nil {
		s.LastVisitDate = *rec.LastVisitDate
	}
	if rec.Category != "" {
		s.Category = rec.Category
	}
	for _, id := range rec.CompletedExercises {
		s.Completed[id] = struct{}{}
	}
	return s, nil
}
