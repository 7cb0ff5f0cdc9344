package domain

import "time"

// Suggestion is one item returned by the recommendation service.
type Suggestion struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category,omitempty"`
}

// Candidate is a suggested place the user may select during planning.
type Candidate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
}

// Draft is the in-progress trip held by the wizard. The wizard step is not stored.
type Draft struct {
	Metadata    TripMetadata `json:"data"`
	Candidates  []Candidate  `json:"attractions"`
	SelectedIDs []string     `json:"selectedIds"`
	Hotels      []Suggestion `json:"hotels"`
	UpdatedAt   time.Time    `json:"updated"`
}

func (d Draft) IsSelected(id string) bool {
	for _, s := range d.SelectedIDs {
		if s == id {
			return true
		}
	}
	return false
}

// Selected returns the selected candidates in candidate-list order.
func (d Draft) Selected() []Candidate {
	out := make([]Candidate, 0, len(d.SelectedIDs))
	for _, c := range d.Candidates {
		if d.IsSelected(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

func (d Draft) Clone() Draft {
	out := d
	out.Metadata.Accommodations = cloneAccommodations(d.Metadata.Accommodations)
	if d.Candidates != nil {
		out.Candidates = append(make([]Candidate, 0, len(d.Candidates)), d.Candidates...)
	}
	if d.SelectedIDs != nil {
		out.SelectedIDs = append(make([]string, 0, len(d.SelectedIDs)), d.SelectedIDs...)
	}
	if d.Hotels != nil {
		out.Hotels = append(make([]Suggestion, 0, len(d.Hotels)), d.Hotels...)
	}
	return out
}

// GenerationInput feeds the external step that turns selections into a day plan.
type GenerationInput struct {
	Metadata       TripMetadata
	Selected       []Candidate
	Accommodations []Accommodation
	Pace           Pace
	Request        string
}
