package models

// RaceEntry is one competitor's participation in one race, the raw row the
// statistics lookups aggregate from.
type RaceEntry struct {
	CompetitorID string `db:"competitor_id" json:"competitor_id" validate:"required"`
	Season       int    `db:"season" json:"season" validate:"required,gt=0"`
	RaceNumber   int    `db:"race_num" json:"race_num" validate:"gte=0"`
	Track        string `db:"track" json:"track"`
	TrackType    string `db:"track_type" json:"track_type"`
	Start        *int   `db:"start" json:"start,omitempty" validate:"omitempty,gt=0"`
	Finish       *int   `db:"finish" json:"finish,omitempty" validate:"omitempty,gt=0"`
}

// GetFinish returns the finishing position or 0 if the entry was not classified
func (e *RaceEntry) GetFinish() int {
	if e.Finish == nil {
		return 0
	}
	return *e.Finish
}
