package domain

type Degree struct {
	ID   string
	Num  int
	Name string

	// Derived from the degree's subjects.
	InitialCredits   float64
	AvailableCredits float64
	ChosenCredits    float64
	ReservedCredits  float64
}

// Recompute refreshes the derived totals from the given subjects.
func (d *Degree) Recompute(subjects []*Subject) {
	var initial, available, reserved float64
	for _, s := range subjects {
		initial += s.InitialCredits
		available += s.AvailableCredits
		if s.Reserved {
			reserved += s.AvailableCredits
		}
	}
	d.InitialCredits = initial
	d.AvailableCredits = available
	d.ChosenCredits = initial - available
	d.ReservedCredits = reserved
}

// HasAvailable reports whether any subject of the degree still has credits.
func (d *Degree) HasAvailable() bool {
	return d.AvailableCredits > RoundTolerance
}
