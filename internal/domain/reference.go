package domain

// Title is a seniority rank. Rank drives billing rate, daily hour cap,
// concurrency cap and promotion interval.
type Title struct {
	ID   int
	Name string
}

// BusinessUnit is a coarse organizational bucket, activated
// progressively by headcount thresholds.
type BusinessUnit struct {
	ID   int
	Name string
}

// Location is a client location seeded before the simulation runs.
type Location struct {
	ID    int
	State string
	City  string
}

// Client is a customer of the firm, seeded before the simulation runs.
type Client struct {
	ID         int
	Name       string
	LocationID int
	Phone      string
	Email      string
}
