package seed

import (
	"fmt"
	"strings"

	"github.com/synthline/firmforge/internal/domain"
	"github.com/synthline/firmforge/internal/namegen"
	"github.com/synthline/firmforge/internal/randsrc"
)

// Reference is the static reference data seeded before the simulators
// run: titles, business units, client locations and clients.
type Reference struct {
	Titles    []domain.Title
	Units     []domain.BusinessUnit
	Locations []domain.Location
	Clients   []domain.Client
}

// Titles returns the six consulting ranks.
func Titles() []domain.Title {
	return []domain.Title{
		{ID: 1, Name: "Junior Consultant"},
		{ID: 2, Name: "Consultant"},
		{ID: 3, Name: "Senior Consultant"},
		{ID: 4, Name: "Lead Consultant"},
		{ID: 5, Name: "Project Manager"},
		{ID: 6, Name: "Vice President"},
	}
}

// Units returns the four business units in activation order.
func Units() []domain.BusinessUnit {
	return []domain.BusinessUnit{
		{ID: 1, Name: "North America"},
		{ID: 2, Name: "Central and South America"},
		{ID: 3, Name: "EMEA"},
		{ID: 4, Name: "Asia Pacific"},
	}
}

// Locations returns the forty client cities, ids assigned in order.
func Locations() []domain.Location {
	pairs := [][2]string{
		{"California", "Los Angeles"}, {"New York", "New York City"},
		{"Illinois", "Chicago"}, {"Texas", "Houston"},
		{"Pennsylvania", "Philadelphia"}, {"Arizona", "Phoenix"},
		{"Texas", "San Antonio"}, {"California", "San Diego"},
		{"Texas", "Dallas"}, {"California", "San Jose"},
		{"England", "London"}, {"France", "Paris"},
		{"Germany", "Berlin"}, {"Spain", "Madrid"},
		{"Italy", "Rome"}, {"Netherlands", "Amsterdam"},
		{"Russia", "Moscow"}, {"Sweden", "Stockholm"},
		{"Poland", "Warsaw"}, {"Austria", "Vienna"},
		{"Brazil", "Sao Paulo"}, {"Mexico", "Mexico City"},
		{"Argentina", "Buenos Aires"}, {"Colombia", "Bogota"},
		{"Peru", "Lima"}, {"Venezuela", "Caracas"},
		{"Chile", "Santiago"}, {"Ecuador", "Quito"},
		{"Guatemala", "Guatemala City"}, {"Cuba", "Havana"},
		{"China", "Shanghai"}, {"Japan", "Tokyo"},
		{"India", "Mumbai"}, {"South Korea", "Seoul"},
		{"Australia", "Sydney"}, {"Indonesia", "Jakarta"},
		{"Philippines", "Manila"}, {"Thailand", "Bangkok"},
		{"Malaysia", "Kuala Lumpur"}, {"Vietnam", "Ho Chi Minh City"},
	}
	out := make([]domain.Location, 0, len(pairs))
	for i, p := range pairs {
		out = append(out, domain.Location{ID: i + 1, State: p[0], City: p[1]})
	}
	return out
}

// regionStates buckets location states by the business unit that serves
// them.
var regionStates = map[string][]string{
	"North America":             {"California", "New York", "Illinois", "Texas", "Pennsylvania", "Arizona"},
	"EMEA":                      {"England", "France", "Germany", "Spain", "Italy", "Netherlands", "Russia", "Sweden", "Poland", "Austria"},
	"Central and South America": {"Brazil", "Mexico", "Argentina", "Colombia", "Peru", "Venezuela", "Chile", "Ecuador", "Guatemala", "Cuba"},
	"Asia Pacific":              {"China", "Japan", "India", "South Korea", "Australia", "Indonesia", "Philippines", "Thailand", "Malaysia", "Vietnam"},
}

// regionWeights is the client share per region.
var regionWeights = []struct {
	region string
	share  float64
}{
	{"North America", 0.6},
	{"EMEA", 0.2},
	{"Central and South America", 0.1},
	{"Asia Pacific", 0.1},
}

// Clients generates the client roster, region-weighted over the seeded
// locations, identities drawn from the run's PRNG.
func Clients(count int, locations []domain.Location, rng *randsrc.Source, names *namegen.Generator) ([]domain.Client, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("%w: no locations to place clients in", domain.ErrEmptyPool)
	}
	byState := make(map[string][]domain.Location)
	for _, loc := range locations {
		byState[loc.State] = append(byState[loc.State], loc)
	}

	counts := apportion(count)
	var clients []domain.Client
	nextID := 1
	for ri, rw := range regionWeights {
		var pool []domain.Location
		for _, state := range regionStates[rw.region] {
			pool = append(pool, byState[state]...)
		}
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: no locations for region %s", domain.ErrEmptyPool, rw.region)
		}
		for i := 0; i < counts[ri]; i++ {
			loc := pool[rng.IntInRange(0, len(pool)-1)]
			name := names.Company()
			clients = append(clients, domain.Client{
				ID:         nextID,
				Name:       name,
				LocationID: loc.ID,
				Phone:      names.Phone("en_US"),
				Email:      contactEmail(name, nextID),
			})
			nextID++
		}
	}
	return clients, nil
}

// apportion splits count over the region weights by largest remainder,
// so the roster sizes always sum to count exactly.
func apportion(count int) []int {
	counts := make([]int, len(regionWeights))
	remainders := make([]float64, len(regionWeights))
	assigned := 0
	for i, rw := range regionWeights {
		exact := float64(count) * rw.share
		counts[i] = int(exact)
		remainders[i] = exact - float64(counts[i])
		assigned += counts[i]
	}
	for assigned < count {
		best := 0
		for i := 1; i < len(remainders); i++ {
			if remainders[i] > remainders[best] {
				best = i
			}
		}
		counts[best]++
		remainders[best] = -1
		assigned++
	}
	return counts
}

func contactEmail(company string, id int) string {
	slug := strings.ToLower(company)
	slug = strings.ReplaceAll(slug, " ", "")
	return fmt.Sprintf("contact@%s%d.example.com", slug, id)
}

// Build assembles the full reference bundle.
func Build(clientCount int, rng *randsrc.Source, names *namegen.Generator) (*Reference, error) {
	locations := Locations()
	clients, err := Clients(clientCount, locations, rng, names)
	if err != nil {
		return nil, fmt.Errorf("seeding clients: %w", err)
	}
	return &Reference{
		Titles:    Titles(),
		Units:     Units(),
		Locations: locations,
		Clients:   clients,
	}, nil
}
