package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vanshika/skillgraph/backend/internal/domain"
	"github.com/vanshika/skillgraph/backend/internal/service"
)

// Dataset contains the generated people, services and links.
type Dataset struct {
	People   []service.SeedPerson  `json:"people"`
	Services []service.SeedService `json:"services"`
	Links    []service.SeedLink    `json:"links"`
}

// Generator produces synthetic seed data for the skills graph.
type Generator struct {
	cfg       Config
	rand      *rand.Rand
	fragments nameFragments
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumPeople <= 0 {
		cfg.NumPeople = defaults.NumPeople
	}
	if cfg.NumServices <= 0 {
		cfg.NumServices = defaults.NumServices
	}
	if cfg.CoOfferChance < 0 {
		cfg.CoOfferChance = 0
	}
	if cfg.MaxUsesPerPerson < 0 {
		cfg.MaxUsesPerPerson = 0
	}
	if cfg.Password == "" {
		cfg.Password = defaults.Password
	}
	if len(cfg.Roles) == 0 {
		cfg.Roles = domain.DefaultRoles
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:       cfg,
		rand:      rand.New(rand.NewSource(cfg.Seed)),
		fragments: defaultNameFragments(),
	}
}

// Generate synthesises people, services and links. Person and service names
// are unique so every link resolves to exactly one node on each side.
// It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	people := make([]service.SeedPerson, g.cfg.NumPeople)
	usedNames := make(map[string]int, g.cfg.NumPeople)

	for i := range people {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		first := pick(g.rand, g.fragments.first)
		last := pick(g.rand, g.fragments.last)
		people[i] = service.SeedPerson{
			Name:     unique(usedNames, first+" "+last),
			Email:    fmt.Sprintf("%s.%s.%d@%s", strings.ToLower(first), strings.ToLower(last), i+1, pick(g.rand, g.fragments.domains)),
			Password: g.cfg.Password,
			Role:     pick(g.rand, g.cfg.Roles),
		}
	}

	services := make([]service.SeedService, g.cfg.NumServices)
	links := make([]service.SeedLink, 0, g.cfg.NumServices*2+g.cfg.NumPeople)
	usedServices := make(map[string]int, g.cfg.NumServices)
	offered := make(map[[2]int]bool)

	for i := range services {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		owner := g.rand.Intn(len(people))
		name := unique(usedServices, pick(g.rand, g.fragments.subjects)+" "+pick(g.rand, g.fragments.kinds))
		services[i] = service.SeedService{
			Name:        name,
			Description: fmt.Sprintf("%s offered by %s", name, people[owner].Name),
			OwnerEmail:  people[owner].Email,
		}
		links = append(links, offer(people[owner], name))
		offered[[2]int{owner, i}] = true

		if len(people) > 1 && g.rand.Float64() < g.cfg.CoOfferChance {
			co := g.rand.Intn(len(people))
			if !offered[[2]int{co, i}] {
				links = append(links, offer(people[co], name))
				offered[[2]int{co, i}] = true
			}
		}
	}

	for p := range people {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}
		if g.cfg.MaxUsesPerPerson == 0 {
			break
		}
		used := make(map[int]bool)
		for n := g.rand.Intn(g.cfg.MaxUsesPerPerson + 1); n > 0; n-- {
			s := g.rand.Intn(len(services))
			if used[s] || offered[[2]int{p, s}] {
				continue
			}
			used[s] = true
			links = append(links, service.SeedLink{
				PersonEmail: people[p].Email,
				ServiceName: services[s].Name,
				Type:        domain.RelationshipUses,
			})
		}
	}

	return Dataset{People: people, Services: services, Links: links}, nil
}

func offer(person service.SeedPerson, serviceName string) service.SeedLink {
	return service.SeedLink{
		PersonEmail: person.Email,
		ServiceName: serviceName,
		Type:        domain.RelationshipOffers,
	}
}

// unique returns name, or name with a numeric suffix when it was seen before.
func unique(seen map[string]int, name string) string {
	seen[name]++
	if n := seen[name]; n > 1 {
		candidate := fmt.Sprintf("%s %d", name, n)
		seen[candidate]++
		return candidate
	}
	return name
}

func pick(r *rand.Rand, values []string) string {
	return values[r.Intn(len(values))]
}

type nameFragments struct {
	first    []string
	last     []string
	domains  []string
	subjects []string
	kinds    []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:    []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:     []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		domains:  []string{"campus.edu", "alumni.campus.edu", "staff.campus.edu"},
		subjects: []string{"Calculus", "Physics", "Python", "Guitar", "Spanish", "Photography", "Resume", "Statistics", "Chemistry", "Bike", "Design", "Essay"},
		kinds:    []string{"Tutoring", "Coaching", "Review", "Workshop", "Repair", "Mentoring"},
	}
}
