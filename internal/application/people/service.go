// Package people runs the in-memory roster queries.
package people

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/masoud-shayan/northwind/internal/domain/people"
	"github.com/masoud-shayan/northwind/internal/infrastructure/logger"
	"github.com/masoud-shayan/northwind/internal/infrastructure/validation"
)

// RosterQuery filters the roster by experience.
type RosterQuery struct {
	MinYears int `json:"min_years" validate:"gte=0,lte=100"`
}

// PersonView is one printed roster line.
type PersonView struct {
	FullName          string
	YearsOfExperience int
	Birthday          time.Time
	// Age is in whole years on the day the roster was loaded.
	Age int
}

type entry struct {
	first, last string
	years       int
	born        string
}

var defaultRoster = []entry{
	{"Masoud", "Shayan", 7, "1990-03-03"},
	{"Ada", "Lovelace", 12, "1985-12-10"},
	{"Grace", "Hopper", 25, "1976-12-09"},
	{"Alan", "Turing", 12, "1982-06-23"},
	{"Linus", "Torvalds", 30, "1969-12-28"},
	{"Ken", "Thompson", 40, "1953-02-04"},
	{"Rob", "Pike", 38, "1956-01-01"},
	{"Barbara", "Liskov", 3, "1999-11-07"},
}

// Service answers queries over a fixed roster.
type Service struct {
	roster []*people.Person
	now    time.Time
}

// NewService validates the built-in roster against now.
func NewService(now time.Time) (*Service, error) {
	roster := make([]*people.Person, 0, len(defaultRoster))
	for _, e := range defaultRoster {
		born, err := time.Parse(time.DateOnly, e.born)
		if err != nil {
			return nil, err
		}
		p, err := people.NewPerson(e.first, e.last, e.years, born, now)
		if err != nil {
			return nil, err
		}
		roster = append(roster, p)
	}
	return NewServiceWithRoster(roster, now), nil
}

// NewServiceWithRoster serves the given persons, aging them as of now.
func NewServiceWithRoster(roster []*people.Person, now time.Time) *Service {
	return &Service{roster: roster, now: now}
}

// Experienced returns persons with at least q.MinYears of experience, most
// experienced first, ties broken by full name.
func (s *Service) Experienced(ctx context.Context, q RosterQuery) ([]PersonView, error) {
	if err := validation.Struct(q); err != nil {
		return nil, err
	}

	matches := make([]*people.Person, 0, len(s.roster))
	for _, p := range s.roster {
		if p.YearsOfExperience >= q.MinYears {
			matches = append(matches, p)
		}
	}
	slices.SortStableFunc(matches, func(a, b *people.Person) int {
		return cmp.Or(
			cmp.Compare(b.YearsOfExperience, a.YearsOfExperience),
			cmp.Compare(a.FullName(), b.FullName()),
		)
	})

	out := make([]PersonView, 0, len(matches))
	for _, p := range matches {
		out = append(out, PersonView{
			FullName:          p.FullName(),
			YearsOfExperience: p.YearsOfExperience,
			Birthday:          p.Birthday,
			Age:               p.AgeAt(s.now),
		})
	}

	logger.L(ctx).Debug("Roster queried",
		zap.Int("min_years", q.MinYears),
		zap.Int("matches", len(out)),
	)
	return out, nil
}
