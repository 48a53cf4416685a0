// Package people holds the in-memory Person record used by the LINQ-to-objects
// style demo. Persons are never persisted.
package people

import (
	"strings"
	"time"

	"github.com/masoud-shayan/northwind/internal/domain/shared"
)

// Person is a developer on the demo roster
type Person struct {
	FirstName         string
	LastName          string
	YearsOfExperience int
	Birthday          time.Time
}

// NewPerson creates a validated person. now bounds the birthday.
func NewPerson(firstName, lastName string, years int, birthday, now time.Time) (*Person, error) {
	if strings.TrimSpace(firstName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Last name cannot be empty")
	}
	if years < 0 {
		return nil, shared.NewDomainError("INVALID_EXPERIENCE", "Years of experience cannot be negative")
	}
	if birthday.After(now) {
		return nil, shared.NewDomainError("INVALID_BIRTHDAY", "Birthday cannot be in the future")
	}

	return &Person{
		FirstName:         firstName,
		LastName:          lastName,
		YearsOfExperience: years,
		Birthday:          birthday,
	}, nil
}

// FullName returns "<first> <last>"
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// AgeAt returns the person's age in whole years at the given instant.
func (p *Person) AgeAt(now time.Time) int {
	age := now.Year() - p.Birthday.Year()
	if now.Month() < p.Birthday.Month() || (now.Month() == p.Birthday.Month() && now.Day() < p.Birthday.Day()) {
		age--
	}
	return age
}
