package people

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestNewPerson(t *testing.T) {
	birthday := time.Date(1990, time.March, 3, 0, 0, 0, 0, time.UTC)

	t.Run("creates person", func(t *testing.T) {
		p, err := NewPerson("Masoud", "Shayan", 7, birthday, now)
		require.NoError(t, err)
		assert.Equal(t, "Masoud Shayan", p.FullName())
		assert.Equal(t, 7, p.YearsOfExperience)
	})

	tests := []struct {
		name    string
		first   string
		last    string
		years   int
		born    time.Time
		message string
	}{
		{"empty first name", "", "Shayan", 1, birthday, "First name cannot be empty"},
		{"blank last name", "Masoud", "  ", 1, birthday, "Last name cannot be empty"},
		{"negative experience", "Masoud", "Shayan", -1, birthday, "cannot be negative"},
		{"future birthday", "Masoud", "Shayan", 1, now.AddDate(0, 0, 1), "cannot be in the future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPerson(tt.first, tt.last, tt.years, tt.born, now)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestPerson_AgeAt(t *testing.T) {
	tests := []struct {
		name     string
		birthday time.Time
		expected int
	}{
		{"birthday already passed", time.Date(1990, time.March, 3, 0, 0, 0, 0, time.UTC), 34},
		{"birthday today", time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC), 34},
		{"birthday later this year", time.Date(1990, time.December, 1, 0, 0, 0, 0, time.UTC), 33},
		{"leap day", time.Date(2000, time.February, 29, 0, 0, 0, 0, time.UTC), 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Person{Birthday: tt.birthday}
			assert.Equal(t, tt.expected, p.AgeAt(now))
		})
	}
}
