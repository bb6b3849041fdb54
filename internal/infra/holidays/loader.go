// Package holidays loads business calendars from YAML holiday tables.
package holidays

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"tariff_digest/internal/domain/calendar"
	"tariff_digest/internal/domain/report"
)

//go:embed tables/*.yaml
var tables embed.FS

// Table is the on-disk holiday table format.
type Table struct {
	Jurisdiction string   `yaml:"jurisdiction"`
	Years        Years    `yaml:"years"`
	Weekend      []string `yaml:"weekend"`
	Holidays     []Entry  `yaml:"holidays"`
}

// Years is the inclusive range the table is complete for.
type Years struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Entry is a single holiday.
type Entry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load reads path when set, otherwise the embedded table for jurisdiction.
func Load(path, jurisdiction string) (*calendar.Calendar, error) {
	if path != "" {
		return LoadFile(path)
	}
	return LoadEmbedded(jurisdiction)
}

// LoadFile reads a holiday table from disk.
func LoadFile(path string) (*calendar.Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading holiday table: %v", report.ErrConfiguration, err)
	}
	return Parse(data)
}

// LoadEmbedded returns the built-in table for jurisdiction.
func LoadEmbedded(jurisdiction string) (*calendar.Calendar, error) {
	data, err := tables.ReadFile("tables/" + strings.ToLower(jurisdiction) + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%w: no built-in holiday table for %q", report.ErrConfiguration, jurisdiction)
	}
	return Parse(data)
}

// Parse decodes a YAML holiday table into a Calendar.
func Parse(data []byte) (*calendar.Calendar, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: parsing holiday table: %v", report.ErrConfiguration, err)
	}
	if t.Jurisdiction == "" {
		return nil, fmt.Errorf("%w: holiday table has no jurisdiction", report.ErrConfiguration)
	}
	if t.Years.From == 0 || t.Years.To == 0 {
		return nil, fmt.Errorf("%w: holiday table %q has no year range", report.ErrConfiguration, t.Jurisdiction)
	}

	var weekend []time.Weekday
	for _, name := range t.Weekend {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("%w: unknown weekend day %q", report.ErrConfiguration, name)
		}
		weekend = append(weekend, wd)
	}

	holidays := make([]calendar.Holiday, 0, len(t.Holidays))
	for _, e := range t.Holidays {
		d, err := report.ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: holiday %q: %v", report.ErrConfiguration, e.Name, err)
		}
		holidays = append(holidays, calendar.Holiday{Date: d, Name: e.Name})
	}

	return calendar.New(t.Jurisdiction, t.Years.From, t.Years.To, weekend, holidays)
}
