// Package directory holds the static reference data for the monitored
// locations: the code→name/prefecture table, the region and prefecture
// groupings used for navigation, and the redirect rules for retired codes.
//
// The embedded table is a curated subset of the upstream's roughly 840
// stations. Feed columns whose code is not yet in the table are dropped and
// counted during parsing, so a nonzero dropped count is expected until the
// table is complete.
package directory

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// TODO: generate the full table from the upstream station registry instead
// of maintaining this subset by hand.
//
//go:embed locations.csv
var locationsCSV string

// Location is one monitored site. Code is a stable 5-digit identifier whose
// first two digits are the prefecture area code.
type Location struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	Prefecture string `json:"prefecture"`
}

// Directory is the immutable location lookup table, loaded once at startup.
type Directory struct {
	byCode  map[string]Location
	ordered []Location
}

// Load parses the embedded location table. It fails on malformed rows or
// duplicate codes; the table is hand-maintained and a duplicate means a bad
// edit, not bad upstream data.
func Load() (*Directory, error) {
	return parse(strings.NewReader(locationsCSV))
}

func parse(r io.Reader) (*Directory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read locations header: %w", err)
	}
	if header[0] != "code" {
		return nil, fmt.Errorf("unexpected locations header: %q", header)
	}

	d := &Directory{byCode: make(map[string]Location)}
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read locations row: %w", err)
		}

		loc := Location{Code: rec[0], Name: rec[1], Prefecture: rec[2]}
		if loc.Code == "" || loc.Name == "" {
			return nil, fmt.Errorf("incomplete location row: %q", rec)
		}
		if _, exists := d.byCode[loc.Code]; exists {
			return nil, fmt.Errorf("duplicate location code %s", loc.Code)
		}
		d.byCode[loc.Code] = loc
		d.ordered = append(d.ordered, loc)
	}

	return d, nil
}

// Lookup returns the location for a code.
func (d *Directory) Lookup(code string) (Location, bool) {
	loc, ok := d.byCode[code]
	return loc, ok
}

// All returns every location in table order. The slice is shared; callers
// must not modify it.
func (d *Directory) All() []Location {
	return d.ordered
}

// Count returns the number of locations.
func (d *Directory) Count() int {
	return len(d.ordered)
}

// Search returns locations whose name or prefecture contains the query,
// capped at limit results.
func (d *Directory) Search(query string, limit int) []Location {
	if query == "" {
		return nil
	}

	var out []Location
	for _, loc := range d.ordered {
		if strings.Contains(loc.Name, query) || strings.Contains(loc.Prefecture, query) {
			out = append(out, loc)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}

// ByPrefectureID returns locations whose code prefix matches the prefecture
// area code. Okinawa uses the combined id "9194" covering prefixes 91–94.
func (d *Directory) ByPrefectureID(id string) []Location {
	var out []Location
	for _, loc := range d.ordered {
		prefix := loc.Code[:2]
		if id == OkinawaPrefectureID {
			switch prefix {
			case "91", "92", "93", "94":
				out = append(out, loc)
			}
			continue
		}
		if prefix == id {
			out = append(out, loc)
		}
	}
	return out
}
