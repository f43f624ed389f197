package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrNotFound signals that the doctor database file is absent or unreadable.
// Callers surface it as a structured "database not found" result, never as a
// raw failure to the end user.
var ErrNotFound = errors.New("doctor database not found")

// Doctor is one row of the roster. Read-only reference data for the duration
// of a request.
type Doctor struct {
	Name           string   `json:"name"`
	Specialty      string   `json:"specialty"`
	Location       string   `json:"location"`
	Hospital       string   `json:"hospital"`
	Cost           int      `json:"cost"`
	Insurance      []string `json:"insurance"`
	AvailableSlots string   `json:"-"` // comma-separated recurring-slot descriptors
}

// AcceptsInsurance reports whether the doctor's insurance set contains the
// given provider, case-insensitively. A blank provider is never accepted.
func (d Doctor) AcceptsInsurance(provider string) bool {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return false
	}
	for _, ins := range d.Insurance {
		if strings.EqualFold(ins, provider) {
			return true
		}
	}
	return false
}

// expected roster columns, in order
var columns = []string{"name", "specialty", "location", "hospital", "cost", "insurance", "available_slots"}

// Load reads the roster CSV at path. The roster is loaded fresh per request;
// there is no caching layer. A missing or unreadable file maps to ErrNotFound.
func Load(path string) ([]Doctor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	defer f.Close()

	return Parse(f)
}

// Parse reads roster rows from r. Per-row field problems (missing cost, empty
// insurance) default to zero values rather than dropping the row.
func Parse(r io.Reader) ([]Doctor, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // tolerate ragged rows
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty roster", ErrNotFound)
	}
	idx := columnIndex(header)

	var doctors []Doctor
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read roster row: %w", err)
		}

		doctors = append(doctors, Doctor{
			Name:           field(record, idx["name"]),
			Specialty:      field(record, idx["specialty"]),
			Location:       field(record, idx["location"]),
			Hospital:       field(record, idx["hospital"]),
			Cost:           parseCost(field(record, idx["cost"])),
			Insurance:      parseInsurance(field(record, idx["insurance"])),
			AvailableSlots: field(record, idx["available_slots"]),
		})
	}

	return doctors, nil
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for _, col := range columns {
		idx[col] = -1
	}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseCost(s string) int {
	cost, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return cost
}

func parseInsurance(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	providers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			providers = append(providers, p)
		}
	}
	return providers
}
