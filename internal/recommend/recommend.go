package recommend

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/carebridge/carebridge-be/internal/roster"
	"github.com/carebridge/carebridge-be/internal/schedule"
)

// Status distinguishes the structured outcomes of a recommendation request.
// All outcomes are reported as results, not errors, so the caller can always
// render something to the patient.
type Status string

const (
	StatusOK         Status = "ok"
	StatusNoDatabase Status = "no_database"
	StatusNoDoctors  Status = "no_doctors"
)

// maxRecommendations bounds the ranked result list.
const maxRecommendations = 5

// maxSlotsPerDoctor bounds the expanded slot list per doctor.
const maxSlotsPerDoctor = 5

// urgentRegularFallback is how many regular slots stand in when emergency
// slot synthesis produces nothing usable.
const urgentRegularFallback = 3

// Query is the patient's matching criteria, supplied by the upstream triage
// step. All text fields are matched case-insensitively.
type Query struct {
	Location  string `json:"location"`
	Specialty string `json:"specialty"`
	Insurance string `json:"insurance"`
	Urgency   string `json:"urgency"` // routine | soon | urgent
}

// Recommendation is one ranked doctor with their bookable slots.
type Recommendation struct {
	Name              string                  `json:"name"`
	Specialty         string                  `json:"specialty"`
	Location          string                  `json:"location"`
	Hospital          string                  `json:"hospital"`
	Cost              int                     `json:"cost"`
	Insurance         []string                `json:"insurance"`
	AvailableSlots    []schedule.ConcreteSlot `json:"available_slots"`
	InsuranceAccepted bool                    `json:"insurance_accepted"`
}

// Result is the full structured output handed to transports.
type Result struct {
	Status               Status           `json:"status"`
	RecommendedSpecialty string           `json:"recommended_specialty"`
	RecommendedDoctors   []Recommendation `json:"recommended_doctors"`
	PatientLocation      string           `json:"patient_location"`
	PatientInsurance     string           `json:"patient_insurance"`
	InsuranceMatched     bool             `json:"insurance_matched"`
	Message              string           `json:"message"`
	Criteria             Query            `json:"criteria"`
}

// RosterLoader abstracts where the doctor roster comes from.
type RosterLoader interface {
	Load() ([]roster.Doctor, error)
}

// FileRoster loads the roster CSV fresh on every request.
type FileRoster struct {
	Path string
}

func (f FileRoster) Load() ([]roster.Doctor, error) {
	return roster.Load(f.Path)
}

// Service ranks doctors for patient queries.
type Service struct {
	loader RosterLoader
	now    func() time.Time
}

// NewService creates a recommendation service. nowFn may be nil, in which
// case time.Now is used; tests inject a fixed clock.
func NewService(loader RosterLoader, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{loader: loader, now: nowFn}
}

// Recommend produces a bounded, ranked recommendation list for the query
// using cascading relaxation: exact location+specialty, then location only,
// then specialty only, then the whole roster. Availability beats precision;
// the result is never empty while any doctor exists.
func (s *Service) Recommend(q Query) Result {
	result := Result{
		Status:               StatusOK,
		RecommendedSpecialty: q.Specialty,
		PatientLocation:      q.Location,
		PatientInsurance:     q.Insurance,
		Criteria:             q,
	}

	doctors, err := s.loader.Load()
	if err != nil {
		if errors.Is(err, roster.ErrNotFound) {
			result.Status = StatusNoDatabase
			result.Message = "We couldn't find the doctor database. Please contact support."
			return result
		}
		log.Printf("Roster load failed: %v", err)
		result.Status = StatusNoDatabase
		result.Message = "We couldn't read the doctor database. Please contact support."
		return result
	}

	candidates := cascade(doctors, q)
	if len(candidates) == 0 {
		result.Status = StatusNoDoctors
		result.Message = "We couldn't find any doctors matching your requirements. Please try a different location or contact us for assistance."
		return result
	}

	now := s.now()
	urgent := isUrgent(q.Urgency)

	recs := make([]Recommendation, 0, len(candidates))
	for _, doc := range candidates {
		accepted := doc.AcceptsInsurance(q.Insurance)
		if accepted {
			result.InsuranceMatched = true
		}

		slots := schedule.ExpandSchedule(doc.AvailableSlots, now, maxSlotsPerDoctor)
		if urgent {
			slots = urgentSlots(now, slots)
		}

		recs = append(recs, Recommendation{
			Name:              doc.Name,
			Specialty:         doc.Specialty,
			Location:          doc.Location,
			Hospital:          doc.Hospital,
			Cost:              doc.Cost,
			Insurance:         doc.Insurance,
			AvailableSlots:    slots,
			InsuranceAccepted: accepted,
		})
	}

	// Insurance-matching doctors first, ties broken by lowest cost.
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].InsuranceAccepted != recs[j].InsuranceAccepted {
			return recs[i].InsuranceAccepted
		}
		return recs[i].Cost < recs[j].Cost
	})
	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}

	result.RecommendedDoctors = recs
	result.Message = s.buildMessage(q, len(recs), result.InsuranceMatched)
	return result
}

// cascade applies the four relaxation stages in order, stopping at the first
// stage with candidates.
func cascade(doctors []roster.Doctor, q Query) []roster.Doctor {
	stages := []func(roster.Doctor) bool{
		func(d roster.Doctor) bool {
			return matchField(d.Location, q.Location) && matchField(d.Specialty, q.Specialty)
		},
		func(d roster.Doctor) bool { return matchField(d.Location, q.Location) },
		func(d roster.Doctor) bool { return matchField(d.Specialty, q.Specialty) },
		func(roster.Doctor) bool { return true },
	}

	for _, match := range stages {
		var candidates []roster.Doctor
		for _, d := range doctors {
			if match(d) {
				candidates = append(candidates, d)
			}
		}
		if len(candidates) > 0 {
			return candidates
		}
	}
	return nil
}

// urgentSlots replaces a doctor's regular schedule with synthesized
// emergency slots. If synthesis yields nothing usable the earliest regular
// slots stand in.
func urgentSlots(now time.Time, regular []schedule.ConcreteSlot) []schedule.ConcreteSlot {
	emergency := schedule.EmergencySlots(now)
	if len(emergency) > 0 {
		return emergency
	}
	if len(regular) > urgentRegularFallback {
		regular = regular[:urgentRegularFallback]
	}
	return regular
}

func (s *Service) buildMessage(q Query, count int, matched bool) string {
	if strings.TrimSpace(q.Insurance) != "" && !matched {
		return fmt.Sprintf(
			"We found %d doctors in %s specializing in %s. Unfortunately, none of them accept %s insurance. However, we've listed alternative options with different insurance providers.",
			count, q.Location, q.Specialty, q.Insurance)
	}
	return fmt.Sprintf("We found %d doctors in %s specializing in %s.", count, q.Location, q.Specialty)
}

func matchField(have, want string) bool {
	return strings.EqualFold(strings.TrimSpace(have), strings.TrimSpace(want))
}

func isUrgent(urgency string) bool {
	switch strings.ToLower(strings.TrimSpace(urgency)) {
	case "soon", "urgent":
		return true
	}
	return false
}
