// Package naming merges geocoder results into per-field candidate sets and
// picks the single display name worth printing on a postcard. Fields are
// ranked by how specific they are; a field whose sources disagree too much
// is considered noise and skipped.
package naming

import (
	"errors"
	"log"
	"sort"
	"strings"

	"postcard/internal/geocode"
)

// ErrNoNameFound means no field met the confidence and cleanliness rules.
// The photo fails rather than rendering an unlabeled postcard.
var ErrNoNameFound = errors.New("naming: no usable location name")

// Field identifies one named slot of a geocoder result.
type Field string

const (
	FieldName       Field = "name"
	FieldStreet     Field = "street"
	FieldAdminArea6 Field = "adminArea6"
	FieldAdminArea5 Field = "adminArea5"
	FieldAdminArea4 Field = "adminArea4"
	FieldAdminArea3 Field = "adminArea3"
	FieldAdminArea2 Field = "adminArea2"
	FieldAdminArea1 Field = "adminArea1"
)

// preference ranks fields from most to least postcard-worthy. adminArea2 is
// collected but never chosen; it only exists in responses as a county-level
// echo of adminArea3.
var preference = []Field{
	FieldName, FieldStreet, FieldAdminArea6, FieldAdminArea5,
	FieldAdminArea3, FieldAdminArea4, FieldAdminArea1,
}

// DefaultMaxAmbiguity is the distinct-value count at which a field stops
// being trusted: three or more sources disagreeing on e.g. the city name
// means none of them is reliable.
const DefaultMaxAmbiguity = 3

// Resolver turns ISO codes into display names. A miss is soft: the value is
// dropped from the candidate set, never stored as a raw code.
type Resolver interface {
	CountryName(alpha2 string) (string, bool)
	SubdivisionName(alpha2, code string) (string, bool)
}

// CandidateSet maps each field to its deduplicated display strings.
type CandidateSet map[Field]map[string]struct{}

func (s CandidateSet) add(f Field, v string) {
	if v == "" {
		return
	}
	if _, ok := s[f]; !ok {
		s[f] = make(map[string]struct{})
	}
	s[f][v] = struct{}{}
}

// pop removes and returns the lexicographically smallest member, keeping
// selection independent of response order.
func (s CandidateSet) pop(f Field) string {
	members := make([]string, 0, len(s[f]))
	for v := range s[f] {
		members = append(members, v)
	}
	sort.Strings(members)
	delete(s[f], members[0])
	return members[0]
}

// Aggregator builds candidate sets and applies the selection heuristic.
type Aggregator struct {
	Resolver     Resolver
	MaxAmbiguity int
}

// NewAggregator returns an Aggregator with the default ambiguity threshold.
func NewAggregator(r Resolver) *Aggregator {
	return &Aggregator{Resolver: r, MaxAmbiguity: DefaultMaxAmbiguity}
}

// BuildCandidates scans every geocoder result and files each non-empty field
// into its set. Country and subdivision codes are resolved per candidate;
// subdivision resolution uses that same candidate's country code.
func (a *Aggregator) BuildCandidates(locations []geocode.LocationCandidate) CandidateSet {
	set := make(CandidateSet)
	for _, loc := range locations {
		set.add(FieldName, loc.Name)
		set.add(FieldStreet, loc.Street)
		set.add(FieldAdminArea6, loc.AdminArea6)
		set.add(FieldAdminArea5, loc.AdminArea5)
		set.add(FieldAdminArea4, loc.AdminArea4)
		set.add(FieldAdminArea2, loc.AdminArea2)

		if loc.AdminArea1 != "" {
			if name, ok := a.Resolver.CountryName(loc.AdminArea1); ok {
				set.add(FieldAdminArea1, name)
			} else {
				log.Printf("Unresolved country code %q, dropping", loc.AdminArea1)
			}
		}
		if loc.AdminArea3 != "" {
			if name, ok := a.Resolver.SubdivisionName(loc.AdminArea1, loc.AdminArea3); ok {
				set.add(FieldAdminArea3, name)
			} else {
				log.Printf("Unresolved subdivision code %q/%q, dropping", loc.AdminArea1, loc.AdminArea3)
			}
		}
	}
	return set
}

// ChooseName walks the preference order and returns the first field whose
// set is non-empty, has fewer than MaxAmbiguity distinct values, and (for
// streets) whose picked value contains no digits. Picked values are removed
// from the set, so a digit-bearing street is consumed rather than reused
// when evaluation moves on to the next field.
func (a *Aggregator) ChooseName(set CandidateSet) (string, error) {
	limit := a.MaxAmbiguity
	if limit <= 0 {
		limit = DefaultMaxAmbiguity
	}

	for _, field := range preference {
		if len(set[field]) == 0 || len(set[field]) >= limit {
			continue
		}
		picked := set.pop(field)
		if field == FieldStreet && containsDigit(picked) {
			continue
		}
		return picked, nil
	}
	return "", ErrNoNameFound
}

// Name is the one-shot form: build the candidate sets from the geocoder
// results and choose the display name.
func (a *Aggregator) Name(locations []geocode.LocationCandidate) (string, error) {
	return a.ChooseName(a.BuildCandidates(locations))
}

func containsDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}
