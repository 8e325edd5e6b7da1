package directory

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	ErrEmptyDirectory  = errors.New("directory has no doctors")
	ErrDuplicateDoctor = errors.New("duplicate doctor id")
	ErrInvalidDoctor   = errors.New("doctor is missing a name or specialty")
)

// minTermLength drops tokens like "a" or "dr" that are substrings of nearly every name.
const minTermLength = 3

// ignoredTerms never identify a doctor on their own.
var ignoredTerms = map[string]struct{}{
	"doctor": {}, "the": {}, "and": {}, "with": {}, "see": {}, "want": {},
	"like": {}, "pleas": {}, "please": {}, "for": {}, "book": {}, "need": {},
}

// Directory is the read-only doctor roster.
type Directory struct {
	doctors []Doctor
	byID    map[int]int
}

// New validates doctors and returns a Directory holding its own copy of them.
func New(doctors []Doctor) (*Directory, error) {
	if len(doctors) == 0 {
		return nil, ErrEmptyDirectory
	}

	d := &Directory{
		doctors: make([]Doctor, 0, len(doctors)),
		byID:    make(map[int]int, len(doctors)),
	}
	for _, doc := range doctors {
		if strings.TrimSpace(doc.Name) == "" || strings.TrimSpace(doc.Specialty) == "" {
			return nil, fmt.Errorf("%w: id %d", ErrInvalidDoctor, doc.ID)
		}
		if _, dup := d.byID[doc.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateDoctor, doc.ID)
		}
		d.byID[doc.ID] = len(d.doctors)
		d.doctors = append(d.doctors, doc.clone())
	}
	return d, nil
}

// All returns every doctor in directory order.
func (d *Directory) All() []Doctor {
	out := make([]Doctor, 0, len(d.doctors))
	for _, doc := range d.doctors {
		out = append(out, doc.clone())
	}
	return out
}

// Len returns the number of doctors.
func (d *Directory) Len() int {
	return len(d.doctors)
}

// ByID returns the doctor with id.
func (d *Directory) ByID(id int) (Doctor, bool) {
	idx, ok := d.byID[id]
	if !ok {
		return Doctor{}, false
	}
	return d.doctors[idx].clone(), true
}

// Find picks the doctor whose lower-case name or specialty contains the most
// query terms. Terms are the raw tokens and their stems; ties go to directory order.
func (d *Directory) Find(tokens, stems []string) (Doctor, bool) {
	terms := matchTerms(tokens, stems)
	if len(terms) == 0 {
		return Doctor{}, false
	}

	best, bestScore := -1, 0
	for i, doc := range d.doctors {
		name := strings.ToLower(doc.Name)
		specialty := strings.ToLower(doc.Specialty)

		score := 0
		for _, term := range terms {
			if strings.Contains(name, term) || strings.Contains(specialty, term) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}

	if best < 0 {
		return Doctor{}, false
	}
	return d.doctors[best].clone(), true
}

func matchTerms(tokens, stems []string) []string {
	seen := make(map[string]struct{}, len(tokens)+len(stems))
	terms := make([]string, 0, len(tokens)+len(stems))
	for _, group := range [][]string{tokens, stems} {
		for _, t := range group {
			if utf8.RuneCountInString(t) < minTermLength {
				continue
			}
			if _, skip := ignoredTerms[t]; skip {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			terms = append(terms, t)
		}
	}
	return terms
}
