package ai

import "slices"

// Subjects is the closed set of album subjects a canonicalizer may assign.
var Subjects = []string{
	"Math",
	"Language",
	"Culture",
	"Grace & Courtesy",
}

// Planes is the closed set of planes of development a canonicalizer may assign.
var Planes = []string{
	"0-6",
	"6-12",
	"12-18",
}

// IsKnownSubject reports whether s is one of Subjects.
func IsKnownSubject(s string) bool {
	return slices.Contains(Subjects, s)
}

// IsKnownPlane reports whether p is one of Planes.
func IsKnownPlane(p string) bool {
	return slices.Contains(Planes, p)
}

// CanonicalizeRequest is the input to a QueryCanonicalizer.
type CanonicalizeRequest struct {
	Query       string
	SubjectHint string
	PlaneHint   string
}

// CanonicalQuery is the structured output of a QueryCanonicalizer.
// Empty Subject or Plane means the model did not classify that dimension.
type CanonicalQuery struct {
	NormalizedQuery string
	Subject         string
	Plane           string
	Keywords        []string
}

// RerankCandidate is the view of a passage sent to a Reranker.
type RerankCandidate struct {
	Id      string
	Title   string
	Source  string
	Excerpt string
}
