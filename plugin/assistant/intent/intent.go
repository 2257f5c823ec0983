// Package intent classifies user utterances into a closed set of intents
// using ordered rule-based matching.
package intent

// Type represents the type of user intent.
type Type string

const (
	TypeGreeting      Type = "greeting"
	TypeConfirmation  Type = "confirmation"
	TypeCourseSearch  Type = "course_search"
	TypeLibrarySearch Type = "library_search"
	TypeInternship    Type = "internship"
	TypeNews          Type = "news"
	TypePremium       Type = "premium"
	TypeMessages      Type = "messages"
	TypeSettings      Type = "settings"
	TypeCertificate   Type = "certificate"
	TypeEnroll        Type = "enroll"
	TypeOpenFirst     Type = "open_first"
	TypeUnknown       Type = "unknown"
)

// Intent is the classification result for one utterance. Query carries the
// residual query string for intents that require further lookup.
type Intent struct {
	Type  Type
	Query string
}
