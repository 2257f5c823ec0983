package intent

import (
	"regexp"
	"strings"
)

// rule is one entry of the ordered classification table. The first rule
// whose predicate matches wins; later rules are not consulted.
type rule struct {
	match func(input string) bool
	typ   Type
}

// Classifier maps a normalized utterance to exactly one Intent via ordered
// pattern matching. Classification is pure: same input, same result.
type Classifier struct {
	rules []rule
}

// openFirstRe matches explicit "open the first (one)" phrasings.
var openFirstRe = regexp.MustCompile(`\b(ouvre|ouvrir|affiche|afficher|montre|montrer)\b.*\bpremier`)

var (
	greetingWords = []string{"bonjour", "bonsoir", "salut", "coucou", "hello", "hey"}

	// Short affirmations are matched against the whole utterance, not as
	// substrings: "oui" inside a longer sentence is not a confirmation.
	affirmations = []string{"oui", "ok", "d'accord", "daccord", "yes", "ouais", "parfait", "vas-y", "allez"}

	courseWords      = []string{"cours", "formation", "apprendre", "matière", "matiere", "leçon", "lecon", "étudier", "etudier"}
	libraryWords     = []string{"médiathèque", "mediatheque", "bibliothèque", "bibliotheque", "document", "livre", "vidéo", "video", "ressource"}
	internshipWords  = []string{"stage", "alternance", "entreprise", "emploi"}
	newsWords        = []string{"actualité", "actualite", "nouveauté", "nouveaute", "news", "annonce"}
	premiumWords     = []string{"premium", "abonnement", "tarif", "prix", "payant", "offre"}
	messagesWords    = []string{"message", "messagerie", "contacter", "professeur", "écrire", "ecrire"}
	settingsWords    = []string{"paramètre", "parametre", "profil", "compte", "mot de passe", "réglage", "reglage"}
	certificateWords = []string{"certificat", "diplôme", "diplome", "attestation"}
	enrollWords      = []string{"inscrire", "inscription", "rejoindre", "participer"}
)

// NewClassifier creates a classifier with the fixed rule precedence:
// greetings, affirmations, explicit open-first phrasing, then the domain
// keyword sets in priority order, and unknown as the terminal rule.
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []rule{
			{matchAnyWord(greetingWords), TypeGreeting},
			{matchAffirmation, TypeConfirmation},
			{openFirstRe.MatchString, TypeOpenFirst},
			{matchAnyKeyword(courseWords), TypeCourseSearch},
			{matchAnyKeyword(libraryWords), TypeLibrarySearch},
			{matchAnyKeyword(internshipWords), TypeInternship},
			{matchAnyKeyword(newsWords), TypeNews},
			{matchAnyKeyword(premiumWords), TypePremium},
			{matchAnyKeyword(messagesWords), TypeMessages},
			{matchAnyKeyword(settingsWords), TypeSettings},
			{matchAnyKeyword(certificateWords), TypeCertificate},
			{matchAnyKeyword(enrollWords), TypeEnroll},
		},
	}
}

// Classify returns exactly one Intent for a non-empty utterance. The caller
// must reject empty input before calling. Input is lower-cased and trimmed
// here; the residual Query keeps the normalized form for lookup intents.
func (c *Classifier) Classify(utterance string) Intent {
	input := strings.ToLower(strings.TrimSpace(utterance))

	for _, r := range c.rules {
		if r.match(input) {
			return Intent{Type: r.typ, Query: residualQuery(r.typ, input)}
		}
	}
	return Intent{Type: TypeUnknown, Query: input}
}

// residualQuery keeps the query string only for intents that run a lookup
// or carry a filter into navigation.
func residualQuery(typ Type, input string) string {
	switch typ {
	case TypeCourseSearch, TypeLibrarySearch:
		return input
	default:
		return ""
	}
}

// matchAnyWord matches whole words, so "hey" does not fire inside
// "cheyenne".
func matchAnyWord(words []string) func(string) bool {
	return func(input string) bool {
		for _, f := range strings.FieldsFunc(input, isSeparator) {
			for _, w := range words {
				if f == w {
					return true
				}
			}
		}
		return false
	}
}

// matchAnyKeyword matches substrings, the way domain vocabulary appears in
// free text ("stages" contains "stage").
func matchAnyKeyword(keywords []string) func(string) bool {
	return func(input string) bool {
		for _, kw := range keywords {
			if strings.Contains(input, kw) {
				return true
			}
		}
		return false
	}
}

// matchAffirmation matches only when the whole utterance is a short
// affirmation, optionally followed by "merci".
func matchAffirmation(input string) bool {
	trimmed := strings.TrimRight(input, " !.?")
	trimmed = strings.TrimSuffix(trimmed, " merci")
	trimmed = strings.TrimRight(trimmed, " !.?")
	for _, a := range affirmations {
		if trimmed == a {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return r == ' ' || r == ',' || r == '!' || r == '?' || r == '.' || r == '\'' || r == '\t' || r == '\n'
}
