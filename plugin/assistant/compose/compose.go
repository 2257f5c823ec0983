// Package compose turns a classified intent into the final answer text,
// an optional search payload and an optional navigation side-effect.
package compose

import (
	"fmt"
	"strings"

	"github.com/edusphere/edusphere/plugin/assistant/catalog"
	"github.com/edusphere/edusphere/plugin/assistant/intent"
	"github.com/edusphere/edusphere/store"
)

// View identifies a destination view for the navigation collaborator.
type View string

const (
	ViewCourses     View = "courses"
	ViewCourse      View = "course"
	ViewLibrary     View = "library"
	ViewInternships View = "internships"
	ViewNews        View = "news"
	ViewPremium     View = "premium"
	ViewMessages    View = "messages"
	ViewSettings    View = "settings"
	ViewEnroll      View = "enroll"
)

// Navigation describes a navigation request. The composer never navigates
// itself; it only signals the destination to an external collaborator.
type Navigation struct {
	View  View   `json:"view"`
	Query string `json:"query,omitempty"`
}

// DialogueContext is the cross-turn memory used to resolve short follow-up
// utterances. Each resolved turn fully replaces it.
type DialogueContext struct {
	LastIntent  intent.Type
	LastResults []catalog.Result
}

// Response is a fully composed answer, not yet revealed to the user.
type Response struct {
	Text       string
	Results    []catalog.Result
	Navigation *Navigation
}

const (
	greetingText = "Bonjour ! Je suis votre assistant Edusphere. Je peux vous aider à :\n" +
		"- trouver des cours,\n" +
		"- découvrir l'offre premium,\n" +
		"- explorer la médiathèque,\n" +
		"- chercher des stages,\n" +
		"- contacter vos professeurs via la messagerie,\n" +
		"- gérer vos paramètres et certificats.\n" +
		"Que puis-je faire pour vous ?"

	unknownText = "Je n'ai pas bien compris votre demande. Je peux vous aider sur ces sujets : " +
		"cours, premium, médiathèque, stages, messages, paramètres ou certificats. " +
		"Pouvez-vous reformuler ?"

	premiumText = "L'offre premium vous donne accès à tous les cours avancés, aux corrections " +
		"personnalisées et aux certificats. Souhaitez-vous voir les formules d'abonnement ?"

	premiumStepsText = "Très bien ! Pour vous abonner :\n" +
		"1. Ouvrez la page Premium.\n" +
		"2. Choisissez la formule mensuelle ou annuelle.\n" +
		"3. Validez le paiement sécurisé.\n" +
		"4. Profitez immédiatement de tous les contenus premium."

	libraryText = "La médiathèque regroupe livres, vidéos et documents de révision. " +
		"Je vous y emmène."

	libraryFilterText = "D'accord, j'ouvre la médiathèque avec votre filtre appliqué."

	internshipText = "Vous cherchez un stage ? L'espace Stages recense les offres " +
		"des entreprises partenaires. Je vous y emmène."

	internshipTipsText = "Voici quelques conseils pour votre recherche de stage :\n" +
		"- complétez votre profil et votre CV,\n" +
		"- activez les alertes sur les offres de votre filière,\n" +
		"- contactez directement les entreprises partenaires,\n" +
		"- demandez une recommandation à vos professeurs."

	newsText = "Voici les dernières actualités de la plateforme. Je vous emmène sur la page Actualités."

	messagesText = "Vous pouvez contacter vos professeurs et vos camarades via la messagerie. " +
		"Je vous y emmène."

	openMessagingText = "D'accord, j'ouvre votre messagerie."

	settingsText = "Vos paramètres de compte (profil, notifications, mot de passe) sont " +
		"accessibles depuis la page Paramètres. Je vous y emmène."

	certificateText = "Les certificats sont délivrés à la fin de chaque parcours premium réussi. " +
		"Vous les retrouvez dans votre profil, rubrique Certificats."

	enrollText = "Pour vous inscrire à un cours, ouvrez sa fiche et cliquez sur « S'inscrire ». " +
		"Je vous emmène vers le catalogue."

	rephraseText = "Désolé, une erreur s'est produite. Pouvez-vous reformuler votre demande ?"

	voiceUnavailableText = "La saisie vocale n'est pas disponible dans cet environnement. " +
		"Vous pouvez continuer à m'écrire votre demande."
)

// UnknownText is the generic clarification answer, also used as the
// fallback when external generation fails.
func UnknownText() string { return unknownText }

// RephraseText is the answer produced when turn processing fails
// unexpectedly.
func RephraseText() string { return rephraseText }

// VoiceUnavailableText explains that the voice collaborator cannot be used.
func VoiceUnavailableText() string { return voiceUnavailableText }

// Compose produces the final answer for an intent. It never fails: every
// branch terminates in a valid response, with the generic clarification as
// the terminal fallback.
func Compose(it intent.Intent, dctx DialogueContext, courses []*store.CourseRecord) Response {
	switch it.Type {
	case intent.TypeGreeting:
		return Response{Text: greetingText}

	case intent.TypeConfirmation:
		return composeConfirmation(dctx)

	case intent.TypeCourseSearch:
		results := catalog.Search(it.Query, courses)
		if len(results) == 0 {
			// Dead-end answers are worse than a clarification.
			return Response{Text: unknownText}
		}
		return Response{
			Text:    courseSummary(results),
			Results: results,
		}

	case intent.TypeOpenFirst:
		return composeOpenFirst(dctx.LastResults)

	case intent.TypeLibrarySearch:
		return Response{Text: libraryText, Navigation: &Navigation{View: ViewLibrary, Query: it.Query}}

	case intent.TypeInternship:
		return Response{Text: internshipText, Navigation: &Navigation{View: ViewInternships}}

	case intent.TypeNews:
		return Response{Text: newsText, Navigation: &Navigation{View: ViewNews}}

	case intent.TypePremium:
		return Response{Text: premiumText, Navigation: &Navigation{View: ViewPremium}}

	case intent.TypeMessages:
		return Response{Text: messagesText, Navigation: &Navigation{View: ViewMessages}}

	case intent.TypeSettings:
		return Response{Text: settingsText, Navigation: &Navigation{View: ViewSettings}}

	case intent.TypeEnroll:
		return Response{Text: enrollText, Navigation: &Navigation{View: ViewCourses}}

	case intent.TypeCertificate:
		return Response{Text: certificateText}

	default:
		return Response{Text: unknownText}
	}
}

// composeConfirmation resolves a bare "oui"/"ok" against the previous turn.
// This branch table is the only place cross-turn memory affects output.
func composeConfirmation(dctx DialogueContext) Response {
	switch dctx.LastIntent {
	case intent.TypePremium:
		return Response{Text: premiumStepsText, Navigation: &Navigation{View: ViewPremium}}

	case intent.TypeCourseSearch:
		if len(dctx.LastResults) > 0 {
			return composeOpenFirst(dctx.LastResults)
		}
		return Response{Text: unknownText}

	case intent.TypeMessages:
		return Response{Text: openMessagingText, Navigation: &Navigation{View: ViewMessages}}

	case intent.TypeLibrarySearch:
		return Response{Text: libraryFilterText, Navigation: &Navigation{View: ViewLibrary}}

	case intent.TypeInternship:
		return Response{Text: internshipTipsText}

	default:
		return Response{Text: unknownText}
	}
}

// composeOpenFirst opens the top-ranked result of the previous search.
// Without results it degrades to the generic clarification.
func composeOpenFirst(results []catalog.Result) Response {
	if len(results) == 0 {
		return Response{Text: unknownText}
	}
	top := results[0].Course
	return Response{
		Text:       fmt.Sprintf("J'ouvre le cours « %s » pour vous.", top.Title),
		Navigation: &Navigation{View: ViewCourse, Query: fmt.Sprintf("%d", top.ID)},
	}
}

// courseSummary builds the result-summary sentence for a catalog search.
func courseSummary(results []catalog.Result) string {
	titles := make([]string, 0, len(results))
	for _, r := range results {
		titles = append(titles, "« "+r.Course.Title+" »")
	}
	if len(results) == 1 {
		return fmt.Sprintf("J'ai trouvé le cours %s. Dites « oui » pour l'ouvrir.", titles[0])
	}
	return fmt.Sprintf("J'ai trouvé %d cours correspondants : %s. Dites « oui » pour ouvrir le premier.",
		len(results), strings.Join(titles, ", "))
}
