package quote

import (
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

const minDescriptionChars = 10

// blacklist trips an immediate rejection. Tokens are matched on word
// boundaries so "xd" does not fire inside e.g. "expedición".
var blacklist = []string{
	"xd", "jaja", "jeje", "lol", "test", "prueba123", "asdf", "qwerty",
	"broma", "chiste",
}

// fantasyPatterns reject requests for physically nonsensical builds.
var fantasyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`castillo (flotante|volador|en el aire)`),
	regexp.MustCompile(`(nave|cohete) espacial`),
	regexp.MustCompile(`maquina del tiempo`),
	regexp.MustCompile(`(torre|edificio|casa) (hasta|en) la luna`),
	regexp.MustCompile(`ciudad (submarina|subterranea) completa`),
	regexp.MustCompile(`robot gigante`),
}

// professionalVocabulary is the allow-list: at least one of these must
// appear for a description to be treated as a real commission.
var professionalVocabulary = []string{
	"proyecto", "servicio", "desarrollo", "diseno", "construccion",
	"remodelacion", "evento", "campana", "consultoria", "asesoria",
	"capacitacion", "curso", "produccion", "instalacion", "fabricacion",
	"venta", "distribucion", "presupuesto", "cotizacion", "propuesta",
	"sistema", "plataforma", "web", "app", "aplicacion", "marketing",
	"obra", "vivienda", "anteproyecto", "negocio", "empresa", "cliente",
	"marca", "contenido", "taller", "necesito", "requiero", "quiero",
	"busco",
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// validate applies the rejection rules in order: length, blacklist,
// fantasy patterns, then the professional allow-list. A nil return means
// the description may proceed to sector resolution.
func validate(description string) *RejectedError {
	text := textnorm.Normalize(strings.TrimSpace(description))
	if len([]rune(text)) < minDescriptionChars {
		return &RejectedError{
			Reason:  ReasonTooShort,
			Message: "la descripción es demasiado corta; describe el proyecto en al menos una frase",
		}
	}

	words := wordPattern.FindAllString(text, -1)
	wordSet := make(map[string]struct{}, len(words))
	for _, w := range words {
		wordSet[w] = struct{}{}
	}
	for _, token := range blacklist {
		if _, ok := wordSet[token]; ok {
			return &RejectedError{
				Reason:  ReasonBlacklisted,
				Message: "la descripción no parece una solicitud seria de cotización",
			}
		}
	}

	for _, pattern := range fantasyPatterns {
		if pattern.MatchString(text) {
			return &RejectedError{
				Reason:  ReasonImplausible,
				Message: "el proyecto descrito no es realizable; describe un proyecto real",
			}
		}
	}

	for _, keyword := range professionalVocabulary {
		if strings.Contains(text, keyword) {
			return nil
		}
	}
	return &RejectedError{
		Reason:  ReasonNoVocabulary,
		Message: "no se reconoce un proyecto profesional en la descripción; menciona qué servicio necesitas",
	}
}
