package signals

import "strings"

// softwareSignal is one complexity signal for the software sub-detector.
type softwareSignal struct {
	name     string
	keywords []string
}

var softwareSignals = []softwareSignal{
	{"web-admin", []string{"panel de administracion", "panel admin", "dashboard", "backoffice"}},
	{"mobile-app", []string{"app movil", "aplicacion movil", "android", "ios"}},
	{"external-api", []string{"api", "webhook", "servicio externo"}},
	{"analytics", []string{"analitica", "reportes", "metricas", "estadisticas"}},
	{"integrations", []string{"stripe", "paypal", "mercadopago", "sap", "salesforce", "hubspot", "whatsapp"}},
	{"saas", []string{"saas", "multi-tenant", "multitenant", "suscripcion", "suscripciones"}},
}

// Descriptions longer than this add one complexity point.
const longDescriptionChars = 400

// detectSoftwareProfile scores description complexity for the software
// sector. One point per signal group that fires, plus one for a long
// description. The score is bucketed into low (<=2), medium (<=4), high.
func detectSoftwareProfile(text string) *SoftwareProfile {
	profile := &SoftwareProfile{}

	for _, sig := range softwareSignals {
		for _, kw := range sig.keywords {
			if strings.Contains(text, kw) {
				profile.Score++
				profile.Signals = append(profile.Signals, sig.name)
				break
			}
		}
	}
	if len(text) > longDescriptionChars {
		profile.Score++
		profile.Signals = append(profile.Signals, "long-description")
	}

	switch {
	case profile.Score <= 2:
		profile.Complexity = ComplexityLow
	case profile.Score <= 4:
		profile.Complexity = ComplexityMedium
	default:
		profile.Complexity = ComplexityHigh
	}
	return profile
}
