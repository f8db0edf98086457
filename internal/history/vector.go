package history

import (
	"math"
	"strings"

	"github.com/fyrsmithlabs/quoted/internal/textnorm"
)

// vocabulary is the fixed term set for the deterministic bag-of-words
// fallback vector. Terms are already normalized. The vector dimension is
// the vocabulary length, so fallback vectors from different processes are
// always comparable.
var vocabulary = []string{
	"web", "app", "movil", "plataforma", "sistema", "api", "ecommerce",
	"tienda", "software", "diseno", "desarrollo", "integracion",
	"marketing", "campana", "redes", "contenido", "marca", "publicidad",
	"seo", "evento", "boda", "congreso", "produccion",
	"construccion", "obra", "remodelacion", "vivienda", "acabados",
	"instalacion", "estructura", "proyecto",
	"consultoria", "asesoria", "diagnostico", "estrategia", "procesos",
	"venta", "distribucion", "inventario", "logistica",
	"fabricacion", "manufactura", "maquila", "ensamble",
	"capacitacion", "curso", "taller", "certificacion",
	"urgente", "corporativo", "startup", "pyme",
}

// BagOfWords builds a deterministic term-frequency vector over the fixed
// vocabulary, L2-normalized. It never fails; text with no vocabulary
// terms yields a zero vector, which cosine similarity treats as
// dissimilar to everything.
func BagOfWords(text string) []float32 {
	normalized := textnorm.Normalize(text)
	vec := make([]float32, len(vocabulary))
	for i, term := range vocabulary {
		vec[i] = float32(strings.Count(normalized, term))
	}
	return L2Normalize(vec)
}

// L2Normalize scales vec to unit length in place and returns it. Zero
// vectors are returned unchanged.
func L2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Cosine returns the cosine similarity of two vectors. Mismatched or
// empty vectors score zero rather than erroring, because a missing score
// only means "not similar" to the matcher.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
