package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	p := NewPreprocessor(nil)
	tests := []struct {
		in, want string
	}{
		{"cuanto cuesta el paracetamol", "paracetamol"},
		{"¿Cuánto cuesta el Paracetamol?", "paracetamol"},
		{"dame el precio de la amoxicilina por favor", "amoxicilina"},
		{"How much does it cost the ibuprofen", "ibuprofen"},
		{"give me the price of aspirin", "aspirin"},
		{"report on harina pan", "harina pan"},
		{"status of  insulina ", "insulina"},
		{"precio acetaminofen 0,5mg", "acetaminofen 0,5mg"},
		{"cuanto cuesta", ""},
		{"", ""},
		{"xyz123", "xyz123"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Clean(tt.in))
		})
	}
}

func TestClean_OverlappingPhrasesConsumedOnce(t *testing.T) {
	p := NewPreprocessor([]string{"precio", "el precio de", "precio de"})
	assert.Equal(t, []string{"el precio de", "precio de", "precio"}, p.Phrases())
	assert.Equal(t, "queso de cabra", p.Clean("el precio de queso de cabra"))
}

func TestClean_WholeWordsOnly(t *testing.T) {
	p := NewPreprocessor([]string{"la"})
	assert.Equal(t, "lata atun", p.Clean("la lata atun"))
}

func TestClean_CustomPhrasesFolded(t *testing.T) {
	p := NewPreprocessor([]string{"Cuánto Vale"})
	assert.Equal(t, "arroz", p.Clean("cuanto vale arroz"))
}

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)
	tests := []struct {
		in   string
		want Intent
	}{
		{"activar modo gerencia", IntentActivateManagement},
		{"Activar Modo Gerencia por favor", IntentActivateManagement},
		{"cuales productos estan vencidos", IntentExpiredReport},
		{"show expired items", IntentExpiredReport},
		{"que debo reponer", IntentLowStockReport},
		{"inversión de reposición", IntentLowStockReport},
		{"reporte 80/20", IntentParetoReport},
		{"analisis pareto", IntentParetoReport},
		{"quien es el mejor vendedor", IntentTopPerformer},
		{"cuanto cuesta el paracetamol", IntentPriceLookup},
		{"", IntentPriceLookup},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.in))
		})
	}
}

func TestClassify_RulesAreAdditive(t *testing.T) {
	rules := append(DefaultIntentRules(), IntentRule{Intent: "margin_report", Keywords: []string{"margen"}})
	c := NewClassifier(rules)
	assert.Equal(t, Intent("margin_report"), c.Classify("reporte de margen"))
	assert.Equal(t, IntentExpiredReport, c.Classify("vencidos"))
}

func TestIntent_IsReport(t *testing.T) {
	assert.True(t, IntentExpiredReport.IsReport())
	assert.True(t, IntentParetoReport.IsReport())
	assert.False(t, IntentPriceLookup.IsReport())
	assert.False(t, IntentActivateManagement.IsReport())
}

func TestParseSource(t *testing.T) {
	assert.Equal(t, SourceVoice, ParseSource("VOICE"))
	assert.Equal(t, SourceOCR, ParseSource("ocr"))
	assert.Equal(t, SourceTyped, ParseSource(""))
	assert.Equal(t, SourceTyped, ParseSource("keyboard"))
	assert.True(t, SourceOCR.Informal())
	assert.False(t, SourceTyped.Informal())
}
