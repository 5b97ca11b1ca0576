package mrs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/delph-in/gomrs/mrs"
)

func TestParsePredicateKinds(t *testing.T) {
	tests := []struct {
		input     string
		kind      mrs.PredicateKind
		canonical string
	}{
		{"udef_q", mrs.AbstractPred, "udef_q"},
		{"udef_q_rel", mrs.AbstractPred, "udef_q"},
		{"pron", mrs.AbstractPred, "pron"},
		{`"_dog_n_1_rel"`, mrs.SurfacePred, "_dog_n_1"},
		{"'_dog_n_1", mrs.SurfacePred, "_dog_n_1"},
		{"_dog_n_1", mrs.RealPred, "_dog_n_1"},
		{"_bark_v_1_rel", mrs.RealPred, "_bark_v_1"},
		{"_almost_a_1", mrs.RealPred, "_almost_a_1"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := mrs.ParsePredicate(tt.input)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.canonical, p.Canonical())
		})
	}
}

func TestPredicateNormalizationConverges(t *testing.T) {
	// Surface, real, and _rel-suffixed forms of the same predicate all
	// normalize to one canonical string.
	forms := []string{"_dog_n_1", "_Dog_n_1", "_dog_n_1_rel", `"_dog_n_1_rel"`, "'_dog_n_1"}
	for _, f := range forms {
		assert.Equal(t, "_dog_n_1", mrs.ParsePredicate(f).Canonical(), f)
	}
}

func TestRealPredDecomposition(t *testing.T) {
	p := mrs.ParsePredicate("_look_v_up")
	assert.Equal(t, mrs.RealPred, p.Kind)
	assert.Equal(t, "look", p.Lemma)
	assert.Equal(t, "v", p.Pos)
	assert.Equal(t, "up", p.Sense)

	p = mrs.ParsePredicate("_dog_n")
	assert.Equal(t, "dog", p.Lemma)
	assert.Equal(t, "n", p.Pos)
	assert.Equal(t, "", p.Sense)
}

func TestRealPredDecompositionMultiWordLemma(t *testing.T) {
	// The lemma may contain underscores; splitting works from the right.
	p := mrs.ParsePredicate("_battery_operated_a_1")
	assert.Equal(t, mrs.RealPred, p.Kind)
	assert.Equal(t, "battery_operated", p.Lemma)
	assert.Equal(t, "a", p.Pos)
	assert.Equal(t, "1", p.Sense)
	assert.Equal(t, "_battery_operated_a_1", p.Canonical())

	p = mrs.ParsePredicate("_battery_operated_a")
	assert.Equal(t, "battery_operated", p.Lemma)
	assert.Equal(t, "a", p.Pos)
	assert.Equal(t, "", p.Sense)

	// No single-letter part of speech anywhere: not decomposable.
	p = mrs.ParsePredicate("_foo_bar")
	assert.Equal(t, mrs.AbstractPred, p.Kind)
	assert.Equal(t, "_foo_bar", p.Canonical())
}

func TestNewRealPred(t *testing.T) {
	p := mrs.NewRealPred("Bark", "V", "1")
	assert.Equal(t, "_bark_v_1", p.Canonical())
	assert.Equal(t, "_bark_v_1", p.String())

	s := mrs.NewSurfacePred("_bark_v_1_rel")
	assert.Equal(t, `"_bark_v_1"`, s.String(), "surface predicates render quoted")
	assert.Equal(t, p.Canonical(), s.Canonical())
}
