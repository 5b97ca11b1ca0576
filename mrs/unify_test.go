package mrs_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delph-in/gomrs/mrs"
)

type mention struct {
	vid   int
	sort  string
	props *mrs.Properties
}

func replay(t *testing.T, mentions []mention) ([]mrs.Binding, error) {
	t.Helper()
	u := mrs.NewUnifier()
	for _, m := range mentions {
		if _, err := u.Add(m.vid, m.sort, m.props); err != nil {
			return nil, err
		}
	}
	return u.Bindings(), nil
}

func TestUnifierMergesPartialMentions(t *testing.T) {
	bindings, err := replay(t, []mention{
		{2, "e", mrs.NewProperties("TENSE", "pres")},
		{2, "e", mrs.NewProperties("MOOD", "indicative")},
		{2, "", nil},
	})
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, "e2", bindings[0].Variable.String())
	tense, _ := bindings[0].Properties.Get("TENSE")
	mood, _ := bindings[0].Properties.Get("MOOD")
	assert.Equal(t, "pres", tense)
	assert.Equal(t, "indicative", mood)
}

func TestUnifierIdempotentMention(t *testing.T) {
	bindings, err := replay(t, []mention{
		{3, "x", mrs.NewProperties("NUM", "sg")},
		{3, "x", mrs.NewProperties("NUM", "sg")},
	})
	require.NoError(t, err)
	num, _ := bindings[0].Properties.Get("NUM")
	assert.Equal(t, "sg", num)
}

func TestUnifierPropertyConflict(t *testing.T) {
	_, err := replay(t, []mention{
		{1, "x", mrs.NewProperties("NUM", "sg")},
		{1, "x", mrs.NewProperties("NUM", "pl")},
	})
	var conflict *mrs.VarConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "x1", conflict.Var)
	assert.Equal(t, "NUM", conflict.Key)
	assert.Equal(t, "sg", conflict.Old)
	assert.Equal(t, "pl", conflict.New)
}

func TestUnifierSortConflict(t *testing.T) {
	_, err := replay(t, []mention{
		{3, "x", nil},
		{3, "e", nil},
	})
	var conflict *mrs.VarConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Empty(t, conflict.Key)
	assert.Equal(t, "x", conflict.Old)
	assert.Equal(t, "e", conflict.New)
}

func TestUnifierLateSortDeclaration(t *testing.T) {
	u := mrs.NewUnifier()
	_, err := u.Add(7, "", nil)
	require.NoError(t, err)
	_, err = u.Add(7, "i", nil)
	require.NoError(t, err, "filling in an unknown sort is not a conflict")
	assert.Equal(t, "i7", u.Variable(7).String())
}

func TestUnifierReferencedOnlyVariable(t *testing.T) {
	u := mrs.NewUnifier()
	_, err := u.Mention("i4")
	require.NoError(t, err)
	_, err = u.Add(9, "", nil)
	require.NoError(t, err)

	bindings := u.Bindings()
	require.Len(t, bindings, 2)
	assert.Equal(t, 0, bindings[0].Properties.Len(), "referenced-only variables get empty bags")
	assert.Equal(t, mrs.UnknownSort, bindings[1].Variable.Sort(), "undeclared sort defaults")
}

func TestUnifierOrderInvariance(t *testing.T) {
	mentions := []mention{
		{0, "h", nil},
		{2, "e", mrs.NewProperties("TENSE", "pres")},
		{2, "e", mrs.NewProperties("MOOD", "indicative", "TENSE", "pres")},
		{3, "x", mrs.NewProperties("NUM", "sg", "PERS", "3")},
		{3, "x", mrs.NewProperties("PERS", "3")},
		{3, "", nil},
	}

	want, err := replay(t, mentions)
	require.NoError(t, err)
	byID := func(bs []mrs.Binding) map[string]*mrs.Properties {
		m := make(map[string]*mrs.Properties)
		for _, b := range bs {
			m[b.Variable.String()] = b.Properties
		}
		return m
	}
	wantMap := byID(want)

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]mention(nil), mentions...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		got, err := replay(t, shuffled)
		require.NoError(t, err)
		gotMap := byID(got)
		require.Len(t, gotMap, len(wantMap))
		for id, props := range wantMap {
			assert.True(t, props.Equal(gotMap[id]), "bag for %s differs", id)
		}
	}
}

func TestUnifierConflictInvariantUnderOrder(t *testing.T) {
	mentions := []mention{
		{1, "x", mrs.NewProperties("NUM", "sg")},
		{1, "x", mrs.NewProperties("NUM", "pl")},
	}
	for trial := 0; trial < 2; trial++ {
		_, err := replay(t, []mention{mentions[trial], mentions[1-trial]})
		var conflict *mrs.VarConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "NUM", conflict.Key)
	}
}
