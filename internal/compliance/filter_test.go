package compliance

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_Check(t *testing.T) {
	f := NewFilter(DefaultWords())

	tests := []struct {
		name string
		msg  string
		word string
	}{
		{name: "clean", msg: "Olá Maria, temos novidades na loja!"},
		{name: "exact", msg: "promoção de cigarro hoje", word: "cigarro"},
		{name: "upper case", msg: "SEXO", word: "sexo"},
		{name: "mixed case accent", msg: "Sem ÁLCOOL no evento", word: "álcool"},
		{name: "substring inside word", msg: "Tabacaria e TABACOS", word: "tabaco"},
		{name: "multi word phrase", msg: "Vem pros Jogos De Azar", word: "jogos de azar"},
		{name: "decomposed accent", msg: "sem munic\u0327a\u0303o", word: "munição"},
		{name: "first in list order wins", msg: "armas e drogas", word: "drogas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.Check(tt.msg)
			if tt.word == "" {
				assert.NoError(t, err)
				return
			}
			var v *ViolationError
			require.True(t, errors.As(err, &v), "expected violation, got %v", err)
			assert.Equal(t, tt.word, v.Word)
		})
	}
}

func TestFilter_ZeroValueAcceptsEverything(t *testing.T) {
	var f Filter
	assert.NoError(t, f.Check("drogas"))
	assert.Equal(t, 0, f.Len())
}

func TestNewFilter_DropsBlankAndDuplicates(t *testing.T) {
	f := NewFilter([]string{" armas ", "", "ARMAS", "sexo", "   "})
	if diff := cmp.Diff([]string{"armas", "sexo"}, f.Words()); diff != "" {
		t.Errorf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultWords_ReturnsCopy(t *testing.T) {
	w := DefaultWords()
	w[0] = "changed"
	assert.Equal(t, "drogas", DefaultWords()[0])
	assert.Len(t, DefaultWords(), 16)
}

func TestList_AddRemove(t *testing.T) {
	l := NewList([]string{"armas"})

	added, err := l.Add("Pirataria")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = l.Add("PIRATARIA")
	require.NoError(t, err)
	assert.False(t, added, "duplicate should not be added")

	_, err = l.Add("  ")
	assert.ErrorIs(t, err, ErrBlankWord)

	assert.Equal(t, []string{"armas", "Pirataria"}, l.Words())

	assert.True(t, l.Remove("ARMAS"))
	assert.False(t, l.Remove("armas"))
	assert.Equal(t, []string{"Pirataria"}, l.Words())
}

func TestList_SnapshotIsolation(t *testing.T) {
	l := NewList([]string{"armas"})
	snap := l.Snapshot()

	_, err := l.Add("drogas")
	require.NoError(t, err)

	assert.NoError(t, snap.Check("drogas"), "old snapshot must not see new words")
	assert.Error(t, l.Snapshot().Check("drogas"))
}

func TestList_Version(t *testing.T) {
	l := NewList(nil)
	assert.Equal(t, uint64(0), l.Version())

	_, _ = l.Add("armas")
	_, _ = l.Add("armas") // duplicate, no change
	l.Remove("missing")
	assert.Equal(t, uint64(1), l.Version())

	l.Replace([]string{"x", "y"})
	assert.Equal(t, uint64(2), l.Version())
	assert.Equal(t, 2, l.Len())
}

func TestList_ConcurrentAccess(t *testing.T) {
	l := NewList(DefaultWords())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = l.Add("temporário")
				l.Remove("temporário")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = l.Snapshot().Check("mensagem com drogas")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 16, l.Len())
}
