package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/whisker/pkg/model"
)

func TestBanListAddIsIdempotent(t *testing.T) {
	b := model.NewBanList()

	gt.True(t, b.Add("Egypt"))
	gt.False(t, b.Add("Egypt"))
	gt.Equal(t, b.Len(), 1)
	gt.Equal(t, b.Tokens(), []string{"Egypt"})
}

func TestBanListRemoveIsIdempotent(t *testing.T) {
	b := model.NewBanList("Egypt", "Bengal")

	gt.True(t, b.Remove("Egypt"))
	gt.False(t, b.Remove("Egypt"))
	gt.False(t, b.Remove("never added"))
	gt.Equal(t, b.Tokens(), []string{"Bengal"})
}

func TestBanListRoundTrip(t *testing.T) {
	t.Run("token absent before ban", func(t *testing.T) {
		b := model.NewBanList("USA")
		before := b.Tokens()

		b.Add("Egypt")
		b.Remove("Egypt")

		gt.Equal(t, b.Tokens(), before)
	})

	t.Run("token present before ban", func(t *testing.T) {
		b := model.NewBanList("Egypt", "USA")

		b.Add("Egypt")
		gt.Equal(t, b.Tokens(), []string{"Egypt", "USA"})

		// Unban removes the token entirely: the pre-image of the idempotent
		// ban is the list without the token
		b.Remove("Egypt")
		gt.Equal(t, b.Tokens(), []string{"USA"})
	})

	t.Run("empty list", func(t *testing.T) {
		b := model.NewBanList()
		b.Add("Active, Energetic")
		b.Remove("Active, Energetic")
		gt.Equal(t, b.Len(), 0)
		gt.A(t, b.Tokens()).Length(0)
	})
}

func TestBanListKeepsInsertionOrder(t *testing.T) {
	b := model.NewBanList()
	for _, token := range []string{"c", "a", "b", "a"} {
		b.Add(token)
	}
	gt.Equal(t, b.Tokens(), []string{"c", "a", "b"})

	b.Remove("a")
	b.Add("a")
	gt.Equal(t, b.Tokens(), []string{"c", "b", "a"})
}

func TestBanListCloneIsIndependent(t *testing.T) {
	b := model.NewBanList("Egypt")
	c := b.Clone()
	c.Add("USA")

	gt.Equal(t, b.Len(), 1)
	gt.Equal(t, c.Len(), 2)
	gt.False(t, b.Contains("USA"))
}

func TestNilBanList(t *testing.T) {
	var b *model.BanList
	gt.False(t, b.Contains("anything"))
	gt.Equal(t, b.Len(), 0)
	gt.A(t, b.Tokens()).Length(0)
	gt.Equal(t, b.Clone().Len(), 0)
}

func TestBanListExcludes(t *testing.T) {
	breed := &model.Breed{
		ID:          "abys",
		Name:        "Abyssinian",
		Origin:      "Egypt",
		Temperament: "Active, Energetic",
	}

	testCases := []struct {
		name     string
		tokens   []string
		excluded bool
	}{
		{"empty", nil, false},
		{"name", []string{"Abyssinian"}, true},
		{"origin", []string{"Egypt"}, true},
		{"whole temperament", []string{"Active, Energetic"}, true},
		{"single temperament tag", []string{"Active"}, false},
		{"description or other text", []string{"Bengal", "USA"}, false},
		{"case differs", []string{"egypt"}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b := model.NewBanList(tc.tokens...)
			gt.Equal(t, b.Excludes(breed), tc.excluded)
		})
	}
}
