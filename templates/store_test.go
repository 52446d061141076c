package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/sift/models"
)

func sample(name string) models.Template {
	return models.Template{
		Name:         name,
		URL:          "https://example.com/countries",
		Domain:       "example.com",
		ExportFormat: "csv",
		Fields: []models.DetectedField{{
			Name:      "Capital",
			Type:      models.TypeCapital,
			Selectors: []models.Selector{models.Scoped(".country", ".country-capital")},
		}},
	}
}

func TestStore_CRUD(t *testing.T) {
	s := NewStore()

	created := s.Create(sample("countries"))
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "countries", got.Name)
	assert.Equal(t, ".country .country-capital", got.Fields[0].Selectors[0].String())

	updated, err := s.Update(created.ID, sample("renamed"))
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "renamed", updated.Name)

	require.NoError(t, s.Delete(created.ID))
	_, err = s.Get(created.ID)
	assert.True(t, models.HasCode(err, models.ErrCodeNotFound))
	assert.True(t, models.HasCode(s.Delete(created.ID), models.ErrCodeNotFound))
	_, err = s.Update(created.ID, sample("x"))
	assert.True(t, models.HasCode(err, models.ErrCodeNotFound))
}

func TestStore_ListOrder(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	first := s.Create(sample("a"))
	second := s.Create(sample("b"))

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestStore_ReturnedFieldsAreIsolated(t *testing.T) {
	s := NewStore()
	created := s.Create(sample("a"))

	got, _ := s.Get(created.ID)
	got.Fields[0].Name = "changed"

	again, _ := s.Get(created.ID)
	assert.Equal(t, "Capital", again.Fields[0].Name)
}
