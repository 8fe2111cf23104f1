package service

import (
	"context"
	"testing"

	"github.com/alexivanou/geoweather-api/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_ResolveLang(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "en", f.svc.ResolveLang(""))
	assert.Equal(t, "de", f.svc.ResolveLang(" DE "))
	assert.Equal(t, "ar", f.svc.ResolveLang("ar"))
	assert.Equal(t, "en", f.svc.ResolveLang("tlh"))
}

func TestService_LocalizedMessage(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "City not found.", f.svc.LocalizedMessage("en", model.CodeCityNotFound))
	assert.Equal(t, "Stadt nicht gefunden.", f.svc.LocalizedMessage("de", model.CodeCityNotFound))
	assert.Equal(t, "Something went wrong.", f.svc.LocalizedMessage("en", model.CodeInvalidPlace))
}

func TestService_GetTranslationsFallsBack(t *testing.T) {
	f := newFixture(t)
	fr := f.svc.GetTranslations("fr")
	assert.Equal(t, "Wind", fr["wind"])
	assert.NotEqual(t, "Feels like", fr["feelsLike"])
}

func TestService_GetConditions(t *testing.T) {
	f := newFixture(t)
	de := f.svc.GetConditions("de")
	assert.Equal(t, "Bedeckt", de["3"].Label)
	assert.Equal(t, f.svc.GetConditions("en")["99"], de["99"])
}

func TestService_Recent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	paris := model.RecentPlace{Name: " Paris ", Country: "France", Lat: 48.85, Lon: 2.35}
	got, err := f.svc.AddRecent(ctx, "client-a", "fr", paris)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].Name)

	assert.Len(t, f.svc.GetRecent(ctx, "client-a", "fr"), 1)
	assert.Empty(t, f.svc.GetRecent(ctx, "client-b", "fr"))
	assert.Empty(t, f.svc.GetRecent(ctx, "client-a", "en"))

	_, err = f.svc.AddRecent(ctx, "client-a", "fr", model.RecentPlace{Name: "", Country: "France"})
	assertErrorCode(t, err, model.CodeInvalidPlace)

	_, err = f.svc.AddRecent(ctx, "client-a", "fr", model.RecentPlace{Name: "Nowhere", Country: "X", Lat: 120})
	assertErrorCode(t, err, model.CodeInvalidCoords)
}
