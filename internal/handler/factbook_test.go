package handler

import (
	"context"
	"net/http"
	"testing"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/Payphone-Digital/factbook/internal/factbook"
	"github.com/Payphone-Digital/factbook/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePages struct {
	countryJSON string
	codesJSON   string
}

func (f *fakePages) CountryList(context.Context) (*factbook.PageData[factbook.CountryListData], error) {
	return &factbook.PageData[factbook.CountryListData]{Path: "/countries/"}, nil
}

func (f *fakePages) CountryCodes(context.Context) (*factbook.PageData[factbook.CountryCodeData], error) {
	page := &factbook.PageData[factbook.CountryCodeData]{Path: "/references/country-data-codes/"}
	page.Result.Data.Page.Title = "Country Data Codes"
	page.Result.Data.Page.JSON = f.codesJSON
	return page, nil
}

func (f *fakePages) Country(_ context.Context, slug string) (*factbook.PageData[factbook.CountryData], error) {
	if slug != "france" {
		return nil, apperrors.ErrPageNotFound
	}
	page := &factbook.PageData[factbook.CountryData]{Path: "/countries/france/"}
	page.Result.Data.Country.Title = "France"
	page.Result.Data.Country.Region = "Europe"
	page.Result.Data.Country.JSON = f.countryJSON
	return page, nil
}

func newFactbookEngine(pages *fakePages) *gin.Engine {
	h := NewFactbookHandler(pages, logger.NewContextLogger(zap.NewNop()))
	r := gin.New()
	r.GET("/countries", h.Countries)
	r.GET("/countries/:slug", h.Country)
	r.GET("/country-codes", h.CountryCodes)
	return r
}

func TestFactbookHandler_Country(t *testing.T) {
	r := newFactbookEngine(&fakePages{
		countryJSON: `{"code":"FR","name":"France","categories":[{"title":"Geography","comparative":false,"fields":[]}]}`,
	})

	w := do(r, http.MethodGet, "/countries/france", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "France", body["title"])
	values := body["values"].(map[string]any)
	assert.Equal(t, "FR", values["code"])
	category := values["categories"].([]any)[0].(map[string]any)
	assert.Equal(t, false, category["comparative"])

	w = do(r, http.MethodGet, "/countries/atlantis", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFactbookHandler_BrokenEmbeddedJSON(t *testing.T) {
	r := newFactbookEngine(&fakePages{countryJSON: `{"code":`, codesJSON: ""})

	w := do(r, http.MethodGet, "/countries/france", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(r, http.MethodGet, "/country-codes", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeBody(t, w)["details"])
}

func TestFactbookHandler_CountryCodes(t *testing.T) {
	r := newFactbookEngine(&fakePages{
		codesJSON: `{"name":"codes","country_codes":[{"entity":"France","iso_code_1":"FR","internet_code":".fr"}]}`,
	})

	w := do(r, http.MethodGet, "/country-codes", "")
	require.Equal(t, http.StatusOK, w.Code)

	values := decodeBody(t, w)["values"].(map[string]any)
	codes := values["country_codes"].([]any)
	require.Len(t, codes, 1)
	assert.Equal(t, ".fr", codes[0].(map[string]any)["internet_code"])

	w = do(r, http.MethodGet, "/countries", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
