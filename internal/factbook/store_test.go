package factbook

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"
	"time"

	apperrors "github.com/Payphone-Digital/factbook/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const countryListJSON = `{
  "componentChunkName": "component---src-templates-countries-js",
  "path": "/countries/",
  "result": {
    "data": {
      "countries": {"edges": [
        {"node": {"path": "/countries/france/", "redirect": "", "title": "France",
          "summary_document": {"localFile": {"publicURL": "/static/france-summary.pdf"}},
          "travel_document": null}}
      ]},
      "headerMenu": {"items": [{"order": 1, "title": "Countries", "url": "/countries/"}]},
      "page": {"title": "Countries", "yoast_meta": {}},
      "reference": null
    },
    "pageContext": {"absPath": "/countries/", "footerMenu": 2, "headerMenu": 1, "id": "p1", "wordpress_id": "77"}
  },
  "staticQueryHashes": ["123", "456"]
}`

func countryPage(t *testing.T) string {
	t.Helper()
	values := `{"categories":[{"title":"Geography","comparative":false,"fields":[
		{"title":"Area","comparative":"country comparison to the world: 43","content":"643,801 sq km","definition":"","field_id":"279","id":"1"},
		{"title":"Climate","comparative":null,"content":"temperate","definition":"","field_id":"284","id":"2"}]}],
		"code":"FR","flag_description":"three equal vertical bands","media":[{"caption":"flag","category":"flag","full":"/f.jpg","thumb":"/t.jpg","type":"image"}],
		"name":"France","published":"2026-01-01","region":"Europe",
		"summary":{"caption":"","category":"","full":"/s.pdf","thumb":"","type":"summary"},
		"travel":{"caption":"","category":"","full":"/t.pdf","thumb":"","type":"travel"}}`
	embedded, err := json.Marshal(values)
	require.NoError(t, err)

	return `{"componentChunkName":"c","path":"/countries/france/","result":{"data":{
		"country":{"acf":{},"code":"FR","json":` + string(embedded) + `,"launchpad_modified":"","path":"/countries/france/","region":"Europe","title":"France","yoast_meta":{}},
		"headerMenu":{"items":[]},"ocean":null},"pageContext":{"absPath":"","footerMenu":0,"headerMenu":0,"id":"","wordpress_id":""}},"staticQueryHashes":[]}`
}

func codesPage(t *testing.T) string {
	t.Helper()
	values := `{"name":"Country Data Codes","updated":"2026","description":"codes","country_codes":[
		{"entity":"France","gec":"FR","iso_code_1":"FR","iso_code_2":"FRA","iso_code_3":"250","stanag_code":"FRA","internet_code":".fr","comment":""}]}`
	embedded, err := json.Marshal(values)
	require.NoError(t, err)

	// headerMenu.items is a single object on this page.
	return `{"componentChunkName":"c","path":"/references/country-data-codes/","result":{"data":{"page":{
		"acf":{"parent_relative_path":"/references/","parent_title":"References"},
		"headerMenu":{"items":{"order":1,"title":"References","url":"/references/"}},
		"json":` + string(embedded) + `,"title":"Country Data Codes","yoast_meta":{}}},
		"pageContext":{"absPath":"","footerMenu":0,"headerMenu":0,"id":"","wordpress_id":""}},"staticQueryHashes":[]}`
}

func newTestStore(t *testing.T) (*Store, fstest.MapFS) {
	t.Helper()
	fsys := fstest.MapFS{
		"countries/page-data.json":                     {Data: []byte(countryListJSON)},
		"countries/france/page-data.json":              {Data: []byte(countryPage(t))},
		"references/country-data-codes/page-data.json": {Data: []byte(codesPage(t))},
		"countries/broken/page-data.json":              {Data: []byte(`{"result":`)},
	}
	s := NewStore(fsys, time.Minute, nil)
	t.Cleanup(s.Close)
	return s, fsys
}

func TestStore_CountryList(t *testing.T) {
	s, _ := newTestStore(t)

	page, err := s.CountryList(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/countries/", page.Path)
	assert.Equal(t, []string{"123", "456"}, page.StaticQueryHashes)
	assert.Equal(t, "77", page.Result.PageContext.WordpressID)
	require.Len(t, page.Result.Data.Countries.Edges, 1)

	node := page.Result.Data.Countries.Edges[0].Node
	assert.Equal(t, "France", node.Title)
	require.NotNil(t, node.SummaryDocument)
	assert.Equal(t, "/static/france-summary.pdf", node.SummaryDocument.LocalFile.PublicURL)
	assert.Nil(t, node.TravelDocument)
	assert.Len(t, page.Result.Data.HeaderMenu.Items, 1)
}

func TestStore_CountryDecodesValues(t *testing.T) {
	s, _ := newTestStore(t)

	page, err := s.Country(context.Background(), "france")
	require.NoError(t, err)

	values, err := page.Result.Data.Decode()
	require.NoError(t, err)

	assert.Equal(t, "France", values.Name)
	assert.Equal(t, FileImage, values.Media[0].Type)
	assert.True(t, values.Media[0].Type.Valid())

	geo, ok := values.Category("Geography")
	require.True(t, ok)
	assert.True(t, geo.Comparative.Disabled)
	require.NotNil(t, geo.Fields[0].Comparative.Value)
	assert.Contains(t, *geo.Fields[0].Comparative.Value, "comparison")
	assert.Nil(t, geo.Fields[1].Comparative.Value)
	assert.False(t, geo.Fields[1].Comparative.Disabled)
}

func TestStore_CountryCodesSingleMenuItem(t *testing.T) {
	s, _ := newTestStore(t)

	page, err := s.CountryCodes(context.Background())
	require.NoError(t, err)
	assert.Len(t, page.Result.Data.Page.HeaderMenu.Items, 1)

	codes, err := page.Result.Data.Decode()
	require.NoError(t, err)
	require.Len(t, codes.CountryCodes, 1)
	assert.Equal(t, "FRA", codes.CountryCodes[0].ISOCode2)
}

func TestStore_Errors(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	_, err := s.Country(ctx, "atlantis")
	assert.ErrorIs(t, err, apperrors.ErrPageNotFound)

	_, err = s.Country(ctx, "../etc")
	assert.True(t, apperrors.IsValidation(err))

	_, err = s.Country(ctx, "broken")
	assert.ErrorIs(t, err, apperrors.ErrInternal)
}

func TestStore_CachesDecodedPage(t *testing.T) {
	s, fsys := newTestStore(t)
	ctx := context.Background()

	first, err := s.CountryList(ctx)
	require.NoError(t, err)

	delete(fsys, "countries/page-data.json")

	second, err := s.CountryList(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestComparative_RoundTrip(t *testing.T) {
	for _, in := range []string{`"rank 4"`, `false`, `null`} {
		var c Comparative
		require.NoError(t, json.Unmarshal([]byte(in), &c))
		out, err := json.Marshal(c)
		require.NoError(t, err)
		assert.JSONEq(t, in, string(out))
	}

	var c Comparative
	assert.Error(t, json.Unmarshal([]byte(`42`), &c))
}
