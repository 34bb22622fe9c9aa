// Package factbook models the statically generated page-data payloads of the
// country reference pages and serves them from disk.
package factbook

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PageData is the envelope every generated page-data.json file shares.
type PageData[T any] struct {
	ComponentChunkName string        `json:"componentChunkName"`
	Path               string        `json:"path"`
	Result             PageResult[T] `json:"result"`
	StaticQueryHashes  []string      `json:"staticQueryHashes"`
}

type PageResult[T any] struct {
	Data        T           `json:"data"`
	PageContext PageContext `json:"pageContext"`
}

type PageContext struct {
	AbsPath     string `json:"absPath"`
	FooterMenu  int    `json:"footerMenu"`
	HeaderMenu  int    `json:"headerMenu"`
	ID          string `json:"id"`
	WordpressID string `json:"wordpress_id"`
}

type YoastMeta map[string]any

type PublicFile struct {
	PublicURL string `json:"publicURL"`
}

type LocalFile struct {
	LocalFile PublicFile `json:"localFile"`
}

type HeaderMenuItem struct {
	Order int    `json:"order"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// HeaderMenuItems accepts either a list of items or a single bare item; the
// country-code page emits the latter.
type HeaderMenuItems []HeaderMenuItem

func (h *HeaderMenuItems) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*h = nil
		return nil
	case len(b) > 0 && b[0] == '{':
		var item HeaderMenuItem
		if err := json.Unmarshal(b, &item); err != nil {
			return err
		}
		*h = HeaderMenuItems{item}
		return nil
	default:
		var items []HeaderMenuItem
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		*h = items
		return nil
	}
}

type HeaderMenu struct {
	Items HeaderMenuItems `json:"items"`
}

type CountryNode struct {
	Path            string     `json:"path"`
	Redirect        string     `json:"redirect"`
	SummaryDocument *LocalFile `json:"summary_document"`
	Title           string     `json:"title"`
	TravelDocument  *LocalFile `json:"travel_document"`
}

type CountryEdge struct {
	Node CountryNode `json:"node"`
}

type CountryListData struct {
	Countries struct {
		Edges []CountryEdge `json:"edges"`
	} `json:"countries"`
	HeaderMenu HeaderMenu `json:"headerMenu"`
	Page       struct {
		Title     string    `json:"title"`
		YoastMeta YoastMeta `json:"yoast_meta"`
	} `json:"page"`
	Reference json.RawMessage `json:"reference"`
}

type CountryCodeData struct {
	Page struct {
		ACF struct {
			ParentRelativePath string `json:"parent_relative_path"`
			ParentTitle        string `json:"parent_title"`
		} `json:"acf"`
		HeaderMenu HeaderMenu `json:"headerMenu"`
		JSON       string     `json:"json"`
		Title      string     `json:"title"`
		YoastMeta  YoastMeta  `json:"yoast_meta"`
	} `json:"page"`
}

// Decode parses the embedded json string.
func (d *CountryCodeData) Decode() (*CountryCodeDataJSON, error) {
	var out CountryCodeDataJSON
	if err := decodeEmbedded(d.Page.JSON, &out); err != nil {
		return nil, fmt.Errorf("country codes: %w", err)
	}
	return &out, nil
}

type CountryCodeDataJSON struct {
	Name         string              `json:"name"`
	Updated      string              `json:"updated"`
	Description  string              `json:"description"`
	CountryCodes []CountryCodeValues `json:"country_codes"`
}

type CountryCodeValues struct {
	Entity       string `json:"entity"`        // English name
	GEC          string `json:"gec"`           // FIPS 10-4
	ISOCode1     string `json:"iso_code_1"`    // ISO 3166 alpha-2
	ISOCode2     string `json:"iso_code_2"`    // ISO 3166 alpha-3
	ISOCode3     string `json:"iso_code_3"`    // ISO 3166 numeric
	StanagCode   string `json:"stanag_code"`   // NATO STANAG 1059
	InternetCode string `json:"internet_code"` // ccTLD
	Comment      string `json:"comment"`
}

type CountryData struct {
	Country struct {
		ACF               map[string]any `json:"acf"`
		Code              string         `json:"code"`
		JSON              string         `json:"json"`
		LaunchpadModified string         `json:"launchpad_modified"`
		Path              string         `json:"path"`
		Region            string         `json:"region"`
		Title             string         `json:"title"`
		YoastMeta         YoastMeta      `json:"yoast_meta"`
	} `json:"country"`
	HeaderMenu HeaderMenu      `json:"headerMenu"`
	Ocean      json.RawMessage `json:"ocean"`
}

// Decode parses the embedded json string.
func (d *CountryData) Decode() (*CountryDataValues, error) {
	var out CountryDataValues
	if err := decodeEmbedded(d.Country.JSON, &out); err != nil {
		return nil, fmt.Errorf("country %s: %w", d.Country.Code, err)
	}
	return &out, nil
}

type FileType string

const (
	FileSummary  FileType = "summary"
	FileTravel   FileType = "travel"
	FileAudio    FileType = "audio"
	FileDocument FileType = "document"
	FileImage    FileType = "image"
)

func (t FileType) Valid() bool {
	switch t {
	case FileSummary, FileTravel, FileAudio, FileDocument, FileImage:
		return true
	}
	return false
}

type CountryDataFile struct {
	Caption  string   `json:"caption"`
	Category string   `json:"category"`
	Full     string   `json:"full"`
	Thumb    string   `json:"thumb"`
	Type     FileType `json:"type"`
}

// Comparative is a string, the literal false, or null.
type Comparative struct {
	Value    *string
	Disabled bool
}

func (c *Comparative) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "null":
		*c = Comparative{}
		return nil
	case "false":
		*c = Comparative{Disabled: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("comparative must be a string, false or null: %w", err)
	}
	*c = Comparative{Value: &s}
	return nil
}

func (c Comparative) MarshalJSON() ([]byte, error) {
	switch {
	case c.Value != nil:
		return json.Marshal(*c.Value)
	case c.Disabled:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

type CountryDataField struct {
	Comparative Comparative `json:"comparative"`
	Content     string      `json:"content"`
	Definition  string      `json:"definition"`
	FieldID     string      `json:"field_id"`
	ID          string      `json:"id"`
	Title       string      `json:"title"`
}

type CountryDataCategory struct {
	Comparative Comparative        `json:"comparative"`
	Fields      []CountryDataField `json:"fields"`
	Title       string             `json:"title"`
}

type CountryDataValues struct {
	Categories      []CountryDataCategory `json:"categories"`
	Code            string                `json:"code"`
	FlagDescription string                `json:"flag_description"`
	Media           []CountryDataFile     `json:"media"`
	Name            string                `json:"name"`
	Published       string                `json:"published"`
	Region          string                `json:"region"`
	Summary         CountryDataFile       `json:"summary"`
	Travel          CountryDataFile       `json:"travel"`
}

// Category returns the category titled title, if present.
func (v *CountryDataValues) Category(title string) (*CountryDataCategory, bool) {
	for i := range v.Categories {
		if v.Categories[i].Title == title {
			return &v.Categories[i], true
		}
	}
	return nil, false
}

func decodeEmbedded(raw string, dest any) error {
	if raw == "" {
		return fmt.Errorf("embedded json is empty")
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode embedded json: %w", err)
	}
	return nil
}
