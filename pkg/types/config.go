package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "wikicite/0.1"). A contact e-mail from the secrets directory
	// is appended when present.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SchemaConfig holds settings for loading template schemas.
type SchemaConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the MediaWiki action API endpoint
	// (e.g. "https://en.wikipedia.org/w/api.php").
	APIURL string `json:"api_url" yaml:"api_url"`

	// Namespace is the localized template namespace prepended to template
	// names in API queries (default "Template").
	Namespace string `json:"namespace" yaml:"namespace"`

	// Templates lists the citation templates to load.
	Templates []string `json:"templates" yaml:"templates"`

	// NoRefTemplates lists templates that are not offered inside <ref> tags.
	NoRefTemplates []string `json:"noref_templates,omitempty" yaml:"noref_templates,omitempty"`

	// File is an optional YAML or JSON schema bundle. When set the API is
	// not queried.
	File string `json:"file,omitempty" yaml:"file,omitempty"`

	// CacheTTL is how long a fetched schema bundle stays fresh in the
	// local store (default 24h). Zero disables caching.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// Languages lists label and tooltip languages in preference order,
	// usually the user language followed by the wiki content language.
	Languages []string `json:"languages" yaml:"languages"`
}

// LookupConfig holds settings for the external lookup services.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIURL is the MediaWiki action API endpoint used for title search.
	APIURL string `json:"api_url" yaml:"api_url"`

	// RESTURL is the MediaWiki REST endpoint used to read page sources
	// (e.g. "https://en.wikipedia.org/w/rest.php").
	RESTURL string `json:"rest_url" yaml:"rest_url"`

	// CitoidURL is the citation generation endpoint; the escaped input is
	// appended to it.
	CitoidURL string `json:"citoid_url" yaml:"citoid_url"`

	// WaybackURL is the Wayback Machine availability endpoint.
	WaybackURL string `json:"wayback_url" yaml:"wayback_url"`

	// TemplateMapTitle is the wiki page holding the Citoid item type to
	// template name map.
	TemplateMapTitle string `json:"template_map_title" yaml:"template_map_title"`

	// SearchLimit is the maximum number of title suggestions (default 5).
	SearchLimit int `json:"search_limit" yaml:"search_limit"`
}

// StoreConfig holds settings for the local preference and cache store.
type StoreConfig struct {
	// Dir is the directory holding the SQLite database and exports
	// (default ".wikicite").
	Dir string `json:"dir" yaml:"dir"`
}

// DateFormat holds Go time layouts used when normalizing dates. Values that
// only carry a year or a year and month use the shorter layouts.
type DateFormat struct {
	Day   string `json:"day" yaml:"day"`
	Month string `json:"month" yaml:"month"`
	Year  string `json:"year" yaml:"year"`
}

// Config is the full wikicite configuration.
type Config struct {
	Schema SchemaConfig `json:"schema" yaml:"schema"`
	Lookup LookupConfig `json:"lookup" yaml:"lookup"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Dates  DateFormat   `json:"dates" yaml:"dates"`

	// MessagesFile is an optional JSON file of translated interface
	// messages keyed like the English defaults.
	MessagesFile string `json:"messages_file,omitempty" yaml:"messages_file,omitempty"`
}

// DefaultTemplates are the citation templates loaded when none are configured.
var DefaultTemplates = []string{
	"Citation",
	"Cite book",
	"Cite journal",
	"Cite news",
	"Cite web",
}

// DefaultConfig returns the configuration for English Wikipedia.
func DefaultConfig() Config {
	httpCfg := HTTPConfig{
		Timeout:   30 * time.Second,
		UserAgent: "wikicite/0.1",
	}
	return Config{
		Schema: SchemaConfig{
			HTTPConfig: httpCfg,
			APIURL:     "https://en.wikipedia.org/w/api.php",
			Namespace:  "Template",
			Templates:  append([]string(nil), DefaultTemplates...),
			CacheTTL:   24 * time.Hour,
			Languages:  []string{"en"},
		},
		Lookup: LookupConfig{
			HTTPConfig:       httpCfg,
			APIURL:           "https://en.wikipedia.org/w/api.php",
			RESTURL:          "https://en.wikipedia.org/w/rest.php",
			CitoidURL:        "https://en.wikipedia.org/api/rest_v1/data/citation/mediawiki/",
			WaybackURL:       "https://archive.org/wayback/available",
			TemplateMapTitle: "MediaWiki:Citoid-template-type-map.json",
			SearchLimit:      5,
		},
		Store: StoreConfig{Dir: ".wikicite"},
		Dates: DateFormat{Day: "2006-01-02", Month: "2006-01", Year: "2006"},
	}
}
