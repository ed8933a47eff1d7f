package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "opensci-skill/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries is the number of retry attempts on rate-limited responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ConvertConfig holds settings for local documentation-tree conversion.
type ConvertConfig struct {
	// SourceDir is the root of the RST documentation tree (e.g. a cloned
	// repository's doc/ directory).
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// OutputDir receives the converted Markdown tree and the processing
	// manifest (default "assets/docs-cache").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// Validate checks that the conversion settings are usable.
func (c ConvertConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// CrawlConfig holds settings for the hosted-docs crawler.
type CrawlConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the crawl starting point. Only pages sharing its prefix
	// are followed.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Library names the project being crawled; the default output
	// directory is derived from it and it is recorded in the session file.
	Library string `json:"library" yaml:"library"`

	// MaxPages caps the number of pages fetched in one crawl (default 100).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// Delay is the pause between consecutive page fetches (default 300ms).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// OutputDir receives the saved Markdown pages, the URL manifest, and
	// the crawl session file (default "assets/docs-cache").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// Validate checks that the crawl settings are usable.
func (c CrawlConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Library, validation.Required),
		validation.Field(&c.MaxPages, validation.Min(1)),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// InspectConfig holds settings for Go source introspection (symbol index,
// API dump, module map).
type InspectConfig struct {
	// SourceDir is the root of the Go module under analysis.
	SourceDir string `json:"source_dir" yaml:"source_dir"`

	// LargeThreshold is the non-blank line count above which a package is
	// flagged in the module map (default 500).
	LargeThreshold int `json:"large_threshold" yaml:"large_threshold"`

	// MaxDepth caps the package directory depth included in the API dump;
	// 0 means unlimited.
	MaxDepth int `json:"max_depth" yaml:"max_depth"`
}

// IndexConfig holds settings for the symbol index store and its artifacts.
type IndexConfig struct {
	// AssetsDir is the base directory for generated skill assets; the
	// SQLite index lives under AssetsDir/index/ (default "assets").
	AssetsDir string `json:"assets_dir" yaml:"assets_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// VerifyConfig holds settings for snippet verification.
type VerifyConfig struct {
	// Root is the skill directory containing SKILL.md and references/.
	Root string `json:"root" yaml:"root"`

	// Timeout is the per-snippet execution timeout (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// FailFast stops the run at the first failing snippet.
	FailFast bool `json:"fail_fast" yaml:"fail_fast"`

	// ReportPath is where the Markdown report is written; "-" disables it
	// (default "assets/snippet-verification.md").
	ReportPath string `json:"report_path" yaml:"report_path"`

	// Languages lists the fence info strings treated as runnable
	// (default "go", "golang").
	Languages []string `json:"languages" yaml:"languages"`
}

// Validate checks that the verification settings are usable.
func (c VerifyConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Root, validation.Required),
		validation.Field(&c.Timeout, validation.Min(time.Second)),
		validation.Field(&c.Languages, validation.Required),
	)
}

// SkillConfig groups all stage configurations for the skill-building pipeline.
type SkillConfig struct {
	Convert ConvertConfig `json:"convert" yaml:"convert"`
	Crawl   CrawlConfig   `json:"crawl" yaml:"crawl"`
	Inspect InspectConfig `json:"inspect" yaml:"inspect"`
	Index   IndexConfig   `json:"index" yaml:"index"`
	Verify  VerifyConfig  `json:"verify" yaml:"verify"`
}
