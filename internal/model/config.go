package model

import "time"

// Config holds the complete CLI configuration
type Config struct {
	Calais      CalaisConfig      `yaml:"calais" mapstructure:"calais"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// CalaisConfig holds the annotation service settings
type CalaisConfig struct {
	Token                string   `yaml:"token,omitempty" mapstructure:"token"`
	Endpoint             string   `yaml:"endpoint" mapstructure:"endpoint"`
	ContentClass         string   `yaml:"content_class" mapstructure:"content_class"`
	ContentType          string   `yaml:"content_type" mapstructure:"content_type"`
	OutputFormat         string   `yaml:"output_format" mapstructure:"output_format"`
	OutputTags           []string `yaml:"output_tags,omitempty" mapstructure:"output_tags"`
	OmitOriginalDocument bool     `yaml:"omit_original_document" mapstructure:"omit_original_document"`
	Language             string   `yaml:"language" mapstructure:"language"`
	Charset              string   `yaml:"charset" mapstructure:"charset"`
}

// HTTPConfig holds transport settings for both the service and source fetches
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// FetchConfig controls how URL sources are retrieved
type FetchConfig struct {
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RobotsTTL         time.Duration `yaml:"robots_ttl" mapstructure:"robots_ttl"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose    bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeRaw bool `yaml:"include_raw" mapstructure:"include_raw"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Calais: CalaisConfig{
			Endpoint:             "https://api.thomsonreuters.com/permid/calais",
			ContentClass:         "news",
			ContentType:          "text/raw",
			OutputFormat:         "application/json",
			OmitOriginalDocument: true,
			Language:             "English",
			Charset:              "utf-8",
		},
		HTTP: HTTPConfig{
			Timeout:      2 * time.Minute,
			UserAgent:    "calais/0.1 (+https://github.com/ppiankov/calais)",
			MaxBodyBytes: 20 << 20,
		},
		Fetch: FetchConfig{
			RespectRobots:     true,
			RobotsTTL:         time.Hour,
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
