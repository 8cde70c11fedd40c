package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/calais/internal/logger"
	"github.com/ppiankov/calais/internal/model"
)

const version = "calais v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "calais",
	Short: "Calais - named entity, topic and social tag annotation",
	Long: `Calais sends documents to the Open Calais annotation service and reports
the named entities, topics and social tags it finds.

Sources are local files (plain text, HTML, XML or PDF) or http(s) URLs.
Responses are cached per document, so re-annotating an unchanged
document does not cost another request.

The API token is read from CALAIS_TOKEN (environment or .env file)
or from calais.token in the config file.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of Calais.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.calais/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Annotation settings shared by annotate and batch
	flags.String("endpoint", "", "annotation service URL")
	flags.String("content-type", "", "input content type (text/raw, text/html, text/xml, application/pdf)")
	flags.String("content-class", "", "input content class (news, research)")
	flags.String("language", "", "document language (English, French, Spanish)")
	flags.StringSlice("tags", nil, "only output these tags (e.g. person,company,socialtags)")
	flags.Bool("include-raw", false, "embed the raw service response in JSON reports")
	flags.Bool("insecure", false, "skip TLS certificate verification")
	flags.String("http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	flags.String("https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	bindings := map[string]string{
		"output.verbose":       "verbose",
		"calais.endpoint":      "endpoint",
		"calais.content_type":  "content-type",
		"calais.content_class": "content-class",
		"calais.language":      "language",
		"calais.output_tags":   "tags",
		"output.include_raw":   "include-raw",
		"http.insecure_tls":    "insecure",
		"http.http_proxy":      "http-proxy",
		"http.https_proxy":     "https-proxy",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and CALAIS_* variables
func initConfig() {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".calais"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := registerDefaults(viper.GetViper(), model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering defaults: %v\n", err)
	}

	// CALAIS_HTTP_TIMEOUT -> http.timeout; the token also answers to CALAIS_TOKEN
	viper.SetEnvPrefix("CALAIS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("calais.token", "CALAIS_TOKEN", "CALAIS_CALAIS_TOKEN")

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper, so environment
// variables can override keys that appear in no config file.
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return err
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for k, val := range node {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if child, ok := val.(map[string]any); ok {
				walk(key, child)
				continue
			}
			v.SetDefault(key, val)
		}
	}
	walk("", tree)
	return nil
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	return loadConfigFrom(viper.GetViper())
}

func loadConfigFrom(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the stderr logger for commands
func newLogger(cfg *model.Config) *log.Logger {
	return logger.New(logger.Options{Verbose: cfg.Output.Verbose || verbose})
}
