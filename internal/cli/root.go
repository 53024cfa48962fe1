package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ssuula/internal/logging"
	"github.com/ppiankov/ssuula/internal/model"
)

// Version is set at build time with -ldflags "-X github.com/ppiankov/ssuula/internal/cli.Version=..."
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ssuula",
	Short: "Ssuula - Luganda Quran translation lookup",
	Long: `Ssuula fetches the published Luganda translation of the Quran, parses it
into a chapter/verse table, and aligns its numbering with the canonical verse
stream in which most chapters open with the invocation as verse 1.

Lookups never invent text: a verse the document does not translate is
reported as not yet available.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogging()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ssuula v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ssuula/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.String("source", "", "translation document URL or local path")
	flags.String("dialect", "", "document dialect (auto, enumerated, numbered, ssuula)")
	flags.Bool("strict", false, "fail loads whose verse numbering contradicts the alignment policy")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text, json)")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("source.url", flags.Lookup("source"))
	_ = viper.BindPFlag("source.dialect", flags.Lookup("dialect"))
	_ = viper.BindPFlag("alignment.strict", flags.Lookup("strict"))
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	if err := setDefaults(model.DefaultConfig()); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading defaults: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".ssuula"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match SSUULA_*, e.g. SSUULA_SOURCE_URL
	viper.SetEnvPrefix("SSUULA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every config key with viper so env overrides reach Unmarshal
func setDefaults(cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}
	setDefaultTree("", tree)

	// Keys omitted from the YAML form when empty
	for _, key := range []string{"http.http_proxy", "http.https_proxy", "http.no_proxy"} {
		viper.SetDefault(key, "")
	}
	return nil
}

func setDefaultTree(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaultTree(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Source.URL == "" {
		cfg.Source.URL = model.DefaultSourceURL
	}
	return cfg, nil
}

func initLogging() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	if verbose && level > logging.LevelInfo {
		level = logging.LevelInfo
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format, os.Stderr)
	return nil
}
