package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "pass-management",
	Short:         "Facility access pass service",
	Long:          `Employees request facility access passes; administrators approve or reject them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configFromEnv reports whether configuration comes from the process
// environment instead of config.yml.
func configFromEnv() bool {
	return os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true"
}

func loadConfig(dir string) (*internal.Config, error) {
	var (
		cfg    *internal.Config
		source = "environment"
	)
	if configFromEnv() {
		cfg = internal.LoadConfigFromEnv()
	} else {
		fileCfg, err := readConfigFile(dir)
		if err != nil {
			return nil, err
		}
		cfg, source = fileCfg, filepath.Join(dir, "config.yml")
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config from %s: %w", source, err)
	}
	return cfg, nil
}

// readConfigFile loads dir/config.yml. ENV_ variables override keys present
// in the file, with dots written as underscores (ENV_DATABASE_SOURCE).
func readConfigFile(dir string) (*internal.Config, error) {
	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing config.yml")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "delete existing passes and users before seeding")

	rootCmd.AddCommand(httpServerCmd, migrateCmd, seedCmd, createAdminCmd)
}
