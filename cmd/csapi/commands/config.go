package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/csapi/internal/constants"
	"github.com/fivetwenty-io/csapi/internal/logging"
	"github.com/fivetwenty-io/csapi/pkg/csapi"
	"github.com/fivetwenty-io/csapi/pkg/csclient"
)

// Duplicate name policies accepted in the configuration.
const (
	duplicatesError = "error"
	duplicatesFirst = "first"
)

// Config represents the CLI configuration.
type Config struct {
	API          string        `json:"api,omitempty"           yaml:"api,omitempty"`
	APIKey       string        `json:"api_key,omitempty"       yaml:"api_key,omitempty"`
	SecretKey    string        `json:"secret_key,omitempty"    yaml:"secret_key,omitempty"`
	Output       string        `json:"output,omitempty"        yaml:"output,omitempty"`
	NoColor      bool          `json:"no_color,omitempty"      yaml:"no_color,omitempty"`
	HTTPTimeout  time.Duration `json:"http_timeout,omitempty"  yaml:"http_timeout,omitempty"`
	PollInterval time.Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`
	PollTimeout  time.Duration `json:"poll_timeout,omitempty"  yaml:"poll_timeout,omitempty"`
	Duplicates   string        `json:"duplicates,omitempty"    yaml:"duplicates,omitempty"`
	CatalogFile  string        `json:"catalog_file,omitempty"  yaml:"catalog_file,omitempty"`
	NATSURL      string        `json:"nats_url,omitempty"      yaml:"nats_url,omitempty"`
	NATSSubject  string        `json:"nats_subject,omitempty"  yaml:"nats_subject,omitempty"`
}

// loadConfig reads the configuration from flags, CSAPI_* variables and the
// config file, in that order of precedence.
func loadConfig() *Config {
	return &Config{
		API:          viper.GetString("api"),
		APIKey:       viper.GetString("api_key"),
		SecretKey:    viper.GetString("secret_key"),
		Output:       viper.GetString("output"),
		NoColor:      viper.GetBool("no_color"),
		HTTPTimeout:  viper.GetDuration("http_timeout"),
		PollInterval: viper.GetDuration("poll_interval"),
		PollTimeout:  viper.GetDuration("poll_timeout"),
		Duplicates:   viper.GetString("duplicates"),
		CatalogFile:  viper.GetString("catalog_file"),
		NATSURL:      viper.GetString("nats_url"),
		NATSSubject:  viper.GetString("nats_subject"),
	}
}

// ClientConfig converts the CLI configuration into a client configuration.
func (c *Config) ClientConfig(logger csapi.Logger, debug bool) (*csapi.Config, error) {
	policy, err := parseDuplicates(c.Duplicates)
	if err != nil {
		return nil, err
	}

	return &csapi.Config{
		APIEndpoint:     c.API,
		APIKey:          c.APIKey,
		SecretKey:       c.SecretKey,
		HTTPTimeout:     c.HTTPTimeout,
		Debug:           debug,
		Logger:          logger,
		Poll:            csapi.PollPolicy{Interval: c.PollInterval, Timeout: c.PollTimeout},
		DuplicatePolicy: policy,
		CatalogFile:     c.CatalogFile,
		NATSURL:         c.NATSURL,
		NATSSubject:     c.NATSSubject,
	}, nil
}

func parseDuplicates(value string) (csapi.DuplicatePolicy, error) {
	switch strings.ToLower(value) {
	case "", duplicatesError:
		return csapi.DuplicateError, nil
	case duplicatesFirst:
		return csapi.DuplicateFirstMatch, nil
	default:
		return csapi.DuplicateError, fmt.Errorf("%w: duplicates must be %q or %q", constants.ErrUnknownConfigKey, duplicatesError, duplicatesFirst)
	}
}

// CreateClient builds a client from the current configuration.
func CreateClient(ctx context.Context) (csapi.Client, error) {
	config := loadConfig()

	if config.API == "" {
		return nil, fmt.Errorf("%w (use --api, CSAPI_API or 'csapi configure')", constants.ErrAPIEndpointRequired)
	}

	verbose := viper.GetBool("verbose")
	logger := logging.ForCLI(verbose, config.NoColor)

	clientConfig, err := config.ClientConfig(logger, verbose)
	if err != nil {
		return nil, err
	}

	return csclient.New(ctx, clientConfig)
}

// configFilePath returns the file the configuration is written to.
func configFilePath() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}

	if explicit := viper.GetString("config"); explicit != "" {
		return explicit, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".csapi", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the csapi CLI configuration stored in ~/.csapi/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			masked := *config
			if masked.SecretKey != "" {
				masked.SecretKey = constants.MaskedSecret
			}

			return render(cmd, &masked, func(w io.Writer) error {
				return renderProperties(w, configRows(&masked))
			})
		},
	}
}

func configRows(config *Config) [][]string {
	return [][]string{
		{"API", valueOr(config.API)},
		{"API Key", valueOr(config.APIKey)},
		{"Secret Key", valueOr(config.SecretKey)},
		{"Output", valueOr(config.Output)},
		{"HTTP Timeout", durationOr(config.HTTPTimeout, constants.DefaultHTTPTimeout)},
		{"Poll Interval", durationOr(config.PollInterval, constants.DefaultPollInterval)},
		{"Poll Timeout", durationOr(config.PollTimeout, constants.DefaultJobPollTimeout)},
		{"Duplicates", valueOr(config.Duplicates)},
		{"Catalog File", valueOr(config.CatalogFile)},
		{"NATS URL", valueOr(config.NATSURL)},
		{"NATS Subject", valueOr(config.NATSSubject)},
	}
}

func durationOr(value, fallback time.Duration) string {
	if value <= 0 {
		return fallback.String() + " (default)"
	}

	return value.String()
}

// configSetters assigns a configuration key from its string form.
var configSetters = map[string]func(*Config, string) error{
	"api":        func(c *Config, v string) error { c.API = v; return nil },
	"api_key":    func(c *Config, v string) error { c.APIKey = v; return nil },
	"secret_key": func(c *Config, v string) error { c.SecretKey = v; return nil },
	"output": func(c *Config, v string) error {
		c.Output = v
		viper.Set("output", v)

		_, err := outputFormat()

		return err
	},
	"no_color": func(c *Config, v string) error {
		if v == "" {
			c.NoColor = false

			return nil
		}

		parsed, err := strconv.ParseBool(v)
		c.NoColor = parsed

		return err
	},
	"http_timeout":  durationSetter(func(c *Config) *time.Duration { return &c.HTTPTimeout }),
	"poll_interval": durationSetter(func(c *Config) *time.Duration { return &c.PollInterval }),
	"poll_timeout":  durationSetter(func(c *Config) *time.Duration { return &c.PollTimeout }),
	"duplicates": func(c *Config, v string) error {
		_, err := parseDuplicates(v)
		c.Duplicates = v

		return err
	},
	"catalog_file": func(c *Config, v string) error { c.CatalogFile = v; return nil },
	"nats_url":     func(c *Config, v string) error { c.NATSURL = v; return nil },
	"nats_subject": func(c *Config, v string) error { c.NATSSubject = v; return nil },
}

func durationSetter(field func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		if v == "" {
			*field(c) = 0

			return nil
		}

		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", v, err)
		}

		*field(c) = parsed

		return nil
	}
}

func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value so that its default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(cmd, args[0], "")
		},
	}
}

func updateConfig(cmd *cobra.Command, key, value string) error {
	setter, ok := configSetters[strings.ToLower(key)]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	config := loadConfig()

	err := setter(config, value)
	if err != nil {
		return err
	}

	err = saveConfigStruct(config)
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if value == "" {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", key)
	} else {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)
	}

	return err
}
