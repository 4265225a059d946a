package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alnah/podcut/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/podcut/config.
Each setting falls back to a PODCUT_* environment variable when unset.

Supported settings:
  output-dir    Default folder for split, announce and download (env: PODCUT_OUTPUT_DIR)
  gain-db       Default gain in dB, -60 to 60 (env: PODCUT_GAIN_DB)
  voice         Announcement voice: alloy, echo, fable, onyx, nova, shimmer (env: PODCUT_VOICE)
  tts-model     Speech model: tts-1, tts-1-hd, gpt-4o-mini-tts (env: PODCUT_TTS_MODEL)
  s3-bucket     Bucket for episode --upload (env: PODCUT_S3_BUCKET)
  s3-region     Bucket region (env: PODCUT_S3_REGION)
  s3-prefix     Key prefix for uploads (env: PODCUT_S3_PREFIX)
  s3-endpoint   S3-compatible endpoint URL, e.g. MinIO (env: PODCUT_S3_ENDPOINT)`,
		Example: `  podcut config set output-dir ~/Podcasts
  podcut config set voice nova
  podcut config get gain-db
  podcut config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value. The value is validated before it is saved.

For output-dir, ~ is expanded and the folder is created if it doesn't exist.`,
		Example: `  podcut config set output-dir ~/Podcasts
  podcut config set gain-db 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set.`,
		Example: `  podcut config get output-dir`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows values from the config file and environment variable fallbacks.`,
		Example: `  podcut config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w: %q (valid keys: %v)", config.ErrUnknownKey, key, config.Keys)
	}

	switch key {
	case config.KeyOutputDir:
		// Store the expanded path for consistency.
		value = config.ExpandPath(value)
		if err := config.EnsureOutputDir(value); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
	default:
		if err := config.ValidateValue(key, value); err != nil {
			return err
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w: %q (valid keys: %v)", config.ErrUnknownKey, key, config.Keys)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}
	if value == "" {
		value = env.Getenv(config.EnvVar(key))
	}
	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	printed := 0
	for _, key := range config.Keys {
		value, ok := data[key]
		switch {
		case ok && value != "":
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
		case env.Getenv(config.EnvVar(key)) != "":
			fmt.Fprintf(env.Stdout, "%s=%s (from env)\n", key, env.Getenv(config.EnvVar(key)))
		default:
			continue
		}
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
	}
	return nil
}

// isValidConfigKey checks if a key is a valid configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(config.Keys, key)
}
