// -- cmd/root.go --
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xkilldash9x/courier-cli/internal/config"
	"github.com/xkilldash9x/courier-cli/internal/observability"
	"go.uber.org/zap"
)

type contextKey string

const viperKey contextKey = "viper"

// NewRootCommand builds the courier command tree with production dependencies.
func NewRootCommand() *cobra.Command {
	return newRootCommand(defaultDeps())
}

func newRootCommand(deps runtimeDeps) *cobra.Command {
	var cfgFile, envFile string

	rootCmd := &cobra.Command{
		Use:           "courier",
		Short:         "Courier uploads a folder of documents into a web portal, one record at a time.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)
			if err := initializeConfig(v, cfgFile, envFile); err != nil {
				return err
			}

			var logCfg config.LoggerConfig
			if err := v.UnmarshalKey("logger", &logCfg); err != nil {
				observability.InitializeLogger(config.NewDefaultConfig().Logger)
				return fmt.Errorf("failed to unmarshal logger config: %w", err)
			}
			observability.InitializeLogger(logCfg)
			observability.GetLogger().Debug("Starting courier", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), viperKey, v))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	rootCmd.AddCommand(newRunCmd(deps))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the root command and logs any failure.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			observability.GetLogger().Warn("Run interrupted")
		} else {
			observability.GetLogger().Error("Command execution failed", zap.Error(err))
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// initializeConfig layers the dotenv file, the config file, and the
// environment on top of the defaults already set on v.
func initializeConfig(v *viper.Viper, cfgFile, envFile string) error {
	if envFile != "" {
		// Existing environment variables take precedence over the file.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading env file %s: %w", envFile, err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("COURIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func viperFromContext(ctx context.Context) (*viper.Viper, error) {
	v, ok := ctx.Value(viperKey).(*viper.Viper)
	if !ok || v == nil {
		return nil, errors.New("configuration not initialized")
	}
	return v, nil
}
