package cmd

import (
	"os"
	"strings"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "staking-sidecar",
	Short:         "Reconstructs credits.aleo staking mappings and settlements from Aleo blocks",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().String(config.NetworkName, "mainnet", "The network to use (mainnet, testnet, canary)")
	rootCmd.PersistentFlags().String(config.LogFile, "", "Also write logs to this file, rotated")
	rootCmd.PersistentFlags().String(config.DecodeMode, "checked", `Block and mapping decoding strategy ("checked" or "unchecked")`)
	rootCmd.PersistentFlags().String(config.BlockFormat, "json", `Block encoding ("json" or "binary")`)

	rootCmd.PersistentFlags().String(config.AleoRpcUrl, "", `e.g. "http://<hostname>:3030"`)
	rootCmd.PersistentFlags().Duration(config.AleoRpcTimeout, 0, "Timeout of a single request to the Aleo node (default 10s)")

	rootCmd.PersistentFlags().String(config.DatabaseDriver_Key, "", `Persist results to "postgres" or "sqlite"; empty disables persistence`)
	rootCmd.PersistentFlags().String(config.DatabaseHost, "localhost", `PostgreSQL host`)
	rootCmd.PersistentFlags().Int(config.DatabasePort, 5432, `PostgreSQL port`)
	rootCmd.PersistentFlags().String(config.DatabaseUser, "sidecar", `PostgreSQL username`)
	rootCmd.PersistentFlags().String(config.DatabasePassword, "", `PostgreSQL password`)
	rootCmd.PersistentFlags().String(config.DatabaseDbName, "staking_sidecar", `PostgreSQL database name`)
	rootCmd.PersistentFlags().String(config.DatabaseSchemaName, "", `PostgreSQL schema name (default "public")`)
	rootCmd.PersistentFlags().String(config.DatabaseSqlitePath, "", `SQLite database file`)

	rootCmd.PersistentFlags().String(config.SnapshotStorePath, "", "LevelDB directory for per-block mapping snapshots; empty disables it")

	rootCmd.PersistentFlags().Bool(config.DataDogStatsdEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().String(config.DataDogStatsdUrl, "", `e.g. "localhost:8125"`)
	rootCmd.PersistentFlags().Float64(config.DataDogStatsdSampleRate, 1.0, `The sample rate to use for statsd metrics`)

	rootCmd.PersistentFlags().Bool(config.PrometheusEnabled, false, `e.g. "true" or "false"`)
	rootCmd.PersistentFlags().Int(config.PrometheusPort, 2112, `The port to run the prometheus server on`)

	// setup sub commands
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(runVersionCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.ENV_PREFIX)

	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	viper.AutomaticEnv()
}

func bindCommandFlags(cmd *cobra.Command) error {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		if err := viper.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = err
		}
		if err := viper.BindEnv(key); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}
