package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const ENV_PREFIX = "STAKING_SIDECAR"

type Network uint

const (
	Network_Mainnet Network = 0
	Network_Testnet Network = 1
	Network_Canary  Network = 2
)

func ParseNetwork(n string) (Network, error) {
	switch n {
	case "mainnet":
		return Network_Mainnet, nil
	case "testnet":
		return Network_Testnet, nil
	case "canary":
		return Network_Canary, nil
	}
	return Network_Mainnet, fmt.Errorf("unsupported network '%s'", n)
}

func GetNetwork(n Network) string {
	switch n {
	case Network_Testnet:
		return "testnet"
	case Network_Canary:
		return "canary"
	default:
		return "mainnet"
	}
}

type DatabaseDriver string

const (
	DatabaseDriver_Postgres DatabaseDriver = "postgres"
	DatabaseDriver_Sqlite   DatabaseDriver = "sqlite"
)

type AleoRpcConfig struct {
	BaseUrl string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Driver     DatabaseDriver
	Host       string
	Port       int
	User       string
	Password   string
	DbName     string
	SchemaName string
	SqlitePath string
}

type SnapshotStoreConfig struct {
	Path string
}

type StatsdConfig struct {
	Enabled    bool
	Url        string
	SampleRate float64
}

type DataDogConfig struct {
	StatsdConfig StatsdConfig
}

type PrometheusConfig struct {
	Enabled bool
	Port    int
}

type ReplayConfig struct {
	Workers   int
	StartAt   uint32
	EndAt     uint32
	OutputDir string
}

type ProcessConfig struct {
	BlockFile     string
	BondedFile    string
	UnbondingFile string
	WithdrawFile  string
	OutputDir     string
	ReportFormat  string
}

type Config struct {
	Debug               bool
	Network             Network
	LogFile             string
	DecodeMode          string
	BlockFormat         string
	AleoRpcConfig       AleoRpcConfig
	DatabaseConfig      DatabaseConfig
	SnapshotStoreConfig SnapshotStoreConfig
	DataDogConfig       DataDogConfig
	PrometheusConfig    PrometheusConfig
	ReplayConfig        ReplayConfig
	ProcessConfig       ProcessConfig
}

var (
	Debug       = "debug"
	NetworkName = "network"
	LogFile     = "log-file"
	DecodeMode  = "decode-mode"
	BlockFormat = "block-format"

	AleoRpcUrl     = "aleo.rpc-url"
	AleoRpcTimeout = "aleo.rpc-timeout"

	DatabaseDriver_Key = "database.driver"
	DatabaseHost       = "database.host"
	DatabasePort       = "database.port"
	DatabaseUser       = "database.user"
	DatabasePassword   = "database.password"
	DatabaseDbName     = "database.db_name"
	DatabaseSchemaName = "database.schema_name"
	DatabaseSqlitePath = "database.sqlite_path"

	SnapshotStorePath = "snapshot-store.path"

	DataDogStatsdEnabled    = "datadog.statsd.enabled"
	DataDogStatsdUrl        = "datadog.statsd.url"
	DataDogStatsdSampleRate = "datadog.statsd.sample_rate"

	PrometheusEnabled = "prometheus.enabled"
	PrometheusPort    = "prometheus.port"

	ReplayWorkers   = "replay.workers"
	ReplayStartAt   = "replay.start-at"
	ReplayEndAt     = "replay.end-at"
	ReplayOutputDir = "replay.output-dir"

	ProcessBlockFile     = "process.block-file"
	ProcessBondedFile    = "process.bonded-file"
	ProcessUnbondingFile = "process.unbonding-file"
	ProcessWithdrawFile  = "process.withdraw-file"
	ProcessOutputDir     = "process.output-dir"
	ProcessReportFormat  = "process.report-format"
)

func NewConfig() *Config {
	network, _ := ParseNetwork(viper.GetString(normalizeFlagName(NetworkName)))

	return &Config{
		Debug:       viper.GetBool(normalizeFlagName(Debug)),
		Network:     network,
		LogFile:     viper.GetString(normalizeFlagName(LogFile)),
		DecodeMode:  viper.GetString(normalizeFlagName(DecodeMode)),
		BlockFormat: viper.GetString(normalizeFlagName(BlockFormat)),

		AleoRpcConfig: AleoRpcConfig{
			BaseUrl: viper.GetString(normalizeFlagName(AleoRpcUrl)),
			Timeout: viper.GetDuration(normalizeFlagName(AleoRpcTimeout)),
		},

		DatabaseConfig: DatabaseConfig{
			Driver:     DatabaseDriver(viper.GetString(normalizeFlagName(DatabaseDriver_Key))),
			Host:       viper.GetString(normalizeFlagName(DatabaseHost)),
			Port:       viper.GetInt(normalizeFlagName(DatabasePort)),
			User:       viper.GetString(normalizeFlagName(DatabaseUser)),
			Password:   viper.GetString(normalizeFlagName(DatabasePassword)),
			DbName:     viper.GetString(normalizeFlagName(DatabaseDbName)),
			SchemaName: viper.GetString(normalizeFlagName(DatabaseSchemaName)),
			SqlitePath: viper.GetString(normalizeFlagName(DatabaseSqlitePath)),
		},

		SnapshotStoreConfig: SnapshotStoreConfig{
			Path: viper.GetString(normalizeFlagName(SnapshotStorePath)),
		},

		DataDogConfig: DataDogConfig{
			StatsdConfig: StatsdConfig{
				Enabled:    viper.GetBool(normalizeFlagName(DataDogStatsdEnabled)),
				Url:        viper.GetString(normalizeFlagName(DataDogStatsdUrl)),
				SampleRate: viper.GetFloat64(normalizeFlagName(DataDogStatsdSampleRate)),
			},
		},

		PrometheusConfig: PrometheusConfig{
			Enabled: viper.GetBool(normalizeFlagName(PrometheusEnabled)),
			Port:    viper.GetInt(normalizeFlagName(PrometheusPort)),
		},

		ReplayConfig: ReplayConfig{
			Workers:   viper.GetInt(normalizeFlagName(ReplayWorkers)),
			StartAt:   viper.GetUint32(normalizeFlagName(ReplayStartAt)),
			EndAt:     viper.GetUint32(normalizeFlagName(ReplayEndAt)),
			OutputDir: viper.GetString(normalizeFlagName(ReplayOutputDir)),
		},

		ProcessConfig: ProcessConfig{
			BlockFile:     viper.GetString(normalizeFlagName(ProcessBlockFile)),
			BondedFile:    viper.GetString(normalizeFlagName(ProcessBondedFile)),
			UnbondingFile: viper.GetString(normalizeFlagName(ProcessUnbondingFile)),
			WithdrawFile:  viper.GetString(normalizeFlagName(ProcessWithdrawFile)),
			OutputDir:     viper.GetString(normalizeFlagName(ProcessOutputDir)),
			ReportFormat:  viper.GetString(normalizeFlagName(ProcessReportFormat)),
		},
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.DecodeMode {
	case "checked", "unchecked":
	default:
		return fmt.Errorf("invalid decode mode '%s'", c.DecodeMode)
	}
	switch c.BlockFormat {
	case "json", "binary":
	default:
		return fmt.Errorf("invalid block format '%s'", c.BlockFormat)
	}
	switch c.DatabaseConfig.Driver {
	case "", DatabaseDriver_Postgres, DatabaseDriver_Sqlite:
	default:
		return fmt.Errorf("unsupported database driver '%s'", c.DatabaseConfig.Driver)
	}
	if c.DatabaseConfig.Driver == DatabaseDriver_Sqlite && c.DatabaseConfig.SqlitePath == "" {
		return errors.New("sqlite driver requires a database path")
	}
	return nil
}

// HasDatabase reports whether results should be persisted.
func (c *Config) HasDatabase() bool {
	return c.DatabaseConfig.Driver != ""
}

func (c *Config) GetNetworkName() string {
	return GetNetwork(c.Network)
}

func KebabToSnakeCase(str string) string {
	return strings.ReplaceAll(str, "-", "_")
}

func normalizeFlagName(name string) string {
	return KebabToSnakeCase(name)
}
