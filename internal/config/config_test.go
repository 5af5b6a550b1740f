package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func Test_Config(t *testing.T) {
	t.Cleanup(viper.Reset)

	t.Run("Should read settings from viper keys", func(t *testing.T) {
		viper.Reset()
		viper.Set(normalizeFlagName(NetworkName), "testnet")
		viper.Set(normalizeFlagName(DecodeMode), "unchecked")
		viper.Set(normalizeFlagName(BlockFormat), "binary")
		viper.Set(normalizeFlagName(AleoRpcUrl), "http://localhost:3030")
		viper.Set(normalizeFlagName(AleoRpcTimeout), "5s")
		viper.Set(normalizeFlagName(DatabaseDriver_Key), "sqlite")
		viper.Set(normalizeFlagName(DatabaseSqlitePath), "/tmp/staking.db")
		viper.Set(normalizeFlagName(ReplayWorkers), 4)

		cfg := NewConfig()
		assert.Equal(t, Network_Testnet, cfg.Network)
		assert.Equal(t, "testnet", cfg.GetNetworkName())
		assert.Equal(t, "unchecked", cfg.DecodeMode)
		assert.Equal(t, "binary", cfg.BlockFormat)
		assert.Equal(t, "http://localhost:3030", cfg.AleoRpcConfig.BaseUrl)
		assert.Equal(t, 5*time.Second, cfg.AleoRpcConfig.Timeout)
		assert.Equal(t, DatabaseDriver_Sqlite, cfg.DatabaseConfig.Driver)
		assert.Equal(t, 4, cfg.ReplayConfig.Workers)
		assert.True(t, cfg.HasDatabase())
		assert.Nil(t, cfg.Validate())
	})
	t.Run("Should reject invalid settings", func(t *testing.T) {
		cases := []struct {
			name string
			cfg  Config
		}{
			{"decode mode", Config{DecodeMode: "lenient", BlockFormat: "json"}},
			{"block format", Config{DecodeMode: "checked", BlockFormat: "xml"}},
			{"driver", Config{DecodeMode: "checked", BlockFormat: "json", DatabaseConfig: DatabaseConfig{Driver: "mysql"}}},
			{"sqlite path", Config{DecodeMode: "checked", BlockFormat: "json", DatabaseConfig: DatabaseConfig{Driver: DatabaseDriver_Sqlite}}},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				assert.Error(t, c.cfg.Validate())
			})
		}
	})
	t.Run("Should parse networks", func(t *testing.T) {
		n, err := ParseNetwork("canary")
		assert.Nil(t, err)
		assert.Equal(t, Network_Canary, n)

		_, err = ParseNetwork("holesky")
		assert.Error(t, err)
	})
	t.Run("Should convert kebab case", func(t *testing.T) {
		assert.Equal(t, "replay.start_at", KebabToSnakeCase(ReplayStartAt))
	})
}
