package tests

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/pkg/aleo"
)

func GetConfig() *config.Config {
	return config.NewConfig()
}

// Address returns the address whose 32 raw bytes all equal b.
func Address(b byte) aleo.Address {
	a, err := aleo.NewAddressFromBytes(bytes.Repeat([]byte{b}, aleo.AddressSize))
	if err != nil {
		panic(err)
	}
	return a
}

// GetProjectRoot returns the repository root, located relative to this file.
func GetProjectRoot() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

func GetTestdataPath(elems ...string) string {
	return filepath.Join(append([]string{GetProjectRoot(), "internal", "tests", "testdata"}, elems...)...)
}

func ReadTestdata(elems ...string) ([]byte, error) {
	return os.ReadFile(GetTestdataPath(elems...))
}
