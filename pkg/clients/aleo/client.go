package aleo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/NethermindEth/staking-sidecar/internal/config"
	"github.com/NethermindEth/staking-sidecar/pkg/block"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

var ErrBlockNotFound = errors.New("block not found")

type AleoClientConfig struct {
	BaseUrl string
	Network string
	Timeout time.Duration
}

func ConvertGlobalConfigToAleoConfig(cfg *config.Config) *AleoClientConfig {
	return &AleoClientConfig{
		BaseUrl: cfg.AleoRpcConfig.BaseUrl,
		Network: cfg.GetNetworkName(),
		Timeout: cfg.AleoRpcConfig.Timeout,
	}
}

// Client reads blocks from the REST API of an Aleo node.
type Client struct {
	Logger       *zap.Logger
	httpClient   *http.Client
	clientConfig *AleoClientConfig
}

func NewClient(cfg *AleoClientConfig, l *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	l.Sugar().Infow("Creating new Aleo client", zap.String("baseUrl", cfg.BaseUrl), zap.String("network", cfg.Network))

	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		Logger:       l,
		clientConfig: cfg,
	}
}

func (c *Client) SetHttpClient(client *http.Client) {
	c.httpClient = client
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.clientConfig.BaseUrl, "/"), c.clientConfig.Network, path)
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	switch {
	case response.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrBlockNotFound, path)
	case response.StatusCode != http.StatusOK:
		c.Logger.Sugar().Errorw("Aleo node returned an error",
			zap.String("path", path),
			zap.Int("status", response.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("received http error code %d for %s", response.StatusCode, path)
	}
	return body, nil
}

// GetLatestHeight returns the height of the node's latest block.
func (c *Client) GetLatestHeight(ctx context.Context) (uint32, error) {
	body, err := c.get(ctx, "block/height/latest")
	if err != nil {
		return 0, err
	}
	height, err := strconv.ParseUint(strings.TrimSpace(string(body)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid latest height '%s': %w", body, err)
	}
	return uint32(height), nil
}

// GetBlockJSON returns the raw JSON document of the block at height.
func (c *Client) GetBlockJSON(ctx context.Context, height uint32) ([]byte, error) {
	body, err := c.get(ctx, fmt.Sprintf("block/%d", height))
	if err != nil {
		return nil, err
	}
	c.Logger.Sugar().Debugw("Fetched block", zap.Uint32("blockHeight", height), zap.Int("bytes", len(body)))
	return body, nil
}

func (c *Client) GetBlock(ctx context.Context, height uint32, mode block.DecodeMode) (*block.Block, error) {
	body, err := c.GetBlockJSON(ctx, height)
	if err != nil {
		return nil, err
	}
	b, err := block.Decode(body, block.Format_JSON, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to decode block %d: %w", height, err)
	}
	if b.Height != height {
		return nil, fmt.Errorf("node returned block %d when asked for %d", b.Height, height)
	}
	return b, nil
}
