package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/lendrix/pkg/config"
	"github.com/amirasaad/lendrix/pkg/currency"
	"github.com/amirasaad/lendrix/pkg/provider"
	"github.com/shopspring/decimal"
)

// ExchangeRateAPIProvider fetches rates from exchangerate-api.com (v6).
type ExchangeRateAPIProvider struct {
	apiKey     string
	baseURL    string
	base       currency.Code
	httpClient *http.Client
	logger     *slog.Logger
}

// ExchangeRateAPIResponseV6 is the v6 "latest" payload.
// See: https://www.exchangerate-api.com/docs/standard-requests
type ExchangeRateAPIResponseV6 struct {
	Result             string                     `json:"result"`
	TimeLastUpdateUnix int64                      `json:"time_last_update_unix"`
	BaseCode           string                     `json:"base_code"`
	ConversionRates    map[string]decimal.Decimal `json:"conversion_rates"`
	ErrorType          string                     `json:"error-type,omitempty"`
}

// NewExchangeRateAPIProvider creates a provider from config.
func NewExchangeRateAPIProvider(cfg *config.ExchangeRate, logger *slog.Logger) *ExchangeRateAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateAPIProvider{
		apiKey:     cfg.ApiKey,
		baseURL:    cfg.ApiUrl,
		base:       currency.Code(cfg.Base),
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger.With("provider", "exchangerate-api"),
	}
}

// Rates fetches every rate relative to the configured base. Codes the
// currency registry does not support are skipped.
func (p *ExchangeRateAPIProvider) Rates(ctx context.Context) (*provider.RateTable, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, p.base)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp ExchangeRateAPIResponseV6
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Result != "success" {
		return nil, fmt.Errorf("API returned result=%s error=%s", apiResp.Result, apiResp.ErrorType)
	}

	table := &provider.RateTable{
		Base:      p.base,
		Rates:     make(map[currency.Code]decimal.Decimal, len(apiResp.ConversionRates)),
		Source:    p.Name(),
		FetchedAt: time.Now().UTC(),
	}
	for code, rate := range apiResp.ConversionRates {
		if !currency.IsSupported(code) || !rate.IsPositive() {
			continue
		}
		table.Rates[currency.Code(code)] = rate
	}
	p.logger.Info("Exchange rates fetched", "base", p.base, "count", len(table.Rates))
	return table, nil
}

// Name returns the provider's name.
func (p *ExchangeRateAPIProvider) Name() string {
	return "exchangerate-api"
}

var _ provider.ExchangeRate = (*ExchangeRateAPIProvider)(nil)
