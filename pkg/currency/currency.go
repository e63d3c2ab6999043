// Package currency holds ISO 4217 currency codes and the metadata the ledger
// needs to round amounts (minor-unit decimals) and display them.
package currency

import (
	"fmt"
	"sort"
	"sync"

	"github.com/amirasaad/lendrix/pkg/domain"
)

const (
	// DefaultDecimals is the default number of decimal places for currencies
	DefaultDecimals int32 = 2
)

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

// Common currency codes.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	KWD Code = "KWD"
	EGP Code = "EGP"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CHF Code = "CHF"
	CNY Code = "CNY"
	INR Code = "INR"
	NGN Code = "NGN"
)

// DefaultCurrency is the fallback currency code.
const DefaultCurrency = USD

func (c Code) String() string { return string(c) }

// IsValidFormat reports whether code looks like an ISO 4217 code (three uppercase letters).
func IsValidFormat(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// Meta holds currency-specific metadata
type Meta struct {
	Code     Code
	Name     string
	Symbol   string
	Decimals int32
}

// Registry is a concurrency-safe set of supported currencies.
type Registry struct {
	mu    sync.RWMutex
	metas map[Code]Meta
}

// NewRegistry creates a registry preloaded with the default currencies.
func NewRegistry() *Registry {
	r := &Registry{metas: make(map[Code]Meta)}
	for _, m := range []Meta{
		{Code: USD, Name: "US Dollar", Symbol: "$", Decimals: 2},
		{Code: EUR, Name: "Euro", Symbol: "€", Decimals: 2},
		{Code: GBP, Name: "British Pound", Symbol: "£", Decimals: 2},
		{Code: JPY, Name: "Japanese Yen", Symbol: "¥", Decimals: 0},
		{Code: KWD, Name: "Kuwaiti Dinar", Symbol: "د.ك", Decimals: 3},
		{Code: EGP, Name: "Egyptian Pound", Symbol: "£", Decimals: 2},
		{Code: CAD, Name: "Canadian Dollar", Symbol: "C$", Decimals: 2},
		{Code: AUD, Name: "Australian Dollar", Symbol: "A$", Decimals: 2},
		{Code: CHF, Name: "Swiss Franc", Symbol: "CHF", Decimals: 2},
		{Code: CNY, Name: "Chinese Yuan", Symbol: "¥", Decimals: 2},
		{Code: INR, Name: "Indian Rupee", Symbol: "₹", Decimals: 2},
		{Code: NGN, Name: "Nigerian Naira", Symbol: "₦", Decimals: 2},
	} {
		r.metas[m.Code] = m
	}
	return r
}

// Register adds or updates a currency in the registry
func (r *Registry) Register(meta Meta) error {
	if !IsValidFormat(string(meta.Code)) {
		return domain.Errorf(domain.ErrValidation, "invalid currency code: %s", meta.Code)
	}
	if meta.Decimals < 0 || meta.Decimals > 8 {
		return domain.Errorf(domain.ErrValidation, "invalid decimals for %s: %d", meta.Code, meta.Decimals)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.metas[meta.Code] = meta
	return nil
}

// Get returns currency metadata for the given code
func (r *Registry) Get(code Code) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metas[code]
	return m, ok
}

// IsSupported checks if a currency code is registered
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.Get(Code(code))
	return ok
}

// ListSupported returns all supported codes in lexical order.
func (r *Registry) ListSupported() []Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Code, 0, len(r.metas))
	for c := range r.metas {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parse validates code against the registry and returns it typed.
func (r *Registry) Parse(code string) (Code, error) {
	if !IsValidFormat(code) {
		return "", domain.Errorf(domain.ErrValidation, "invalid currency code: %q", code)
	}
	if !r.IsSupported(code) {
		return "", domain.Errorf(domain.ErrValidation, "unsupported currency: %s", code)
	}
	return Code(code), nil
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

func Get(code Code) (Meta, bool) { return defaultRegistry.Get(code) }

func IsSupported(code string) bool { return defaultRegistry.IsSupported(code) }

func ListSupported() []Code { return defaultRegistry.ListSupported() }

func Parse(code string) (Code, error) { return defaultRegistry.Parse(code) }

// Decimals returns the minor-unit precision of code, DefaultDecimals when unknown.
func Decimals(code Code) int32 {
	if m, ok := defaultRegistry.Get(code); ok {
		return m.Decimals
	}
	return DefaultDecimals
}

// MustParse is Parse for constants and tests.
func MustParse(code string) Code {
	c, err := Parse(code)
	if err != nil {
		panic(fmt.Sprintf("currency: %v", err))
	}
	return c
}
