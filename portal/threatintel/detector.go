// Package threatintel scores Ethereum addresses against multiple threat
// intelligence sources before the portal lets users send funds to them.
// A local blacklist plus two free public APIs (GoPlus Security and
// EtherScamDB) are queried in parallel; their per-source risk scores are
// averaged into an overall level with recommendations the chat frontend
// can show verbatim. Results are cached for a few minutes, sources that
// fail are simply excluded from the average.
package threatintel

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var intelLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	intelLog = zerolog.New(out).With().Timestamp().Str("component", "threatintel").Logger()
}

// Risk levels, strongest first.
const (
	LevelCritical = "critical"
	LevelHigh     = "high"
	LevelMedium   = "medium"
	LevelLow      = "low"
	LevelInvalid  = "invalid"
	LevelError    = "error"
)

const (
	defaultGoPlusURL      = "https://api.gopluslabs.io/api/v1/address_security"
	defaultEtherScamDBURL = "https://api.etherscamdb.info/v1/scams"

	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 5 * time.Minute
	defaultMinInterval = time.Second
	defaultMaxRetries  = 2
	defaultRetryDelay  = 500 * time.Millisecond
	scamDatabaseTTL    = 24 * time.Hour
)

// Addresses flagged by prior incident reports. Config.Blacklist extends
// this set at construction time.
var seedBlacklist = []string{
	"0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", // fake Uniswap token clone
	"0x514910771af9ca656af840dff83e8264ecf986ca", // suspicious contract
}

// SourceReport is the verdict of a single intelligence source.
type SourceReport struct {
	Source    string         `json:"source"`
	RiskScore int            `json:"risk_score"`
	Warnings  []string       `json:"warnings,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// Source is one address intelligence backend.
type Source interface {
	Name() string
	Check(ctx context.Context, address string) (*SourceReport, error)
}

// Report is the combined verdict over all sources.
type Report struct {
	Address          string         `json:"address"`
	IsSafe           bool           `json:"is_safe"`
	RiskLevel        string         `json:"risk_level"`
	OverallRiskScore float64        `json:"overall_risk_score"`
	Confidence       float64        `json:"confidence"`
	Warnings         []string       `json:"warnings"`
	Recommendations  []string       `json:"recommendations"`
	SourcesChecked   []string       `json:"sources_checked"`
	SourceReports    []SourceReport `json:"source_details,omitempty"`
	FromCache        bool           `json:"from_cache,omitempty"`
	Timestamp        string         `json:"timestamp"`
}

// Config tunes a Detector. The zero value uses the public API endpoints
// and production cache and rate-limit settings; tests point the URLs at
// stub servers.
type Config struct {
	GoPlusURL      string
	EtherScamDBURL string

	// HTTPTimeout bounds each source request. Zero means 10s.
	HTTPTimeout time.Duration
	// CacheTTL is how long a verdict stays cached. Zero means 5 minutes.
	CacheTTL time.Duration
	// MinInterval is the per-source rate limit. Zero means one second.
	MinInterval time.Duration
	// MaxRetries is the per-request retry budget. Zero means 2, negative
	// disables retries.
	MaxRetries int
	// RetryDelay is the initial backoff between retries, doubling each
	// attempt. Zero means 500ms.
	RetryDelay time.Duration

	// Blacklist adds addresses to the built-in local blacklist.
	Blacklist []string
}

func (c Config) withDefaults() Config {
	if c.GoPlusURL == "" {
		c.GoPlusURL = defaultGoPlusURL
	}
	if c.EtherScamDBURL == "" {
		c.EtherScamDBURL = defaultEtherScamDBURL
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.MinInterval <= 0 {
		c.MinInterval = defaultMinInterval
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	} else if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return c
}

type cacheEntry struct {
	report *Report
	at     time.Time
}

// Detector verifies addresses against the configured sources.
type Detector struct {
	sources  []Source
	cacheTTL time.Duration

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewDetector builds a Detector with the local blacklist, GoPlus, and
// EtherScamDB sources.
func NewDetector(cfg Config) *Detector {
	cfg = cfg.withDefaults()

	blacklist := make(map[string]struct{}, len(seedBlacklist)+len(cfg.Blacklist))
	for _, addr := range seedBlacklist {
		blacklist[strings.ToLower(addr)] = struct{}{}
	}
	for _, addr := range cfg.Blacklist {
		blacklist[strings.ToLower(addr)] = struct{}{}
	}

	d := &Detector{
		sources: []Source{
			&localSource{blacklist: blacklist},
			newGoPlusSource(cfg),
			newEtherScamDBSource(cfg),
		},
		cacheTTL: cfg.CacheTTL,
		cache:    make(map[string]cacheEntry),
	}
	intelLog.Info().Int("sources", len(d.sources)).Msg("threat intel detector ready")
	return d
}

// VerifyAddress scores an address across all sources. It never fails:
// malformed input yields an "invalid" report, unreachable sources drop
// out of the average, and a cancelled context yields an "error" report
// that recommends manual verification.
func (d *Detector) VerifyAddress(ctx context.Context, address string) *Report {
	if !validAddressFormat(address) {
		return &Report{
			Address:          address,
			IsSafe:           false,
			RiskLevel:        LevelInvalid,
			OverallRiskScore: 100,
			Warnings:         []string{"Invalid Ethereum address format"},
			Recommendations:  []string{"Please check the address format (0x + 40 hex characters)"},
			SourcesChecked:   []string{"format_validation"},
			Timestamp:        now(),
		}
	}

	cacheKey := strings.ToLower(address)
	if rep, ok := d.cached(cacheKey); ok {
		return rep
	}

	intelLog.Debug().Str("address", address).Msg("verifying address")

	reports := make([]*SourceReport, len(d.sources))
	errs := make([]error, len(d.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range d.sources {
		g.Go(func() error {
			reports[i], errs[i] = src.Check(gctx, address)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return &Report{
			Address:          address,
			IsSafe:           false,
			RiskLevel:        LevelError,
			OverallRiskScore: 50,
			Warnings:         []string{"Verification failed: " + err.Error()},
			Recommendations:  []string{"Manual verification recommended"},
			SourcesChecked:   []string{"error"},
			Timestamp:        now(),
		}
	}

	rep := d.combine(address, reports, errs)
	d.store(cacheKey, rep)
	return rep
}

func (d *Detector) combine(address string, reports []*SourceReport, errs []error) *Report {
	rep := &Report{
		Address:         address,
		IsSafe:          true,
		RiskLevel:       LevelLow,
		Warnings:        []string{},
		Recommendations: []string{},
		SourcesChecked:  []string{},
		Timestamp:       now(),
	}

	totalRisk := 0
	activeSources := 0
	for i, src := range d.sources {
		rep.SourcesChecked = append(rep.SourcesChecked, src.Name())
		if errs[i] != nil {
			intelLog.Warn().Err(errs[i]).Str("source", src.Name()).Msg("intel source failed")
			continue
		}
		sourceRep := reports[i]
		totalRisk += sourceRep.RiskScore
		activeSources++
		rep.Warnings = append(rep.Warnings, sourceRep.Warnings...)
		rep.SourceReports = append(rep.SourceReports, *sourceRep)
	}

	if activeSources > 0 {
		rep.OverallRiskScore = min(100, float64(totalRisk)/float64(activeSources))
		// Three sources ship in the default stack.
		rep.Confidence = min(1, float64(activeSources)/3)
	}

	switch {
	case rep.OverallRiskScore >= 80:
		rep.RiskLevel = LevelCritical
		rep.IsSafe = false
	case rep.OverallRiskScore >= 60:
		rep.RiskLevel = LevelHigh
		rep.IsSafe = false
	case rep.OverallRiskScore >= 30:
		rep.RiskLevel = LevelMedium
		rep.IsSafe = false
	}

	rep.Recommendations = recommendations(rep)
	return rep
}

// recommendations maps a combined score onto user guidance.
func recommendations(rep *Report) []string {
	var recs []string
	switch {
	case rep.OverallRiskScore >= 80:
		recs = append(recs,
			"DO NOT INTERACT with this address",
			"Block this address in your wallet",
			"Report to security team if you received tokens from this address",
			"Check if you have any pending transactions with this address",
		)
	case rep.OverallRiskScore >= 60:
		recs = append(recs,
			"HIGH RISK - Avoid transactions with this address",
			"Verify the address through official channels",
			"Never send large amounts to this address",
			"Document any interactions for security review",
		)
	case rep.OverallRiskScore >= 30:
		recs = append(recs,
			"MEDIUM RISK - Exercise caution",
			"Double-check address with the recipient",
			"Consider using smaller amounts for testing",
			"Monitor transactions closely",
		)
	default:
		recs = append(recs,
			"Address appears safe based on available data",
			"Continue with normal security practices",
			"Regular monitoring is still recommended",
		)
	}
	if len(rep.SourcesChecked) < 2 {
		recs = append(recs, "Limited data sources - consider additional verification")
	}
	return recs
}

func (d *Detector) cached(key string) (*Report, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entry, ok := d.cache[key]
	if !ok || time.Since(entry.at) >= d.cacheTTL {
		return nil, false
	}
	rep := *entry.report
	rep.FromCache = true
	return &rep, true
}

func (d *Detector) store(key string, rep *Report) {
	d.mu.Lock()
	d.cache[key] = cacheEntry{report: rep, at: time.Now()}
	d.mu.Unlock()
}

// validAddressFormat requires the 0x prefix the checksum helpers treat as
// optional.
func validAddressFormat(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
