package threatintel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// localSource checks the in-process blacklist and a couple of cheap
// address heuristics. It needs no network and never fails.
type localSource struct {
	blacklist map[string]struct{}
}

func (s *localSource) Name() string { return "local_blacklist" }

func (s *localSource) Check(_ context.Context, address string) (*SourceReport, error) {
	rep := &SourceReport{Source: s.Name(), Details: map[string]any{}}

	if _, ok := s.blacklist[strings.ToLower(address)]; ok {
		rep.RiskScore = 100
		rep.Warnings = append(rep.Warnings, "Address found in local blacklist")
		rep.Details["blacklist_reason"] = "Known phishing/scam address"
	}
	if hasSuspiciousPattern(address) {
		rep.RiskScore += 30
		rep.Warnings = append(rep.Warnings, "Suspicious address pattern detected")
	}
	return rep, nil
}

// hasSuspiciousPattern flags vanity-style addresses: a flood of zeros or
// one hex digit repeated far beyond what random addresses produce.
func hasSuspiciousPattern(address string) bool {
	if strings.Count(address, "0") > 35 {
		return true
	}
	lower := strings.ToLower(address)
	for _, c := range "0123456789abcdef" {
		if strings.Count(lower, string(c)) > 30 {
			return true
		}
	}
	return false
}

// httpSource carries the shared HTTP plumbing of the remote intel
// sources: a bounded client, a per-source rate limit, and retries with a
// doubling delay.
type httpSource struct {
	httpClient  *http.Client
	baseURL     string
	minInterval time.Duration
	maxRetries  int
	retryDelay  time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

func newHTTPSource(baseURL string, cfg Config) httpSource {
	return httpSource{
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		minInterval: cfg.MinInterval,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
	}
}

func (s *httpSource) waitRateLimit(ctx context.Context) error {
	s.mu.Lock()
	last := s.lastRequest
	s.mu.Unlock()

	wait := s.minInterval - time.Since(last)
	if wait <= 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *httpSource) markRequest() {
	s.mu.Lock()
	s.lastRequest = time.Now()
	s.mu.Unlock()
}

// fetchJSON GETs fullURL and decodes the body into out, honoring the
// rate limit and retrying transient failures.
func (s *httpSource) fetchJSON(ctx context.Context, fullURL string, out any) error {
	if err := s.waitRateLimit(ctx); err != nil {
		return err
	}

	var lastErr error
	delay := s.retryDelay
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return err
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
			continue
		}

		s.markRequest()
		return json.Unmarshal(body, out)
	}
	return fmt.Errorf("request failed after %d attempts: %w", s.maxRetries+1, lastErr)
}

// goPlusSource queries the free GoPlus Security address API.
type goPlusSource struct {
	httpSource
}

func newGoPlusSource(cfg Config) *goPlusSource {
	return &goPlusSource{httpSource: newHTTPSource(cfg.GoPlusURL, cfg)}
}

func (s *goPlusSource) Name() string { return "goplus_security" }

type goPlusResponse struct {
	Code   int                          `json:"code"`
	Result map[string]goPlusAddressData `json:"result"`
}

type goPlusAddressData struct {
	IsPhishing        int      `json:"is_phishing"`
	IsHoneypot        int      `json:"is_honeypot"`
	MaliciousBehavior []string `json:"malicious_behavior"`
	IsContract        int      `json:"is_contract"`
	IsProxy           int      `json:"is_proxy"`
	TrustList         int      `json:"trust_list"`
}

func (s *goPlusSource) Check(ctx context.Context, address string) (*SourceReport, error) {
	fullURL := fmt.Sprintf("%s?chain_id=1&addresses=%s", s.baseURL, url.QueryEscape(address))

	var data goPlusResponse
	if err := s.fetchJSON(ctx, fullURL, &data); err != nil {
		return nil, err
	}

	rep := &SourceReport{Source: s.Name(), Details: map[string]any{}}
	addr, ok := data.Result[address]
	if data.Code != 1 || !ok {
		return rep, nil
	}

	if addr.IsPhishing == 1 {
		rep.RiskScore = 95
		rep.Warnings = append(rep.Warnings, "PHISHING ADDRESS detected by GoPlus")
	}
	if addr.IsHoneypot == 1 {
		rep.RiskScore += 80
		rep.Warnings = append(rep.Warnings, "Honeypot contract detected")
	}
	if len(addr.MaliciousBehavior) > 0 {
		rep.RiskScore += len(addr.MaliciousBehavior) * 20
		for _, behavior := range addr.MaliciousBehavior {
			rep.Warnings = append(rep.Warnings, "Malicious behavior: "+behavior)
		}
	}
	if addr.IsContract == 1 {
		rep.Details["is_contract"] = true
		if addr.IsProxy == 1 {
			rep.RiskScore += 15
			rep.Warnings = append(rep.Warnings, "Proxy contract detected")
		}
		if addr.TrustList == 1 {
			rep.RiskScore = max(0, rep.RiskScore-30)
			rep.Warnings = append(rep.Warnings, "Contract in GoPlus trust list")
		}
	}
	rep.Details["goplus_data"] = addr
	return rep, nil
}

// etherScamDBSource checks addresses against the EtherScamDB scam list.
// The full list downloads once and is reused for a day; a download
// failure falls back to whatever copy is on hand.
type etherScamDBSource struct {
	httpSource

	dbMu      sync.Mutex
	db        *scamDatabase
	fetchedAt time.Time
}

func newEtherScamDBSource(cfg Config) *etherScamDBSource {
	return &etherScamDBSource{httpSource: newHTTPSource(cfg.EtherScamDBURL, cfg)}
}

func (s *etherScamDBSource) Name() string { return "etherscamdb" }

type scamDatabase struct {
	Result []scamEntry `json:"result"`
}

type scamEntry struct {
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Addresses []string `json:"addresses"`
}

func (s *etherScamDBSource) Check(ctx context.Context, address string) (*SourceReport, error) {
	db := s.database(ctx)

	rep := &SourceReport{Source: s.Name(), Details: map[string]any{}}
	if db == nil {
		return rep, nil
	}

	lower := strings.ToLower(address)
	for _, scam := range db.Result {
		for _, scamAddr := range scam.Addresses {
			if strings.ToLower(scamAddr) != lower {
				continue
			}
			rep.RiskScore = 100
			rep.Warnings = append(rep.Warnings, "SCAM detected: "+orUnknown(scam.Name))
			rep.Details["scam_type"] = orUnknown(scam.Category)
			rep.Details["scam_name"] = orUnknown(scam.Name)
			break
		}
		if rep.RiskScore > 0 {
			break
		}
	}
	return rep, nil
}

func (s *etherScamDBSource) database(ctx context.Context) *scamDatabase {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db != nil && time.Since(s.fetchedAt) < scamDatabaseTTL {
		return s.db
	}

	var db scamDatabase
	if err := s.fetchJSON(ctx, s.baseURL, &db); err != nil {
		intelLog.Warn().Err(err).Msg("scam database refresh failed")
		return s.db
	}
	s.db = &db
	s.fetchedAt = time.Now()
	intelLog.Debug().Int("entries", len(db.Result)).Msg("scam database refreshed")
	return s.db
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
