package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"hut-occupancy-backend/config"
	"hut-occupancy-backend/internal/history"
	"hut-occupancy-backend/internal/hut"
)

// FetchError reports a failed availability fetch for a single hut. It is
// recoverable: the pass continues with the remaining huts.
type FetchError struct {
	Hut   string
	HutID int64
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching availability for %s (hut %d): %v", e.Hut, e.HutID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PassResult summarizes one polling pass.
type PassResult struct {
	PassID      string
	RowsWritten int
	DaysSkipped int
	HutErrors   []*FetchError
}

// Service polls the reservation API for every registered hut and appends the
// normalized availability rows to the history dataset.
type Service struct {
	cfg      *config.Config
	registry *hut.Registry
	store    history.Store
	client   *http.Client
	loc      *time.Location
}

// NewService creates and initializes a new poller service.
func NewService(cfg *config.Config, registry *hut.Registry, store history.Store) *Service {
	var transport http.RoundTripper = &http.Transport{}
	if cfg.Poller.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Poller.HTTPProxy)
		if err != nil {
			log.Printf("Warning: Invalid proxy URL %q: %v. Poller will not use a proxy.", cfg.Poller.HTTPProxy, err)
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}

	return &Service{
		cfg:      cfg,
		registry: registry,
		store:    store,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Poller.Timeout,
		},
		loc: cfg.Location(),
	}
}

// Run executes one pass immediately and then keeps polling on the configured
// interval until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Poller.Enabled {
		log.Println("Poller is disabled. Not starting.")
		return
	}
	log.Println("Starting poller service...")

	s.runPass(ctx)

	timer := time.NewTimer(s.cfg.Poller.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Poller service shutting down.")
			return
		case <-timer.C:
			s.runPass(ctx)
			timer.Reset(s.cfg.Poller.Interval)
		}
	}
}

func (s *Service) runPass(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		log.Printf("Error: polling pass failed: %v", err)
	}
}

// RunOnce performs a single polling pass: migrate the dataset if needed,
// fetch every registered hut, normalize and append. Huts are fetched
// concurrently but their rows are appended in registry order, as one batch.
// Per-hut fetch failures and malformed day records are logged and skipped;
// the returned error is non-nil only for dataset failures, which leave the
// file unchanged.
func (s *Service) RunOnce(ctx context.Context) (PassResult, error) {
	result := PassResult{PassID: uuid.NewString()}
	log.Printf("Executing polling pass %s...", result.PassID)

	if err := s.store.MigrateIfNeeded(); err != nil {
		return result, err
	}

	// The retrieval date is the calendar date where the huts are, not where
	// this process runs.
	retrievedAt := time.Now().In(s.loc)
	huts := s.registry.All()

	type outcome struct {
		days []history.RawDay
		err  error
	}
	outcomes := make([]outcome, len(huts))

	var wg sync.WaitGroup
	for i, h := range huts {
		wg.Add(1)
		go func(i int, h hut.Descriptor) {
			defer wg.Done()
			days, err := s.fetchAvailability(ctx, h)
			outcomes[i] = outcome{days: days, err: err}
		}(i, h)
	}
	wg.Wait()

	var rows []history.Row
	for i, h := range huts {
		if err := outcomes[i].err; err != nil {
			log.Printf("Error fetching hut %s (%d): %v", h.Name, h.UpstreamID, err)
			result.HutErrors = append(result.HutErrors, &FetchError{Hut: h.Name, HutID: h.UpstreamID, Err: err})
			continue
		}
		for _, raw := range outcomes[i].days {
			row, err := history.Normalize(h, retrievedAt, raw)
			if err != nil {
				log.Printf("Warning: skipping malformed day record: %v", err)
				result.DaysSkipped++
				continue
			}
			rows = append(rows, row)
		}
	}

	if err := s.store.AppendBatch(rows); err != nil {
		return result, err
	}
	result.RowsWritten = len(rows)

	log.Printf("Polling pass %s finished: %d rows appended, %d huts failed, %d day records skipped.",
		result.PassID, result.RowsWritten, len(result.HutErrors), result.DaysSkipped)
	return result, nil
}

// fetchAvailability fetches the per-day availability list for one hut.
func (s *Service) fetchAvailability(ctx context.Context, h hut.Descriptor) ([]history.RawDay, error) {
	u, err := url.Parse(s.cfg.Poller.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid poller url: %w", err)
	}
	q := u.Query()
	q.Set("hutId", strconv.FormatInt(h.UpstreamID, 10))
	q.Set("step", "WIZARD")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.Poller.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var days []history.RawDay
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("failed to unmarshal availability response: %w", err)
	}

	return days, nil
}
