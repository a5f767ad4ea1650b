package scheduler

import (
	"log"
	"sync"
	"time"

	"dealpulse/config"
	"dealpulse/models"
	"dealpulse/repository"
	"dealpulse/scraper"

	"github.com/robfig/cron/v3"
)

// ScanScheduler runs the daily category scan: harvest product links, fetch
// each page, extract a validated observation and append it to the store.
// Individual page failures never stop the batch.
type ScanScheduler struct {
	cron      *cron.Cron
	fetcher   *scraper.PageFetcher
	extractor *scraper.Extractor
	repo      *repository.ObservationRepository
	cfg       *config.Config

	mu      sync.Mutex
	running bool
}

// NewScanScheduler wires the scan pipeline together
func NewScanScheduler(fetcher *scraper.PageFetcher, extractor *scraper.Extractor, repo *repository.ObservationRepository, cfg *config.Config) *ScanScheduler {
	return &ScanScheduler{
		cron:      cron.New(cron.WithSeconds()),
		fetcher:   fetcher,
		extractor: extractor,
		repo:      repo,
		cfg:       cfg,
	}
}

// Start schedules the daily scan and optionally kicks one off immediately
func (s *ScanScheduler) Start() {
	_, err := s.cron.AddFunc(s.cfg.ScanSchedule, func() {
		log.Printf("⏰ Scheduled scan starting")
		s.RunScan()
	})
	if err != nil {
		log.Printf("Failed to schedule scan: %v", err)
		return
	}

	if s.cfg.ScanOnStartup {
		go s.RunScan()
	}

	s.cron.Start()
	log.Printf("Scan scheduler started (schedule: %s)", s.cfg.ScanSchedule)
}

// Stop stops the scheduler
func (s *ScanScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunScan performs one full category scan. Only one scan runs at a time;
// overlapping triggers return nil.
func (s *ScanScheduler) RunScan() *models.ScanSummary {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("Scan already in progress, skipping")
		return nil
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	summary := &models.ScanSummary{StartedAt: time.Now()}

	log.Printf("🔎 Collecting product links from category...")
	links, err := s.fetcher.CollectCategoryLinks(s.cfg.CategoryURL)
	if err != nil {
		log.Printf("Failed to collect category links: %v", err)
		summary.FinishedAt = time.Now()
		return summary
	}
	summary.LinksFound = len(links)

	log.Printf("Scanning %d product pages", len(links))

	for i, link := range links {
		content, err := s.fetcher.FetchPageWithRetry(link)
		if err != nil {
			log.Printf("[%d/%d] Fetch failed: %v", i+1, len(links), err)
			summary.FetchErrors++
			continue
		}

		name, price, err := s.extractor.Extract(content)
		if err != nil {
			switch {
			case models.IsOutOfStock(err):
				log.Printf("[%d/%d] Out of stock, skipping: %s", i+1, len(links), link)
				summary.OutOfStock++
			case models.IsNoPriceFound(err):
				log.Printf("[%d/%d] No price found: %s", i+1, len(links), link)
				summary.NoPrice++
			default:
				log.Printf("[%d/%d] Extraction failed: %v", i+1, len(links), err)
				summary.NoPrice++
			}
			continue
		}

		if err := s.repo.AddObservation(name, price, link); err != nil {
			log.Printf("[%d/%d] Failed to store observation: %v", i+1, len(links), err)
			continue
		}

		log.Printf("[%d/%d] 💾 Saved: %.2f %s | %s", i+1, len(links), price, s.cfg.CurrencySymbol, truncate(name, 40))
		summary.Stored++
	}

	summary.FinishedAt = time.Now()
	log.Printf("🏁 Scan done in %v: %d stored, %d out of stock, %d without price, %d fetch errors",
		summary.Duration().Round(time.Second), summary.Stored, summary.OutOfStock, summary.NoPrice, summary.FetchErrors)

	return summary
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
