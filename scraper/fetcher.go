package scraper

import (
	"fmt"
	"log"
	"os"
	"time"

	"dealpulse/config"
	"dealpulse/models"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// PageFetcher renders product pages with a headless browser and hands page
// snapshots to the extraction pipeline. It owns all navigation, waiting and
// anti-automation concerns so the extraction core stays pure.
type PageFetcher struct {
	browser      *rod.Browser
	pageWait     time.Duration
	scrollPasses int
	scrollPause  time.Duration
	retries      int
	retryDelay   time.Duration
	symbol       string
}

// NewPageFetcher launches a headless browser
func NewPageFetcher(cfg *config.Config) (*PageFetcher, error) {
	// Use system Chromium in Docker, auto-detect locally
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false)

	if _, err := os.Stat("/usr/bin/chromium-browser"); err == nil {
		l = l.Bin("/usr/bin/chromium-browser")
		log.Printf("Using system Chromium in Docker environment")
	} else {
		log.Printf("Using auto-detected Chromium (local environment)")
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %v", err)
	}
	log.Printf("Using browser at: %s", url)

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %v", err)
	}

	return &PageFetcher{
		browser:      browser,
		pageWait:     cfg.PageWait,
		scrollPasses: cfg.ScrollPasses,
		scrollPause:  cfg.ScrollPause,
		retries:      cfg.FetchRetries,
		retryDelay:   cfg.RetryDelay,
		symbol:       cfg.CurrencySymbol,
	}, nil
}

// Close shuts the browser down
func (f *PageFetcher) Close() {
	if f.browser != nil {
		f.browser.MustClose()
	}
}

// FetchPage navigates to a product page and captures its snapshot: structured
// data blocks, visible text, accessible labels and a display name.
func (f *PageFetcher) FetchPage(url string) (content *models.RawPageContent, err error) {
	// rod's Must API panics on failure; one broken page must not take the
	// scan loop down with it
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("failed to fetch %s: %v", url, r)
		}
	}()

	page := f.browser.MustPage(url)
	defer page.MustClose()

	page.MustSetViewport(1920, 1080, 1.0, false)
	applyStealth(page)
	page.MustWaitLoad()

	// Dynamic storefronts render prices late; a fixed wait is the pacing
	// the retailer's lazy loading needs
	time.Sleep(f.pageWait)

	snapshot := &models.RawPageContent{URL: url}

	snapshot.Title = page.MustInfo().Title
	if h1, err := page.Element("h1"); err == nil {
		if text, err := h1.Text(); err == nil && text != "" {
			snapshot.Title = text
		}
	}

	for _, script := range page.MustElements(`script[type="application/ld+json"]`) {
		block := script.MustProperty("textContent").Str()
		if block != "" {
			snapshot.StructuredBlocks = append(snapshot.StructuredBlocks, block)
		}
	}

	snapshot.VisibleText = page.MustEval(`() => document.body.innerText`).Str()

	labelSelector := fmt.Sprintf(`[aria-label*="%s"]`, f.symbol)
	if elements, err := page.Elements(labelSelector); err == nil {
		for _, el := range elements {
			if label, err := el.Attribute("aria-label"); err == nil && label != nil {
				snapshot.AccessibleLabels = append(snapshot.AccessibleLabels, *label)
			}
		}
	}

	return snapshot, nil
}

// FetchPageWithRetry retries transient fetch failures before giving up
func (f *PageFetcher) FetchPageWithRetry(url string) (*models.RawPageContent, error) {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			log.Printf("🔄 Retry %d/%d for %s", attempt, f.retries, url)
			time.Sleep(f.retryDelay)
		}

		content, err := f.FetchPage(url)
		if err == nil {
			return content, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// CollectCategoryLinks loads a category page, scrolls to trigger lazy
// loading, and returns the unique product page links in discovery order
func (f *PageFetcher) CollectCategoryLinks(categoryURL string) (links []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			links = nil
			err = fmt.Errorf("failed to collect links from %s: %v", categoryURL, r)
		}
	}()

	page := f.browser.MustPage(categoryURL)
	defer page.MustClose()

	page.MustSetViewport(1920, 1080, 1.0, false)
	applyStealth(page)
	page.MustWaitLoad()
	time.Sleep(f.pageWait)

	for i := 0; i < f.scrollPasses; i++ {
		page.MustEval(`() => window.scrollTo(0, document.body.scrollHeight)`)
		time.Sleep(f.scrollPause)
	}

	seen := make(map[string]bool)
	for _, el := range page.MustElements(`a[href*="/item/"]`) {
		href, err := el.Attribute("href")
		if err != nil || href == nil || *href == "" {
			continue
		}
		if !seen[*href] {
			seen[*href] = true
			links = append(links, *href)
		}
	}

	log.Printf("Found %d unique product links", len(links))
	return links, nil
}

// applyStealth masks common automation fingerprints before navigation
func applyStealth(page *rod.Page) {
	page.MustEvalOnNewDocument(`
		Object.defineProperty(navigator, 'webdriver', {
			get: () => undefined,
		});

		Object.defineProperty(navigator, 'plugins', {
			get: () => [1, 2, 3, 4, 5],
		});

		Object.defineProperty(navigator, 'languages', {
			get: () => ['he-IL', 'he', 'en-US', 'en'],
		});

		window.chrome = {
			runtime: {},
		};
	`)
}
