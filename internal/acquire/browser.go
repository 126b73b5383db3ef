package acquire

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/model"
)

const mapsSearchURL = "https://www.google.com/maps/search/"

// BrowserOptions configures the chromedp fallback path.
type BrowserOptions struct {
	Headless   bool
	ChromePath string
	// Delay is the fixed pause between successive result extractions.
	Delay time.Duration
}

// BrowserSearcher implements Searcher by driving a headless browser over
// the public maps UI. Used when no API key is configured. The browser
// process is created inside Search and released on every exit path; the
// searcher itself holds no browser state and is safe to reuse.
type BrowserSearcher struct {
	opts BrowserOptions
}

// NewBrowserSearcher creates the browser-automation acquisition path.
func NewBrowserSearcher(opts BrowserOptions) *BrowserSearcher {
	return &BrowserSearcher{opts: opts}
}

// Search loads the results view for "<term> <location>", scrolls the feed
// until MaxResults distinct names are collected or the feed stops growing,
// and opens each result's detail view to extract its fields. A failed
// entry is logged and skipped after navigating back to the feed.
func (s *BrowserSearcher) Search(ctx context.Context, q Query) ([]model.Business, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	log := zap.L().With(zap.String("searcher", "browser"), zap.String("term", q.Term))

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin := s.chromeBinary(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	searchURL := mapsSearchURL + url.PathEscape(q.Term+" "+q.Location)
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(searchURL),
		chromedp.Sleep(3*time.Second),
		chromedp.WaitVisible(`div[role="feed"]`, chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrap(err, "acquire: load results view")
	}

	seen := make(map[string]bool)
	var businesses []model.Business
	lastHeight, staleScrolls := -1, 0

	for len(businesses) < q.MaxResults && staleScrolls < 2 {
		names, err := s.listResultNames(browserCtx)
		if err != nil {
			return businesses, eris.Wrap(err, "acquire: list results")
		}

		for _, name := range names {
			if len(businesses) >= q.MaxResults {
				break
			}
			key := strings.Join(strings.Fields(strings.ToLower(name)), " ")
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			b, err := s.extractDetail(browserCtx, name)
			if err != nil {
				log.Warn("acquire: entry extraction failed, skipping",
					zap.String("name", name),
					zap.Error(err),
				)
				// Best effort: make sure we are back on the feed before
				// touching the next entry.
				_ = chromedp.Run(browserCtx,
					chromedp.Navigate(searchURL),
					chromedp.Sleep(2*time.Second),
				)
				continue
			}
			businesses = append(businesses, b)
			pace(ctx, s.opts.Delay)
		}

		height, err := s.scrollFeed(browserCtx)
		if err != nil {
			return businesses, eris.Wrap(err, "acquire: scroll feed")
		}
		if height == lastHeight {
			staleScrolls++
		} else {
			staleScrolls = 0
			lastHeight = height
		}
	}

	log.Info("acquire: scrape complete", zap.Int("collected", len(businesses)))
	return businesses, nil
}

// listResultNames reads the display names currently rendered in the feed.
func (s *BrowserSearcher) listResultNames(ctx context.Context) ([]string, error) {
	var names []string
	err := chromedp.Run(ctx, chromedp.Evaluate(`
		(function() {
			var out = [];
			var links = document.querySelectorAll('div[role="feed"] a[href*="/maps/place/"]');
			for (var i = 0; i < links.length; i++) {
				var label = links[i].getAttribute('aria-label');
				if (label) out.push(label);
			}
			return out;
		})()
	`, &names))
	return names, err
}

// scrollFeed scrolls the results feed to its bottom and reports the new
// scroll height, so the caller can detect end-of-list.
func (s *BrowserSearcher) scrollFeed(ctx context.Context) (int, error) {
	var height int
	err := chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var feed = document.querySelector('div[role="feed"]');
				if (!feed) return 0;
				feed.scrollTo(0, feed.scrollHeight);
				return feed.scrollHeight;
			})()
		`, &height),
		chromedp.Sleep(2*time.Second),
	)
	return height, err
}

// detailData is the raw field set pulled from a result's detail view.
type detailData struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Website  string `json:"website"`
	Rating   string `json:"rating"`
	Category string `json:"category"`
}

// extractDetail opens the detail view for the named entry, reads its
// fields and navigates back to the feed.
func (s *BrowserSearcher) extractDetail(ctx context.Context, name string) (model.Business, error) {
	nameJSON, err := json.Marshal(name)
	if err != nil {
		return model.Business{}, eris.Wrap(err, "acquire: encode entry name")
	}

	var clicked bool
	err = chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				var target = `+string(nameJSON)+`;
				var links = document.querySelectorAll('div[role="feed"] a[href*="/maps/place/"]');
				for (var i = 0; i < links.length; i++) {
					if (links[i].getAttribute('aria-label') === target) {
						links[i].click();
						return true;
					}
				}
				return false;
			})()
		`, &clicked),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return model.Business{}, eris.Wrap(err, "acquire: open detail view")
	}
	if !clicked {
		return model.Business{}, eris.Errorf("acquire: entry %q not found in feed", name)
	}

	var d detailData
	err = chromedp.Run(ctx,
		chromedp.Evaluate(`
			(function() {
				function text(sel) {
					var el = document.querySelector(sel);
					return el ? el.textContent.trim() : '';
				}
				function href(sel) {
					var el = document.querySelector(sel);
					return el ? (el.getAttribute('href') || '') : '';
				}
				return {
					name:     text('h1'),
					address:  text("[data-item-id='address']"),
					phone:    text("[data-item-id*='phone']"),
					website:  href("[data-item-id='authority']"),
					rating:   text("div[role='main'] span[aria-hidden='true']"),
					category: text("button[jsaction*='category']")
				};
			})()
		`, &d),
		chromedp.NavigateBack(),
		chromedp.Sleep(2*time.Second),
	)
	if err != nil {
		return model.Business{}, eris.Wrap(err, "acquire: extract detail view")
	}

	b := businessFromDetailData(d)
	if b.Name == "" {
		b.Name = name
	}
	return b, nil
}

// businessFromDetailData converts raw DOM strings into a Business. Fields
// that did not parse stay at their zero value.
func businessFromDetailData(d detailData) model.Business {
	b := model.Business{
		Name:     strings.TrimSpace(d.Name),
		Address:  strings.TrimSpace(d.Address),
		Phone:    strings.TrimSpace(d.Phone),
		Website:  strings.TrimSpace(d.Website),
		Category: strings.TrimSpace(d.Category),
	}
	if r, ok := parseRating(d.Rating); ok {
		b.Rating = r
	}
	return b
}

// parseRating reads a rating like "4,6" or "4.6 stars" from the DOM text.
func parseRating(raw string) (float64, bool) {
	field := strings.Fields(strings.TrimSpace(raw))
	if len(field) == 0 {
		return 0, false
	}
	r, err := strconv.ParseFloat(strings.ReplaceAll(field[0], ",", "."), 64)
	if err != nil || r < 0 || r > 5 {
		return 0, false
	}
	return r, true
}

// chromeBinary locates the browser binary, preferring explicit config.
func (s *BrowserSearcher) chromeBinary() string {
	if s.opts.ChromePath != "" {
		return s.opts.ChromePath
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
