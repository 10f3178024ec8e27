package menu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Fetcher downloads and parses one month of the cafeteria calendar from the
// institutional website. It is injected into the menu service so tests can
// substitute a local server or a canned source.
type Fetcher struct {
	// Client is the HTTP client used for fetches. A default with a sane
	// timeout is used when nil.
	Client *http.Client

	// BaseURL is the calendar endpoint, e.g.
	// "http://stu.sen.go.kr/sts_sci_md00_001.do".
	BaseURL string

	// SchoolCode, SchoolName, and CourseCode identify the institution the
	// way the endpoint expects them (schulCode / insttNm / schulCrseScCode).
	SchoolCode string
	SchoolName string
	CourseCode string
}

// FetchMonth downloads the calendar page for (year, month) and parses it.
func (f *Fetcher) FetchMonth(ctx context.Context, year int, month time.Month) ([]DayMenu, error) {
	q := url.Values{}
	q.Set("schulCode", f.SchoolCode)
	q.Set("insttNm", f.SchoolName)
	q.Set("schulCrseScCode", f.CourseCode)
	q.Set("ay", fmt.Sprintf("%d", year))
	q.Set("mm", fmt.Sprintf("%02d", int(month)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("menu: fetch %d-%02d: %w", year, int(month), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("menu: fetch %d-%02d: unexpected status %d", year, int(month), resp.StatusCode)
	}

	pairs, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("menu: parse %d-%02d: %w", year, int(month), err)
	}
	return pairs, nil
}
