package jobsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"skillscan/internal/models"
	"skillscan/internal/types"
)

// fanoutCityLimit caps how many configured cities one search queries.
const fanoutCityLimit = 3

type Config struct {
	APIKey  string
	APIHost string
	BaseURL string

	// Strategy selects between a single country-filtered query ("direct") and
	// sequential per-city queries merged into one result set ("fanout").
	Strategy string
	Country  string
	Cities   []string

	QuerySkillLimit int
	QueryJoiner     string

	MaxJobs      int
	PerCityLimit int

	// DescriptionWords > 0 switches truncation from a character budget to a
	// word budget.
	DescriptionChars int
	DescriptionWords int

	RateLimit float64 // requests per second across fan-out queries
	Timeout   time.Duration
}

// Client queries the JSearch API and normalizes its results into JobRecords.
// No relevance re-ranking happens here; result order is upstream order with
// later duplicates dropped.
type Client struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

func NewWithConfig(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://jsearch.p.rapidapi.com"
	}
	if config.APIHost == "" {
		config.APIHost = "jsearch.p.rapidapi.com"
	}
	if config.Strategy == "" {
		config.Strategy = "direct"
	}
	if config.Country == "" {
		config.Country = "in"
	}
	// The direct variant queries 5 skills joined with OR; fan-out queries 3
	// skills joined with spaces and trims descriptions by words.
	if config.QuerySkillLimit == 0 {
		if config.Strategy == "fanout" {
			config.QuerySkillLimit = 3
		} else {
			config.QuerySkillLimit = 5
		}
	}
	if config.QueryJoiner == "" {
		if config.Strategy == "fanout" {
			config.QueryJoiner = " "
		} else {
			config.QueryJoiner = " OR "
		}
	}
	if config.Strategy == "fanout" && config.DescriptionWords == 0 {
		config.DescriptionWords = 100
	}
	if config.MaxJobs == 0 {
		config.MaxJobs = 10
	}
	if config.PerCityLimit == 0 {
		config.PerCityLimit = 5
	}
	if config.DescriptionChars == 0 {
		config.DescriptionChars = 300
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}, nil
}

// Search queries job postings matching the given skills. A zero-match search
// returns an empty slice, not an error.
func (c *Client) Search(ctx context.Context, skills []string) ([]models.JobRecord, error) {
	query := c.buildQuery(skills)

	if c.config.Strategy == "fanout" {
		return c.searchFanout(ctx, query)
	}
	return c.searchDirect(ctx, query)
}

// buildQuery joins the top skills into one search string.
func (c *Client) buildQuery(skills []string) string {
	limit := c.config.QuerySkillLimit
	if limit > len(skills) {
		limit = len(skills)
	}
	return strings.Join(skills[:limit], c.config.QueryJoiner)
}

func (c *Client) searchDirect(ctx context.Context, query string) ([]models.JobRecord, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", "1")
	params.Set("num_pages", "1")
	params.Set("date_posted", "all")
	params.Set("remote_jobs_only", "false")
	params.Set("country", strings.ToUpper(c.config.Country))

	raw, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.JobRecord, 0, len(raw))
	for _, r := range raw {
		job, ok := c.normalize(r, "")
		if !ok {
			continue
		}
		jobs = append(jobs, job)
		if len(jobs) == c.config.MaxJobs {
			break
		}
	}

	return jobs, nil
}

// searchFanout issues one query per city, sequentially. A failing city is
// logged and skipped; the search only comes back empty when every city fails
// or matches nothing.
func (c *Client) searchFanout(ctx context.Context, query string) ([]models.JobRecord, error) {
	cities := c.config.Cities
	if len(cities) > fanoutCityLimit {
		cities = cities[:fanoutCityLimit]
	}
	country := countryName(c.config.Country)

	var merged []models.JobRecord
	seen := make(map[string]bool)

	for _, city := range cities {
		if err := c.limiter.Wait(ctx); err != nil {
			return merged, err
		}

		location := city + ", " + country

		params := url.Values{}
		params.Set("query", query)
		params.Set("location", location)
		params.Set("page", "1")
		params.Set("num_pages", "1")

		raw, err := c.fetch(ctx, params)
		if err != nil {
			if ctx.Err() != nil {
				return merged, err
			}
			log.Printf("[jobsearch] search in %s failed: %v - continuing", city, err)
			continue
		}

		// PerCityLimit bounds a city's accepted raw listings, not its merged
		// contribution; a cross-city duplicate still consumes a slot.
		accepted := 0
		for _, r := range raw {
			if accepted == c.config.PerCityLimit {
				break
			}
			job, ok := c.normalize(r, location)
			if !ok {
				continue
			}
			accepted++

			key := job.Title + "|" + job.Company
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, job)
		}
	}

	if len(merged) > c.config.MaxJobs {
		merged = merged[:c.config.MaxJobs]
	}
	return merged, nil
}

// jsearchResponse mirrors the top-level JSearch JSON response.
type jsearchResponse struct {
	Data []jsearchJob `json:"data"`
}

// jsearchJob mirrors a single JSearch job listing. Only job_title and
// employer_name are required for acceptance; everything else has a fallback.
type jsearchJob struct {
	JobTitle       string `json:"job_title"`
	EmployerName   string `json:"employer_name"`
	JobCity        string `json:"job_city"`
	JobState       string `json:"job_state"`
	JobCountry     string `json:"job_country"`
	JobDescription string `json:"job_description"`
	JobApplyLink   string `json:"job_apply_link"`
	JobGoogleLink  string `json:"job_google_link"`
	JobPostedAt    string `json:"job_posted_at_date_time"`
}

type jsearchError struct {
	Message string `json:"message"`
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]jsearchJob, error) {
	reqURL := c.config.BaseURL + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", c.config.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.config.APIHost)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, types.NewError(types.KindUpstream,
			fmt.Sprintf("JSearch API request failed: %v", err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, types.NewError(types.KindUpstream,
			fmt.Sprintf("JSearch API request failed: %v", err), err)
	}

	if resp.StatusCode != http.StatusOK {
		message := "Unknown error"
		var apiErr jsearchError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			message = apiErr.Message
		}
		return nil, &types.AnalysisError{
			Kind:    types.KindUpstream,
			Status:  resp.StatusCode,
			Message: fmt.Sprintf("JSearch API error: %d - %s", resp.StatusCode, message),
		}
	}

	var apiResp jsearchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, types.NewError(types.KindUpstream,
			fmt.Sprintf("JSearch API returned malformed JSON: %v", err), err)
	}

	return apiResp.Data, nil
}

// normalize maps a raw listing into a JobRecord. Returns false when the
// listing is missing a title or employer; such entries are dropped silently.
func (c *Client) normalize(raw jsearchJob, fallbackLocation string) (models.JobRecord, bool) {
	if raw.JobTitle == "" || raw.EmployerName == "" {
		return models.JobRecord{}, false
	}

	location := "Remote"
	switch {
	case raw.JobCity != "" && raw.JobState != "":
		location = raw.JobCity + ", " + raw.JobState
	case raw.JobCountry != "":
		location = raw.JobCountry
	case fallbackLocation != "":
		location = fallbackLocation
	}

	link := raw.JobApplyLink
	if link == "" {
		link = raw.JobGoogleLink
	}
	if link == "" {
		link = "#"
	}

	posted := raw.JobPostedAt
	if posted == "" {
		posted = "Recently"
	}

	return models.JobRecord{
		Title:       raw.JobTitle,
		Company:     raw.EmployerName,
		Location:    location,
		Description: c.normalizeDescription(raw.JobDescription),
		Link:        link,
		PostedDate:  posted,
	}, true
}

func (c *Client) normalizeDescription(desc string) string {
	desc = strings.TrimSpace(stripHTML(desc))
	if desc == "" {
		return "No description available."
	}

	if c.config.DescriptionWords > 0 {
		words := strings.Fields(desc)
		if len(words) > c.config.DescriptionWords {
			return strings.Join(words[:c.config.DescriptionWords], " ") + "..."
		}
		return strings.Join(words, " ")
	}

	runes := []rune(desc)
	if len(runes) > c.config.DescriptionChars {
		return string(runes[:c.config.DescriptionChars]) + "..."
	}
	return desc
}
