package jobsearch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillscan/internal/types"
	"skillscan/pkg/jobsearch"
)

type rawJob map[string]string

func jsearchServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func respondWith(t *testing.T, w http.ResponseWriter, jobs []rawJob) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]interface{}{"data": jobs})
	require.NoError(t, err)
}

func newClient(t *testing.T, config jobsearch.Config) *jobsearch.Client {
	t.Helper()
	if config.APIKey == "" {
		config.APIKey = "test-key"
	}
	client, err := jobsearch.NewWithConfig(config)
	require.NoError(t, err)
	return client
}

func TestSearchDirect(t *testing.T) {
	var gotQuery, gotCountry, gotKey string

	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		gotCountry = r.URL.Query().Get("country")
		gotKey = r.Header.Get("X-RapidAPI-Key")

		respondWith(t, w, []rawJob{
			{
				"job_title":               "Backend Engineer",
				"employer_name":           "Initech",
				"job_city":                "Austin",
				"job_state":               "TX",
				"job_description":         "Build services.",
				"job_apply_link":          "https://example.com/apply",
				"job_posted_at_date_time": "2025-08-12T00:00:00.000Z",
			},
			{
				// No employer; dropped during normalization.
				"job_title": "Ghost Listing",
			},
			{
				"job_title":     "Platform Engineer",
				"employer_name": "Globex",
			},
		})
	})

	client := newClient(t, jobsearch.Config{BaseURL: srv.URL, Country: "us"})
	jobs, err := client.Search(context.Background(),
		[]string{"Go", "Kubernetes", "Postgres", "Redis", "Kafka", "Terraform"})

	require.NoError(t, err)
	assert.Equal(t, "Go OR Kubernetes OR Postgres OR Redis OR Kafka", gotQuery)
	assert.Equal(t, "US", gotCountry)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, jobs, 2)
	assert.Equal(t, "Backend Engineer", jobs[0].Title)
	assert.Equal(t, "Initech", jobs[0].Company)
	assert.Equal(t, "Austin, TX", jobs[0].Location)
	assert.Equal(t, "https://example.com/apply", jobs[0].Link)
	assert.Equal(t, "2025-08-12T00:00:00.000Z", jobs[0].PostedDate)

	// Every missing field falls back rather than failing.
	assert.Equal(t, "Remote", jobs[1].Location)
	assert.Equal(t, "#", jobs[1].Link)
	assert.Equal(t, "Recently", jobs[1].PostedDate)
	assert.Equal(t, "No description available.", jobs[1].Description)
}

func TestSearchLinkFallsBackToGoogleLink(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		respondWith(t, w, []rawJob{
			{
				"job_title":       "Data Engineer",
				"employer_name":   "Hooli",
				"job_country":     "India",
				"job_google_link": "https://google.com/jobs/1",
			},
		})
	})

	client := newClient(t, jobsearch.Config{BaseURL: srv.URL})
	jobs, err := client.Search(context.Background(), []string{"Python", "Spark", "SQL"})

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "https://google.com/jobs/1", jobs[0].Link)
	assert.Equal(t, "India", jobs[0].Location)
}

func TestDescriptionTruncationByChars(t *testing.T) {
	long := strings.Repeat("a", 500)

	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		respondWith(t, w, []rawJob{
			{"job_title": "SRE", "employer_name": "Initech", "job_description": long},
			{"job_title": "SWE", "employer_name": "Globex", "job_description": strings.Repeat("b", 200)},
		})
	})

	client := newClient(t, jobsearch.Config{BaseURL: srv.URL})
	jobs, err := client.Search(context.Background(), []string{"Go", "AWS", "Linux"})

	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Len(t, jobs[0].Description, 303)
	assert.True(t, strings.HasSuffix(jobs[0].Description, "..."))
	assert.Equal(t, strings.Repeat("b", 200), jobs[1].Description)
}

func TestDescriptionTruncationByWords(t *testing.T) {
	words := strings.Fields(strings.Repeat("word ", 150))

	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		respondWith(t, w, []rawJob{
			{"job_title": "SRE", "employer_name": "Initech", "job_description": strings.Join(words, " ")},
		})
	})

	client := newClient(t, jobsearch.Config{
		BaseURL:          srv.URL,
		DescriptionWords: 100,
	})
	jobs, err := client.Search(context.Background(), []string{"Go", "AWS", "Linux"})

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Len(t, strings.Fields(jobs[0].Description), 100)
	assert.True(t, strings.HasSuffix(jobs[0].Description, "..."))
}

func TestDescriptionStripsHTML(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		respondWith(t, w, []rawJob{
			{
				"job_title":       "Frontend Engineer",
				"employer_name":   "Initech",
				"job_description": "<p>Build <b>great</b> UIs</p>",
			},
		})
	})

	client := newClient(t, jobsearch.Config{BaseURL: srv.URL})
	jobs, err := client.Search(context.Background(), []string{"React", "CSS", "TypeScript"})

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Build great UIs", jobs[0].Description)
}

func TestSearchFanout(t *testing.T) {
	var locations []string

	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		location := r.URL.Query().Get("location")
		locations = append(locations, location)

		switch {
		case strings.HasPrefix(location, "Mumbai"):
			respondWith(t, w, []rawJob{
				{"job_title": "Go Developer", "employer_name": "Initech"},
				{"job_title": "SRE", "employer_name": "Globex"},
			})
		case strings.HasPrefix(location, "Bangalore"):
			// Duplicate of a Mumbai listing plus one new one.
			respondWith(t, w, []rawJob{
				{"job_title": "Go Developer", "employer_name": "Initech"},
				{"job_title": "Platform Engineer", "employer_name": "Hooli"},
			})
		default:
			respondWith(t, w, nil)
		}
	})

	client := newClient(t, jobsearch.Config{
		BaseURL:   srv.URL,
		Strategy:  "fanout",
		Country:   "in",
		Cities:    []string{"Mumbai", "Bangalore", "Delhi", "Hyderabad"},
		RateLimit: 1000,
	})
	jobs, err := client.Search(context.Background(), []string{"Go", "Docker", "Kubernetes"})

	require.NoError(t, err)

	// Only the first three cities are queried, with the country name appended.
	assert.Equal(t, []string{"Mumbai, India", "Bangalore, India", "Delhi, India"}, locations)

	require.Len(t, jobs, 3)
	assert.Equal(t, "Go Developer", jobs[0].Title)
	assert.Equal(t, "SRE", jobs[1].Title)
	assert.Equal(t, "Platform Engineer", jobs[2].Title)

	// Listings without their own location inherit the city that found them.
	assert.Equal(t, "Mumbai, India", jobs[0].Location)
	assert.Equal(t, "Bangalore, India", jobs[2].Location)
}

func TestSearchFanoutQueryShape(t *testing.T) {
	var gotQuery string
	long := strings.Repeat("word ", 150)

	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		respondWith(t, w, []rawJob{
			{"job_title": "Go Developer", "employer_name": "Initech", "job_description": long},
		})
	})

	// Fan-out defaults derive from the strategy alone: 3 skills joined with
	// spaces, descriptions trimmed by words.
	client := newClient(t, jobsearch.Config{
		BaseURL:   srv.URL,
		Strategy:  "fanout",
		Cities:    []string{"Mumbai"},
		RateLimit: 1000,
	})
	jobs, err := client.Search(context.Background(),
		[]string{"Go", "Docker", "Kubernetes", "Postgres", "Redis"})

	require.NoError(t, err)
	assert.Equal(t, "Go Docker Kubernetes", gotQuery)
	require.Len(t, jobs, 1)
	assert.Len(t, strings.Fields(jobs[0].Description), 100)
	assert.True(t, strings.HasSuffix(jobs[0].Description, "..."))
}

func TestSearchFanoutSkipsFailingCity(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("location"), "Mumbai") {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		respondWith(t, w, []rawJob{
			{"job_title": "Go Developer", "employer_name": "Initech"},
		})
	})

	client := newClient(t, jobsearch.Config{
		BaseURL:   srv.URL,
		Strategy:  "fanout",
		Cities:    []string{"Mumbai", "Bangalore"},
		RateLimit: 1000,
	})
	jobs, err := client.Search(context.Background(), []string{"Go", "Docker", "Kubernetes"})

	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Go Developer", jobs[0].Title)
}

func TestSearchFanoutPerCityLimit(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		jobs := make([]rawJob, 8)
		for i := range jobs {
			jobs[i] = rawJob{
				"job_title":     "Engineer " + r.URL.Query().Get("location") + string(rune('A'+i)),
				"employer_name": "Initech",
			}
		}
		respondWith(t, w, jobs)
	})

	client := newClient(t, jobsearch.Config{
		BaseURL:      srv.URL,
		Strategy:     "fanout",
		Cities:       []string{"Mumbai", "Bangalore"},
		PerCityLimit: 5,
		MaxJobs:      10,
		RateLimit:    1000,
	})
	jobs, err := client.Search(context.Background(), []string{"Go", "Docker", "Kubernetes"})

	require.NoError(t, err)
	assert.Len(t, jobs, 10)
}

func TestSearchFanoutDuplicateConsumesCitySlot(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Query().Get("location"), "Mumbai") {
			respondWith(t, w, []rawJob{
				{"job_title": "Go Developer", "employer_name": "Initech"},
			})
			return
		}
		// Leads with the Mumbai duplicate, then five fresh listings.
		respondWith(t, w, []rawJob{
			{"job_title": "Go Developer", "employer_name": "Initech"},
			{"job_title": "SRE", "employer_name": "Globex"},
			{"job_title": "Platform Engineer", "employer_name": "Hooli"},
			{"job_title": "Data Engineer", "employer_name": "Initrode"},
			{"job_title": "DevOps Engineer", "employer_name": "Vandelay"},
			{"job_title": "Cloud Architect", "employer_name": "Wayne"},
		})
	})

	client := newClient(t, jobsearch.Config{
		BaseURL:      srv.URL,
		Strategy:     "fanout",
		Cities:       []string{"Mumbai", "Bangalore"},
		PerCityLimit: 5,
		RateLimit:    1000,
	})
	jobs, err := client.Search(context.Background(), []string{"Go", "Docker", "Kubernetes"})

	require.NoError(t, err)

	// Bangalore's duplicate of the Mumbai listing uses one of its five accept
	// slots, so the sixth fresh listing never gets considered.
	require.Len(t, jobs, 5)
	titles := make([]string, 0, len(jobs))
	for _, job := range jobs {
		titles = append(titles, job.Title)
	}
	assert.Equal(t, []string{
		"Go Developer", "SRE", "Platform Engineer", "Data Engineer", "DevOps Engineer",
	}, titles)
	assert.NotContains(t, titles, "Cloud Architect")
}

func TestSearchUpstreamError(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "You are not subscribed to this API."})
	})

	client := newClient(t, jobsearch.Config{BaseURL: srv.URL})
	_, err := client.Search(context.Background(), []string{"Go", "AWS", "Linux"})

	require.Error(t, err)

	var ae *types.AnalysisError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, types.KindUpstream, ae.Kind)
	assert.Equal(t, http.StatusForbidden, ae.Status)
	assert.Contains(t, ae.Message, "JSearch API error: 403 - You are not subscribed to this API.")
}

func TestSearchEmptyResultIsNotAnError(t *testing.T) {
	srv := jsearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		respondWith(t, w, nil)
	})

	client := newClient(t, jobsearch.Config{BaseURL: srv.URL})
	jobs, err := client.Search(context.Background(), []string{"Fortran", "COBOL", "Ada"})

	require.NoError(t, err)
	assert.Empty(t, jobs)
}
