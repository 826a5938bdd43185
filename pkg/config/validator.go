package config

import (
	"fmt"
	"net/url"
	"strconv"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Server config
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be numeric, got %q", c.Server.Port),
		})
	}

	// Validate Gemini config
	if c.Gemini.MaxTokens < 1 || c.Gemini.MaxTokens > 8192 {
		errors = append(errors, ValidationError{
			Field:   "gemini.max_tokens",
			Message: "max_tokens must be between 1 and 8192",
		})
	}

	if c.Gemini.Temperature < 0 || c.Gemini.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "gemini.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Gemini.TopP < 0 || c.Gemini.TopP > 1 {
		errors = append(errors, ValidationError{
			Field:   "gemini.top_p",
			Message: "top_p must be between 0 and 1",
		})
	}

	// Validate JobSearch config
	if _, err := url.Parse(c.JobSearch.BaseURL); err != nil || c.JobSearch.BaseURL == "" {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.base_url",
			Message: "invalid job search base URL",
		})
	}

	if c.JobSearch.Strategy != "direct" && c.JobSearch.Strategy != "fanout" {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.strategy",
			Message: fmt.Sprintf("strategy must be %q or %q, got %q", "direct", "fanout", c.JobSearch.Strategy),
		})
	}

	if c.JobSearch.Strategy == "fanout" && len(c.JobSearch.Cities) == 0 {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.cities",
			Message: "fanout strategy requires at least one city",
		})
	}

	if c.JobSearch.QuerySkillLimit < 3 || c.JobSearch.QuerySkillLimit > 5 {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.query_skill_limit",
			Message: "query_skill_limit must be between 3 and 5",
		})
	}

	if c.JobSearch.MaxJobs < 1 {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.max_jobs",
			Message: "max_jobs must be positive",
		})
	}

	if c.JobSearch.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.JobSearch.DescriptionWords == 0 && c.JobSearch.DescriptionChars < 1 {
		errors = append(errors, ValidationError{
			Field:   "jobsearch.description_chars",
			Message: "description_chars must be positive when description_words is unset",
		})
	}

	return errors
}

// ValidateCredentials checks the env-supplied API keys. Split out from
// Validate so config files can be linted without secrets present.
func (c *Config) ValidateCredentials() []ValidationError {
	var errors []ValidationError

	if c.Gemini.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "GEMINI_API_KEY",
			Message: "Gemini API key not configured",
		})
	}

	if c.JobSearch.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "JSEARCH_API_KEY",
			Message: "JSearch API key not configured",
		})
	}

	return errors
}
