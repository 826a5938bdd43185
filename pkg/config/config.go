package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string `yaml:"port"`
		Environment string `yaml:"environment"`
	} `yaml:"server"`

	Gemini struct {
		APIKey      string  `yaml:"-"` // env only, never from file
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		TopK        int     `yaml:"top_k"`
		TopP        float64 `yaml:"top_p"`
	} `yaml:"gemini"`

	JobSearch struct {
		APIKey           string   `yaml:"-"` // env only, never from file
		BaseURL          string   `yaml:"base_url"`
		APIHost          string   `yaml:"api_host"`
		Strategy         string   `yaml:"strategy"` // "direct" or "fanout"
		Country          string   `yaml:"country"`
		Cities           []string `yaml:"cities"`
		QuerySkillLimit  int      `yaml:"query_skill_limit"`
		QueryJoiner      string   `yaml:"query_joiner"`
		MaxJobs          int      `yaml:"max_jobs"`
		PerCityLimit     int      `yaml:"per_city_limit"`
		DescriptionChars int      `yaml:"description_chars"`
		DescriptionWords int      `yaml:"description_words"`
		RateLimit        float64  `yaml:"rate_limit"`
		TimeoutSeconds   int      `yaml:"timeout_seconds"`
	} `yaml:"jobsearch"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/skillscan/config.yaml"),
			"/etc/skillscan/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.Environment == "" {
		config.Server.Environment = "development"
	}

	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash"
	}
	if config.Gemini.MaxTokens == 0 {
		config.Gemini.MaxTokens = 2048
	}
	if config.Gemini.Temperature == 0 {
		config.Gemini.Temperature = 0.1
	}
	if config.Gemini.TopK == 0 {
		config.Gemini.TopK = 1
	}
	if config.Gemini.TopP == 0 {
		config.Gemini.TopP = 1
	}

	if config.JobSearch.BaseURL == "" {
		config.JobSearch.BaseURL = "https://jsearch.p.rapidapi.com"
	}
	if config.JobSearch.APIHost == "" {
		config.JobSearch.APIHost = "jsearch.p.rapidapi.com"
	}
	if config.JobSearch.Strategy == "" {
		config.JobSearch.Strategy = "direct"
	}
	if config.JobSearch.Country == "" {
		config.JobSearch.Country = "in"
	}
	if len(config.JobSearch.Cities) == 0 {
		config.JobSearch.Cities = []string{
			"Mumbai", "Bangalore", "Delhi", "Hyderabad", "Chennai", "Pune",
		}
	}
	// The direct variant queries 5 skills joined with OR; the fan-out variant
	// queries 3 skills joined with spaces and trims descriptions by words.
	if config.JobSearch.QuerySkillLimit == 0 {
		if config.JobSearch.Strategy == "fanout" {
			config.JobSearch.QuerySkillLimit = 3
		} else {
			config.JobSearch.QuerySkillLimit = 5
		}
	}
	if config.JobSearch.QueryJoiner == "" {
		if config.JobSearch.Strategy == "fanout" {
			config.JobSearch.QueryJoiner = " "
		} else {
			config.JobSearch.QueryJoiner = " OR "
		}
	}
	if config.JobSearch.Strategy == "fanout" && config.JobSearch.DescriptionWords == 0 {
		config.JobSearch.DescriptionWords = 100
	}
	if config.JobSearch.MaxJobs == 0 {
		config.JobSearch.MaxJobs = 10
	}
	if config.JobSearch.PerCityLimit == 0 {
		config.JobSearch.PerCityLimit = 5
	}
	if config.JobSearch.DescriptionChars == 0 {
		config.JobSearch.DescriptionChars = 300
	}
	if config.JobSearch.RateLimit == 0 {
		config.JobSearch.RateLimit = 2.0
	}
	if config.JobSearch.TimeoutSeconds == 0 {
		config.JobSearch.TimeoutSeconds = 30
	}
}

// SetStrategy switches the job search strategy and re-derives the
// strategy-coupled query defaults (skill limit, joiner, truncation mode).
func (c *Config) SetStrategy(strategy string) {
	if strategy == c.JobSearch.Strategy {
		return
	}
	c.JobSearch.Strategy = strategy
	c.JobSearch.QuerySkillLimit = 0
	c.JobSearch.QueryJoiner = ""
	c.JobSearch.DescriptionWords = 0
	applyDefaults(c)
}

func mergeWithEnv(config *Config) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("JSEARCH_API_KEY"); key != "" {
		config.JobSearch.APIKey = key
	}
	// Older deployments exported the RapidAPI key under its generic name.
	if key := os.Getenv("RAPIDAPI_KEY"); key != "" && config.JobSearch.APIKey == "" {
		config.JobSearch.APIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		config.Server.Environment = env
	}
	if country := os.Getenv("JOB_COUNTRY"); country != "" {
		config.JobSearch.Country = country
	}
}
