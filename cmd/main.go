package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"skillscan/internal/models"
	"skillscan/internal/types"
	cfgPkg "skillscan/pkg/config"
	"skillscan/pkg/extractor"
	"skillscan/pkg/jobsearch"
	"skillscan/pkg/llm"
	"skillscan/pkg/pipeline"
	"skillscan/server"
)

type Config struct {
	FilePath string
	Serve    bool
	Port     string
	Model    string
	Strategy string
	Country  string
	MaxJobs  int
}

func main() {
	// Missing .env is fine; variables may come from the environment directly.
	_ = godotenv.Load()

	config, appCfg := parseFlags()

	if errs := appCfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %s: %s", e.Field, e.Message)
		}
		os.Exit(1)
	}
	if errs := appCfg.ValidateCredentials(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %s: %s", e.Field, e.Message)
		}
		os.Exit(1)
	}

	if err := run(config, appCfg); err != nil {
		log.Fatal(err)
	}
}

func parseFlags() (Config, *cfgPkg.Config) {
	var config Config
	var configPath string

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&config.FilePath, "file", "", "Resume file to analyze (PDF or DOCX)")
	flag.BoolVar(&config.Serve, "serve", false, "Run the HTTP/websocket server instead of a one-shot analysis")
	flag.StringVar(&config.Port, "port", "", "Server port")
	flag.StringVar(&config.Model, "model", "", "Gemini model to use")
	flag.StringVar(&config.Strategy, "strategy", "", "Job search strategy: direct or fanout")
	flag.StringVar(&config.Country, "country", "", "Country code for the job search")
	flag.IntVar(&config.MaxJobs, "max-jobs", 0, "Maximum jobs to return")
	flag.Parse()

	appCfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		color.Red("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Command line flags override the config file.
	if config.Port != "" {
		appCfg.Server.Port = config.Port
	}
	if config.Model != "" {
		appCfg.Gemini.Model = config.Model
	}
	if config.Strategy != "" {
		appCfg.SetStrategy(config.Strategy)
	}
	if config.Country != "" {
		appCfg.JobSearch.Country = config.Country
	}
	if config.MaxJobs > 0 {
		appCfg.JobSearch.MaxJobs = config.MaxJobs
	}

	return config, appCfg
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config Config, appCfg *cfgPkg.Config) error {
	ctx := context.Background()

	// Initialize components
	textExtractor, err := extractor.NewWithConfig(ctx, extractor.ExtractorConfig{
		ParseTimeout: 30 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %v", err)
	}

	skillExtractor, err := llm.NewWithConfig(ctx, llm.SkillConfig{
		APIKey:      appCfg.Gemini.APIKey,
		Model:       appCfg.Gemini.Model,
		Temperature: appCfg.Gemini.Temperature,
		TopK:        appCfg.Gemini.TopK,
		TopP:        appCfg.Gemini.TopP,
		MaxTokens:   appCfg.Gemini.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize skill extractor: %v", err)
	}

	searcher, err := jobsearch.NewWithConfig(jobsearch.Config{
		APIKey:           appCfg.JobSearch.APIKey,
		APIHost:          appCfg.JobSearch.APIHost,
		BaseURL:          appCfg.JobSearch.BaseURL,
		Strategy:         appCfg.JobSearch.Strategy,
		Country:          appCfg.JobSearch.Country,
		Cities:           appCfg.JobSearch.Cities,
		QuerySkillLimit:  appCfg.JobSearch.QuerySkillLimit,
		QueryJoiner:      appCfg.JobSearch.QueryJoiner,
		MaxJobs:          appCfg.JobSearch.MaxJobs,
		PerCityLimit:     appCfg.JobSearch.PerCityLimit,
		DescriptionChars: appCfg.JobSearch.DescriptionChars,
		DescriptionWords: appCfg.JobSearch.DescriptionWords,
		RateLimit:        appCfg.JobSearch.RateLimit,
		Timeout:          time.Duration(appCfg.JobSearch.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize job search client: %v", err)
	}

	pipe := pipeline.NewWithConfig(pipeline.PipelineConfig{}, textExtractor, skillExtractor, searcher)

	if config.Serve {
		srv := server.New(server.Config{
			Port:        appCfg.Server.Port,
			Environment: appCfg.Server.Environment,
		}, pipe, skillExtractor, searcher)
		return srv.Start()
	}

	if config.FilePath == "" {
		return fmt.Errorf("no resume file given; use -file or -serve")
	}

	return analyzeFile(ctx, pipe, config.FilePath)
}

func analyzeFile(ctx context.Context, pipe *pipeline.Pipeline, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %v", path, err)
	}

	doc := models.Document{
		Filename:  filepath.Base(path),
		MediaType: mediaTypeForPath(path),
		Data:      data,
	}

	color.Blue("\nAnalyzing %s\n", doc.Filename)

	var spinner *progressbar.ProgressBar
	result, err := pipe.Analyze(ctx, doc, func(step types.Step) {
		if spinner != nil {
			spinner.Finish()
			fmt.Print("\n")
		}
		spinner = getSpinner(fmt.Sprintf(" %d/3 %s...", int(step), step.String()))
	})
	if spinner != nil {
		spinner.Finish()
		fmt.Print("\n")
	}

	if err != nil {
		if kind, ok := types.KindOf(err); ok && kind == types.KindValidation {
			color.Red("%s: %s", path, err.Error())
		} else {
			color.Red("%s", pipeline.FailureMessage(err))
		}
		os.Exit(1)
	}

	color.Green("\n✓ Found %d skills\n", len(result.Skills))
	skillTag := color.New(color.FgCyan).SprintFunc()
	tags := make([]string, 0, len(result.Skills))
	for _, s := range result.Skills {
		tags = append(tags, skillTag(s))
	}
	fmt.Printf("  %s\n", strings.Join(tags, ", "))

	color.Green("\n✓ Found %d matching jobs\n", len(result.Jobs))
	title := color.New(color.FgWhite, color.Bold).PrintfFunc()
	dim := color.New(color.Faint).PrintfFunc()
	for i, job := range result.Jobs {
		title("\n%d. %s\n", i+1, job.Title)
		fmt.Printf("   %s - %s\n", job.Company, job.Location)
		dim("   %s\n", job.Description)
		fmt.Printf("   %s (%s)\n", job.Link, job.PostedDate)
	}
	fmt.Print("\n")

	return nil
}

func mediaTypeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return models.MediaTypePDF
	case ".docx":
		return models.MediaTypeDOCX
	default:
		return ""
	}
}
