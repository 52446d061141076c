package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8080", "Sift API base URL")
	apiKey = flag.String("api-key", "", "API key for authenticated requests")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
)

// Test URLs covering the extraction regimes.
var testURLs = []struct {
	Label string
	URL   string
}{
	{"Directory", "https://www.scrapethissite.com/pages/simple/"},
	{"Table", "https://www.scrapethissite.com/pages/forms/"},
	{"Cards", "https://books.toscrape.com/"},
	{"Quotes", "https://quotes.toscrape.com/"},
	{"Static", "https://example.com"},
}

// --- Request / Response types (mirrors models package) ---

type analyzeRequest struct {
	URL string `json:"url"`
}

type analyzeResponse struct {
	Success        bool              `json:"success"`
	DetectedFields []json.RawMessage `json:"detected_fields"`
	Timing         timingInfo        `json:"timing"`
	Error          *errorDetail      `json:"error,omitempty"`
}

type extractRequest struct {
	URL    string            `json:"url"`
	Fields []json.RawMessage `json:"fields"`
}

type extractResponse struct {
	Success bool         `json:"success"`
	Regime  string       `json:"regime"`
	Total   int          `json:"total"`
	Timing  timingInfo   `json:"timing"`
	Error   *errorDetail `json:"error,omitempty"`
}

type timingInfo struct {
	TotalMs   int64 `json:"total_ms"`
	FetchMs   int64 `json:"fetch_ms"`
	ProcessMs int64 `json:"process_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run       int    `json:"run"`
	AnalyzeMs int64  `json:"analyze_ms"`
	ExtractMs int64  `json:"extract_ms"`
	FetchMs   int64  `json:"fetch_ms"`
	Fields    int    `json:"fields"`
	Records   int    `json:"records"`
	Regime    string `json:"regime"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

type urlAverages struct {
	AnalyzeMs float64 `json:"analyze_ms"`
	ExtractMs float64 `json:"extract_ms"`
	Fields    float64 `json:"fields"`
	Records   float64 `json:"records"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Label    string       `json:"label"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

var client = &http.Client{Timeout: 90 * time.Second}

func main() {
	flag.Parse()

	fmt.Println("=== Sift Benchmark Suite ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure Sift is running (e.g. go run ./cmd/sift)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, t := range testURLs {
		fmt.Printf("Benchmarking [%s] %s ...\n", t.Label, t.URL)
		ur := urlResult{URL: t.URL, Label: t.Label}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(t.URL, i)
			if rr.Success {
				fmt.Printf("OK  analyze %dms  extract %dms  %d records (%s)\n", rr.AnalyzeMs, rr.ExtractMs, rr.Records, rr.Regime)
			} else {
				fmt.Printf("FAILED: %s\n", rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	resp, err := client.Get(baseURL + "/api/v1/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func post(path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, *apiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+*apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	return nil
}

// benchmarkURL analyzes url, then extracts with every detected field.
func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	var ar analyzeResponse
	if err := post("/api/v1/analyze", analyzeRequest{URL: url}, &ar); err != nil {
		rr.Error = err.Error()
		return rr
	}
	if !ar.Success {
		rr.Error = "analyze: " + messageOf(ar.Error)
		return rr
	}
	rr.AnalyzeMs = ar.Timing.TotalMs
	rr.FetchMs = ar.Timing.FetchMs
	rr.Fields = len(ar.DetectedFields)

	if rr.Fields == 0 {
		rr.Success = true
		return rr
	}

	var er extractResponse
	if err := post("/api/v1/extract", extractRequest{URL: url, Fields: ar.DetectedFields}, &er); err != nil {
		rr.Error = err.Error()
		return rr
	}
	if !er.Success {
		rr.Error = "extract: " + messageOf(er.Error)
		return rr
	}
	rr.ExtractMs = er.Timing.TotalMs
	rr.Records = er.Total
	rr.Regime = er.Regime
	rr.Success = true
	return rr
}

func messageOf(e *errorDetail) string {
	if e == nil {
		return "unknown error"
	}
	return e.Code + ": " + e.Message
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.AnalyzeMs += float64(r.AnalyzeMs)
		avg.ExtractMs += float64(r.ExtractMs)
		avg.Fields += float64(r.Fields)
		avg.Records += float64(r.Records)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.AnalyzeMs /= n
	avg.ExtractMs /= n
	avg.Fields /= n
	avg.Records /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAnalyze\tExtract\tFields\tRecords\tRegime\n")
	fmt.Fprintf(w, "───\t───────\t───────\t──────\t───────\t──────\n")

	for _, r := range results {
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t-\t-\n", truncateURL(r.URL, 40))
			continue
		}
		fmt.Fprintf(w, "%s\t%dms\t%dms\t%.1f\t%.1f\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.AnalyzeMs),
			int64(r.Averages.ExtractMs),
			r.Averages.Fields,
			r.Averages.Records,
			dominantRegime(r.Runs),
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantRegime(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Success && r.Regime != "" {
			counts[r.Regime]++
		}
	}
	best, bestCount := "-", 0
	for regime, count := range counts {
		if count > bestCount {
			best = regime
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, limit int) string {
	if len(u) <= limit {
		return u
	}
	return u[:limit-3] + "..."
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
