package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// apiError mirrors the Sift API error detail.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// analyzeResponse mirrors the Sift analyze response.
type analyzeResponse struct {
	Success  bool `json:"success"`
	PageInfo *struct {
		Title       string `json:"title"`
		Domain      string `json:"domain"`
		Description string `json:"description"`
	} `json:"page_info"`
	DetectedFields []json.RawMessage `json:"detected_fields"`
	Error          *apiError         `json:"error"`
}

// extractResponse mirrors the Sift extract response.
type extractResponse struct {
	Success bool              `json:"success"`
	Records []json.RawMessage `json:"records"`
	Regime  string            `json:"regime"`
	Total   int               `json:"total"`
	Error   *apiError         `json:"error"`
}

func main() {
	apiURL := os.Getenv("SIFT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("SIFT_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "SIFT_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"sift",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	analyzeTool := mcp.NewTool("analyze_page",
		mcp.WithDescription("Fetch a web page and propose extractable fields (titles, prices, dates, links, table columns...) with CSS selectors and confidence scores. Pass the returned fields to extract_data."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to analyze"),
		),
		mcp.WithBoolean("use_semantic_analysis",
			mcp.Description("Scan page text for emails, phones, prices and dates (default: true)"),
		),
		mcp.WithNumber("confidence_threshold",
			mcp.Description("Drop proposals below this confidence, between 0 and 1 (default: 0.6)"),
		),
	)
	s.AddTool(analyzeTool, handleAnalyze(apiURL, apiKey))

	extractTool := mcp.NewTool("extract_data",
		mcp.WithDescription("Extract records from a web page using field definitions, usually the detected_fields returned by analyze_page."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract from"),
		),
		mcp.WithString("fields",
			mcp.Required(),
			mcp.Description(`JSON array of fields, e.g. [{"name":"Title","type":"title","selectors":["h2.title"]}]`),
		),
	)
	s.AddTool(extractTool, handleExtract(apiURL, apiKey))

	exportTool := mcp.NewTool("export_records",
		mcp.WithDescription("Encode extracted records as CSV, JSON, XML or a Markdown table."),
		mcp.WithString("records",
			mcp.Required(),
			mcp.Description("JSON array of records as returned by extract_data"),
		),
		mcp.WithString("format",
			mcp.Description("Output format: 'json' (default), 'csv', 'xml' or 'markdown'"),
			mcp.Enum("json", "csv", "xml", "markdown"),
		),
	)
	s.AddTool(exportTool, handleExport(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST request to the Sift API and returns the status and body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) (int, []byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	return resp.StatusCode, out, err
}

func failure(prefix string, e *apiError) *mcp.CallToolResult {
	if e == nil {
		return mcp.NewToolResultError(prefix)
	}
	return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", e.Code, e.Message))
}

func handleAnalyze(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]any{"url": url}
		args := request.GetArguments()
		if v, ok := args["use_semantic_analysis"]; ok {
			payload["use_semantic_analysis"] = v
		}
		if v, ok := args["confidence_threshold"]; ok {
			payload["confidence_threshold"] = v
		}

		_, respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/analyze", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analyze request failed: %v", err)), nil
		}

		var resp analyzeResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return failure("analysis failed", resp.Error), nil
		}

		var sb strings.Builder
		if p := resp.PageInfo; p != nil {
			fmt.Fprintf(&sb, "Title: %s\nDomain: %s\nDescription: %s\n\n", p.Title, p.Domain, p.Description)
		}
		fields, err := json.MarshalIndent(resp.DetectedFields, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format fields: %v", err)), nil
		}
		fmt.Fprintf(&sb, "Detected %d fields:\n%s", len(resp.DetectedFields), fields)

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleExtract(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		fieldsStr, err := request.RequireString("fields")
		if err != nil {
			return mcp.NewToolResultError("fields is required"), nil
		}

		var fields json.RawMessage
		if err := json.Unmarshal([]byte(fieldsStr), &fields); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fields must be valid JSON: %v", err)), nil
		}

		_, respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/extract", map[string]any{
			"url":    url,
			"fields": fields,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("extract request failed: %v", err)), nil
		}

		var resp extractResponse
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !resp.Success {
			return failure("extraction failed", resp.Error), nil
		}

		records, err := json.MarshalIndent(resp.Records, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to format records: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Extracted %d records (%s):\n%s", resp.Total, resp.Regime, records)), nil
	}
}

func handleExport(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 60 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		recordsStr, err := request.RequireString("records")
		if err != nil {
			return mcp.NewToolResultError("records is required"), nil
		}
		var records json.RawMessage
		if err := json.Unmarshal([]byte(recordsStr), &records); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("records must be valid JSON: %v", err)), nil
		}

		status, respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/export", map[string]any{
			"format":  request.GetString("format", "json"),
			"records": records,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export request failed: %v", err)), nil
		}
		if status != http.StatusOK {
			var e struct {
				Error *apiError `json:"error"`
			}
			_ = json.Unmarshal(respBody, &e)
			return failure(fmt.Sprintf("export failed with status %d", status), e.Error), nil
		}

		return mcp.NewToolResultText(string(respBody)), nil
	}
}
