// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	cerrors "petfood-workers/internal/common/errors"
	"petfood-workers/pkg/registry"
)

// errorCase is one generated mapErrorToCode branch.
type errorCase struct {
	Sentinel string
	Code     string
	Retries  int
	TestName string
}

// WorkerData holds data for templates
type WorkerData struct {
	Name             string
	ID               string
	PackageName      string
	TaskType         string
	Category         string
	Description      string
	TimeoutLiteral   string
	SentinelBlock    string
	ErrorCases       []errorCase
	DefaultErrorCode string
	InputFields      string
	OutputFields     string
}

// sentinelName turns an error code into its sentinel variable name,
// e.g. QUERY_TIMEOUT -> ErrQueryTimeout.
func sentinelName(code string) string {
	parts := strings.Split(strings.ToLower(code), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return "Err" + strings.Join(parts, "")
}

// buildSentinelBlock renders the var block with gofmt alignment.
func buildSentinelBlock(cases []errorCase) string {
	if len(cases) == 0 {
		return ""
	}
	longest := 0
	for _, c := range cases {
		if len(c.Sentinel) > longest {
			longest = len(c.Sentinel)
		}
	}
	var b strings.Builder
	b.WriteString("var (\n")
	for _, c := range cases {
		fmt.Fprintf(&b, "\t%-*s = errors.New(%q)\n", longest, c.Sentinel, c.Code)
	}
	b.WriteString(")\n")
	return b.String()
}

// durationLiteral renders a duration as Go source, e.g. 30 * time.Second.
func durationLiteral(raw string) string {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return "30 * time.Second"
	}
	switch {
	case d%time.Minute == 0:
		return fmt.Sprintf("%d * time.Minute", d/time.Minute)
	case d%time.Second == 0:
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	default:
		return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
	}
}

// goTypeFromJSONType maps JSON schema types to Go types
func goTypeFromJSONType(jsonType interface{}) string {
	if jt, ok := jsonType.(string); ok {
		switch jt {
		case "string":
			return "string"
		case "integer":
			return "int64"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	}
	return "interface{}"
}

// buildStructFields renders schema properties as aligned struct fields,
// sorted by name so regeneration is deterministic.
func buildStructFields(schemaObj map[string]interface{}) string {
	props, ok := schemaObj["properties"].(map[string]interface{})
	if !ok || len(props) == 0 {
		return ""
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	type field struct{ name, goType, tag string }
	fields := make([]field, 0, len(names))
	nameWidth, typeWidth := 0, 0
	for _, prop := range names {
		details, _ := props[prop].(map[string]interface{})
		f := field{
			name:   strings.ToUpper(prop[:1]) + prop[1:],
			goType: goTypeFromJSONType(details["type"]),
			tag:    fmt.Sprintf("`json:%q`", prop),
		}
		if len(f.name) > nameWidth {
			nameWidth = len(f.name)
		}
		if len(f.goType) > typeWidth {
			typeWidth = len(f.goType)
		}
		fields = append(fields, f)
	}

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "\t%-*s %-*s %s\n", nameWidth, f.name, typeWidth, f.goType, f.tag)
	}
	return strings.TrimRight(b.String(), "\n")
}

const handlerTemplate = `// internal/workers/{{ .Category }}/{{ .ID }}/handler.go
package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petfood-workers/internal/common/logger"
	"petfood-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

{{ .SentinelBlock }}
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode, retries := mapErrorToCode(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input is required")
	}

	// TODO: implement {{ .TaskType }}.
	_ = ctx

	return &Output{}, nil
}

func mapErrorToCode(err error) (string, int32) {
	switch {
{{- range .ErrorCases }}
	case errors.Is(err, {{ .Sentinel }}):
		return "{{ .Code }}", {{ .Retries }}
{{- end }}
	default:
		return "{{ .DefaultErrorCode }}", 0
	}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const modelsTemplate = `// internal/workers/{{ .Category }}/{{ .ID }}/models.go
package {{ .PackageName }}

// Input carries the job variables for {{ .TaskType }}.
type Input struct {
{{- if .InputFields }}
{{ .InputFields }}
{{- else }}
	// TODO: input variables for {{ .TaskType }}.
{{- end }}
}

// Output is written back to the process instance on completion.
type Output struct {
{{- if .OutputFields }}
{{ .OutputFields }}
{{- else }}
	// TODO: output variables for {{ .TaskType }}.
{{- end }}
}
`

const configTemplate = `// internal/workers/{{ .Category }}/{{ .ID }}/config.go
package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: {{ .TimeoutLiteral }},
	}
}
`

const testTemplate = `// internal/workers/{{ .Category }}/{{ .ID }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"errors"
	"testing"
	"time"

	"petfood-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

// ==========================
// Execute Tests
// ==========================

func TestExecute_ValidatesInput(t *testing.T) {
	handler := NewHandler(createTestConfig(), createTestLogger(t))

	output, err := handler.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, output)
}

// ==========================
// Error Mapping Tests
// ==========================

func TestMapErrorToCode(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		expectedCode  string
		expectedRetry int32
	}{
{{- range .ErrorCases }}
		{"{{ .TestName }}", {{ .Sentinel }}, "{{ .Code }}", {{ .Retries }}},
{{- end }}
		{"unknown error", errors.New("boom"), "{{ .DefaultErrorCode }}", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, retries := mapErrorToCode(tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expectedRetry, retries)
		})
	}
}
`

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., classify-attributes)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activities.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--output <dir>] [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --activity classify-attributes")
		os.Exit(1)
	}

	// Load the registry
	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	foundActivity := reg.Find(*activity)
	if foundActivity == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	if !registry.KnownCategories[foundActivity.Category] {
		fmt.Printf("Activity '%s' has unknown category %q (want catalog, classification, scoring or review)\n",
			foundActivity.ID, foundActivity.Category)
		os.Exit(1)
	}

	// Registry error codes become sentinels; PARSE_ERROR is emitted by
	// the handler skeleton itself, never from execute.
	var cases []errorCase
	for _, code := range foundActivity.ErrorCodes {
		if code == "PARSE_ERROR" {
			continue
		}
		cases = append(cases, errorCase{
			Sentinel: sentinelName(code),
			Code:     code,
			Retries:  cerrors.GetRetryCount(cerrors.ErrorCode(code)),
			TestName: strings.ToLower(strings.ReplaceAll(code, "_", " ")),
		})
	}

	defaultCode := "EXECUTION_FAILED"
	for _, c := range cases {
		if strings.HasSuffix(c.Code, "_FAILED") {
			defaultCode = c.Code
			break
		}
	}
	if defaultCode == "EXECUTION_FAILED" && len(cases) > 0 {
		defaultCode = cases[0].Code
	}

	// Prepare data for templates
	data := WorkerData{
		Name:             foundActivity.DisplayName,
		ID:               foundActivity.ID,
		PackageName:      strings.ReplaceAll(foundActivity.ID, "-", ""),
		TaskType:         foundActivity.TaskType,
		Category:         foundActivity.Category,
		Description:      foundActivity.Description,
		TimeoutLiteral:   durationLiteral(foundActivity.Timeout),
		SentinelBlock:    buildSentinelBlock(cases),
		ErrorCases:       cases,
		DefaultErrorCode: defaultCode,
		InputFields:      buildStructFields(foundActivity.InputSchema),
		OutputFields:     buildStructFields(foundActivity.OutputSchema),
	}

	workerDir := filepath.Join(*outputDir, foundActivity.Category, foundActivity.ID)
	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	// Generate files
	templates := map[string]string{
		"handler.go":      handlerTemplate,
		"models.go":       modelsTemplate,
		"config.go":       configTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated successfully at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute() in handler.go\n")
	fmt.Printf("  2. Fill in Input/Output in models.go\n")
	fmt.Printf("  3. Extend the tests in handler_test.go\n")
	fmt.Printf("  4. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  5. Add a workers.%s section to configs/config.yaml\n", foundActivity.ID)
}
