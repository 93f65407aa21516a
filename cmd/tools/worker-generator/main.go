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

	"loan-orchestrator/pkg/registry"
)

// WorkerData holds data for templates
type WorkerData struct {
	Name         string
	PackageName  string
	TaskType     string
	Description  string
	Timeout      string
	InputFields  string
	OutputFields string
	ErrorCodes   []string
}

// parseSchema extracts properties from a JSON schema object
func parseSchema(schema map[string]interface{}) map[string]interface{} {
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		return props
	}
	return map[string]interface{}{}
}

// goTypeFromJSONType maps JSON schema types to Go types. Nullable numbers
// become decimal.NullDecimal, plain numbers decimal.Decimal.
func goTypeFromJSONType(jsonType interface{}) string {
	nullable := false
	if list, ok := jsonType.([]interface{}); ok {
		for _, t := range list {
			if s, ok := t.(string); ok && s == "null" {
				nullable = true
			} else if ok {
				jsonType = s
			}
		}
	}

	switch jsonType {
	case "string":
		return "string"
	case "number":
		if nullable {
			return "decimal.NullDecimal"
		}
		return "decimal.Decimal"
	case "integer":
		return "int"
	case "boolean":
		return "bool"
	case "array":
		return "[]string"
	case "object":
		return "map[string]interface{}"
	default:
		return "interface{}"
	}
}

// generateStructFields renders schema properties as struct fields in a
// stable order.
func generateStructFields(properties map[string]interface{}) string {
	names := make([]string, 0, len(properties))
	for name := range properties {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]string, 0, len(names))
	for _, prop := range names {
		details, ok := properties[prop].(map[string]interface{})
		if !ok {
			continue
		}
		fields = append(fields, fmt.Sprintf("\t%s %s `json:\"%s\"`",
			goFieldName(prop), goTypeFromJSONType(details["type"]), prop))
	}
	return strings.Join(fields, "\n")
}

// goFieldName upper-cases the first letter and the Id suffix.
func goFieldName(s string) string {
	if s == "" {
		return s
	}
	s = strings.ToUpper(s[:1]) + s[1:]
	if strings.HasSuffix(s, "Id") {
		s = strings.TrimSuffix(s, "Id") + "ID"
	}
	return s
}

const configTemplate = `// internal/workers/loan/{{ .TaskType }}/config.go
package {{ .PackageName }}

import (
	"time"

	"loan-orchestrator/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg *config.Config) *Config {
	wc := config.GetWorkerConfig(cfg, TaskType)
	return &Config{
		Timeout:       config.GetDuration(wc.Timeout),
		MaxJobsActive: wc.MaxJobsActive,
	}
}
`

const modelsTemplate = `// internal/workers/loan/{{ .TaskType }}/models.go
package {{ .PackageName }}

type Input struct {
{{ .InputFields }}
}

type Output struct {
{{ .OutputFields }}
}
`

const handlerTemplate = `// internal/workers/loan/{{ .TaskType }}/handler.go
package {{ .PackageName }}

import (
	"context"

	"loan-orchestrator/internal/common/camunda"
	"loan-orchestrator/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "{{ .TaskType }}"
)

// Service is the orchestrator operation behind {{ .Name }}.
type Service interface {
}

type Handler struct {
	service Service
	runner  *camunda.Runner
	logger  logger.Logger
}

func NewHandler(service Service, runner *camunda.Runner, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		runner:  runner,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.runner.Handle(client, job, func(ctx context.Context, variables []byte) (interface{}, error) {
		input, err := camunda.Decode[Input](variables)
		if err != nil {
			return nil, err
		}
		return h.Execute(ctx, input)
	})
}

// Execute may fail with: {{ range $i, $c := .ErrorCodes }}{{ if $i }}, {{ end }}{{ $c }}{{ end }}.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return &Output{}, nil
}
`

const testTemplate = `// internal/workers/loan/{{ .TaskType }}/handler_test.go
package {{ .PackageName }}

import (
	"context"
	"testing"

	"loan-orchestrator/internal/common/logger"

	"github.com/stretchr/testify/require"
)

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(nil, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{})

	require.NoError(t, err)
	require.NotNil(t, output)
}
`

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., fund-loan)")
	outputDir := flag.String("output", "./internal/workers/loan/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "", "Path to the activity registry JSON file (built-in activities when empty)")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--output <dir>] [--registry <path>] [--force]")
		fmt.Println("\nExample:")
		fmt.Println("  go run ./cmd/tools/worker-generator --activity fund-loan --output /tmp/workers")
		os.Exit(1)
	}

	reg := registry.Default()
	if *registryPath != "" {
		var err error
		reg, err = registry.LoadRegistry(*registryPath)
		if err != nil {
			fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
			os.Exit(1)
		}
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry\n", *activity)
		os.Exit(1)
	}

	data := WorkerData{
		Name:         found.DisplayName,
		PackageName:  strings.ReplaceAll(found.ID, "-", ""),
		TaskType:     found.TaskType,
		Description:  found.Description,
		Timeout:      found.Timeout,
		InputFields:  generateStructFields(parseSchema(found.InputSchema)),
		OutputFields: generateStructFields(parseSchema(found.OutputSchema)),
		ErrorCodes:   found.ErrorCodes,
	}

	workerDir := filepath.Join(*outputDir, found.ID)
	if err := os.MkdirAll(workerDir, 0o755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	templates := map[string]string{
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler.go":      handlerTemplate,
		"handler_test.go": testTemplate,
	}

	for filename, tmplStr := range templates {
		filePath := filepath.Join(workerDir, filename)
		if _, err := os.Stat(filePath); err == nil && !*force {
			fmt.Printf("skipping %s (exists, use --force to overwrite)\n", filePath)
			continue
		}

		tmpl, err := template.New(filename).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			os.Exit(1)
		}

		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			os.Exit(1)
		}
		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("Generated %s\n", filePath)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Add the orchestrator method to Service and call it from Execute\n")
	fmt.Printf("  2. Replace decimal/uuid placeholders in models.go as needed\n")
	fmt.Printf("  3. Register the worker in cmd/loan-orchestrator/main.go\n")
	fmt.Printf("  4. Add the worker block to configs/config.yaml\n")
}
