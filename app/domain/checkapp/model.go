package checkapp

import (
	"encoding/json"

	"github.com/rerankd/rerankd/sdk/rerank"
)

// Info represents information about the service.
type Info struct {
	Status     string `json:"status,omitempty"`
	Build      string `json:"build,omitempty"`
	Host       string `json:"host,omitempty"`
	GOMAXPROCS int    `json:"GOMAXPROCS,omitempty"`
}

// Encode implements the encoder interface.
func (app Info) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// MemoryUsage reports an estimate of the memory the process holds. The
// model weights dominate, so they are reported separately.
type MemoryUsage struct {
	ModelBytes    uint64 `json:"model_bytes"`
	HeapBytes     uint64 `json:"heap_bytes"`
	RuntimeBytes  uint64 `json:"runtime_bytes"`
	TotalEstimate uint64 `json:"total_estimate"`
}

// HealthDebug carries the extended diagnostic fields returned when the
// debug flag is enabled.
type HealthDebug struct {
	Build      string            `json:"build"`
	GoVersion  string            `json:"go_version"`
	Devices    []rerank.Device   `json:"devices"`
	SystemInfo map[string]string `json:"system_info"`
}

// Health represents the accelerator and model diagnostics for the service.
type Health struct {
	Status               string       `json:"status"`
	AcceleratorAvailable bool         `json:"accelerator_available"`
	AcceleratorCount     int          `json:"accelerator_count"`
	SelectedDevice       int          `json:"selected_device"`
	SelectedDeviceName   string       `json:"selected_device_name,omitempty"`
	Model                string       `json:"model"`
	ActiveStreams        int          `json:"active_streams"`
	MemoryUsage          MemoryUsage  `json:"memory_usage"`
	Debug                *HealthDebug `json:"debug,omitempty"`
}

// Encode implements the encoder interface.
func (app Health) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// Instructions describes the api for callers hitting the root endpoint.
type Instructions struct {
	Description string                  `json:"description"`
	Version     string                  `json:"version"`
	Endpoints   map[string]EndpointInfo `json:"endpoints"`
}

// EndpointInfo documents a single endpoint.
type EndpointInfo struct {
	Method      string `json:"method"`
	Description string `json:"description"`
	RequestBody any    `json:"request_body,omitempty"`
	Response    any    `json:"response,omitempty"`
}

// Encode implements the encoder interface.
func (app Instructions) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func newInstructions(build string) Instructions {
	return Instructions{
		Description: "Document Reranking API - Ranks documents based on their relevance to a question",
		Version:     build,
		Endpoints: map[string]EndpointInfo{
			"/": {
				Method:      "GET",
				Description: "Returns these API usage instructions",
			},
			"/rank": {
				Method:      "POST",
				Description: "Ranks documents based on relevance to a question",
				RequestBody: map[string]string{
					"question":  "string - The question to match documents against",
					"documents": "array of strings - The documents to rank",
					"top_k":     "integer (optional) - Number of top matches to return, all when omitted",
				},
				Response: map[string]string{
					"ranked_documents": "array of strings ordered by relevance",
					"scores":           "array of floats parallel to ranked_documents",
					"execution_time":   "float - Time taken to process the request in seconds",
				},
			},
			"/test": {
				Method:      "GET",
				Description: "Runs a fixed ranking request to verify the model is loaded and responsive",
			},
			"/healthz": {
				Method:      "GET",
				Description: "Reports accelerator availability, device selection and memory usage",
			},
			"/docs": {
				Method:      "GET",
				Description: "Serves the OpenAPI documentation",
			},
		},
	}
}
