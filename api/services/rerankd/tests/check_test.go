package rankapi_test

import (
	"fmt"
	"net/http"

	"github.com/rerankd/rerankd/app/domain/checkapp"
	"github.com/rerankd/rerankd/app/sdk/apitest"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func healthz200() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "cpu-fallback",
			URL:        "/healthz",
			Method:     http.MethodGet,
			StatusCode: http.StatusOK,
			GotResp:    &checkapp.Health{},
			ExpResp: &checkapp.Health{
				Status:               "ok",
				AcceleratorAvailable: false,
				AcceleratorCount:     0,
				SelectedDevice:       -1,
				Model:                "bge-reranker-v2-m3-Q4_K_M",
			},
			CmpFunc: func(got any, exp any) string {
				diff := cmp.Diff(got, exp,
					cmpopts.IgnoreFields(checkapp.Health{}, "MemoryUsage"),
				)

				if diff != "" {
					return diff
				}

				gotResp, ok := got.(*checkapp.Health)
				if !ok {
					return fmt.Sprintf("response wrong type: %T", got)
				}

				if gotResp.MemoryUsage.ModelBytes != 512 {
					return "expecting the model bytes to be reported"
				}

				if gotResp.MemoryUsage.TotalEstimate < gotResp.MemoryUsage.ModelBytes {
					return "expecting the total estimate to include the model"
				}

				return ""
			},
		},
	}

	return table
}

func healthzDebug200() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "debug-fields",
			URL:        "/healthz",
			Method:     http.MethodGet,
			StatusCode: http.StatusOK,
			GotResp:    &checkapp.Health{},
			ExpResp:    &checkapp.Health{},
			CmpFunc: func(got any, exp any) string {
				gotResp, ok := got.(*checkapp.Health)
				if !ok {
					return fmt.Sprintf("response wrong type: %T", got)
				}

				if gotResp.Debug == nil {
					return "expecting the debug block to be present"
				}

				if gotResp.Debug.GoVersion == "" {
					return "expecting the go version to be reported"
				}

				if gotResp.Debug.SystemInfo["AVX"] != "1" {
					return "expecting the system info to be reported"
				}

				return ""
			},
		},
	}

	return table
}

func root200() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "instructions",
			URL:        "/",
			Method:     http.MethodGet,
			StatusCode: http.StatusOK,
			GotResp:    &checkapp.Instructions{},
			ExpResp:    &checkapp.Instructions{},
			CmpFunc: func(got any, exp any) string {
				gotResp, ok := got.(*checkapp.Instructions)
				if !ok {
					return fmt.Sprintf("response wrong type: %T", got)
				}

				if gotResp.Version != "test" {
					return fmt.Sprintf("expecting version %q, got %q", "test", gotResp.Version)
				}

				for _, endpoint := range []string{"/", "/rank", "/test", "/healthz"} {
					if _, exists := gotResp.Endpoints[endpoint]; !exists {
						return fmt.Sprintf("expecting endpoint %q to be documented", endpoint)
					}
				}

				return ""
			},
		},
	}

	return table
}
