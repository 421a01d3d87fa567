package rankapi_test

import (
	"net/http"

	"github.com/rerankd/rerankd/app/domain/rankapp"
	"github.com/rerankd/rerankd/app/sdk/apitest"
	"github.com/rerankd/rerankd/app/sdk/errs"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func rank200() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "all-documents",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusOK,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": pandaDocuments,
			},
			GotResp: &rankapp.RankResponse{},
			ExpResp: &rankapp.RankResponse{
				RankedDocuments: []string{pandaDocuments[0], pandaDocuments[2], pandaDocuments[1]},
				Scores:          []float64{8.1, 6.4, -2.3},
			},
			CmpFunc: func(got any, exp any) string {
				return cmp.Diff(got, exp,
					cmpopts.IgnoreFields(rankapp.RankResponse{}, "ID", "ExecutionTime"),
				)
			},
		},
		{
			Name:       "top-k",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusOK,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": pandaDocuments,
				"top_k":     2,
			},
			GotResp: &rankapp.RankResponse{},
			ExpResp: &rankapp.RankResponse{
				RankedDocuments: []string{pandaDocuments[0], pandaDocuments[2]},
				Scores:          []float64{8.1, 6.4},
			},
			CmpFunc: func(got any, exp any) string {
				return cmp.Diff(got, exp,
					cmpopts.IgnoreFields(rankapp.RankResponse{}, "ID", "ExecutionTime"),
				)
			},
		},
		{
			Name:       "top-k-larger-than-documents",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusOK,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": pandaDocuments,
				"top_k":     10,
			},
			GotResp: &rankapp.RankResponse{},
			ExpResp: &rankapp.RankResponse{
				RankedDocuments: []string{pandaDocuments[0], pandaDocuments[2], pandaDocuments[1]},
				Scores:          []float64{8.1, 6.4, -2.3},
			},
			CmpFunc: func(got any, exp any) string {
				return cmp.Diff(got, exp,
					cmpopts.IgnoreFields(rankapp.RankResponse{}, "ID", "ExecutionTime"),
				)
			},
		},
	}

	return table
}

func rank400() []apitest.Table {
	cmpErr := func(got any, exp any) string {
		return cmp.Diff(got, exp,
			cmpopts.IgnoreFields(errs.Error{}, "FuncName", "FileName"),
		)
	}

	table := []apitest.Table{
		{
			Name:       "empty-question",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusBadRequest,
			Input: map[string]any{
				"question":  "",
				"documents": pandaDocuments,
			},
			GotResp: &errs.Error{},
			ExpResp: &errs.Error{
				Code:    errs.InvalidArgument,
				Message: "question cannot be empty",
			},
			CmpFunc: cmpErr,
		},
		{
			Name:       "no-documents",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusBadRequest,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": []string{},
			},
			GotResp: &errs.Error{},
			ExpResp: &errs.Error{
				Code:    errs.InvalidArgument,
				Message: "no documents provided",
			},
			CmpFunc: cmpErr,
		},
		{
			Name:       "empty-document-entry",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusBadRequest,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": []string{"a", ""},
			},
			GotResp: &errs.Error{},
			ExpResp: &errs.Error{
				Code:    errs.InvalidArgument,
				Message: "documents[1] cannot be empty",
			},
			CmpFunc: cmpErr,
		},
		{
			Name:       "zero-top-k",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusBadRequest,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": pandaDocuments,
				"top_k":     0,
			},
			GotResp: &errs.Error{},
			ExpResp: &errs.Error{
				Code:    errs.InvalidArgument,
				Message: "top_k must be >= 1",
			},
			CmpFunc: cmpErr,
		},
	}

	return table
}

func rank500() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "engine-failure",
			URL:        "/rank",
			Method:     http.MethodPost,
			StatusCode: http.StatusInternalServerError,
			Input: map[string]any{
				"question":  pandaQuestion,
				"documents": pandaDocuments,
			},
			GotResp: &errs.Error{},
			ExpResp: &errs.Error{
				Code:    errs.Internal,
				Message: errModelDown.Error(),
			},
			CmpFunc: func(got any, exp any) string {
				return cmp.Diff(got, exp,
					cmpopts.IgnoreFields(errs.Error{}, "FuncName", "FileName"),
				)
			},
		},
	}

	return table
}

func selfTest200() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "passes",
			URL:        "/test",
			Method:     http.MethodGet,
			StatusCode: http.StatusOK,
			GotResp:    &rankapp.SelfTestResponse{},
			ExpResp: &rankapp.SelfTestResponse{
				Question:        pandaQuestion,
				RankedDocuments: []string{pandaDocuments[0], pandaDocuments[2], pandaDocuments[1]},
				Scores:          []float64{8.1, 6.4, -2.3},
				Passed:          true,
			},
			CmpFunc: func(got any, exp any) string {
				return cmp.Diff(got, exp,
					cmpopts.IgnoreFields(rankapp.SelfTestResponse{}, "ExecutionTime"),
				)
			},
		},
	}

	return table
}

func selfTest500() []apitest.Table {
	table := []apitest.Table{
		{
			Name:       "engine-failure",
			URL:        "/test",
			Method:     http.MethodGet,
			StatusCode: http.StatusInternalServerError,
			GotResp:    &errs.Error{},
			ExpResp: &errs.Error{
				Code:    errs.Internal,
				Message: errModelDown.Error(),
			},
			CmpFunc: func(got any, exp any) string {
				return cmp.Diff(got, exp,
					cmpopts.IgnoreFields(errs.Error{}, "FuncName", "FileName"),
				)
			},
		},
	}

	return table
}
