package synthesis_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/annolab/curator/internal/synthesis"
	"github.com/annolab/curator/pkg/pagination"
)

type mockSystem struct {
	synthesizeFn func(ctx context.Context, cmd synthesis.SynthesizeCommand) (*synthesis.Result, error)
	listFn       func(ctx context.Context, page pagination.PageRequest, filters synthesis.Filters) (*pagination.PageResult[synthesis.Category], error)
}

func (m *mockSystem) Handler() *synthesis.Handler {
	return synthesis.NewHandler(
		m,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
}

func (m *mockSystem) Synthesize(ctx context.Context, cmd synthesis.SynthesizeCommand) (*synthesis.Result, error) {
	return m.synthesizeFn(ctx, cmd)
}

func (m *mockSystem) ListCategories(ctx context.Context, page pagination.PageRequest, filters synthesis.Filters) (*pagination.PageResult[synthesis.Category], error) {
	return m.listFn(ctx, page, filters)
}

func setupMux(h *synthesis.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		pattern := route.Method + " " + group.Prefix + route.Pattern
		mux.HandleFunc(pattern, route.Handler)
	}
	return mux
}

func sampleCommand() synthesis.SynthesizeCommand {
	return synthesis.SynthesizeCommand{
		TaskID: "sentiment-v2",
		Records: []synthesis.InputRecord{
			{
				UID:                  uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
				Text:                 "The service was great, I guess.",
				Label:                "2",
				Confidence:           70,
				GuidelineImprovement: "when sarcasm inverts sentiment -> annotate the intended meaning",
			},
		},
		Guideline: "1. positive -> 1\n2. negative -> 0",
	}
}

func sampleCategory() synthesis.Category {
	return synthesis.Category{
		ID:          uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		TaskID:      "sentiment-v2",
		EdgeCaseID:  0,
		Description: "Sarcasm inverts the literal sentiment",
		MemberUIDs:  []uuid.UUID{uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
	}
}

func TestHandlerSynthesize(t *testing.T) {
	t.Run("synthesizes submitted records", func(t *testing.T) {
		var captured synthesis.SynthesizeCommand
		sys := &mockSystem{
			synthesizeFn: func(_ context.Context, cmd synthesis.SynthesizeCommand) (*synthesis.Result, error) {
				captured = cmd
				return &synthesis.Result{
					Suggestions: map[string]string{"edge_case_0": "Sarcasm inverts the literal sentiment"},
					Cost:        0.002,
				}, nil
			},
		}
		mux := setupMux(sys.Handler())

		body, _ := json.Marshal(sampleCommand())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.TaskID != "sentiment-v2" {
			t.Errorf("task_id = %q, want sentiment-v2", captured.TaskID)
		}
		if len(captured.Records) != 1 {
			t.Errorf("records = %d, want 1", len(captured.Records))
		}

		var result synthesis.Result
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Suggestions["edge_case_0"] == "" {
			t.Error("suggestions missing edge_case_0")
		}
	})

	t.Run("invalid json returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing records returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis", bytes.NewReader([]byte(`{"task_id":"t","annotation_guideline":"g"}`)))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("record without improvement returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler())

		cmd := sampleCommand()
		cmd.Records[0].GuidelineImprovement = ""
		body, _ := json.Marshal(cmd)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid request maps to 400", func(t *testing.T) {
		sys := &mockSystem{
			synthesizeFn: func(_ context.Context, _ synthesis.SynthesizeCommand) (*synthesis.Result, error) {
				return nil, synthesis.ErrInvalidRequest
			},
		}
		mux := setupMux(sys.Handler())

		body, _ := json.Marshal(sampleCommand())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerCategories(t *testing.T) {
	t.Run("returns paginated categories", func(t *testing.T) {
		c := sampleCategory()
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, _ synthesis.Filters) (*pagination.PageResult[synthesis.Category], error) {
				result := pagination.NewPageResult([]synthesis.Category{c}, 1, 1, 20)
				return &result, nil
			},
		}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/synthesis/categories", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var result pagination.PageResult[synthesis.Category]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Total != 1 {
			t.Errorf("total = %d, want 1", result.Total)
		}
		if result.Data[0].Description != c.Description {
			t.Errorf("description = %q, want %q", result.Data[0].Description, c.Description)
		}
	})

	t.Run("passes query filters", func(t *testing.T) {
		var captured synthesis.Filters
		sys := &mockSystem{
			listFn: func(_ context.Context, _ pagination.PageRequest, f synthesis.Filters) (*pagination.PageResult[synthesis.Category], error) {
				captured = f
				result := pagination.NewPageResult([]synthesis.Category{}, 0, 1, 20)
				return &result, nil
			},
		}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/synthesis/categories?task_id=sentiment-v2&round=1", nil)
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.TaskID == nil || *captured.TaskID != "sentiment-v2" {
			t.Errorf("task filter = %v, want sentiment-v2", captured.TaskID)
		}
		if captured.Round == nil || *captured.Round != 1 {
			t.Errorf("round filter = %v, want 1", captured.Round)
		}
	})
}

func TestHandlerCategoriesSearch(t *testing.T) {
	t.Run("normalizes pagination", func(t *testing.T) {
		var capturedPage pagination.PageRequest
		sys := &mockSystem{
			listFn: func(_ context.Context, page pagination.PageRequest, _ synthesis.Filters) (*pagination.PageResult[synthesis.Category], error) {
				capturedPage = page
				result := pagination.NewPageResult([]synthesis.Category{}, 0, page.Page, page.PageSize)
				return &result, nil
			},
		}
		mux := setupMux(sys.Handler())

		body, _ := json.Marshal(synthesis.SearchRequest{})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis/categories/search", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedPage.Page != 1 {
			t.Errorf("page = %d, want 1 (normalized)", capturedPage.Page)
		}
		if capturedPage.PageSize != 20 {
			t.Errorf("page_size = %d, want 20 (default)", capturedPage.PageSize)
		}
	})

	t.Run("invalid json returns 400", func(t *testing.T) {
		sys := &mockSystem{}
		mux := setupMux(sys.Handler())

		rec := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/synthesis/categories/search", bytes.NewReader([]byte("not json")))
		req.Header.Set("Content-Type", "application/json")
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerRoutes(t *testing.T) {
	sys := &mockSystem{}
	group := sys.Handler().Routes()

	if group.Prefix != "/synthesis" {
		t.Errorf("prefix = %q, want /synthesis", group.Prefix)
	}

	want := []struct {
		method  string
		pattern string
	}{
		{"POST", ""},
		{"GET", "/categories"},
		{"POST", "/categories/search"},
	}

	if len(group.Routes) != len(want) {
		t.Fatalf("route count = %d, want %d", len(group.Routes), len(want))
	}

	for i, w := range want {
		r := group.Routes[i]
		if r.Method != w.method || r.Pattern != w.pattern {
			t.Errorf("route[%d] = %s %s, want %s %s", i, r.Method, r.Pattern, w.method, w.pattern)
		}
	}
}
