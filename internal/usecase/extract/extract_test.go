package extract

import (
	"testing"

	"github.com/aalvaropc/topcontainers/internal/domain"
)

func accession() domain.Record {
	return domain.Record{
		"uri":          "/repositories/2/accessions/12",
		"title":        "Smith papers",
		"lock_version": float64(3),
		"publish":      true,
		"resource":     map[string]any{"ref": "/repositories/2/resources/9"},
		"instances": []any{
			map[string]any{"instance_type": "mixed_materials"},
		},
	}
}

func TestApply_EmptyRules(t *testing.T) {
	vals, results := Apply(accession(), Rules{})
	if len(vals) != 0 {
		t.Fatalf("expected empty values, got %v", vals)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results, got %v", results)
	}
}

func TestApply_Success(t *testing.T) {
	vals, res := Apply(accession(), Rules{
		"title":        "$.title",
		"resource_uri": "$.resource.ref",
		"lock_version": "$.lock_version",
	})

	if vals["title"] != "Smith papers" {
		t.Fatalf("expected title, got=%q", vals["title"])
	}
	if vals["resource_uri"] != "/repositories/2/resources/9" {
		t.Fatalf("expected resource uri, got=%q", vals["resource_uri"])
	}
	if vals["lock_version"] != "3" {
		t.Fatalf("expected lock_version=3, got=%q", vals["lock_version"])
	}
	if len(res) != 3 {
		t.Fatalf("expected 3 results, got=%d", len(res))
	}
	for _, r := range res {
		if !r.Success {
			t.Fatalf("expected all success, got fail: %+v", r)
		}
	}
}

func TestApply_NilRecord_FailsAll(t *testing.T) {
	vals, res := Apply(nil, Rules{"title": "$.title"})
	if len(vals) != 0 {
		t.Fatalf("expected no values, got=%v", vals)
	}
	if len(res) != 1 || res[0].Success {
		t.Fatalf("expected one failure, got %+v", res)
	}
}

func TestApply_ExtractBool(t *testing.T) {
	vals, results := Apply(accession(), Rules{"publish": "$.publish"})
	if !results[0].Success {
		t.Fatalf("expected Success=true, got: %s", results[0].Message)
	}
	if vals["publish"] != "true" {
		t.Fatalf("expected publish=true, got %q", vals["publish"])
	}
}

func TestApply_InvalidJSONPath_FailsRule(t *testing.T) {
	vals, res := Apply(accession(), Rules{"title": "$.title["})
	if len(vals) != 0 {
		t.Fatalf("expected no values, got=%v", vals)
	}
	if len(res) != 1 || res[0].Success {
		t.Fatalf("expected failure, got %+v", res)
	}
}

func TestApply_MissingAndNullValues_Fail(t *testing.T) {
	rec := accession()
	rec["display_string"] = nil

	_, res := Apply(rec, Rules{"a": "$.missing", "b": "$.display_string", "c": ""})
	for _, r := range res {
		if r.Success {
			t.Fatalf("expected %q to fail", r.Name)
		}
	}
}

func TestApply_MixedResults_StableOrder(t *testing.T) {
	vals, results := Apply(accession(), Rules{"bbb": "", "aaa": "$.title"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "aaa" || results[1].Name != "bbb" {
		t.Fatalf("expected sorted results, got %q, %q", results[0].Name, results[1].Name)
	}
	if !results[0].Success || results[1].Success {
		t.Fatalf("unexpected outcome: %+v", results)
	}
	if vals["aaa"] != "Smith papers" {
		t.Fatalf("expected aaa=Smith papers, got %q", vals["aaa"])
	}
}

func TestApply_SingleElementArrayUnwrapped(t *testing.T) {
	vals, results := Apply(accession(), Rules{"type": "$.instances[0].instance_type"})
	if !results[0].Success {
		t.Fatalf("expected Success=true, got: %s", results[0].Message)
	}
	if vals["type"] != "mixed_materials" {
		t.Fatalf("expected type=mixed_materials, got %q", vals["type"])
	}
}

func TestFirst(t *testing.T) {
	rec := accession()
	if got := First(rec, "$.display_string", "$.title"); got != "Smith papers" {
		t.Fatalf("expected fallback to title, got %q", got)
	}
	if got := First(rec, "$.nope"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := First(nil, "$.title"); got != "" {
		t.Fatalf("expected empty for nil record, got %q", got)
	}
}
