package domain

import "testing"

func TestRecordAccessors(t *testing.T) {
	r := Record{
		"uri":   "/repositories/0/accessions/000",
		"title": "Accession title",
		"notes": []any{
			map[string]any{"type": "accessrestrict"},
			"garbage",
		},
	}

	uri, ok := r.URI()
	if !ok || uri != "/repositories/0/accessions/000" {
		t.Fatalf("unexpected uri %q ok=%v", uri, ok)
	}
	if got := len(r.Objects("notes")); got != 1 {
		t.Fatalf("expected 1 object note, got %d", got)
	}

	r.Append("instances", map[string]any{"instance_type": "mixed_materials"})
	r.Append("instances", map[string]any{"instance_type": "books"})
	if got := len(r.Objects("instances")); got != 2 {
		t.Fatalf("expected 2 instances, got %d", got)
	}
}

func TestRecordURIMissing(t *testing.T) {
	if _, ok := (Record{"uri": ""}).URI(); ok {
		t.Fatalf("expected empty uri to be reported missing")
	}
	if _, ok := (Record{"uri": 7}).URI(); ok {
		t.Fatalf("expected non-string uri to be reported missing")
	}
}

func TestMetadataRowRequire(t *testing.T) {
	row := MetadataRow{ColIndicator: "abcd1234"}
	if v, err := row.Require("op", ColIndicator); err != nil || v != "abcd1234" {
		t.Fatalf("unexpected %q %v", v, err)
	}
	if _, err := row.Require("op", ColLocationURI); !IsKind(err, KindMissingField) {
		t.Fatalf("expected missing_field, got %v", err)
	}
}

func TestResourceEndpoint(t *testing.T) {
	cases := map[string]string{
		"archival_objects": "/repositories/2/archival_objects",
		"/resources/":      "/repositories/2/resources",
		"agents/people":    "/agents/people",
	}
	for in, want := range cases {
		if got := ResourceEndpoint("2", in); got != want {
			t.Errorf("ResourceEndpoint(%q) = %q, want %q", in, got, want)
		}
	}
	if got := RecordURI("/repositories/2/archival_objects", 42); got != "/repositories/2/archival_objects/42" {
		t.Fatalf("unexpected record uri %q", got)
	}
}
