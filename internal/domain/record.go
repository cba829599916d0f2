package domain

import (
	"fmt"
	"path"
	"strings"
)

// Record is a JSON object as exchanged with the ArchivesSpace API.
// Unknown fields (lock_version, jsonmodel_type, ...) pass through untouched.
type Record map[string]any

// URI returns the record's "uri" field when it is a non-empty string.
func (r Record) URI() (string, bool) {
	s, ok := r["uri"].(string)
	return s, ok && s != ""
}

// Objects returns a top-level array field as its object elements; non-object elements are skipped.
func (r Record) Objects(key string) []map[string]any {
	arr, _ := r[key].([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Append adds v to the array field key, creating it when needed.
func (r Record) Append(key string, v any) {
	arr, _ := r[key].([]any)
	r[key] = append(arr, v)
}

// Metadata CSV columns.
const (
	ColContainerType = "container_type"
	ColIndicator     = "indicator"
	ColLocationURI   = "location_uri"
	ColAccessionURI  = "accession_uri"
	ColInstanceType  = "instance_type"
)

// MetadataColumns lists the columns every metadata CSV must carry.
var MetadataColumns = []string{
	ColContainerType,
	ColIndicator,
	ColLocationURI,
	ColAccessionURI,
	ColInstanceType,
}

// MetadataRow is one operator-supplied row describing a container to create.
type MetadataRow map[string]string

// Require returns the value for key or a missing_field error.
func (m MetadataRow) Require(op, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", MissingField(op, key)
	}
	return v, nil
}

// DryRunTopContainerURI stands in for a server-assigned URI when no data is modified.
const DryRunTopContainerURI = "DRY_RUN_TOP_CONTAINER_URI"

// ResourceEndpoint returns the collection URI for a resource type. Agent types live outside
// repositories ("agents/people"); everything else is scoped to the repository.
func ResourceEndpoint(repositoryID, resourceType string) string {
	rt := strings.Trim(resourceType, "/")
	if strings.HasPrefix(rt, "agents/") {
		return "/" + rt
	}
	return fmt.Sprintf("/repositories/%s/%s", repositoryID, rt)
}

// RecordURI joins an endpoint and an identifier.
func RecordURI(endpoint string, id int) string {
	return path.Join(endpoint, fmt.Sprint(id))
}
