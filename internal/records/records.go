// Package records shapes ArchivesSpace JSON records from operator metadata.
// Everything here is pure: no I/O, no clock.
package records

import "github.com/aalvaropc/topcontainers/internal/domain"

// CreateInstance links an instance of the given type to a top container URI.
func CreateInstance(instanceType, topContainerURI string) domain.Record {
	return domain.Record{
		"instance_type": instanceType,
		"sub_container": map[string]any{
			"top_container": map[string]any{"ref": topContainerURI},
		},
	}
}

// CreateTopContainer builds a top container with a single current location starting at startDate.
// metadata must carry container_type, indicator and location_uri.
func CreateTopContainer(metadata domain.MetadataRow, startDate string) (domain.Record, error) {
	const op = "records.top_container"

	containerType, err := metadata.Require(op, domain.ColContainerType)
	if err != nil {
		return nil, err
	}
	indicator, err := metadata.Require(op, domain.ColIndicator)
	if err != nil {
		return nil, err
	}
	locationURI, err := metadata.Require(op, domain.ColLocationURI)
	if err != nil {
		return nil, err
	}

	return domain.Record{
		"type":      containerType,
		"indicator": indicator,
		"container_locations": []any{
			map[string]any{
				"jsonmodel_type": "container_location",
				"ref":            locationURI,
				"status":         "current",
				"start_date":     startDate,
			},
		},
	}, nil
}
