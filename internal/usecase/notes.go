package usecase

import "github.com/aalvaropc/topcontainers/internal/domain"

// NoteChanges counts publish flags flipped on a record.
type NoteChanges struct {
	Notes    int `json:"notes_published"`
	Subnotes int `json:"subnotes_published"`
}

func (c NoteChanges) Any() bool { return c.Notes+c.Subnotes > 0 }

// PublishNotes marks every note of noteType, and each of its subnotes, as published.
// The record is mutated in place. A missing publish flag counts as unpublished.
func PublishNotes(rec domain.Record, noteType string) NoteChanges {
	var c NoteChanges
	for _, note := range rec.Objects("notes") {
		if t, _ := note["type"].(string); t != noteType {
			continue
		}
		if !isPublished(note) {
			note["publish"] = true
			c.Notes++
		}
		for _, sub := range domain.Record(note).Objects("subnotes") {
			if !isPublished(sub) {
				sub["publish"] = true
				c.Subnotes++
			}
		}
	}
	return c
}

func isPublished(m map[string]any) bool {
	b, _ := m["publish"].(bool)
	return b
}
