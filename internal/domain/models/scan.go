// internal/domain/models/scan.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Embedded collections are ordered slices searched by linear scan. The
// helpers below return -1 when nothing matches.

// FindEntry returns the index of studentID's entry.
func FindEntry(entries []Entry, studentID string) int {
	for i := range entries {
		if entries[i].StudentID == studentID {
			return i
		}
	}
	return -1
}

// FindAsset returns the index of the asset with the given id.
func FindAsset(assets []Asset, id primitive.ObjectID) int {
	for i := range assets {
		if assets[i].ID == id {
			return i
		}
	}
	return -1
}

// FindMessage returns the index of the message with the given id.
func FindMessage(msgs []Message, id primitive.ObjectID) int {
	for i := range msgs {
		if msgs[i].ID == id {
			return i
		}
	}
	return -1
}
