package shared

import (
	"github.com/dalemusser/projecthub/internal/domain/models"
)

// UserIDs collects the user ids referenced by a project: liaison, selected
// student, comment authors and, with entries, the entry students and their
// comment authors.
func UserIDs(p models.Project, withEntries bool) []string {
	ids := []string{p.LiaisonID}
	if p.SelectedStudentID != "" {
		ids = append(ids, p.SelectedStudentID)
	}
	for _, c := range p.Comments {
		ids = append(ids, c.AuthorID)
	}
	if withEntries {
		for _, e := range p.Entries {
			ids = append(ids, e.StudentID)
			for _, c := range e.Comments {
				ids = append(ids, c.AuthorID)
			}
		}
	}
	return ids
}

// ApplyNames fills the display names on p from users. Unknown ids keep an
// empty name.
func ApplyNames(p *models.Project, users map[string]models.UserSummary) {
	p.LiaisonName = users[p.LiaisonID].Name
	p.SelectedStudentName = users[p.SelectedStudentID].Name
	NameMessages(p.Comments, users)
	for i := range p.Entries {
		NameEntry(&p.Entries[i], users)
	}
}

// NameEntry fills the student and comment author names on e.
func NameEntry(e *models.Entry, users map[string]models.UserSummary) {
	e.StudentName = users[e.StudentID].Name
	NameMessages(e.Comments, users)
}

// NameMessages fills AuthorName on each message.
func NameMessages(msgs []models.Message, users map[string]models.UserSummary) {
	for i := range msgs {
		msgs[i].AuthorName = users[msgs[i].AuthorID].Name
	}
}

// RedactEntries replaces each entry with its redacted form.
func RedactEntries(p *models.Project) {
	for i, e := range p.Entries {
		p.Entries[i] = e.Redacted()
	}
}
