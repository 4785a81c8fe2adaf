package models

// NoteType selects how the backend processes an uploaded document.
type NoteType string

const (
	NoteTypeGeneral       NoteType = "general"
	NoteTypeQuestionPaper NoteType = "question_paper"
)

// Valid reports whether t is one of the known note types.
func (t NoteType) Valid() bool {
	return t == NoteTypeGeneral || t == NoteTypeQuestionPaper
}

type Note struct {
	ID        ID       `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content,omitempty"`
	NoteType  NoteType `json:"note_type"`
	CreatedAt string   `json:"created_at"`
	FolderID  *ID      `json:"folder_id,omitempty"`
}

func (n Note) Key() ID { return n.ID }

type NotesResponse struct {
	Notes []Note `json:"notes"`
}
