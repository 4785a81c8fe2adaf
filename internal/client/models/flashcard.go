package models

type Flashcard struct {
	ID        ID     `json:"id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	NoteID    *ID    `json:"note_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

func (f Flashcard) Key() ID { return f.ID }

type FlashcardsResponse struct {
	Flashcards []Flashcard `json:"flashcards"`
}
