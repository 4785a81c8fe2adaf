package models

// FolderColor is one of the eight named folder colors.
type FolderColor string

const (
	FolderColorBlue   FolderColor = "blue"
	FolderColorGreen  FolderColor = "green"
	FolderColorPurple FolderColor = "purple"
	FolderColorRed    FolderColor = "red"
	FolderColorYellow FolderColor = "yellow"
	FolderColorPink   FolderColor = "pink"
	FolderColorIndigo FolderColor = "indigo"
	FolderColorTeal   FolderColor = "teal"
)

// FolderColors lists the palette in display order; the first is the default.
var FolderColors = []FolderColor{
	FolderColorBlue, FolderColorGreen, FolderColorPurple, FolderColorRed,
	FolderColorYellow, FolderColorPink, FolderColorIndigo, FolderColorTeal,
}

func (c FolderColor) Valid() bool {
	for _, known := range FolderColors {
		if c == known {
			return true
		}
	}
	return false
}

type Folder struct {
	ID        ID          `json:"id"`
	Name      string      `json:"name"`
	Color     FolderColor `json:"color"`
	NoteCount int         `json:"note_count,omitempty"`
	CreatedAt string      `json:"created_at,omitempty"`
}

func (f Folder) Key() ID { return f.ID }

// FolderInput is the body of folder create and update calls.
type FolderInput struct {
	Name  string      `json:"name"`
	Color FolderColor `json:"color,omitempty"`
}

type FolderResponse struct {
	Folder Folder `json:"folder"`
}

type FoldersResponse struct {
	Folders []Folder `json:"folders"`
}

// BulkAddRequest is the body of POST /folders/{id}/notes/bulk.
type BulkAddRequest struct {
	NoteIDs []ID `json:"note_ids"`
}

// BulkAddResult partitions the requested note ids: Skipped holds ids that
// were already members or do not exist.
type BulkAddResult struct {
	Added   []ID `json:"added"`
	Skipped []ID `json:"skipped"`
}
