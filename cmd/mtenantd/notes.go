package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is the tenant-scoped demo entity.
type Note struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Tenant    *string   `gorm:"size:255;index" json:"tenant"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string { return "notes" }

func (n *Note) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

type noteInput struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

func listNotesHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		notes := []Note{}
		if err := db.WithContext(r.Context()).Order("created_at, id").Find(&notes).Error; err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, notes)
	}
}

func createNoteHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in noteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if in.Title == nil || *in.Title == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}

		note := Note{Title: *in.Title}
		if in.Body != nil {
			note.Body = *in.Body
		}
		if err := db.WithContext(r.Context()).Create(&note).Error; err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, note)
	}
}

func getNoteHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		var note Note
		err := db.WithContext(r.Context()).Where("id = ?", id).First(&note).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "note not found")
			return
		}
		if err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func updateNoteHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		var in noteInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		changes := map[string]any{}
		if in.Title != nil {
			if *in.Title == "" {
				writeError(w, http.StatusBadRequest, "title cannot be empty")
				return
			}
			changes["title"] = *in.Title
		}
		if in.Body != nil {
			changes["body"] = *in.Body
		}
		if len(changes) == 0 {
			writeError(w, http.StatusBadRequest, "nothing to update")
			return
		}

		tx := db.WithContext(r.Context())
		res := tx.Model(&Note{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			writeFailure(w, r, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			writeError(w, http.StatusNotFound, "note not found")
			return
		}

		var note Note
		if err := tx.Where("id = ?", id).First(&note).Error; err != nil {
			writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, note)
	}
}

func deleteNoteHandler(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := noteID(w, r)
		if !ok {
			return
		}
		res := db.WithContext(r.Context()).Where("id = ?", id).Delete(&Note{})
		if res.Error != nil {
			writeFailure(w, r, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			writeError(w, http.StatusNotFound, "note not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func noteID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid note id")
		return uuid.Nil, false
	}
	return id, true
}
