package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/shopcost/internal/boq"
	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/pricing"
	"github.com/Simplici0/shopcost/internal/project"
)

func (s *server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	projects, err := s.store.Search(r.Context(), query)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	activeID, err := s.store.ActiveID(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activeId": activeID,
		"projects": projects,
	})
}

func (s *server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Upsert(r.Context(), project.New(s.newID))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.SetActiveID(r.Context(), p.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newProjectView(p))
}

func (s *server) handleProjectActive(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.EnsureActive(r.Context(), func() pricing.Project { return project.New(s.newID) })
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(p))
}

func (s *server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(p))
}

// handleProjectReplace stores a full project snapshot, the way the editor
// autosaves. The id in the path wins over the body.
func (s *server) handleProjectReplace(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.store.Get(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}

	var p pricing.Project
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project JSON")
		return
	}
	p.ID = id
	if err := project.ValidateRowIDs(p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.Upsert(r.Context(), p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(saved))
}

func (s *server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProjectActivate(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.store.SetActiveID(r.Context(), p.ID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(p))
}

func (s *server) handleProjectTotals(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	view := newProjectView(p)
	writeJSON(w, http.StatusOK, map[string]any{
		"totals":    view.Totals,
		"labor":     view.Labor,
		"subtotals": view.Subtotals,
		"stats":     view.Stats,
	})
}

// handleTotalsCompute prices a posted snapshot without storing it.
func (s *server) handleTotalsCompute(w http.ResponseWriter, r *http.Request) {
	var p pricing.Project
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid project JSON")
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(p))
}

func (s *server) handleRowsList(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		category = project.FilterAll
	}
	rows := project.Filter(p.Rows, category)
	if rows == nil {
		rows = []pricing.Row{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"rows":     rows,
		"stats":    project.RowStats(p),
	})
}

func (s *server) handleRowAdd(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, http.StatusCreated, func(p pricing.Project) (pricing.Project, error) {
		return project.AddRow(p, s.newID), nil
	})
}

type rowPatch struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

func (s *server) handleRowUpdate(w http.ResponseWriter, r *http.Request) {
	var patch rowPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid patch JSON")
		return
	}
	rowID := chi.URLParam(r, "rowID")
	s.mutate(w, r, http.StatusOK, func(p pricing.Project) (pricing.Project, error) {
		return project.UpdateRow(p, rowID, patch.Field, patch.Value)
	})
}

func (s *server) handleRowDelete(w http.ResponseWriter, r *http.Request) {
	rowID := chi.URLParam(r, "rowID")
	s.mutate(w, r, http.StatusOK, func(p pricing.Project) (pricing.Project, error) {
		return project.DeleteRow(p, rowID)
	})
}

func (s *server) handleRowDuplicate(w http.ResponseWriter, r *http.Request) {
	rowID := chi.URLParam(r, "rowID")
	s.mutate(w, r, http.StatusCreated, func(p pricing.Project) (pricing.Project, error) {
		return project.DuplicateRow(p, rowID, s.newID)
	})
}

func (s *server) handlePresetInsert(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid preset index")
		return
	}

	presets, err := s.store.ListPresets(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	preset, err := library.At(presets, index)
	if err != nil {
		if errors.Is(err, library.ErrEmpty) {
			writeStoreError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mutate(w, r, http.StatusCreated, func(p pricing.Project) (pricing.Project, error) {
		return project.InsertPreset(p, preset, s.newID), nil
	})
}

func (s *server) handleLibraryList(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.ListPresets(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": presets})
}

func (s *server) handleProjectBOQ(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}

	formatName := r.URL.Query().Get("format")
	if formatName == "" {
		formatName = "txt"
	}
	doc := boq.Build(p, s.now(), s.symbol)
	body, contentType, err := renderBOQ(doc, formatName)
	if err != nil {
		if errors.Is(err, errUnknownFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename(formatName)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

var errUnknownFormat = errors.New("unknown export format")

// renderBOQ encodes doc in the named format: txt, xlsx or pdf.
func renderBOQ(doc boq.Document, formatName string) ([]byte, string, error) {
	switch formatName {
	case "txt":
		return []byte(boq.Text(doc)), "text/plain; charset=utf-8", nil
	case "xlsx":
		b, err := boq.Excel(doc)
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	case "pdf":
		b, err := boq.PDF(doc)
		return b, "application/pdf", err
	default:
		return nil, "", fmt.Errorf("%w %q (want txt, xlsx or pdf)", errUnknownFormat, formatName)
	}
}

// mutate applies fn to the project in the path inside one store transaction.
func (s *server) mutate(w http.ResponseWriter, r *http.Request, status int, fn func(pricing.Project) (pricing.Project, error)) {
	saved, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), fn)
	if err != nil {
		if errors.Is(err, project.ErrUnknownField) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeStoreError(w, err)
		return
	}
	writeJSON(w, status, newProjectView(saved))
}
