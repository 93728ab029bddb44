package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

type taskInput struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func decodeTaskInput(w http.ResponseWriter, r *http.Request) (taskInput, bool) {
	var input taskInput
	err := json.NewDecoder(r.Body).Decode(&input)
	if err != nil {
		writeError(w, err, http.StatusBadRequest)
		return input, false
	}
	// Titles are stored verbatim, no trimming.
	v := newValidator()
	v.checkCond(input.Title != "", "title", "must be provided")
	v.checkCond(len(input.Title) <= 255, "title", "must be at most 255 characters")
	if v.hasErrors() {
		writeError(w, v.toError(), http.StatusBadRequest)
		return input, false
	}
	return input, true
}

func parseTaskID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func (app *application) listTasksHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	tasks, err := app.store.tasksForOwner(u.ID)
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// adminTasksHandler is the only unscoped listing. The role check sits
// at the top of the operation itself rather than in the routing layer.
func (app *application) adminTasksHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	if u.Role != roleAdmin {
		writeError(w, errors.New("admin role required"), http.StatusForbidden)
		return
	}
	tasks, err := app.store.allTasks()
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) tasksByStatusHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	completed, err := strconv.ParseBool(r.PathValue("status"))
	if err != nil {
		writeError(w, errors.New("status must be a boolean"), http.StatusBadRequest)
		return
	}
	tasks, err := app.store.tasksForOwnerByStatus(u.ID, completed)
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (app *application) getTaskHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, errors.New("invalid task id"), http.StatusBadRequest)
		return
	}
	t, err := app.store.taskByID(u.ID, id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if t == nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) getTaskByTitleHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	t, err := app.store.taskByTitle(u.ID, r.PathValue("title"))
	if err != nil {
		app.serverError(w, err)
		return
	}
	if t == nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) createTaskHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	input, ok := decodeTaskInput(w, r)
	if !ok {
		return
	}

	// Fast path; the (owner_id, title) unique constraint is the
	// authority under concurrent creates.
	existing, err := app.store.taskByTitle(u.ID, input.Title)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if existing != nil {
		writeError(w, errDuplicateTitle, http.StatusConflict)
		return
	}

	t := &task{
		OwnerID:   u.ID,
		Title:     input.Title,
		Completed: input.Completed,
	}
	err = app.store.insertTask(t)
	switch {
	case errors.Is(err, errDuplicateTitle):
		writeError(w, err, http.StatusConflict)
		return
	case err != nil:
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (app *application) applyTaskUpdate(w http.ResponseWriter, t *task, input taskInput) {
	t.Title = input.Title
	t.Completed = input.Completed
	err := app.store.updateTask(t)
	switch {
	case errors.Is(err, errDuplicateTitle):
		writeError(w, err, http.StatusConflict)
		return
	case err != nil:
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (app *application) updateTaskHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, errors.New("invalid task id"), http.StatusBadRequest)
		return
	}
	input, ok := decodeTaskInput(w, r)
	if !ok {
		return
	}
	t, err := app.store.taskByID(u.ID, id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if t == nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	app.applyTaskUpdate(w, t, input)
}

func (app *application) updateTaskByTitleHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	input, ok := decodeTaskInput(w, r)
	if !ok {
		return
	}
	t, err := app.store.taskByTitle(u.ID, r.PathValue("title"))
	if err != nil {
		app.serverError(w, err)
		return
	}
	if t == nil {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	app.applyTaskUpdate(w, t, input)
}

func (app *application) deleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	id, err := parseTaskID(r)
	if err != nil {
		writeError(w, errors.New("invalid task id"), http.StatusBadRequest)
		return
	}
	deleted, err := app.store.deleteTaskByID(u.ID, id)
	if err != nil {
		app.serverError(w, err)
		return
	}
	if !deleted {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) deleteTaskByTitleHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	deleted, err := app.store.deleteTaskByTitle(u.ID, r.PathValue("title"))
	if err != nil {
		app.serverError(w, err)
		return
	}
	if !deleted {
		writeError(w, errors.New("task not found"), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
