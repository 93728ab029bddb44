package main

import "net/http"

// dashboardHandler derives the counts from the task store at call time,
// nothing is cached.
func (app *application) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	u := getUserFromRequest(r)
	total, completed, err := app.store.taskCounts(u.ID)
	if err != nil {
		app.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Username:  u.Username,
		Role:      u.Role,
		Total:     total,
		Pending:   total - completed,
		Completed: completed,
	})
}
