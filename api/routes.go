package main

import (
	"net/http"
)

func composeRoutes(app *application) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthcheck", app.healthCheckHandler)

	mux.HandleFunc("POST /auth/signup", app.signupHandler)
	mux.HandleFunc("POST /auth/login", app.loginHandler)
	mux.HandleFunc("POST /auth/logout", app.logoutHandler)
	mux.HandleFunc("GET /auth/me", app.requireAuth(app.currentUserHandler))

	mux.HandleFunc("GET /todos", app.requireAuth(app.listTasksHandler))
	mux.HandleFunc("GET /todos/admin/all", app.requireAuth(app.adminTasksHandler))
	mux.HandleFunc("GET /todos/status/{status}", app.requireAuth(app.tasksByStatusHandler))
	mux.HandleFunc("GET /todos/{id}", app.requireAuth(app.getTaskHandler))
	mux.HandleFunc("GET /todos/title/{title}", app.requireAuth(app.getTaskByTitleHandler))
	mux.HandleFunc("POST /todos", app.requireAuth(app.createTaskHandler))
	mux.HandleFunc("PUT /todos/{id}", app.requireAuth(app.updateTaskHandler))
	mux.HandleFunc("PUT /todos/title/{title}", app.requireAuth(app.updateTaskByTitleHandler))
	mux.HandleFunc("DELETE /todos/{id}", app.requireAuth(app.deleteTaskHandler))
	mux.HandleFunc("DELETE /todos/title/{title}", app.requireAuth(app.deleteTaskByTitleHandler))

	mux.HandleFunc("GET /dashboard", app.requireAuth(app.dashboardHandler))

	if app.config.staticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(app.config.staticDir)))
	}

	var handler http.Handler = mux
	if app.config.limiter.enabled {
		handler = app.rateLimit(handler)
	}
	handler = app.enableCORS(handler)
	return requestID(handler)
}
