package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type userContext string

const userContextKey userContext = "userContextKey"

func getUserFromRequest(r *http.Request) *user {
	u, _ := r.Context().Value(userContextKey).(*user)
	return u
}

// requireAuth resolves the caller's identity from the session cookie
// and attaches the user record to the request context. Every failure
// mode collapses to the same 401 so a caller cannot distinguish a
// missing session from an expired one or from a deleted account.
func (app *application) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, errors.New("authentication required"), http.StatusUnauthorized)
			return
		}
		username, err := app.parseSessionToken(cookie.Value)
		if err != nil {
			writeError(w, errors.New("authentication required"), http.StatusUnauthorized)
			return
		}
		u, err := app.store.getUserByUsername(username)
		if err != nil {
			app.serverError(w, err)
			return
		}
		if u == nil {
			// account deleted while a session was still live
			writeError(w, errors.New("authentication required"), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func (app *application) rateLimit(next http.Handler) http.HandlerFunc {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}
	var (
		mu      sync.Mutex
		clients = make(map[string]client)
	)
	go func() {
		for {
			time.Sleep(time.Minute)
			func() {
				mu.Lock()
				defer mu.Unlock()
				for ip, client := range clients {
					if time.Since(client.lastSeen) >= time.Minute*3 {
						delete(clients, ip)
					}
				}
			}()
		}
	}()
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			app.serverError(w, err)
			return
		}
		mu.Lock()
		c, ok := clients[ip]
		if !ok {
			c = client{
				limiter: rate.NewLimiter(rate.Limit(app.config.limiter.maxRequestPerSecond), app.config.limiter.burst),
			}
		}
		c.lastSeen = time.Now()
		clients[ip] = c
		if !c.limiter.Allow() {
			mu.Unlock()
			writeError(w, errors.New("rate limit exceeded"), http.StatusTooManyRequests)
			return
		}
		mu.Unlock()
		next.ServeHTTP(w, r)
	}
}

func (app *application) enableCORS(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Origin")
		w.Header().Add("Vary", "Access-Control-Request-Method")

		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, o := range app.config.cors.trustedOrigins {
				if origin == o || o == "*" {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					// preflight request
					if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
						w.Header().Set("Access-Control-Allow-Methods", "OPTIONS, GET, POST, PUT, DELETE")
						w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
						w.WriteHeader(http.StatusOK)
						return
					}
					break
				}
			}
		}
		next.ServeHTTP(w, r)
	}
}

// requestID tags each request with a correlation ID, honoring one sent
// by the client, and logs the request line under it.
func requestID(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		log.Printf("%s %s %s", id, r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	}
}
