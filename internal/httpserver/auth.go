// internal/httpserver/auth.go
//
// Username-only login for the Mot Devine backend.
// Responsibilities:
//   - POST /auth/login, POST /auth/logout, GET /auth/me.
//   - GET /stats/me and POST /auth/reset for the logged-in player.
//   - JWT cookie signing/verification and the optional/required auth
//     middleware.
//
// Notes:
//   - There is no account table: a player is identified by name, and the
//     token carries that name. Progress lives in the store under the name.
//   - The browser's game table follows the token on every game request, so
//     reloading the page restores the logged-in session.

package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/motdevine/internal/session"
	"github.com/robalobadob/motdevine/internal/store"
)

const maxUsernameLen = 32

// authUser is placed into request context by auth middleware.
type authUser struct {
	Username string `json:"username"`
}

// ctxUserKey is the context key type for storing authUser.
type ctxUserKey struct{}

func withUser(r *http.Request, u *authUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, u))
}

func userFrom(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(userFrom(r))
		})
		r.Get("/stats/me", s.handleStats)
		r.Post("/auth/reset", s.handleReset)
	})
}

type loginReq struct {
	Username string `json:"username"`
}

// handleLogin binds the browser's table to username, sets the token cookie
// and returns the reloaded game.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" {
		writeError(w, http.StatusBadRequest, "Veuillez entrer un nom !")
		return
	}
	if len([]rune(username)) > maxUsernameLen {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("username must be at most %d chars", maxUsernameLen))
		return
	}

	tok, exp, err := signJWT(username)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	setAuthCookie(w, tok, exp)
	log.Info().Str("user", username).Msg("login")

	s.withTable(w, withUser(r, &authUser{Username: username}), func(t *table) {
		t.rec.ShowFeedback(fmt.Sprintf("Bienvenue %s ! Tes données ont été chargées.", username), session.SeveritySuccess)
		respond(w, t, gameRes{})
	})
}

// handleLogout clears the token cookie and returns the game as a guest.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	s.withTable(w, withUser(r, nil), func(t *table) {
		t.rec.ShowFeedback("Déconnexion réussie. Tes données sont sauvegardées.", session.SeverityInfo)
		respond(w, t, gameRes{})
	})
}

type statsRes struct {
	Username  string   `json:"username"`
	Solved    int      `json:"solved"`
	Total     int      `json:"total"`
	Remaining int      `json:"remaining"`
	Words     []string `json:"words"`
}

// handleStats reports the player's progress over the catalog.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	me := userFrom(r)
	p := store.NewProfile(s.st, "")
	if err := p.Login(r.Context(), me.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	list := p.SolvedList()
	if list == nil {
		list = []string{}
	}
	solved := 0
	for _, word := range list {
		if s.cat.Has(word) {
			solved++
		}
	}
	_ = json.NewEncoder(w).Encode(statsRes{
		Username:  me.Username,
		Solved:    solved,
		Total:     s.cat.Len(),
		Remaining: s.cat.Len() - solved,
		Words:     list,
	})
}

// handleReset wipes the player's solved words and reloads the game.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.withTable(w, r, func(t *table) {
		t.game.ResetAll(r.Context())
		respond(w, t, gameRes{})
	})
}

// --------------------------- auth middleware -------------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is present.
// It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerOrCookie(r); tok != "" {
				if u, err := parseJWT(tok); err == nil {
					r = withUser(r, u)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrCookie(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			u, err := parseJWT(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, withUser(r, u))
		})
	}
}

// ------------------------------ JWT & cookies ------------------------------

func jwtSecret() []byte {
	return []byte(getEnv("JWT_SECRET", "dev_secret_change_me"))
}

// signJWT creates an HS256 JWT for username with a configurable expiry
// (JWT_EXPIRES_DAYS; default 14).
func signJWT(username string) (string, time.Time, error) {
	days := 14
	if v := getEnv("JWT_EXPIRES_DAYS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			days = n
		}
	}
	now := time.Now()
	exp := now.Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(jwtSecret())
	return ss, exp, err
}

// parseJWT verifies tok and returns the user it names.
func parseJWT(tok string) (*authUser, error) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !t.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	username, _ := claims["username"].(string)
	if strings.TrimSpace(username) == "" {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &authUser{Username: username}, nil
}

func isProduction() bool { return getEnv("NODE_ENV", "") == "production" }

// sameSite is None (required for third-party contexts) when Secure, else Lax.
func sameSite() http.SameSite {
	if isProduction() {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func cookieName() string { return getEnv("COOKIE_NAME", "motdevine_token") }

// setAuthCookie writes the auth token cookie with appropriate security attributes.
func setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction(),
		SameSite: sameSite(),
		Expires:  exp,
	})
}

// clearAuthCookie deletes the auth token cookie.
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(),
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isProduction(),
		SameSite: sameSite(),
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from Authorization header or auth cookie.
func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(cookieName()); err == nil {
		return c.Value
	}
	return ""
}
