package www

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
)

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}

	// First login bootstraps the admin account.
	exists, err := h.db.AdminUserExists()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		hash, err := hashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := h.db.CreateAdminUser(req.Username, hash); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		h.sessions.setUser(w, r, req.Username)
		writeJSON(w, map[string]any{"status": "ok", "created": true})
		return
	}

	user, err := h.db.GetAdminUser(req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !checkPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.sessions.setUser(w, r, user.Username)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.sessions.clear(w, r)
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *Handlers) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	username, ok := h.sessions.getUser(r)
	writeJSON(w, map[string]any{"authenticated": ok, "username": username})
}

func (h *Handlers) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	username, _ := h.sessions.getUser(r)

	var req struct {
		Current string `json:"current"`
		New     string `json:"new"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.New) < 8 {
		writeError(w, http.StatusBadRequest, "new password too short")
		return
	}

	user, err := h.db.GetAdminUser(username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !checkPassword(req.Current, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "current password incorrect")
		return
	}

	hash, err := hashPassword(req.New)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.db.UpdateAdminPassword(username, hash); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
