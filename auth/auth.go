package auth

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"golang.org/x/crypto/bcrypt"

	"stagepass/errs"
	"stagepass/models"
	"stagepass/session"
	"stagepass/store"
	"stagepass/utils"
)

type API struct {
	Store    store.Inventory
	Sessions *session.Registry
}

func NewAPI(inv store.Inventory, sessions *session.Registry) *API {
	return &API{Store: inv, Sessions: sessions}
}

// POST /api/auth/register
func (a *API) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &models.User{Email: req.Email, Name: req.Name, Password: string(hashed)}
	if err := a.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, errs.ErrDuplicateUser) {
			utils.RespondWithError(w, http.StatusConflict, "User already exists")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	log.Printf("✓ User registered: %s", req.Email)
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "User registered"})
}

// POST /api/auth/login
func (a *API) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := a.Store.FindUser(r.Context(), req.Email)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token := a.Sessions.Issue(r.Context(), user.Email)
	log.Printf("✓ User logged in: %s", user.Email)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token": token,
		"user":  utils.M{"email": user.Email, "name": user.Name},
	})
}

// POST /api/auth/logout
func (a *API) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	a.Sessions.Revoke(r.Context(), r.Header.Get("Authorization"))
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out"})
}

// GET /api/auth/verify-session
func (a *API) VerifySession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.Header.Get("Authorization")
	identity, valid := a.Sessions.Resolve(r.Context(), token)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":   token,
		"session": identity,
		"valid":   valid,
	})
}
