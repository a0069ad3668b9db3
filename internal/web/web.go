// Package web serves the split form as a plain HTML page. Each browser gets
// a form session identified by a signed cookie; every POST applies input
// events and redirects back to the page.
package web

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/tipsplit/internal/auth"
	"github.com/mmynk/tipsplit/internal/calculator"
	"github.com/mmynk/tipsplit/internal/form"
	"github.com/mmynk/tipsplit/internal/models"
	"github.com/mmynk/tipsplit/internal/service"
	"github.com/mmynk/tipsplit/internal/session"
	"github.com/mmynk/tipsplit/internal/storage"
)

// CookieName holds the session token.
const CookieName = "tipsplit_session"

// recentSplits is how much history the page shows.
const recentSplits = 5

type pageData struct {
	form.View
	Splits    []*models.SavedSplit
	SaveError string
}

// Handler renders and updates the form page.
type Handler struct {
	store  storage.Store
	forms  *service.FormManager
	tokens *auth.TokenManager
	tpl    *template.Template
	mux    *http.ServeMux
}

// NewHandler builds the page handler.
func NewHandler(store storage.Store, forms *service.FormManager, tokens *auth.TokenManager) *Handler {
	tpl := template.Must(template.New("page").Funcs(template.FuncMap{
		"currency": calculator.FormatCurrency,
	}).Parse(pageHTML))

	h := &Handler{
		store:  store,
		forms:  forms,
		tokens: tokens,
		tpl:    tpl,
		mux:    http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /{$}", h.page)
	h.mux.HandleFunc("POST /update", h.update)
	h.mux.HandleFunc("POST /preset", h.preset)
	h.mux.HandleFunc("POST /reset", h.reset)
	h.mux.HandleFunc("POST /save", h.save)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// sessionID returns the caller's live session, starting one (and setting
// the cookie) when the cookie is missing, invalid or expired.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (string, *form.Calculator, error) {
	if c, err := r.Cookie(CookieName); err == nil {
		if claims, err := h.tokens.Validate(c.Value); err == nil {
			calc, err := h.forms.Load(r.Context(), claims.SessionID)
			if err == nil {
				return claims.SessionID, calc, nil
			}
			if !errors.Is(err, session.ErrNotFound) {
				return "", nil, err
			}
		}
	}

	sess, calc, err := h.forms.Start(r.Context(), "")
	if err != nil {
		return "", nil, err
	}
	token, err := h.tokens.Generate(sess.ID)
	if err != nil {
		return "", nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess.ID, calc, nil
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	_, calc, err := h.sessionID(w, r)
	if err != nil {
		slog.Error("Failed to load form session", "error", err)
		http.Error(w, "failed to load form", http.StatusInternalServerError)
		return
	}
	splits, err := h.store.ListSplits(r.Context(), recentSplits)
	if err != nil {
		slog.Error("Failed to list splits", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	data := pageData{View: calc.View(), Splits: splits}
	if r.URL.Query().Get("save") == "invalid" {
		data.SaveError = "Fix the highlighted fields before saving"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.tpl.Execute(w, data); err != nil {
		slog.Error("Failed to render page", "error", err)
	}
}

// apply runs events in order and redirects to the page.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, events func(calc *form.Calculator) []form.Event) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, calc, err := h.sessionID(w, r)
	if err != nil {
		slog.Error("Failed to load form session", "error", err)
		http.Error(w, "failed to load form", http.StatusInternalServerError)
		return
	}

	for _, e := range events(calc) {
		if _, err := h.forms.Apply(r.Context(), id, e); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, form.ErrUnknownPreset) || errors.Is(err, form.ErrUnknownEvent) {
				status = http.StatusBadRequest
			}
			http.Error(w, err.Error(), status)
			return
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// update applies only the fields whose text changed, so resubmitting an
// untouched custom tip does not clear a selected preset.
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(calc *form.Calculator) []form.Event {
		cur := calc.View()
		var events []form.Event
		if bill, ok := formValue(r, "bill"); ok && bill != cur.Bill {
			events = append(events, form.Event{Kind: form.EventSetBill, Value: bill})
		}
		if tip, ok := formValue(r, "tip"); ok && tip != cur.Tip {
			events = append(events, form.Event{Kind: form.EventSetCustomTip, Value: tip})
		}
		if people, ok := formValue(r, "people"); ok && people != cur.People {
			events = append(events, form.Event{Kind: form.EventSetPeople, Value: people})
		}
		return events
	})
}

func (h *Handler) preset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(*form.Calculator) []form.Event {
		return []form.Event{{Kind: form.EventSelectPreset, Value: r.PostFormValue("value")}}
	})
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, func(*form.Calculator) []form.Event {
		return []form.Event{{Kind: form.EventReset}}
	})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id, calc, err := h.sessionID(w, r)
	if err != nil {
		slog.Error("Failed to load form session", "error", err)
		http.Error(w, "failed to load form", http.StatusInternalServerError)
		return
	}

	split, err := service.NewSavedSplit(calc, strings.TrimSpace(r.PostFormValue("label")))
	if errors.Is(err, service.ErrInvalidSplit) {
		http.Redirect(w, r, "/?save=invalid", http.StatusSeeOther)
		return
	}
	if err == nil {
		err = h.store.CreateSplit(r.Context(), split)
	}
	if err != nil {
		slog.Error("Failed to save split", "session_id", id, "error", err)
		http.Error(w, "failed to save split", http.StatusInternalServerError)
		return
	}

	slog.Info("Split saved", "split_id", split.ID, "session_id", id)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func formValue(r *http.Request, key string) (string, bool) {
	vals, ok := r.PostForm[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}
