package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
	"github.com/inkwell-labs/mnemosyne/pkg/usecase"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/errutil"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/safe"
)

type scopeRequest struct {
	UserID         string `json:"user_id"`
	CompanionID    string `json:"companion_id,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
}

func (s scopeRequest) toScope() model.Scope {
	return model.Scope{
		UserID:         types.UserID(s.UserID),
		CompanionID:    types.CompanionID(s.CompanionID),
		DocumentID:     types.DocumentID(s.DocumentID),
		ConversationID: types.ConversationID(s.ConversationID),
	}
}

type memoryResponse struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Content        string    `json:"content"`
	Importance     int       `json:"importance"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
}

func toMemoryResponse(m *model.Memory) memoryResponse {
	return memoryResponse{
		ID:             string(m.ID),
		Kind:           string(m.Kind),
		Content:        m.Content,
		Importance:     m.Importance,
		Tags:           m.Tags,
		CreatedAt:      m.CreatedAt,
		LastAccessedAt: m.LastAccessedAt,
	}
}

// statusFor maps use case sentinel errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidScope), errors.Is(err, usecase.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrLLMNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(r.Context(), w, data)
}

func storeMemoryHandler(uc *usecase.MemoryUseCase) http.HandlerFunc {
	type request struct {
		scopeRequest
		Kind       string   `json:"kind"`
		Content    string   `json:"content"`
		Importance int      `json:"importance"`
		Tags       []string `json:"tags"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid memory request body"), http.StatusBadRequest)
			return
		}

		created, err := uc.Store(r.Context(), recall.Input{
			Scope:      req.toScope(),
			Kind:       types.MemoryKind(req.Kind),
			Content:    req.Content,
			Importance: req.Importance,
			Tags:       req.Tags,
		})
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		writeJSON(w, r, http.StatusCreated, toMemoryResponse(created))
	}
}

func searchMemoriesHandler(uc *usecase.MemoryUseCase) http.HandlerFunc {
	type response struct {
		Memories []memoryResponse `json:"memories"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := 0
		if raw := q.Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid limit"), http.StatusBadRequest)
				return
			}
			limit = n
		}

		scope := scopeRequest{
			UserID:         q.Get("user_id"),
			CompanionID:    q.Get("companion_id"),
			DocumentID:     q.Get("document_id"),
			ConversationID: q.Get("conversation_id"),
		}.toScope()

		found, err := uc.Search(r.Context(), q.Get("q"), scope, limit)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		resp := response{Memories: make([]memoryResponse, len(found))}
		for i, m := range found {
			resp.Memories[i] = toMemoryResponse(m)
		}
		writeJSON(w, r, http.StatusOK, resp)
	}
}

type windowResponse struct {
	ConversationID string            `json:"conversation_id"`
	Recent         []messageResponse `json:"recent"`
	OlderSummary   string            `json:"older_summary,omitempty"`
	TotalCount     int               `json:"total_count"`
	LastUpdateAt   time.Time         `json:"last_update_at"`
}

type messageResponse struct {
	ID         string    `json:"id"`
	Role       string    `json:"role"`
	Content    string    `json:"content"`
	Importance int       `json:"importance,omitempty"`
	Emotion    string    `json:"emotion,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func toWindowResponse(win *model.Window) windowResponse {
	resp := windowResponse{
		ConversationID: string(win.ConversationID),
		Recent:         make([]messageResponse, len(win.Recent)),
		OlderSummary:   win.OlderSummary,
		TotalCount:     win.TotalCount,
		LastUpdateAt:   win.LastUpdateAt,
	}
	for i, msg := range win.Recent {
		resp.Recent[i] = messageResponse{
			ID:         msg.ID,
			Role:       string(msg.Role),
			Content:    msg.Content,
			Importance: msg.Importance,
			Emotion:    msg.Emotion,
			CreatedAt:  msg.CreatedAt,
		}
	}
	return resp
}

func chatHandler(uc *usecase.ChatUseCase) http.HandlerFunc {
	type request struct {
		scopeRequest
		Message    string `json:"message"`
		BasePrompt string `json:"base_prompt,omitempty"`
	}
	type response struct {
		Reply  string         `json:"reply"`
		Window windowResponse `json:"window"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid chat request body"), http.StatusBadRequest)
			return
		}

		scope := req.toScope()
		scope.ConversationID = types.ConversationID(chi.URLParam(r, "conversationID"))

		out, err := uc.Chat(r.Context(), usecase.ChatInput{
			Scope:      scope,
			Message:    req.Message,
			BasePrompt: req.BasePrompt,
		})
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		writeJSON(w, r, http.StatusOK, response{
			Reply:  out.Reply,
			Window: toWindowResponse(out.Window),
		})
	}
}

func windowHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := types.ConversationID(chi.URLParam(r, "conversationID"))

		win := uc.Chat.Window(r.Context(), id)
		if win == nil {
			errutil.HandleHTTP(r.Context(), w, goerr.New("conversation not found",
				goerr.V("conversation_id", id)), http.StatusNotFound)
			return
		}

		writeJSON(w, r, http.StatusOK, toWindowResponse(win))
	}
}

func composeContextHandler(uc *usecase.ContextUseCase) http.HandlerFunc {
	type request struct {
		scopeRequest
		BasePrompt string `json:"base_prompt"`
	}
	type response struct {
		Prompt string `json:"prompt"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid context request body"), http.StatusBadRequest)
			return
		}

		prompt, err := uc.Compose(r.Context(), req.BasePrompt, req.toScope())
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, statusFor(err))
			return
		}

		writeJSON(w, r, http.StatusOK, response{Prompt: prompt})
	}
}

func statsHandler(uc *usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, uc.Report())
	}
}
