package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/yatube/internal/service"
)

// FollowHandler subscribes and unsubscribes the signed-in user.
type FollowHandler struct {
	follows *service.FollowService
	rn      *Renderer
}

// NewFollowHandler creates a FollowHandler.
func NewFollowHandler(follows *service.FollowService, rn *Renderer) *FollowHandler {
	return &FollowHandler{follows: follows, rn: rn}
}

// HandleFollow follows the author and returns to their profile.
//
// HTTP: GET, POST /profile/{username}/follow/  (login required)
func (h *FollowHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if _, err := h.follows.Follow(r.Context(), currentUser(r), username); err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}
	redirect(w, r, "/profile/"+username+"/")
}

// HandleUnfollow stops following the author and returns to their profile.
//
// HTTP: GET, POST /profile/{username}/unfollow/  (login required)
func (h *FollowHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if _, err := h.follows.Unfollow(r.Context(), currentUser(r), username); err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}
	redirect(w, r, "/profile/"+username+"/")
}
