package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/form"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/service"
)

// PostHandler serves the post pages: the lists, the detail page, the
// create/edit form and comment submission.
type PostHandler struct {
	posts    *service.PostService
	comments *service.CommentService
	rn       *Renderer
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, comments *service.CommentService, rn *Renderer) *PostHandler {
	return &PostHandler{
		posts:    posts,
		comments: comments,
		rn:       rn,
	}
}

// HandleIndex renders every post, newest first.
//
// HTTP: GET /?page=N
func (h *PostHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.Index(r.Context(), r.URL.Query().Get("page"))
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}

	data := h.rn.data(r)
	data["Page"] = page
	h.rn.render(w, http.StatusOK, pageIndex, data)
}

// HandleGroup renders the posts of one group.
//
// HTTP: GET /group/{slug}/?page=N
func (h *PostHandler) HandleGroup(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.GroupPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}

	data := h.rn.data(r)
	data["Group"] = result.Group
	data["Page"] = result.Page
	h.rn.render(w, http.StatusOK, pageGroup, data)
}

// HandleProfile renders an author's posts and the follow button.
//
// HTTP: GET /profile/{username}/?page=N
func (h *PostHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	result, err := h.posts.Profile(r.Context(), chi.URLParam(r, "username"), currentUser(r), r.URL.Query().Get("page"))
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}

	data := h.rn.data(r)
	data["Author"] = result.Author
	data["Page"] = result.Page
	data["PostCount"] = result.PostCount
	data["Following"] = result.Following
	data["IsSelf"] = result.IsSelf
	h.rn.render(w, http.StatusOK, pageProfile, data)
}

// HandleFeed renders the posts of the authors the user follows.
//
// HTTP: GET /follow/?page=N  (login required)
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	page, err := h.posts.Feed(r.Context(), currentUser(r), r.URL.Query().Get("page"))
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}

	data := h.rn.data(r)
	data["Page"] = page
	h.rn.render(w, http.StatusOK, pageFollow, data)
}

// HandleDetail renders one post with its comments and the comment form.
//
// HTTP: GET /posts/{id}/
func (h *PostHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := h.posts.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}

	data := h.rn.data(r)
	data["Post"] = detail.Post
	data["Comments"] = detail.Comments
	data["CommentError"] = popFlash(w, r)
	h.rn.render(w, http.StatusOK, pageDetail, data)
}

// HandleCreate shows and processes the new post form. A valid submission
// redirects to the author's profile.
//
// HTTP: GET, POST /create/  (login required)
func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	if r.Method != http.MethodPost {
		h.renderPostForm(w, r, &form.PostForm{}, "", "")
		return
	}

	f, err := form.ParsePost(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !f.Valid() {
		h.renderPostForm(w, r, f, "", "")
		return
	}

	_, err = h.posts.Create(r.Context(), user, service.PostInput{
		Text:    f.Text,
		GroupID: f.GroupID(),
		Image:   f.Image,
	})
	if field, msg, ok := apperror.FieldOf(err); ok {
		f.Errors.Add(field, msg)
		h.renderPostForm(w, r, f, "", "")
		return
	}
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}

	redirect(w, r, "/profile/"+user.Username+"/")
}

// HandleEdit shows and processes the edit form of a post. Anyone but the
// author is sent back to the post without changes.
//
// HTTP: GET, POST /posts/{id}/edit/  (login required)
func (h *PostHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detailURL := "/posts/" + id + "/"
	user := currentUser(r)

	post, err := h.posts.ForEdit(r.Context(), id, user)
	if err != nil {
		h.rn.handleError(w, r, err, detailURL)
		return
	}

	if r.Method != http.MethodPost {
		f := &form.PostForm{Text: post.Text}
		if post.HasGroup() {
			f.Group = *post.GroupID
		}
		h.renderPostForm(w, r, f, post.ID, post.Image)
		return
	}

	f, err := form.ParsePost(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !f.Valid() {
		h.renderPostForm(w, r, f, post.ID, post.Image)
		return
	}

	_, err = h.posts.Edit(r.Context(), id, user, service.PostInput{
		Text:    f.Text,
		GroupID: f.GroupID(),
		Image:   f.Image,
	})
	if field, msg, ok := apperror.FieldOf(err); ok {
		f.Errors.Add(field, msg)
		h.renderPostForm(w, r, f, post.ID, post.Image)
		return
	}
	if err != nil {
		h.rn.handleError(w, r, err, detailURL)
		return
	}

	redirect(w, r, detailURL)
}

// HandleComment adds a comment and always returns to the post. A blank
// comment is dropped and reported through a flash message.
//
// HTTP: POST /posts/{id}/comment/  (login required; GET just redirects)
func (h *PostHandler) HandleComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detailURL := "/posts/" + id + "/"

	if r.Method != http.MethodPost {
		redirect(w, r, detailURL)
		return
	}

	f, err := form.ParseComment(r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if !f.Valid() {
		setFlash(w, detailURL, f.Errors.Get("text"))
		redirect(w, r, detailURL)
		return
	}

	_, err = h.comments.Add(r.Context(), id, currentUser(r), f.Text)
	switch {
	case errors.Is(err, apperror.ErrValidation):
		_, msg, _ := apperror.FieldOf(err)
		setFlash(w, detailURL, msg)
	case err != nil:
		h.rn.handleError(w, r, err, detailURL)
		return
	}

	redirect(w, r, detailURL)
}

// renderPostForm renders the shared create/edit template. postID is "" when
// creating.
func (h *PostHandler) renderPostForm(w http.ResponseWriter, r *http.Request, f *form.PostForm, postID, currentImage string) {
	groups, err := h.posts.Groups(r.Context())
	if err != nil {
		h.rn.handleError(w, r, err, "")
		return
	}
	if groups == nil {
		groups = []model.Group{}
	}

	data := h.rn.data(r)
	data["Form"] = f
	data["Groups"] = groups
	data["IsEdit"] = postID != ""
	data["PostID"] = postID
	data["CurrentImage"] = currentImage
	h.rn.render(w, http.StatusOK, pageCreate, data)
}
