package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"gopherblog/internal/app"
	"gopherblog/internal/model"
	"gopherblog/internal/transport/http/middleware"
	"gopherblog/internal/transport/http/view"
)

type PostHandler struct {
	posts *app.PostService
	view  *view.Renderer
}

func NewPostHandler(posts *app.PostService, renderer *view.Renderer) *PostHandler {
	return &PostHandler{posts: posts, view: renderer}
}

// Home renders the site-wide feed, newest posts first.
func (h *PostHandler) Home(c *gin.Context) {
	page, err := h.posts.ListAll(pageParam(c))
	if err != nil {
		logrus.WithError(err).Error("list posts failed")
		h.view.ServerError(c)
		return
	}
	h.view.HTML(c, http.StatusOK, "home.html", gin.H{"Page": page})
}

// Show serves GET /post/:id. The router keeps one tree per HTTP method
// and rejects a static "new" sibling of the :id wildcard, so the
// new-post form is dispatched here when the segment is literally "new".
func (h *PostHandler) Show(c *gin.Context) {
	if c.Param("id") == "new" {
		h.showNew(c)
		return
	}

	post, ok := h.lookup(c)
	if !ok {
		return
	}
	h.view.HTML(c, http.StatusOK, "post.html", gin.H{
		"Title": post.Title,
		"Post":  post,
	})
}

// Create serves POST /post/:id, which only exists for the "new" segment.
func (h *PostHandler) Create(c *gin.Context) {
	if c.Param("id") != "new" {
		h.view.NotFound(c)
		return
	}
	user := h.requireUser(c)
	if user == nil {
		return
	}

	var form PostForm
	_ = c.ShouldBind(&form)
	fieldErrs := form.Validate()

	if len(fieldErrs) == 0 {
		_, err := h.posts.Create(app.CreatePostInput{
			AuthorID: user.ID,
			Title:    form.Title,
			Content:  form.Content,
		})
		if err != nil {
			logrus.WithError(err).Error("create post failed")
			h.view.ServerError(c)
			return
		}
		h.view.Flash(c, "success", "Your post has been created!")
		c.Redirect(http.StatusFound, "/")
		return
	}

	h.view.HTML(c, http.StatusOK, "create_post.html", gin.H{
		"Title":   "New Post",
		"Heading": "New Post",
		"Action":  "/post/new",
		"Form":    &form,
		"Errors":  fieldErrs,
	})
}

func (h *PostHandler) showNew(c *gin.Context) {
	if h.requireUser(c) == nil {
		return
	}
	h.view.HTML(c, http.StatusOK, "create_post.html", gin.H{
		"Title":   "New Post",
		"Heading": "New Post",
		"Action":  "/post/new",
		"Form":    &PostForm{},
	})
}

func (h *PostHandler) ShowUpdate(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	post, ok := h.lookup(c)
	if !ok {
		return
	}
	if post.UserID != user.ID {
		h.view.Forbidden(c)
		return
	}

	h.view.HTML(c, http.StatusOK, "create_post.html", gin.H{
		"Title":   "Update Post",
		"Heading": "Update Post",
		"Action":  fmt.Sprintf("/post/%d/update", post.ID),
		"Form":    &PostForm{Title: post.Title, Content: post.Content},
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		h.view.NotFound(c)
		return
	}

	var form PostForm
	_ = c.ShouldBind(&form)
	fieldErrs := form.Validate()

	if len(fieldErrs) == 0 {
		post, err := h.posts.Update(id, user.ID, form.Title, form.Content)
		switch {
		case err == nil:
			h.view.Flash(c, "success", "Your post has been updated!")
			c.Redirect(http.StatusFound, fmt.Sprintf("/post/%d", post.ID))
			return
		case errors.Is(err, app.ErrPostNotFound):
			h.view.NotFound(c)
			return
		case errors.Is(err, app.ErrNotAuthor):
			h.view.Forbidden(c)
			return
		case errors.Is(err, app.ErrInvalidInput):
			fieldErrs["title"] = "Please check the form and try again."
		default:
			logrus.WithError(err).Error("update post failed")
			h.view.ServerError(c)
			return
		}
	}

	h.view.HTML(c, http.StatusOK, "create_post.html", gin.H{
		"Title":   "Update Post",
		"Heading": "Update Post",
		"Action":  fmt.Sprintf("/post/%d/update", id),
		"Form":    &form,
		"Errors":  fieldErrs,
	})
}

func (h *PostHandler) Delete(c *gin.Context) {
	user := h.requireUser(c)
	if user == nil {
		return
	}
	id, ok := idParam(c)
	if !ok {
		h.view.NotFound(c)
		return
	}

	err := h.posts.Delete(id, user.ID)
	switch {
	case err == nil:
		h.view.Flash(c, "success", "Your post has been deleted!")
		c.Redirect(http.StatusFound, "/")
	case errors.Is(err, app.ErrPostNotFound):
		h.view.NotFound(c)
	case errors.Is(err, app.ErrNotAuthor):
		h.view.Forbidden(c)
	default:
		logrus.WithError(err).Error("delete post failed")
		h.view.ServerError(c)
	}
}

// UserPosts renders an author's posts, paginated, newest first.
func (h *PostHandler) UserPosts(c *gin.Context) {
	author, page, err := h.posts.ListByAuthor(c.Param("username"), pageParam(c))
	switch {
	case err == nil:
		h.view.HTML(c, http.StatusOK, "user_posts.html", gin.H{
			"Title":  author.Username,
			"Author": author,
			"Page":   page,
		})
	case errors.Is(err, app.ErrUserNotFound):
		h.view.NotFound(c)
	default:
		logrus.WithError(err).Error("list user posts failed")
		h.view.ServerError(c)
	}
}

func (h *PostHandler) lookup(c *gin.Context) (*model.Post, bool) {
	id, ok := idParam(c)
	if !ok {
		h.view.NotFound(c)
		return nil, false
	}
	post, err := h.posts.Get(id)
	switch {
	case err == nil:
		return post, true
	case errors.Is(err, app.ErrPostNotFound):
		h.view.NotFound(c)
	default:
		logrus.WithError(err).Error("load post failed")
		h.view.ServerError(c)
	}
	return nil, false
}

func (h *PostHandler) requireUser(c *gin.Context) *model.User {
	user := middleware.CurrentUser(c)
	if user == nil {
		middleware.RedirectToLogin(c)
		c.Abort()
		return nil
	}
	return user
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
