package app

import (
	"strings"
	"time"

	"gopherblog/internal/model"
	"gopherblog/internal/repository"
)

type PostService struct {
	postRepo *repository.PostRepository
	userRepo *repository.UserRepository
	pageSize int
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
}

// Page is one slice of a post listing, newest first.
type Page struct {
	Posts   []model.Post
	Number  int
	PerPage int
	Total   int64
}

func (p *Page) TotalPages() int {
	if p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p *Page) HasPrev() bool { return p.Number > 1 }
func (p *Page) HasNext() bool { return p.Number < p.TotalPages() }
func (p *Page) Prev() int     { return p.Number - 1 }
func (p *Page) Next() int     { return p.Number + 1 }

func NewPostService(postRepo *repository.PostRepository, userRepo *repository.UserRepository, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		pageSize: pageSize,
	}
}

func (s *PostService) Create(input CreatePostInput) (*model.Post, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if input.AuthorID == 0 || title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	post := &model.Post{
		Title:      title,
		Content:    content,
		DatePosted: time.Now(),
		UserID:     input.AuthorID,
	}
	if err := s.postRepo.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(id uint) (*model.Post, error) {
	post, err := s.postRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Update edits a post. Only the author may do so; anyone else gets
// ErrNotAuthor and the post is left untouched.
func (s *PostService) Update(postID, authorID uint, title, content string) (*model.Post, error) {
	post, err := s.Get(postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != authorID {
		return nil, ErrNotAuthor
	}

	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	post.Title = title
	post.Content = content
	if err := s.postRepo.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Delete(postID, authorID uint) error {
	post, err := s.Get(postID)
	if err != nil {
		return err
	}
	if post.UserID != authorID {
		return ErrNotAuthor
	}
	return s.postRepo.Delete(postID)
}

// ListByAuthor resolves the username and returns one page of their
// posts ordered by date_posted descending.
func (s *PostService) ListByAuthor(username string, page int) (*model.User, *Page, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}

	if page < 1 {
		page = 1
	}
	posts, total, err := s.postRepo.ListByAuthor(user.ID, page, s.pageSize)
	if err != nil {
		return nil, nil, err
	}
	for i := range posts {
		posts[i].Author = *user
	}

	return user, &Page{Posts: posts, Number: page, PerPage: s.pageSize, Total: total}, nil
}

// ListAll returns one page of the site-wide feed, newest first.
func (s *PostService) ListAll(page int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	posts, total, err := s.postRepo.ListAll(page, s.pageSize)
	if err != nil {
		return nil, err
	}
	return &Page{Posts: posts, Number: page, PerPage: s.pageSize, Total: total}, nil
}
