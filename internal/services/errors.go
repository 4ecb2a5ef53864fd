package services

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	// ErrConflict 唯一约束冲突，客户端可以重试
	ErrConflict = errors.New("conflict")

	ErrAlreadySubscribed = errors.New("already subscribed")
	ErrNotSubscribed     = errors.New("you are not subscribed to this subreddit")
	ErrOwnSubreddit      = errors.New("you can't unsubscribe from your own subreddit")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrSubredditExists   = errors.New("subreddit already exists")
	ErrInvalidLogin      = errors.New("invalid credentials")
	ErrEmailTaken        = errors.New("email already registered")
)
