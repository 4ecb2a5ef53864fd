// Package client talks to the vote endpoints and keeps an optimistic tally
// in sync with the server's answer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"breadit/internal/models"
	"breadit/internal/optimistic"
)

var (
	ErrLoginRequired = errors.New("login required")
	// ErrRetry 服务端返回 409，稍后重试即可
	ErrRetry = errors.New("vote conflicted, try again")
)

// StatusError is any other non-2xx answer.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vote failed with status %d: %s", e.Code, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type voteAnswer struct {
	VotesAmount int              `json:"votesAmount"`
	CurrentVote *models.VoteType `json:"currentVote"`
}

// VotePost applies vote to tally optimistically, sends it and then either
// reconciles with the server's score or rolls the tally back.
func (c *Client) VotePost(ctx context.Context, tally *optimistic.Tally, postID string, vote models.VoteType) (*optimistic.Action, error) {
	body := map[string]string{"postId": postID, "voteType": string(vote)}
	return c.vote(ctx, tally, "/api/subreddit/post/vote", body, vote)
}

func (c *Client) VoteComment(ctx context.Context, tally *optimistic.Tally, commentID string, vote models.VoteType) (*optimistic.Action, error) {
	body := map[string]string{"commentId": commentID, "voteType": string(vote)}
	return c.vote(ctx, tally, "/api/subreddit/post/comment/vote", body, vote)
}

func (c *Client) vote(ctx context.Context, tally *optimistic.Tally, path string, body interface{}, vote models.VoteType) (*optimistic.Action, error) {
	action := tally.Apply(vote)

	answer, err := c.patch(ctx, path, body)
	return action, settle(tally, action, answer, err)
}

// settle resolves action with the server's reply. A tally that refuses
// the resolution is reported alongside the request error.
func settle(tally *optimistic.Tally, action *optimistic.Action, answer *voteAnswer, reqErr error) error {
	var err error
	switch {
	case reqErr != nil:
		err = tally.Rollback(action)
	case answer != nil:
		err = tally.Reconcile(action, answer.VotesAmount, answer.CurrentVote)
	default:
		err = tally.Confirm(action)
	}
	if err != nil {
		log.Printf("optimistic tally: action %s: %v", action.Status, err)
		err = fmt.Errorf("resolve vote: %w", err)
	}
	if reqErr != nil {
		return errors.Join(reqErr, err)
	}
	return err
}

// patch returns a nil answer when the server replied 2xx without a score.
func (c *Client) patch(ctx context.Context, path string, body interface{}) (*voteAnswer, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrLoginRequired
	case resp.StatusCode == http.StatusConflict:
		return nil, ErrRetry
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(data))}
	}

	var answer voteAnswer
	if err := json.Unmarshal(data, &answer); err != nil {
		return nil, nil
	}
	return &answer, nil
}
