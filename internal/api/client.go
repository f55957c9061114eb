package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub008/internal/domain"
)

const (
	// DefaultSaveTimeout covers small JSON payloads.
	DefaultSaveTimeout = 10 * time.Second
	// DefaultUploadTimeout is long on purpose: media payloads are large and
	// field connectivity is poor.
	DefaultUploadTimeout = 2 * time.Minute
)

// Client implements domain.InspectionAPI against the REST backend. Two HTTP
// clients: a short-timeout one for JSON calls and a long-timeout one for
// media uploads.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	upload  *http.Client
}

type ClientOption func(*Client)

func WithTimeouts(save, upload time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = save
		c.upload.Timeout = upload
	}
}

func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: DefaultSaveTimeout},
		upload:  &http.Client{Timeout: DefaultUploadTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FetchChecklist(ctx context.Context, assignmentID uuid.UUID) ([]domain.ChecklistQuestion, []domain.Answer, error) {
	var resp ChecklistResponse
	path := fmt.Sprintf("/api/assignments/%s/checklist", assignmentID)
	if err := c.do(ctx, c.http, http.MethodGet, path, nil, &resp); err != nil {
		return nil, nil, err
	}

	questions := make([]domain.ChecklistQuestion, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		questions = append(questions, q.ToDomain())
	}
	answers := make([]domain.Answer, 0, len(resp.Answers))
	for _, a := range resp.Answers {
		answers = append(answers, a.ToDomain())
	}
	return questions, answers, nil
}

func (c *Client) FetchPeerAnswers(ctx context.Context, assignmentID uuid.UUID) (*domain.PeerSnapshot, error) {
	var resp PeerAnswersResponse
	path := fmt.Sprintf("/api/assignments/%s/peer-answers", assignmentID)
	if err := c.do(ctx, c.http, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Found {
		return nil, nil
	}
	snap := &domain.PeerSnapshot{
		PeerName:  resp.PeerName,
		PeerRole:  resp.PeerRole,
		FetchedAt: resp.FetchedAt,
	}
	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = time.Now()
	}
	for _, a := range resp.Answers {
		snap.Answers = append(snap.Answers, a.ToPeer())
	}
	return snap, nil
}

func (c *Client) SaveAnswer(ctx context.Context, assignmentID uuid.UUID, up domain.AnswerUpsert) error {
	req := SaveAnswerRequest{
		QuestionID:   up.QuestionID,
		Value:        up.Value,
		Comment:      up.Comment,
		UrgencyLevel: up.UrgencyLevel,
		VoiceNoteURL: up.VoiceNoteURL,
	}
	path := fmt.Sprintf("/api/assignments/%s/answers", assignmentID)
	return c.do(ctx, c.http, http.MethodPost, path, req, nil)
}

func (c *Client) UploadMedia(ctx context.Context, assignmentID, questionID uuid.UUID, kind domain.MediaKind, asset *domain.CapturedAsset) (*domain.MediaUploadResult, error) {
	req := MediaUploadRequest{
		QuestionID:    questionID,
		Kind:          string(kind),
		Base64Payload: base64.StdEncoding.EncodeToString(asset.Data),
		FileName:      asset.FileName,
		MimeType:      asset.MimeType,
	}
	var resp MediaUploadResponse
	path := fmt.Sprintf("/api/assignments/%s/media", assignmentID)
	if err := c.do(ctx, c.upload, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &domain.MediaUploadResult{
		RemoteURL:         resp.RemoteURL,
		AIAnalysis:        resp.AIAnalysis,
		ExtractedReading:  resp.ExtractedReading,
		ReadingValidation: resp.ReadingValidation.ToDomain(),
	}, nil
}

func (c *Client) SubmitInspection(ctx context.Context, assignmentID uuid.UUID) error {
	path := fmt.Sprintf("/api/assignments/%s/submit", assignmentID)
	return c.do(ctx, c.http, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return classifyTransport(method+" "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return classifyStatus(method+" "+path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.TransientNetworkError{Op: method + " " + path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// classifyTransport maps connection-level failures (timeouts, refused
// connections, torn sockets) to the retryable taxonomy.
func classifyTransport(op string, err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &domain.TransientNetworkError{Op: op, Err: err}
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return &domain.TransientNetworkError{Op: op, Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &domain.TransientNetworkError{Op: op, Err: err}
	}
	return err
}

// classifyStatus maps HTTP failures: 5xx/408/429 are retryable, everything
// else is a permanent rejection carrying the server's message.
func classifyStatus(op string, resp *http.Response) error {
	msg := resp.Status
	var envelope ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
		msg = envelope.Error
	}

	switch {
	case resp.StatusCode >= 500,
		resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests:
		return &domain.TransientNetworkError{Op: op, Err: fmt.Errorf("server responded %d: %s", resp.StatusCode, msg)}
	default:
		return &domain.PermanentUploadError{Status: resp.StatusCode, Message: msg}
	}
}
