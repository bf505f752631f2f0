package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"notable-server/internal/domain"
)

// Client is the Go API client for a Notable server. It carries the
// session token after Login; protected calls fail server-side without
// one.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError is a non-2xx server reply. Code carries the machine-readable
// condition for distinguished errors.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// IsLimitReached reports whether err is the free-tier ceiling condition.
// Callers show the upgrade prompt for it instead of a generic failure
// notice.
func IsLimitReached(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Code == "limit_reached"
}

// IsNotFound reports whether err is a not-found reply; callers redirect
// away silently rather than alarming the user.
func IsNotFound(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.Status == http.StatusNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) IsAuthenticated() bool {
	return c.token != ""
}

func (c *Client) Register(username, email, password string) error {
	req := domain.RegisterRequest{Username: username, Email: email, Password: password}
	return c.post("/api/v1/auth/register", req, nil)
}

func (c *Client) Login(email, password string) (*domain.LoginResponse, error) {
	req := domain.LoginRequest{Email: email, Password: password}

	var resp domain.LoginResponse
	if err := c.post("/api/v1/auth/login", req, &resp); err != nil {
		return nil, err
	}

	c.token = resp.AccessToken
	return &resp, nil
}

func (c *Client) Logout() error {
	err := c.post("/api/v1/auth/logout", nil, nil)
	c.token = ""
	return err
}

func (c *Client) Me() (*domain.User, error) {
	var user domain.User
	if err := c.get("/api/v1/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(req *domain.UpdateProfileRequest) (*domain.User, error) {
	var user domain.User
	if err := c.put("/api/v1/users/me", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UploadAvatar(filename string, data []byte) (*domain.User, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/api/v1/users/me/avatar", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var user domain.User
	if err := c.doRequest(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) ListNotes() ([]*domain.NoteResponse, error) {
	var notes []*domain.NoteResponse
	if err := c.get("/api/v1/notes", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) CountNotes() (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.get("/api/v1/notes/count", &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (c *Client) SearchNotes(query string) ([]*domain.NoteResponse, error) {
	var notes []*domain.NoteResponse
	path := "/api/v1/notes/search?q=" + url.QueryEscape(query)
	if err := c.get(path, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(id string) (*domain.NoteResponse, error) {
	var note domain.NoteResponse
	if err := c.get("/api/v1/notes/"+id, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(id string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+"/api/v1/notes/"+id, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, nil)
}

// SaveNote submits a draft through the server's save workflow as one
// multipart request.
func (c *Client) SaveNote(draft *domain.NoteDraft) (*domain.NoteResponse, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	writer.WriteField("note_id", draft.NoteID)
	writer.WriteField("title", draft.Title)
	writer.WriteField("content", draft.Content)
	writer.WriteField("cover_action", string(draft.Cover.Action))

	if len(draft.KeptAttachments) > 0 {
		kept, err := json.Marshal(draft.KeptAttachments)
		if err != nil {
			return nil, err
		}
		writer.WriteField("kept_attachments", string(kept))
	}

	if draft.Cover.Action == domain.CoverReplace {
		part, err := createFilePart(writer, "cover", "cover", draft.Cover.ContentType)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(draft.Cover.Data); err != nil {
			return nil, err
		}
	}

	for _, file := range draft.NewFiles {
		part, err := createFilePart(writer, "attachments", file.Name, file.ContentType)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", c.baseURL+"/api/v1/notes/save", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var note domain.NoteResponse
	if err := c.doRequest(req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// SignedURL resolves a private storage path into a temporary URL. Paths
// that are already URLs come back unchanged; an empty result means "no
// image".
func (c *Client) SignedURL(path string) (string, error) {
	var resp struct {
		URL string `json:"url"`
	}
	if err := c.post("/api/v1/files/sign", map[string]string{"path": path}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// DeleteFiles asks the server for a best-effort removal of stored
// objects. The server never reports per-file failure.
func (c *Client) DeleteFiles(paths []string) error {
	return c.post("/api/v1/files/delete", map[string][]string{"paths": paths}, nil)
}

// RemoveAttachment is the storage half of the two-phase attachment
// removal: the caller has already dropped the attachment from its visible
// list, and this issues the best-effort deletion.
func (c *Client) RemoveAttachment(path string) error {
	return c.DeleteFiles([]string{path})
}

func createFilePart(writer *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	return writer.CreatePart(header)
}

// HTTP helpers

func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.doRequest(req, result)
}

func (c *Client) post(path string, body interface{}, result interface{}) error {
	return c.send("POST", path, body, result)
}

func (c *Client) put(path string, body interface{}, result interface{}) error {
	return c.send("PUT", path, body, result)
}

func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.doRequest(req, result)
}

func (c *Client) doRequest(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &env); err != nil {
			if resp.StatusCode >= 400 {
				return &APIError{Status: resp.StatusCode}
			}
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	if resp.StatusCode >= 400 {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    env.Code,
			Message: env.Error,
		}
	}

	if result != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}
