package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/arexur/video-combiner/internal/media"
	"github.com/arexur/video-combiner/internal/storage"
)

// HTTPDoer describes the HTTP client used by the drive backend.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultBaseURL = "https://www.googleapis.com"

// Client talks to the cloud drive REST surface for folder listing, download,
// and upload.
type Client struct {
	client        HTTPDoer
	baseURL       string
	uploadBaseURL string
	apiToken      string
	pageSize      int
	maxFileSize   int64
}

// Option configures the drive client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.client = client
		}
	}
}

// WithBaseURL overrides the API base URL (and the upload base, unless set
// separately).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
			if c.uploadBaseURL == defaultBaseURL {
				c.uploadBaseURL = trimmed
			}
		}
	}
}

// WithUploadBaseURL overrides the upload endpoint base URL.
func WithUploadBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.uploadBaseURL = trimmed
		}
	}
}

// WithPageSize caps folder listings.
func WithPageSize(size int) Option {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithMaxFileSize skips source files above the given byte count. Zero
// disables the filter.
func WithMaxFileSize(bytes int64) Option {
	return func(c *Client) {
		c.maxFileSize = bytes
	}
}

// New constructs a drive backend using the given bearer token.
func New(apiToken string, opts ...Option) *Client {
	client := &Client{
		client:        http.DefaultClient,
		baseURL:       defaultBaseURL,
		uploadBaseURL: defaultBaseURL,
		apiToken:      strings.TrimSpace(apiToken),
		pageSize:      20,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type fileResource struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Size               string `json:"size"`
	MIMEType           string `json:"mimeType"`
	WebViewLink        string `json:"webViewLink"`
	VideoMediaMetadata struct {
		DurationMillis string `json:"durationMillis"`
	} `json:"videoMediaMetadata"`
}

// ListFolder returns the video files in a folder, skipping files above the
// size cap.
func (c *Client) ListFolder(ctx context.Context, folderID string) ([]media.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType contains 'video/' and trashed=false", folderID)
	params := url.Values{}
	params.Set("q", query)
	params.Set("pageSize", strconv.Itoa(c.pageSize))
	params.Set("fields", "files(id,name,size,mimeType,videoMediaMetadata(durationMillis))")

	endpoint := c.baseURL + "/drive/v3/files?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list folder: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("drive list returned %d", resp.StatusCode)
	}

	var decoded struct {
		Files []fileResource `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode list response: %w", err)
	}

	files := make([]media.File, 0, len(decoded.Files))
	for _, resource := range decoded.Files {
		size, _ := strconv.ParseInt(resource.Size, 10, 64)
		if c.maxFileSize > 0 && size > c.maxFileSize {
			continue
		}
		file := media.File{
			ID:       resource.ID,
			Name:     resource.Name,
			Size:     size,
			MIMEType: resource.MIMEType,
		}
		if millis, err := strconv.ParseInt(resource.VideoMediaMetadata.DurationMillis, 10, 64); err == nil {
			file.Duration = time.Duration(millis) * time.Millisecond
		}
		files = append(files, file)
	}
	return files, nil
}

// Fetch downloads a file's content into destDir.
func (c *Client) Fetch(ctx context.Context, file media.File, destDir string) (string, error) {
	endpoint := fmt.Sprintf("%s/drive/v3/files/%s?alt=media", c.baseURL, url.PathEscape(file.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", file.Name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("drive download returned %d for %s", resp.StatusCode, file.Name)
	}

	localPath := filepath.Join(destDir, filepath.Base(file.Name))
	dest, err := os.OpenFile(localPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(dest, resp.Body); err != nil {
		dest.Close()
		return "", fmt.Errorf("write %s: %w", localPath, err)
	}
	if err := dest.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", localPath, err)
	}
	return localPath, nil
}

// Store uploads a local file into a folder via a multipart request and
// returns the file's view link.
func (c *Client) Store(ctx context.Context, localPath, folderID, name string) (string, error) {
	content, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open upload source: %w", err)
	}
	defer content.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return "", fmt.Errorf("create metadata part: %w", err)
	}
	metadata := map[string]any{"name": name, "parents": []string{folderID}}
	if err := json.NewEncoder(metaPart).Encode(metadata); err != nil {
		return "", fmt.Errorf("encode upload metadata: %w", err)
	}

	fileHeader := textproto.MIMEHeader{}
	fileHeader.Set("Content-Type", "video/mp4")
	filePart, err := writer.CreatePart(fileHeader)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(filePart, content); err != nil {
		return "", fmt.Errorf("copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finish multipart body: %w", err)
	}

	endpoint := c.uploadBaseURL + "/upload/drive/v3/files?uploadType=multipart&fields=id,webViewLink"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+writer.Boundary())
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("drive upload returned %d for %s", resp.StatusCode, name)
	}

	var uploaded fileResource
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if uploaded.WebViewLink == "" {
		return "", fmt.Errorf("upload response for %s carried no view link", name)
	}
	return uploaded.WebViewLink, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}

var _ storage.Backend = (*Client)(nil)
