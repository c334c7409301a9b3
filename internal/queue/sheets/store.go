package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/arexur/video-combiner/internal/queue"
)

// HTTPDoer describes the HTTP client used by the worksheet store.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const defaultBaseURL = "https://sheets.googleapis.com"

// DefaultWorksheet is the worksheet tab holding the job queue.
const DefaultWorksheet = "JobQueue"

// Store reads and writes job rows in the "JobQueue" worksheet through the
// spreadsheet values API. The worksheet has no conditional-write primitive,
// so Claim approximates compare-and-set with a read, a tokened write, and an
// immediate re-read; the window between read and write is a known limitation
// accepted for this backend.
type Store struct {
	client        HTTPDoer
	baseURL       string
	spreadsheetID string
	worksheet     string
	apiToken      string
	runnerToken   string
}

// Option configures the worksheet store.
type Option func(*Store)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(s *Store) {
		if client != nil {
			s.client = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			s.baseURL = trimmed
		}
	}
}

// WithWorksheet overrides the worksheet tab name.
func WithWorksheet(name string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			s.worksheet = trimmed
		}
	}
}

// WithRunnerToken fixes the claim token instead of generating one.
func WithRunnerToken(token string) Option {
	return func(s *Store) {
		if trimmed := strings.TrimSpace(token); trimmed != "" {
			s.runnerToken = trimmed
		}
	}
}

// New constructs a worksheet store for the given spreadsheet.
func New(spreadsheetID, apiToken string, opts ...Option) *Store {
	store := &Store{
		client:        http.DefaultClient,
		baseURL:       defaultBaseURL,
		spreadsheetID: strings.TrimSpace(spreadsheetID),
		worksheet:     DefaultWorksheet,
		apiToken:      strings.TrimSpace(apiToken),
		runnerToken:   uuid.NewString(),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// RunnerToken returns the token this store stamps into claimed rows.
func (s *Store) RunnerToken() string {
	return s.runnerToken
}

// ListPending returns pending rows in worksheet order.
func (s *Store) ListPending(ctx context.Context) ([]*queue.Row, error) {
	return s.List(ctx, queue.StatusPending)
}

// List returns rows filtered by status set, or all rows when no status is
// provided.
func (s *Store) List(ctx context.Context, statuses ...queue.Status) ([]*queue.Row, error) {
	entries, err := s.fetchEntries(ctx)
	if err != nil {
		return nil, err
	}
	want := make(map[queue.Status]struct{}, len(statuses))
	for _, status := range statuses {
		want[status] = struct{}{}
	}
	var rows []*queue.Row
	for _, entry := range entries {
		if len(want) > 0 {
			if _, ok := want[entry.row.Status]; !ok {
				continue
			}
		}
		rows = append(rows, entry.row)
	}
	return rows, nil
}

// Claim transitions a pending row to running. The write stamps the runner
// token into the Message column and the re-read verifies this runner won; a
// concurrent claimer that wrote after us leaves a foreign token behind and we
// report the row as already claimed.
func (s *Store) Claim(ctx context.Context, jobID string) (*queue.Row, error) {
	entry, err := s.findEntry(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if entry.row.Status != queue.StatusPending {
		return nil, queue.ErrAlreadyClaimed
	}

	claimed := *entry.row
	claimed.Status = queue.StatusRunning
	claimed.Message = s.claimMarker()
	if err := s.writeRow(ctx, entry.sheetRow, &claimed); err != nil {
		return nil, fmt.Errorf("write claim: %w", err)
	}

	verified, err := s.readEntry(ctx, entry.sheetRow)
	if err != nil {
		return nil, fmt.Errorf("verify claim: %w", err)
	}
	if verified.row.Status != queue.StatusRunning || verified.row.Message != s.claimMarker() {
		return nil, queue.ErrAlreadyClaimed
	}
	return verified.row, nil
}

// Finalize applies a terminal outcome to a running row.
func (s *Store) Finalize(ctx context.Context, jobID string, outcome queue.Outcome) error {
	if !outcome.Status.IsTerminal() {
		return fmt.Errorf("finalize with status %q: %w", outcome.Status, queue.ErrInvalidTransition)
	}
	entry, err := s.findEntry(ctx, jobID)
	if err != nil {
		return err
	}
	if entry.row.Status != queue.StatusRunning {
		return queue.ErrInvalidTransition
	}

	final := *entry.row
	final.Status = outcome.Status
	final.Message = outcome.Message
	final.OutputURL = outcome.OutputURL
	if err := s.writeRow(ctx, entry.sheetRow, &final); err != nil {
		return fmt.Errorf("write finalize: %w", err)
	}
	return nil
}

// SetMessage writes a progress note into the Message column only.
func (s *Store) SetMessage(ctx context.Context, jobID, text string) error {
	entry, err := s.findEntry(ctx, jobID)
	if err != nil {
		return err
	}
	cell := fmt.Sprintf("%s!%s%d", s.worksheet, messageColumn, entry.sheetRow)
	return s.putValues(ctx, cell, [][]string{{text}})
}

// Add appends a new pending row to the worksheet.
func (s *Store) Add(ctx context.Context, row *queue.Row) error {
	if err := row.Validate(); err != nil {
		return err
	}
	if row.Status == "" {
		row.Status = queue.StatusPending
	}
	endpoint := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW",
		s.baseURL,
		url.PathEscape(s.spreadsheetID),
		url.PathEscape(s.rowRange()),
	)
	body, err := json.Marshal(valueRange{Values: [][]string{encodeRow(row)}})
	if err != nil {
		return fmt.Errorf("marshal append body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build append request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sheets append returned %d", resp.StatusCode)
	}
	return nil
}

type entry struct {
	sheetRow int
	row      *queue.Row
}

func (s *Store) claimMarker() string {
	return "claimed by runner " + s.runnerToken
}

// rowRange covers the literal JobQueue schema: JobID, CreatedDate, Status,
// Message, OutputURL, SourceFolderID, OutputFolderID, MaxVideos, MaxDuration.
func (s *Store) rowRange() string {
	return fmt.Sprintf("%s!A2:%s", s.worksheet, lastColumn)
}

func (s *Store) fetchEntries(ctx context.Context) ([]entry, error) {
	values, err := s.getValues(ctx, s.rowRange())
	if err != nil {
		return nil, err
	}
	entries := make([]entry, 0, len(values))
	for i, cells := range values {
		sheetRow := i + 2 // +2 for the header row and 1-based indexing
		row := decodeRow(cells)
		if row == nil {
			continue
		}
		entries = append(entries, entry{sheetRow: sheetRow, row: row})
	}
	return entries, nil
}

func (s *Store) findEntry(ctx context.Context, jobID string) (entry, error) {
	entries, err := s.fetchEntries(ctx)
	if err != nil {
		return entry{}, err
	}
	for _, e := range entries {
		if e.row.JobID == jobID {
			return e, nil
		}
	}
	return entry{}, queue.ErrNotFound
}

func (s *Store) readEntry(ctx context.Context, sheetRow int) (entry, error) {
	rng := fmt.Sprintf("%s!A%d:%s%d", s.worksheet, sheetRow, lastColumn, sheetRow)
	values, err := s.getValues(ctx, rng)
	if err != nil {
		return entry{}, err
	}
	if len(values) == 0 {
		return entry{}, queue.ErrNotFound
	}
	row := decodeRow(values[0])
	if row == nil {
		return entry{}, queue.ErrNotFound
	}
	return entry{sheetRow: sheetRow, row: row}, nil
}

func (s *Store) writeRow(ctx context.Context, sheetRow int, row *queue.Row) error {
	rng := fmt.Sprintf("%s!A%d:%s%d", s.worksheet, sheetRow, lastColumn, sheetRow)
	return s.putValues(ctx, rng, [][]string{encodeRow(row)})
}

type valueRange struct {
	Values [][]string `json:"values"`
}

func (s *Store) getValues(ctx context.Context, rng string) ([][]string, error) {
	endpoint := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s?majorDimension=ROWS",
		s.baseURL,
		url.PathEscape(s.spreadsheetID),
		url.PathEscape(rng),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build values request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get values: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("sheets get returned %d", resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read values response: %w", err)
	}
	var decoded valueRange
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("decode values response: %w", err)
	}
	return decoded.Values, nil
}

func (s *Store) putValues(ctx context.Context, rng string, values [][]string) error {
	endpoint := fmt.Sprintf(
		"%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		s.baseURL,
		url.PathEscape(s.spreadsheetID),
		url.PathEscape(rng),
	)
	body, err := json.Marshal(valueRange{Values: values})
	if err != nil {
		return fmt.Errorf("marshal values body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("update values: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sheets update returned %d", resp.StatusCode)
	}
	return nil
}

func (s *Store) authorize(req *http.Request) {
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}
}

var _ queue.AdminStore = (*Store)(nil)
