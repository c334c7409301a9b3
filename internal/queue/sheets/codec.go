package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/arexur/video-combiner/internal/queue"
)

// Column positions in the JobQueue worksheet. The order is load-bearing:
// existing spreadsheets and their consumers depend on it.
const (
	colJobID = iota
	colCreatedDate
	colStatus
	colMessage
	colOutputURL
	colSourceFolderID
	colOutputFolderID
	colMaxVideos
	colMaxDuration
	columnCount
)

const (
	lastColumn    = "I"
	messageColumn = "D"
)

// createdDateLayout matches the timestamps job creators write into the sheet.
const createdDateLayout = "2006-01-02 15:04:05"

// Wire statuses keep the values the original queue consumers expect; "new" is
// accepted as a synonym for pending on read.
var wireToStatus = map[string]queue.Status{
	"pending":    queue.StatusPending,
	"new":        queue.StatusPending,
	"processing": queue.StatusRunning,
	"completed":  queue.StatusSucceeded,
	"failed":     queue.StatusFailed,
}

var statusToWire = map[queue.Status]string{
	queue.StatusPending:   "pending",
	queue.StatusRunning:   "processing",
	queue.StatusSucceeded: "completed",
	queue.StatusFailed:    "failed",
}

func decodeRow(cells []string) *queue.Row {
	get := func(col int) string {
		if col < len(cells) {
			return strings.TrimSpace(cells[col])
		}
		return ""
	}

	jobID := get(colJobID)
	if jobID == "" {
		return nil
	}

	row := &queue.Row{
		JobID:          jobID,
		Message:        get(colMessage),
		OutputURL:      get(colOutputURL),
		SourceFolderID: get(colSourceFolderID),
		OutputFolderID: get(colOutputFolderID),
	}

	status, ok := wireToStatus[strings.ToLower(get(colStatus))]
	if !ok {
		status = queue.StatusFailed
	}
	row.Status = status

	if created, err := parseCreatedDate(get(colCreatedDate)); err == nil {
		row.CreatedAt = created
	}
	if maxVideos, err := strconv.Atoi(get(colMaxVideos)); err == nil {
		row.MaxVideos = maxVideos
	}
	if seconds, err := strconv.ParseInt(get(colMaxDuration), 10, 64); err == nil {
		row.MaxDuration = time.Duration(seconds) * time.Second
	}
	return row
}

func encodeRow(row *queue.Row) []string {
	cells := make([]string, columnCount)
	cells[colJobID] = row.JobID
	cells[colCreatedDate] = row.CreatedAt.UTC().Format(createdDateLayout)
	cells[colStatus] = statusToWire[row.Status]
	cells[colMessage] = row.Message
	cells[colOutputURL] = row.OutputURL
	cells[colSourceFolderID] = row.SourceFolderID
	cells[colOutputFolderID] = row.OutputFolderID
	cells[colMaxVideos] = strconv.Itoa(row.MaxVideos)
	cells[colMaxDuration] = strconv.FormatInt(int64(row.MaxDuration/time.Second), 10)
	return cells
}

func parseCreatedDate(value string) (time.Time, error) {
	if t, err := time.Parse(createdDateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
