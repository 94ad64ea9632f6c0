package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/agrilab/agrilab-go/internal/stream"
	"github.com/agrilab/agrilab-go/internal/util"
)

// ErrNoReports means the session exists but has nothing to stream, or
// does not exist at all. The server refuses to open a stream either
// way.
var ErrNoReports = errors.New("client: no reports available for session")

// Result summarizes one bulk download.
type Result struct {
	Requested int // parts the server declared up front
	Received  int // parts that decoded cleanly
	Saved     int // reports written to disk
	Dropped   int // malformed parts discarded by the decoder
	Truncated bool
}

// DownloadSessionReports pulls the session's report stream, splits it
// back into individual PDFs and saves each to outDir, named after the
// farmer. Reports that made it over the wire before a truncation are
// kept.
func (c *Client) DownloadSessionReports(ctx context.Context, sessionID int64, outDir string) (*Result, error) {
	url := fmt.Sprintf("%s/api/sessions/%d/reports/stream", c.baseURL, sessionID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("report stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoReports
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("report stream returned status %d", resp.StatusCode)
	}

	boundary, err := stream.BoundaryFromContentType(resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, err
	}
	total, _ := strconv.Atoi(resp.Header.Get(stream.HeaderTotalCount))

	if err := c.tracker.Start("Downloading reports", total); err != nil {
		return nil, err
	}

	// The body arrives part by part but is demultiplexed as a whole:
	// a truncated read still yields every part that was fully framed
	// before the cut.
	body, readErr := io.ReadAll(resp.Body)

	parts, diags, err := stream.Decode(body, boundary)
	if err != nil {
		c.tracker.Error(err.Error())
		return nil, err
	}
	for _, d := range diags {
		log.Printf("Dropped malformed part at offset %d: %s", d.Offset, d.Reason)
	}

	sched := NewScheduler(saveToDir(outDir), 0)
	for i, part := range parts {
		c.tracker.Update(i+1, part.DisplayName)
		sched.Schedule(part)
	}
	sched.Close()

	result := &Result{
		Requested: total,
		Received:  len(parts),
		Saved:     sched.Saved(),
		Dropped:   len(diags),
		Truncated: readErr != nil,
	}

	if readErr != nil {
		log.Printf("Report stream for session %d was cut short after %d of %d reports: %v",
			sessionID, result.Received, total, readErr)
		c.tracker.Error(fmt.Sprintf("stream ended early after %d of %d reports", result.Received, total))
		return result, nil
	}

	c.tracker.Complete()
	return result, nil
}

// saveToDir names each report after its farmer, falling back to the
// record ID when two farmers share a name.
func saveToDir(dir string) SaveFunc {
	return func(part stream.Part) error {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
		name := util.SanitizeFilename(part.DisplayName)
		path := filepath.Join(dir, name+".pdf")
		if _, err := os.Stat(path); err == nil {
			path = filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", name, part.ID))
		}
		return os.WriteFile(path, part.Data, 0644)
	}
}
