// =============================================================================
// eBay Order Export - File Utilities
// =============================================================================
//
// Shared file helpers around the ledger workbook:
//   - Backup copies taken before the full-rewrite save, so the previous file
//     state survives a bad run.
//   - Per-run JSON summary logs for after-the-fact inspection.
//
// =============================================================================

package utils

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// BACKUP
// =============================================================================

// BackupFile copies the file aside in the same directory before it gets
// rewritten.
//
// PARAMETERS:
//   - path: The file to back up.
//
// RETURNS:
//   - The path of the backup copy, named
//     "<name>.bak-<timestamp>-<short id><ext>".
//   - An error if the copy fails.
func BackupFile(path string) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)

	backupName := fmt.Sprintf("%s.bak-%s-%s%s",
		base,
		time.Now().Format("20060102_150405"),
		ShortID(),
		ext,
	)
	backupPath := filepath.Join(filepath.Dir(path), backupName)

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}

	return backupPath, nil
}

// copyFile copies src to dst, creating or truncating dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Sync()
}

// =============================================================================
// RUN SUMMARY LOG
// =============================================================================

// RunSummary is the persisted record of one export run.
type RunSummary struct {
	// RunID identifies the run in logs and file names.
	RunID string `json:"run_id"`

	// StartedAt and FinishedAt frame the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// DryRun indicates the ledger was not written.
	DryRun bool `json:"dry_run"`

	// Success indicates the run completed without a fatal error.
	Success bool `json:"success"`

	// Per-stage counts.
	OrdersListed    int `json:"orders_listed"`
	DetailErrors    int `json:"detail_errors"`
	LineItems       int `json:"line_items"`
	Canceled        int `json:"canceled"`
	RowsTransformed int `json:"rows_transformed"`
	Duplicates      int `json:"duplicates"`
	RowsWritten     int `json:"rows_written"`

	// Error holds the fatal error text, if any.
	Error string `json:"error,omitempty"`
}

// WriteRunLog writes the summary as a JSON file into dir.
//
// RETURNS:
//   - The path of the written log file, named "run_<timestamp>_<run id>.json".
//   - An error if the directory cannot be created or the file not written.
func WriteRunLog(dir string, summary RunSummary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run log directory: %w", err)
	}

	name := fmt.Sprintf("run_%s_%s.json",
		summary.StartedAt.Format("20060102_150405"), summary.RunID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode run summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write run log: %w", err)
	}

	return path, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// ShortID returns an 8-character random identifier.
func ShortID() string {
	return uuid.NewString()[:8]
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
