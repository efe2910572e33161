// Package cli provides output helpers for the wali command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/pkg/utils"
)

// OutputFormat selects how command results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat maps a --output flag value to a format.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes an answer and the documents it was grounded on.
func WriteAnswer(w io.Writer, resp *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\n%s\n\n", resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Fprintln(w, "Sources:")
		for _, s := range resp.Sources {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	fmt.Fprintf(w, "Conversation: %s\n", resp.ConversationID)
	return nil
}

// WriteIngest writes the result of ingesting one document.
func WriteIngest(w io.Writer, name string, res *models.IngestResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "Ingested %s: %s (%d chunks)\n", name, res.DocumentID, res.ChunkCount)
	return nil
}

// WriteDocuments writes a document listing.
func WriteDocuments(w io.Writer, docs []*models.Document, format OutputFormat) error {
	if format == OutputJSON {
		if docs == nil {
			docs = []*models.Document{}
		}
		return writeJSON(w, docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents.")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s  %-6s %10s  %s  %s\n",
			d.ID, d.FileType, FormatBytes(d.FileSize),
			d.CreatedAt.Format("2006-01-02 15:04"), d.Name)
	}
	fmt.Fprintf(w, "\nTotal: %d documents\n", len(docs))
	return nil
}

// WriteConversations writes a conversation listing, most recent first.
func WriteConversations(w io.Writer, convs []*models.Conversation, format OutputFormat) error {
	if format == OutputJSON {
		if convs == nil {
			convs = []*models.Conversation{}
		}
		return writeJSON(w, convs)
	}
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations.")
		return nil
	}
	for _, c := range convs {
		fmt.Fprintf(w, "%s  %s  %s\n", c.ID, c.UpdatedAt.Format("2006-01-02 15:04"), Preview(c.Title, 60))
	}
	return nil
}

// WriteConversation writes one conversation and its messages in order.
func WriteConversation(w io.Writer, detail *models.ConversationDetail, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, detail)
	}
	fmt.Fprintf(w, "%s\n", detail.Conversation.Title)
	fmt.Fprintf(w, "ID: %s\n\n", detail.Conversation.ID)
	for _, m := range detail.Messages {
		fmt.Fprintf(w, "[%s] %s\n", m.Role, m.Content)
		if len(m.Sources) > 0 {
			fmt.Fprintf(w, "  sources: %s\n", strings.Join(m.Sources, ", "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteStatus writes knowledge base statistics.
func WriteStatus(w io.Writer, status *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	configured := "no"
	if status.Configured {
		configured = "yes"
	}
	fmt.Fprintf(w, "Documents:        %d\n", status.Documents)
	fmt.Fprintf(w, "Chunks:           %d\n", status.Chunks)
	fmt.Fprintf(w, "Indexed vectors:  %d\n", status.IndexedVectors)
	fmt.Fprintf(w, "Configured:       %s\n", configured)
	fmt.Fprintf(w, "Embedding model:  %s\n", status.EmbeddingModel)
	fmt.Fprintf(w, "LLM model:        %s\n", status.LLMModel)
	fmt.Fprintf(w, "Disk usage:       %s\n", FormatBytes(status.DiskUsageBytes))
	return nil
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Preview returns a single-line preview of s limited to maxRunes.
func Preview(s string, maxRunes int) string {
	return utils.TruncateRunes(strings.Join(strings.Fields(s), " "), maxRunes)
}
