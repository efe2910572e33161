package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/backend"
	"github.com/hyperjump/wali/internal/cli"
	"github.com/hyperjump/wali/internal/models"
	"github.com/hyperjump/wali/internal/server"
)

func newIngestCmd(opts *globalOptions) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Add files to the knowledge base",
		Long: `Extracts the text of each file, splits it into chunks, embeds them and stores the result.
Dedicated extractors cover PDF, DOCX, XLSX, PPTX, ODT, ODS, ODP and RTF. Other files are read as text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			a.dirty = true

			var failed int
			for _, path := range args {
				var res *models.IngestResult
				if replace {
					res, err = a.indexer.ReplaceFile(ctx, path)
				} else {
					res, err = a.indexer.IngestFile(ctx, path)
				}
				if err != nil {
					if errors.Is(err, models.ErrNotConfigured) {
						return err
					}
					cmd.PrintErrf("Ingest %s failed: %v\n", path, err)
					failed++
					continue
				}
				if err := cli.WriteIngest(cmd.OutOrStdout(), path, res, a.format); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&replace, "replace", "r", false, "replace documents previously ingested from the same path")
	return cmd
}

// buildQuestion joins positional args so multi-word questions work with or without quotes.
func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func newAskCmd(opts *globalOptions) *cobra.Command {
	var conversationID string
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the ingested documents",
		Example: `  wali ask what is the refund window
  wali ask --conversation 3f2a... "and for digital goods?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.engine.Ask(ctx, &models.AskRequest{
				Question:       buildQuestion(args),
				ConversationID: conversationID,
			})
			if err != nil {
				return err
			}
			return cli.WriteAnswer(cmd.OutOrStdout(), resp, a.format)
		},
	}
	cmd.Flags().StringVar(&conversationID, "conversation", "", "continue an existing conversation")
	return cmd
}

func newDocumentsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Manage ingested documents",
	}

	var offset, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			docs, err := a.store.ListDocuments(ctx, offset, limit)
			if err != nil {
				return fmt.Errorf("failed to list documents: %w", err)
			}
			return cli.WriteDocuments(cmd.OutOrStdout(), docs, a.format)
		},
	}
	list.Flags().IntVar(&offset, "offset", 0, "skip this many documents")
	list.Flags().IntVar(&limit, "limit", 0, "maximum documents to list (0 = all)")

	del := &cobra.Command{
		Use:   "delete <document-id>...",
		Short: "Delete documents and their vectors",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			a.dirty = true

			for _, id := range args {
				if err := a.indexer.DeleteDocument(ctx, id); err != nil {
					return err
				}
				cmd.Printf("Document deleted: %s\n", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, del)
	return cmd
}

func newConversationsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"conv"},
		Short:   "Browse past conversations",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List conversations, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			convs, err := a.store.ListConversations(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list conversations: %w", err)
			}
			return cli.WriteConversations(cmd.OutOrStdout(), convs, a.format)
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum conversations to list")

	show := &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print a conversation with all its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			conv, err := a.store.GetConversation(ctx, args[0])
			if err != nil {
				return err
			}
			msgs, err := a.store.ListMessages(ctx, conv.ID)
			if err != nil {
				return err
			}
			detail := &models.ConversationDetail{Conversation: conv, Messages: msgs}
			return cli.WriteConversation(cmd.OutOrStdout(), detail, a.format)
		},
	}

	del := &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Delete a conversation and its messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.DeleteConversation(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("Conversation deleted: %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, show, del)
	return cmd
}

// readKey returns the key from args, or the first line of in when the argument is "-".
func readKey(args []string, in io.Reader) (string, error) {
	key := args[0]
	if key == "-" {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read key: %w", err)
		}
		key = line
	}
	return strings.TrimSpace(key), nil
}

func newSetKeyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <api-key | ->",
		Short: "Store the backend API key",
		Long:  `Saves the API key in the knowledge base so later commands and the server start configured. Pass "-" to read it from stdin.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := readKey(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.backend.Configure(key); err != nil {
				return err
			}
			if err := a.store.PutSetting(ctx, backend.SettingAPIKey, key); err != nil {
				return fmt.Errorf("failed to save api key: %w", err)
			}
			cmd.Printf("API key saved: %s\n", backend.MaskKey(key))
			return nil
		},
	}
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show knowledge base statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := server.CollectStatus(ctx, a.store, a.index, a.backend, a.cfg)
			if err != nil {
				return err
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, a.format)
		},
	}
}

func newReindexCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the vector index from stored chunks",
		Long:  `Re-embeds every stored chunk. Use it after changing the embedding model or losing the index file.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			a.dirty = true

			n, err := a.indexer.Reindex(ctx)
			if err != nil {
				a.logger.Error("reindex failed", zap.Int("vectors", n), zap.Error(err))
				return err
			}
			cmd.Printf("Reindexed %d vectors\n", n)
			return nil
		},
	}
}
