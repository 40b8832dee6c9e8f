package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kalambet/hireagent/internal/config"
	"github.com/kalambet/hireagent/internal/session"
	"github.com/kalambet/hireagent/internal/storage"
)

// --- say ---

var sayCmd = &cobra.Command{
	Use:   "say <message>",
	Short: "Send one message to a running hireagent server",
	Long: `Send one message to a running hireagent server and print the agent's reply.

Without --session a new conversation is started. Pass the printed session id
back with --session to continue it.

Examples:
  hireagent say "We need five Java developers in Austin, urgently"
  hireagent say --session 6f1c... "Sounds good, what are the rates?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sessionID, _ := cmd.Flags().GetString("session")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		reply, err := sendMessage(cmd.Context(), client, sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printReply(os.Stdout, reply)
	},
}

func init() {
	sayCmd.Flags().String("session", "", "continue an existing session")
}

// sendMessage posts text to sessionID, starting a new session first when
// sessionID is empty.
func sendMessage(ctx context.Context, client *apiClient, sessionID, text string) (session.Reply, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(text) == "" {
		return session.Reply{}, fmt.Errorf("message is empty")
	}

	if sessionID == "" {
		resp, err := client.post(ctx, "/sessions", nil)
		if err != nil {
			return session.Reply{}, err
		}
		var view session.View
		if err := decodeJSON(resp, &view); err != nil {
			return session.Reply{}, fmt.Errorf("starting session: %w", err)
		}
		sessionID = view.ID
	}

	resp, err := client.post(ctx, "/sessions/"+url.PathEscape(sessionID)+"/messages", map[string]string{"text": text})
	if err != nil {
		return session.Reply{}, err
	}
	var reply session.Reply
	if err := decodeJSON(resp, &reply); err != nil {
		return session.Reply{}, err
	}
	return reply, nil
}

func printReply(w io.Writer, reply session.Reply) error {
	if _, err := fmt.Fprintln(w, reply.Text); err != nil {
		return err
	}
	printStatus("Session", "%s", reply.SessionID)
	if reply.Degraded {
		printWarning("the agent could not complete this turn, try again")
	}
	if reply.Exported != "" {
		printSuccess("Conversation saved to %s", reply.Exported)
	}
	return nil
}

// --- leads ---

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect captured hiring leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent structured leads, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := openLocalStore()
		if err != nil {
			return err
		}
		defer store.Close()

		rows, err := store.ListStructuredLogs(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if asJSON {
			return writeIndentedJSON(os.Stdout, rows)
		}
		if len(rows) == 0 {
			fmt.Println("No leads captured yet.")
			return nil
		}
		return writeLeadsTable(os.Stdout, rows)
	},
}

var leadsColumnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Show the structured lead table schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openLocalStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cols, err := store.Columns(cmd.Context())
		if err != nil {
			return err
		}
		writeColumns(os.Stdout, cols)
		return nil
	},
}

func init() {
	leadsListCmd.Flags().Int("limit", storage.DefaultListLimit, "maximum number of leads to list")
	leadsListCmd.Flags().Bool("json", false, "print leads as JSON")
	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsColumnsCmd)
}

// openLocalStore opens the configured database directly. Reading does not
// need a model, so the LLM settings are not validated.
func openLocalStore() (*storage.Store, error) {
	cfg, err := config.LoadUnvalidated()
	if err != nil {
		return nil, err
	}
	return storage.Open(cfg.Storage.DataDir)
}

func writeColumns(w io.Writer, cols []storage.Column) {
	for _, c := range cols {
		flags := ""
		if c.NotNull {
			flags = " not null"
		}
		fmt.Fprintf(w, "  %s %s%s\n", colorize(colorBold, c.Name), c.Type, flags)
	}
}

func writeIndentedJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadUnvalidated()
		if err != nil {
			return err
		}

		fmt.Printf("  %s\n", colorize(colorCyan, config.Path()))
		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		if err := cfg.Validate(); err != nil {
			printWarning("%v", err)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: "Set a configuration value in the config file.\n\nValid keys: " +
		strings.Join(config.ValidKeys(), ", ") +
		"\n\nThe API key is read from HIREAGENT_LLM_API_KEY or OPENAI_API_KEY and is never stored.",
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
