package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/attribution"
	"github.com/voyantlabs/skillscout/pkg/cache"
	"github.com/voyantlabs/skillscout/pkg/config"
	"github.com/voyantlabs/skillscout/pkg/llm"
	"github.com/voyantlabs/skillscout/pkg/logger"
	"github.com/voyantlabs/skillscout/pkg/skills"
)

// hookPayload is the JSON a host agent pipes to `skillscout attribute
// --stdin` from a post-tool-use hook.
type hookPayload struct {
	SessionID      string                 `json:"session_id"`
	TranscriptPath string                 `json:"transcript_path"`
	ToolName       string                 `json:"tool_name"`
	ToolInput      map[string]interface{} `json:"tool_input"`
	CWD            string                 `json:"cwd"`
}

var attributeCmd = &cobra.Command{
	Use:   "attribute",
	Short: "Attribute a tool execution to a skill",
	Long: `Resolves a tool execution to the skill that likely drove it and
prints the skill id, or "unknown" when no strategy resolves it. Designed to
run from an agent hook: it reads the hook payload from stdin with --stdin,
never fails the hook, and records the execution for later stats.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		payload, sessionCtx, err := attributeInput(cmd)
		if err != nil {
			// A malformed payload must not fail the hook.
			logger.G(ctx).WithError(err).Debug("failed to parse attribution input")
			fmt.Println("unknown")
			return nil
		}

		actx := attribution.Context{
			ToolName:       payload.ToolName,
			ToolInput:      payload.ToolInput,
			TranscriptPath: payload.TranscriptPath,
			SessionContext: sessionCtx,
		}

		detector, feedback := newDetector(ctx, cmd)
		if feedback != nil {
			defer feedback.Close()
		}

		skillID, found := detector.Attribute(ctx, actx)

		if feedback != nil {
			logExecution(cmd, feedback, payload, skillID)
		}

		if !found {
			fmt.Println("unknown")
			return nil
		}
		fmt.Println(skillID)
		return nil
	},
}

func attributeInput(cmd *cobra.Command) (hookPayload, string, error) {
	sessionCtx, _ := cmd.Flags().GetString("session-context")

	if useStdin, _ := cmd.Flags().GetBool("stdin"); useStdin {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return hookPayload{}, "", err
		}
		var payload hookPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return hookPayload{}, "", err
		}
		return payload, sessionCtx, nil
	}

	toolName, _ := cmd.Flags().GetString("tool")
	inputJSON, _ := cmd.Flags().GetString("input")
	transcript, _ := cmd.Flags().GetString("transcript")
	sessionID, _ := cmd.Flags().GetString("session")

	payload := hookPayload{
		SessionID:      sessionID,
		TranscriptPath: transcript,
		ToolName:       toolName,
	}
	if inputJSON != "" {
		if err := json.Unmarshal([]byte(inputJSON), &payload.ToolInput); err != nil {
			return hookPayload{}, "", err
		}
	}
	return payload, sessionCtx, nil
}

// newDetector assembles the cascade from whatever is available. Every
// collaborator is optional: a missing index or an unopenable feedback store
// just removes a strategy.
func newDetector(ctx context.Context, cmd *cobra.Command) (*attribution.Detector, *cache.Store) {
	log := logger.G(ctx)

	var feedback *cache.Store
	if err := config.EnsureStateDir(); err != nil {
		log.WithError(err).Debug("failed to create state directory")
	} else if store, err := cache.Open(ctx, config.FeedbackDBPath()); err != nil {
		log.WithError(err).Debug("failed to open feedback store")
	} else {
		feedback = store
	}

	store, err := newIndexStore(true)
	if err != nil {
		log.WithError(err).Debug("failed to open index store")
		store = nil
	}

	useLLM, _ := cmd.Flags().GetBool("use-llm")
	opts := []attribution.DetectorOption{attribution.WithLLM(useLLM)}

	var client llm.Client
	if useLLM {
		client = llm.NewCLIClient(llmTimeout)
		if ids := knownSkillIDs(cmd); len(ids) > 0 {
			opts = append(opts, attribution.WithKnownSkills(ids))
		}
	}

	var cacheIface attribution.AssociationCache
	if feedback != nil {
		cacheIface = feedback
	}
	var searcher attribution.Searcher
	if store != nil {
		searcher = store
	}

	return attribution.NewDetector(cacheIface, searcher, client, opts...), feedback
}

func knownSkillIDs(cmd *cobra.Command) []string {
	discovery, err := skills.NewDiscovery()
	if err != nil {
		return nil
	}
	found, err := discovery.DiscoverSkills(cmd.Context())
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(found))
	for _, skill := range found {
		ids = append(ids, skill.ID)
	}
	return ids
}

func logExecution(cmd *cobra.Command, feedback *cache.Store, payload hookPayload, skillID string) {
	if noLog, _ := cmd.Flags().GetBool("no-log"); noLog {
		return
	}
	_, err := feedback.LogExecution(cmd.Context(), cache.Execution{
		SessionID: payload.SessionID,
		ToolName:  payload.ToolName,
		ToolInput: payload.ToolInput,
		Success:   true,
		SkillUsed: skillID,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		logger.G(cmd.Context()).WithError(err).Debug("failed to log execution")
	}
}

func init() {
	attributeCmd.Flags().Bool("stdin", false, "Read the hook payload JSON from stdin")
	attributeCmd.Flags().String("tool", "", "Tool name (when not using --stdin)")
	attributeCmd.Flags().String("input", "", "Tool input as JSON (when not using --stdin)")
	attributeCmd.Flags().String("transcript", "", "Path to the session transcript JSONL")
	attributeCmd.Flags().String("session", "", "Session id for execution logging")
	attributeCmd.Flags().String("session-context", "", "Recent session context for LLM inference")
	attributeCmd.Flags().Bool("use-llm", false, "Allow LLM inference as a last resort (slow)")
	attributeCmd.Flags().Bool("no-log", false, "Skip recording the execution in the feedback store")
}
