package main

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/Aditya2073/agrisample/internal/assistant"
	"github.com/Aditya2073/agrisample/internal/identity"
	"github.com/gofrs/uuid"
	"github.com/spf13/cobra"
)

// chatHistoryLimit bounds the locally kept conversation.
const chatHistoryLimit = 50

func chatHistoryKey(userID uuid.UUID) string {
	return "chat_history_" + userID.String()
}

func newChatCmd(a *app) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Ask the farm assistant",
		Args: func(cmd *cobra.Command, args []string) error {
			if reset {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.requireUser()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			key := chatHistoryKey(u.ID)

			if reset {
				if err := a.storage.Delete(ctx, key); err != nil {
					return err
				}
				a.printf("Chat history cleared.\n")
				return nil
			}

			history, err := a.loadHistory(cmd, key)
			if err != nil {
				return err
			}
			message := strings.Join(args, " ")
			reply, err := a.client.Chat(ctx, history, message)
			if err != nil {
				return err
			}

			history = append(history,
				assistant.Message{Role: assistant.RoleUser, Content: message},
				reply.Message,
			)
			if len(history) > chatHistoryLimit {
				history = history[len(history)-chatHistoryLimit:]
			}
			raw, err := json.Marshal(history)
			if err != nil {
				return err
			}
			if err := a.storage.Set(ctx, key, raw); err != nil {
				return err
			}

			a.printf("%s\n", reply.Message.Content)
			if act := reply.Action; act != nil {
				if act.Applied {
					a.printf("\n[applied %s]\n", act.Name)
				} else {
					a.printf("\n[could not apply %s: %s]\n", act.Name, act.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "clear", false, "forget the conversation")
	return cmd
}

func (a *app) loadHistory(cmd *cobra.Command, key string) ([]assistant.Message, error) {
	raw, err := a.storage.Get(cmd.Context(), key)
	if errors.Is(err, identity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var history []assistant.Message
	if err := json.Unmarshal(raw, &history); err != nil {
		// испорченная история не должна ломать чат
		return nil, nil
	}
	return history, nil
}
