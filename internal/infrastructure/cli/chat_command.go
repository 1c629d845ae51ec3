package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/doeshing/bootlens/internal/app"
	"github.com/doeshing/bootlens/internal/domain"
)

func newChatCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [question]",
		Short: "Ask free-form questions about this boot's logs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
			s.Suffix = " capturing boot logs..."
			s.Start()
			snapshot, err := container.Capturer.Capture(ctx)
			s.Stop()
			if err != nil {
				return err
			}

			session := domain.Session{ID: uuid.NewString(), Snapshot: snapshot}

			if len(args) > 0 {
				return askOnce(ctx, container, &session, strings.Join(args, " "))
			}

			fmt.Println("Chatting about this boot's logs (empty line to exit).")
			reader := bufio.NewReader(os.Stdin)
			for {
				fmt.Print("> ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return nil
				}
				question := strings.TrimSpace(line)
				if question == "" {
					return nil
				}
				if err := askOnce(ctx, container, &session, question); err != nil {
					highColor.Printf("chat failed: %v\n", err)
				}
			}
		},
	}
}

func askOnce(ctx context.Context, container *app.Container, session *domain.Session, question string) error {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
	s.Start()
	reply, err := container.Chat.Ask(ctx, session, nil, question)
	s.Stop()
	if err != nil {
		return err
	}
	fmt.Println(reply)
	return nil
}
