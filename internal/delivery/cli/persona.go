package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

const (
	sampleMessage   = "Тестовое сообщение"
	sampleChatTitle = "Test Channel"
	sampleChatBio   = "A channel for testing personality settings"
	sampleAccountID = "sample"
)

var errSampleFailed = errors.New("sample response could not be generated")

func newPersonaCmd(run Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "persona",
		Short: "Show or try the reply personality",
	}

	cmd.AddCommand(
		newPersonaShowCmd(run),
		newPersonaTestCmd(run),
	)

	return cmd
}

func newPersonaShowCmd(run Runner) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active personality and formality",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(_ context.Context, d Deps) error {
				s := d.Persona.Get()
				fmt.Fprintf(cmd.OutOrStdout(), "personality: %s\nformality: %s\n", s.Personality, s.Formality)
				return nil
			})
		},
	}
}

func newPersonaTestCmd(run Runner) *cobra.Command {
	var personality, formality, message string

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Generate a sample reply with a personality",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				current := d.Persona.Get()
				if personality == "" {
					personality = current.Personality
				}
				if formality == "" {
					formality = current.Formality
				}
				if err := d.Persona.Set(personality, formality); err != nil {
					return err
				}
				return sampleReply(ctx, d, cmd.OutOrStdout(), message)
			})
		},
	}

	cmd.Flags().StringVar(&personality, "personality", "", "default, friendly, witty, expert or provocative")
	cmd.Flags().StringVar(&formality, "formality", "", "casual, neutral or formal")
	cmd.Flags().StringVar(&message, "message", sampleMessage, "message to answer")

	return cmd
}

// sampleReply generates one reply to message with the active settings
func sampleReply(ctx context.Context, d Deps, out io.Writer, message string) error {
	if message == "" {
		message = sampleMessage
	}

	accountID := sampleAccountID
	if accounts := d.Accounts.All(); len(accounts) > 0 {
		accountID = accounts[0].ID
	}

	fmt.Fprintf(out, "\n%s\n", infoStyle.Render("Generating sample response..."))
	reply, ok := d.Generator.Generate(ctx, accountID, sampleChatTitle, sampleChatBio, message)
	if !ok {
		fmt.Fprintln(out, errStyle.Render("Failed to generate sample response. Check your API key."))
		return errSampleFailed
	}

	s := d.Persona.Get()
	fmt.Fprintf(out, "\n%s\n", okStyle.Render(fmt.Sprintf("Sample response with %s personality, %s formality:", s.Personality, s.Formality)))
	fmt.Fprintln(out, infoStyle.Render("'"+reply+"'"))
	return nil
}
