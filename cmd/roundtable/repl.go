package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/tailored-agentic-units/roundtable/conversation"
	"github.com/tailored-agentic-units/roundtable/orchestrator"
)

var (
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// Persona prefixes cycle through this palette in roster order.
	speakerColors = []lipgloss.Color{"5", "2", "4", "1", "6"}
)

// runREPL drives one console session against the orchestrator. Typing
// "exit" or "quit" (any casing) ends the session normally.
func runREPL(ctx context.Context, orch *orchestrator.Orchestrator) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	defer line.Close()

	styles := speakerStyles(orch)
	sess := conversation.NewSession()

	fmt.Println(infoStyle.Render("roundtable — " + strings.Join(orch.Registry().IDs(), ", ")))
	fmt.Println(infoStyle.Render("Type a message and press Enter; exit or quit to leave."))
	fmt.Println()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		input, err := line.Prompt(promptStyle.Render("you> "))
		if err != nil {
			// Ctrl+C or Ctrl+D ends the session like "exit" does.
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}
		line.AppendHistory(input)

		turns, err := orch.ProcessUserMessage(ctx, sess, input)

		for _, turn := range turns {
			style, ok := styles[turn.Speaker]
			if !ok {
				style = infoStyle
			}
			fmt.Printf("%s %s\n", style.Render(turn.Speaker+">"), turn.Content)
		}

		if err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", warningStyle.Render("[warning]"), err)
		}
		fmt.Println()
	}
}

func speakerStyles(orch *orchestrator.Orchestrator) map[string]lipgloss.Style {
	styles := make(map[string]lipgloss.Style)
	for i, id := range orch.Registry().IDs() {
		color := speakerColors[i%len(speakerColors)]
		styles[id] = lipgloss.NewStyle().Foreground(color).Bold(true)
	}
	return styles
}
