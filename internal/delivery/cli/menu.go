package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

type option struct {
	name        string
	description string
}

var personalityOptions = []option{
	{"default", "Balanced personality with moderate emotions"},
	{"friendly", "Supportive and encouraging personality"},
	{"witty", "Humorous personality with light sarcasm"},
	{"expert", "Knowledgeable personality demonstrating expertise"},
	{"provocative", "Personality that politely challenges statements"},
}

var formalityOptions = []option{
	{"casual", "Informal conversational style"},
	{"neutral", "Everyday neutral style"},
	{"formal", "More formal style with proper constructions"},
}

var menuItems = []string{
	"Create new session",
	"Load existing sessions",
	"List active sessions",
	"List channels for a session",
	"Synchronize channels across sessions",
	"Start monitoring",
	"Set DeepSeek API key",
	"Set AI personality",
	"Exit",
}

// errExit ends the menu loop
var errExit = errors.New("exit")

type menu struct {
	d       Deps
	console Console
	out     io.Writer
}

func newMenu(d Deps, console Console, out io.Writer) *menu {
	return &menu{d: d, console: console, out: out}
}

// Run loads the saved sessions and serves menu choices until exit, end of
// input or ctx cancellation
func (m *menu) Run(ctx context.Context) error {
	m.d.Accounts.SetPrompter(m.console)

	rule := titleStyle.Render(strings.Repeat("=", 60))
	fmt.Fprintf(m.out, "\n%s\n%s\n%s\n", rule, okBoldStyle.Render("        TELEGRAM AUTO-RESPONDER BOT"), rule)
	loadSessions(ctx, m.out, m.d)

	// sessions stay connected for as long as the menu is open
	liveCtx, stopLiveness := context.WithCancel(ctx)
	livenessDone := make(chan struct{})
	go func() {
		defer close(livenessDone)
		m.d.Monitor.Run(liveCtx)
	}()
	defer func() {
		stopLiveness()
		<-livenessDone
	}()

	for {
		fmt.Fprintf(m.out, "\n%s\n", header("Telegram Auto-Responder Bot"))
		for i, item := range menuItems {
			fmt.Fprintf(m.out, "%s %s\n", okStyle.Render(strconv.Itoa(i+1)+"."), item)
		}

		choice, err := m.ask(ctx, fmt.Sprintf("Enter your choice (1-%d): ", len(menuItems)))
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(m.out, okStyle.Render("Exiting program. Goodbye!"))
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(m.out, errStyle.Render(err.Error()))
		}
	}
}

func (m *menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case "1":
		// failures are already printed by createSession
		_ = createSession(ctx, m.d, m.console, m.out, telegram.Credentials{})
	case "2":
		loadSessions(ctx, m.out, m.d)
	case "3":
		fmt.Fprintf(m.out, "\n%s\n", infoStyle.Render("Active Sessions:"))
		renderAccounts(m.out, m.d.Accounts.All())
	case "4":
		return m.viewChannels(ctx)
	case "5":
		return m.syncChannels(ctx)
	case "6":
		return monitor(ctx, m.d, m.out, waitDone)
	case "7":
		return m.setAPIKey(ctx)
	case "8":
		return m.setPersonality(ctx)
	case "9":
		return errExit
	default:
		fmt.Fprintln(m.out, errStyle.Render("Invalid choice. Please try again."))
	}
	return nil
}

// chooseAccount lists the active sessions and reads a selection. A nil
// account means the operator cancelled.
func (m *menu) chooseAccount(ctx context.Context) (*domain.Account, error) {
	accounts := m.d.Accounts.All()
	if len(accounts) == 0 {
		return nil, domain.ErrNoActiveAccounts
	}

	fmt.Fprintln(m.out, "\nAvailable sessions:")
	renderAccounts(m.out, accounts)

	answer, err := m.ask(ctx, "Select a session (number) or press Enter to cancel: ")
	if err != nil || answer == "" {
		return nil, err
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(accounts) {
		return nil, fmt.Errorf("invalid selection %q", answer)
	}
	return accounts[n-1], nil
}

func (m *menu) viewChannels(ctx context.Context) error {
	acc, err := m.chooseAccount(ctx)
	if err != nil || acc == nil {
		return err
	}
	return listChannels(ctx, m.d, m.out, acc)
}

func (m *menu) syncChannels(ctx context.Context) error {
	fmt.Fprintf(m.out, "\n%s\n", header("Load Channels From File"))
	path, err := m.ask(ctx, fmt.Sprintf("Path to the channel list [%s]: ", m.d.Telegram.ChannelsFile))
	if err != nil {
		return err
	}
	if path == "" {
		path = m.d.Telegram.ChannelsFile
	}

	refs, err := m.d.References.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out, okStyle.Render(fmt.Sprintf("Successfully loaded %d channels from %s", len(refs), path)))

	all, err := m.confirm(ctx, "Synchronize all sessions? (y/n): ")
	if err != nil {
		return err
	}
	if all {
		if err := syncAll(ctx, m.d, m.out, refs); err != nil {
			return err
		}
	} else {
		acc, err := m.chooseAccount(ctx)
		if err != nil || acc == nil {
			return err
		}
		if _, err := m.d.Channels.Sync(ctx, acc, refs, NewReporter(m.out)); err != nil {
			return err
		}
	}

	view, err := m.confirm(ctx, "Do you want to view channels for a session now? (y/n): ")
	if err != nil || !view {
		return err
	}
	return m.viewChannels(ctx)
}

func (m *menu) setAPIKey(ctx context.Context) error {
	fmt.Fprintf(m.out, "\n%s\n", header("Set DeepSeek API Key"))
	key, err := m.ask(ctx, "Enter your DeepSeek API key (or press Enter to keep current): ")
	if err != nil {
		return err
	}
	if key == "" {
		fmt.Fprintln(m.out, warnStyle.Render("DeepSeek API key unchanged."))
		return nil
	}

	m.d.Keys.SetAPIKey(key)
	fmt.Fprintln(m.out, okStyle.Render("DeepSeek API key has been set. All API clients will be recreated."))
	return nil
}

func (m *menu) setPersonality(ctx context.Context) error {
	fmt.Fprintf(m.out, "\n%s\n", header("Set AI Personality Settings"))
	current := m.d.Persona.Get()

	personality, err := m.pick(ctx, "personality types", personalityOptions, current.Personality)
	if err != nil {
		return err
	}
	formality, err := m.pick(ctx, "formality levels", formalityOptions, current.Formality)
	if err != nil {
		return err
	}

	if err := m.d.Persona.Set(personality, formality); err != nil {
		return err
	}
	fmt.Fprintln(m.out, okStyle.Render(fmt.Sprintf("AI personality set to: %s, formality: %s", personality, formality)))

	test, err := m.confirm(ctx, "Do you want to test this personality with a sample message? (y/n): ")
	if err != nil || !test {
		return err
	}
	message, err := m.ask(ctx, fmt.Sprintf("Enter a sample message to test with [%s]: ", sampleMessage))
	if err != nil {
		return err
	}
	return sampleReply(ctx, m.d, m.out, message)
}

// pick shows options and returns the chosen name, or current on an empty
// or invalid answer
func (m *menu) pick(ctx context.Context, title string, options []option, current string) (string, error) {
	fmt.Fprintf(m.out, "\n%s\n", infoStyle.Render("Available "+title+":"))
	for i, o := range options {
		fmt.Fprintf(m.out, "%d. %s - %s\n", i+1, okStyle.Render(o.name), o.description)
	}

	answer, err := m.ask(ctx, fmt.Sprintf("Select (1-%d) [Current: %s]: ", len(options), current))
	if err != nil || answer == "" {
		return current, err
	}

	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(options) {
		fmt.Fprintln(m.out, errStyle.Render("Invalid choice. Keeping current setting."))
		return current, nil
	}
	return options[n-1].name, nil
}

func (m *menu) confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := m.ask(ctx, prompt)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
}

func (m *menu) ask(ctx context.Context, prompt string) (string, error) {
	return m.console.Line(ctx, "\n"+promptStyle.Render(prompt))
}
