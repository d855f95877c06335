package telegram

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

// promptTimeout bounds a single interactive answer
const promptTimeout = 2 * time.Minute

// errInteractiveAuthRequired is returned when a session needs a login but
// no prompter is available
var errInteractiveAuthRequired = errors.New("session is not authorized and no interactive prompt is available")

// Prompter asks the operator for login secrets
type Prompter interface {
	// Code returns the login code sent by Telegram
	Code(ctx context.Context) (string, error)

	// Password returns the two-factor password
	Password(ctx context.Context) (string, error)
}

// ConsolePrompter reads answers from a line based reader, stdin by default
type ConsolePrompter struct {
	out     io.Writer
	mu      sync.Mutex
	reader  *bufio.Reader
	pending chan lineResult
}

// NewConsolePrompter creates a prompter on stdin and stdout
func NewConsolePrompter() *ConsolePrompter {
	return NewConsolePrompterWithIO(os.Stdin, os.Stdout)
}

// NewConsolePrompterWithIO creates a prompter on the given streams
func NewConsolePrompterWithIO(in io.Reader, out io.Writer) *ConsolePrompter {
	return &ConsolePrompter{out: out, reader: bufio.NewReader(in)}
}

// Code prompts for the login code
func (p *ConsolePrompter) Code(ctx context.Context) (string, error) {
	return p.ask(ctx, "Enter authentication code: ")
}

// Password prompts for the 2FA password
func (p *ConsolePrompter) Password(ctx context.Context) (string, error) {
	return p.ask(ctx, "Enter 2FA password: ")
}

// Line prompts for one free form answer and waits until it arrives or
// ctx is done
func (p *ConsolePrompter) Line(ctx context.Context, prompt string) (string, error) {
	return p.read(ctx, prompt, nil)
}

func (p *ConsolePrompter) ask(ctx context.Context, prompt string) (string, error) {
	timer := time.NewTimer(promptTimeout)
	defer timer.Stop()
	return p.read(ctx, prompt, timer.C)
}

func (p *ConsolePrompter) read(ctx context.Context, prompt string, timeout <-chan time.Time) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.out, prompt)

	// A pending read survives a cancelled prompt and feeds the next one
	if p.pending == nil {
		p.pending = make(chan lineResult, 1)
		go func(ch chan<- lineResult) {
			line, err := p.reader.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}(p.pending)
	}

	select {
	case res := <-p.pending:
		p.pending = nil
		if res.err != nil && res.line == "" {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return strings.TrimSpace(res.line), nil
	case <-ctx.Done():
		return "", fmt.Errorf("input cancelled: %w", ctx.Err())
	case <-timeout:
		return "", fmt.Errorf("input timeout")
	}
}

type lineResult struct {
	line string
	err  error
}

// userAuthenticator adapts a Prompter to gotd's login flow
type userAuthenticator struct {
	phone    string
	prompter Prompter
	onCode   func()
}

func (a userAuthenticator) Phone(context.Context) (string, error) {
	return a.phone, nil
}

func (a userAuthenticator) Password(ctx context.Context) (string, error) {
	return a.prompter.Password(ctx)
}

func (a userAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	if a.onCode != nil {
		a.onCode()
	}
	return a.prompter.Code(ctx)
}

func (a userAuthenticator) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (a userAuthenticator) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("signing up new accounts is not supported")
}

// ensureAuthorized logs the session in when the stored session is missing
// or revoked
func (c *MTProtoClient) ensureAuthorized(ctx context.Context, client *telegram.Client) error {
	status, err := client.Auth().Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to check auth status: %w", err)
	}
	if status.Authorized {
		c.logger.Info().Msg("session restored from storage")
		return nil
	}

	if c.prompter == nil {
		return errInteractiveAuthRequired
	}
	if c.phone == "" {
		return fmt.Errorf("phone number is required to log in")
	}

	c.logger.Info().Msg("not authorized, starting authentication")
	if err := c.authenticateWithRetry(ctx, client, 3); err != nil {
		c.logger.Error().Err(err).Msg("authentication failed")
		return errors.Join(domain.ErrAuthenticationFailed, err)
	}
	return nil
}

// authenticateWithRetry performs authentication with backoff for flood waits
// and a fresh attempt for a mistyped code
func (c *MTProtoClient) authenticateWithRetry(ctx context.Context, client *telegram.Client, maxRetries int) error {
	var lastErr error
	baseDelay := time.Second

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := c.performAuthentication(ctx, client)
		if err == nil {
			return nil
		}
		lastErr = err

		if isNonRetryableError(err) {
			return fmt.Errorf("authentication failed with non-retryable error: %w", err)
		}

		if wait, ok := tgerr.AsFloodWait(err); ok {
			c.logger.Warn().
				Int("attempt", attempt+1).
				Dur("wait_duration", wait).
				Msg("flood wait detected, waiting before retry")
			if err := sleepCtx(ctx, wait); err != nil {
				return err
			}
			continue
		}

		if tgerr.Is(err, "PHONE_CODE_INVALID") {
			c.logger.Warn().Msg("invalid phone code provided, please try again")
			continue
		}

		delay := baseDelay * (1 << attempt)
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		c.logger.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Dur("retry_delay", delay).
			Msg("authentication failed, retrying")
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("authentication failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *MTProtoClient) performAuthentication(ctx context.Context, client *telegram.Client) error {
	flow := auth.NewFlow(userAuthenticator{
		phone:    c.phone,
		prompter: c.prompter,
		onCode: func() {
			c.logger.Info().Msg("authentication code has been sent")
		},
	}, auth.SendCodeOptions{})

	if err := client.Auth().IfNecessary(ctx, flow); err != nil {
		return err
	}

	c.logger.Info().Msg("authentication successful")
	return nil
}

// isNonRetryableError reports errors that no retry can fix
func isNonRetryableError(err error) bool {
	return tgerr.Is(err,
		"PHONE_NUMBER_BANNED",
		"PHONE_NUMBER_INVALID",
		"API_ID_INVALID",
		"API_ID_PUBLISHED_FLOOD",
		"AUTH_TOKEN_INVALID",
		"PASSWORD_HASH_INVALID",
		"PHONE_NUMBER_UNOCCUPIED",
	) || errors.Is(err, context.Canceled)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
