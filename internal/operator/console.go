package operator

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"contact-dialer/internal/directory"
	"contact-dialer/pkg/logger"

	"github.com/fatih/color"
)

// Dialer is the call path shared with the HTTP handlers.
type Dialer interface {
	PlaceCall(ctx context.Context, to string) (string, error)
}

// ErrNoContacts is returned when the directory has nothing dialable.
var ErrNoContacts = errors.New("operator: no contacts with phone numbers found")

// Console drives a call from a terminal prompt.
type Console struct {
	Contacts directory.Source
	Dialer   Dialer

	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

var (
	header  = color.New(color.FgMagenta, color.Bold)
	info    = color.New(color.FgBlue)
	success = color.New(color.FgGreen)
	warning = color.New(color.FgYellow)
	failure = color.New(color.FgRed)
)

// RunInteractive lists contacts, asks for a choice, waits for confirmation,
// then places the call. It returns the call id.
func (c *Console) RunInteractive(ctx context.Context) (string, error) {
	if c.Contacts == nil || c.Dialer == nil {
		return "", errors.New("operator: console not configured")
	}
	log := logger.From(ctx)

	contacts, err := c.Contacts.FetchContacts(ctx)
	if err != nil {
		failure.Fprintf(c.Out, "Could not load contacts: %v\n", err)
		return "", err
	}
	if len(contacts) == 0 {
		warning.Fprintln(c.Out, "No contacts with phone numbers found.")
		return "", ErrNoContacts
	}

	header.Fprintln(c.Out, "\nYour Outlook Contacts:")
	for i, ct := range contacts {
		fmt.Fprintf(c.Out, "%d: %s - %s\n", i+1, ct.DisplayName, ct.PhoneNumber)
	}

	fmt.Fprint(c.Out, "\nEnter the number of the contact you want to call: ")
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	selected, err := Select(contacts, line)
	if err != nil {
		failure.Fprintln(c.Out, "Invalid choice.")
		log.Warn("invalid contact selection", "input", strings.TrimSpace(line))
		return "", err
	}
	success.Fprintf(c.Out, "Selected: %s (%s)\n", selected.DisplayName, selected.PhoneNumber)

	return c.confirmAndDial(ctx, selected.PhoneNumber)
}

// RunStatic waits for confirmation and calls a fixed number.
func (c *Console) RunStatic(ctx context.Context, target string) (string, error) {
	if c.Dialer == nil {
		return "", errors.New("operator: console not configured")
	}
	return c.confirmAndDial(ctx, target)
}

func (c *Console) confirmAndDial(ctx context.Context, to string) (string, error) {
	info.Fprint(c.Out, "\nPress Enter to initiate the call...")
	if _, err := c.readLine(); err != nil {
		return "", err
	}

	callID, err := c.Dialer.PlaceCall(ctx, to)
	if err != nil {
		failure.Fprintf(c.Out, "Failed to initiate call: %v\n", err)
		return "", err
	}
	success.Fprintf(c.Out, "Call initiated! SID: %s\n", callID)
	return callID, nil
}

func (c *Console) readLine() (string, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("operator: read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
