package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"

	"github.com/xeruf/mostr-go/internal/config"
)

// ErrWizardAborted wraps the underlying huh cancellation so callers
// don't need to import huh themselves to check for it.
var ErrWizardAborted = huh.ErrUserAborted

// RunSetupWizard walks a first-run user through relay selection and
// key setup, mirroring the group-based form structure of the
// teacher's create-form command. It writes the results to f
// atomically and returns the private key hex the caller should use
// to sign outgoing events.
func RunSetupWizard(f *config.Files) (privateKeyHex string, err error) {
	var relayInput string
	var keyChoice string
	var pastedKey string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Relays").
				Description("One relay URL per line (e.g. wss://relay.damus.io); leave empty for an offline session").
				Value(&relayInput),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Identity").
				Description("How should mostr sign your events?").
				Options(
					huh.NewOption("Generate a new key", "generate"),
					huh.NewOption("Paste an existing key (hex or nsec)", "paste"),
				).
				Value(&keyChoice),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Private key").
				Description("nsec1... or 64-character hex").
				EchoMode(huh.EchoModePassword).
				Value(&pastedKey).
				Validate(func(s string) error {
					if keyChoice != "paste" {
						return nil
					}
					_, decodeErr := decodeKey(s)
					return decodeErr
				}),
		).WithHideFunc(func() bool { return keyChoice != "paste" }),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		return "", err
	}

	relays := splitNonEmptyLines(relayInput)
	if err := f.WriteRelays(relays); err != nil {
		return "", fmt.Errorf("writing relays: %w", err)
	}

	switch keyChoice {
	case "paste":
		privateKeyHex, err = decodeKey(pastedKey)
		if err != nil {
			return "", err
		}
	default:
		privateKeyHex = nostr.GeneratePrivateKey()
	}

	if err := f.WriteKey(privateKeyHex); err != nil {
		return "", fmt.Errorf("writing key: %w", err)
	}
	return privateKeyHex, nil
}

// decodeKey accepts either raw 64-character hex or a bech32 nsec, as
// sandwichfarm's sync engine does for npub identity decoding.
func decodeKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "nsec1") {
		prefix, decoded, err := nip19.Decode(s)
		if err != nil {
			return "", fmt.Errorf("decoding nsec: %w", err)
		}
		if prefix != "nsec" {
			return "", fmt.Errorf("expected nsec, got %s", prefix)
		}
		hex, ok := decoded.(string)
		if !ok {
			return "", errors.New("unexpected nsec payload type")
		}
		return hex, nil
	}
	if len(s) != 64 {
		return "", errors.New("private key must be 64 hex characters or an nsec1... value")
	}
	return s, nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
