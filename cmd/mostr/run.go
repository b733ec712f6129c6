package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nbd-wtf/go-nostr"

	"github.com/xeruf/mostr-go/internal/aggregate"
	"github.com/xeruf/mostr-go/internal/command"
	"github.com/xeruf/mostr-go/internal/config"
	"github.com/xeruf/mostr-go/internal/events"
	"github.com/xeruf/mostr-go/internal/filter"
	"github.com/xeruf/mostr-go/internal/logging"
	"github.com/xeruf/mostr-go/internal/relay"
	"github.com/xeruf/mostr-go/internal/ui"
	"github.com/xeruf/mostr-go/internal/view"
)

// tickInterval matches §5's at-least-once-per-second pending-action
// timer.
const tickInterval = time.Second

// session bundles the wiring a line of input needs: the engine, the
// relay sink, the signing key, and somewhere to log non-fatal
// problems. Kept as a struct rather than threading each of these
// through every handler.
type session struct {
	eng         *aggregate.Engine
	fs          *filter.Set
	view        *view.State
	localAuthor string
	privateKey  string
	adapter     *relay.Adapter
	log         *logging.Logger
	notes       *ui.NoteRenderer
}

// runRepl wires configuration, the relay adapter, the aggregation
// engine, and the command interpreter together and drives the single
// core goroutine §5 describes: one line of stdin in, zero or more
// signed events out to the relay sink and into the local engine.
func runRepl() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	files, err := config.Locate()
	if err != nil {
		return fmt.Errorf("locating config directory: %w", err)
	}

	var privateKey string
	if files.Missing() {
		fmt.Println("No relay/key configuration found, starting setup.")
		privateKey, err = ui.RunSetupWizard(files)
		if err != nil {
			return fmt.Errorf("setup wizard: %w", err)
		}
	} else {
		privateKey, err = files.LoadKey()
		if err != nil {
			return fmt.Errorf("loading key: %w", err)
		}
	}

	localAuthor, err := nostr.GetPublicKey(privateKey)
	if err != nil {
		return fmt.Errorf("deriving public key: %w", err)
	}

	urls, err := files.LoadRelays()
	if err != nil {
		return fmt.Errorf("loading relays: %w", err)
	}

	settings, err := config.LoadSettings(files.Dir)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	log := logging.New(logging.ParseLevel(settings.LogLevel), settings.LogPath)
	defer log.Close()

	watcher, err := config.Watch(files, 500*time.Millisecond, func() {
		log.Infof("configuration directory changed, restart to pick up relay/key edits")
	})
	if err != nil {
		log.Warnf("config watcher unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	adapter := relay.Dial(ctx, urls)
	eng := aggregate.New()
	fs := filter.New()
	v := view.New()
	v.SetDepth(settings.ViewDepth)
	if len(settings.Columns) > 0 {
		v.Columns = settings.Columns
	}

	notes, err := ui.NewNoteRenderer(ui.GetWidth(), ui.ColorMode(settings.ColorMode))
	if err != nil {
		log.Warnf("note renderer unavailable, falling back to plain text: %v", err)
	}

	sess := &session{
		eng:         eng,
		fs:          &fs,
		view:        v,
		localAuthor: localAuthor,
		privateKey:  privateKey,
		adapter:     adapter,
		log:         log,
		notes:       notes,
	}

	go drainInbound(ctx, sess)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	render(sess)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			sess.publish(ctx, command.Tick(eng, v, time.Now()))
		case line, ok := <-lines:
			if !ok {
				sess.resolvePendingOnExit(ctx)
				return nil
			}
			sess.handleLine(ctx, line)
			render(sess)
		}
	}
}

// drainInbound applies every event the relay adapter observes,
// including our own echoed back by the relays - apply() is idempotent
// so a redundant re-apply of an already-known event is harmless.
func drainInbound(ctx context.Context, sess *session) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sess.adapter.Events():
			if !ok {
				return
			}
			sess.eng.Apply(e)
		}
	}
}

func (s *session) handleLine(ctx context.Context, line string) {
	r := command.Interpret(line, s.eng, s.fs, s.view, s.localAuthor, time.Now())
	if r.Err != nil {
		fmt.Println(ui.RenderError(r.Err.Error()))
		return
	}
	if r.RelayControl != "" {
		s.log.Infof("relay control line received: %s (restart mostr to reconnect with the new set)", r.RelayControl)
		return
	}
	s.publish(ctx, r.ToApply)
	if r.Pending {
		fmt.Println(ui.RenderWarn("pending - confirm with another command, or & to discard"))
	}
}

// publish signs every event with the session's private key and hands
// it to the relay sink, logging (not failing) individual publish
// errors - a relay being briefly unreachable never blocks the local,
// already-applied optimistic state per §4.6/§7.
func (s *session) publish(ctx context.Context, evts []*events.Event) {
	for _, e := range evts {
		signed, err := relay.Sign(e, s.privateKey)
		if err != nil {
			s.log.Errorf("signing event: %v", err)
			continue
		}
		if err := s.adapter.Publish(ctx, signed); err != nil {
			s.log.Warnf("publishing event %s: %v", signed.ID, err)
		}
	}
}

// resolvePendingOnExit asks whether to confirm or discard an outstanding
// pending action on EOF rather than silently dropping it - stdin closing
// (e.g. Ctrl-D) is the one exit path that skips the normal per-line
// confirm/discard flow in command.Interpret.
func (s *session) resolvePendingOnExit(ctx context.Context) {
	if s.view.Pending == nil {
		return
	}
	if ui.PromptYesNo("confirm the pending action before exiting?", true) {
		s.publish(ctx, s.view.ConfirmPending())
	} else {
		s.view.DiscardPending()
	}
}

// render draws the task table and status line, in that order, per
// §5's emit-apply-drain-render-await sequencing.
func render(sess *session) {
	tasks := filter.VisibleFiltered(sess.eng.Store, *sess.fs, sess.view.Position, sess.view.Depth, sess.localAuthor)
	width := ui.GetWidth()
	fmt.Println(ui.RenderTasks(sess.eng, tasks, sess.view.Columns, sess.localAuthor, time.Now(), sess.view.Position, width, sess.notes))
	fmt.Println(ui.RenderStatusLine(sess.eng, sess.view, time.Now()))
	fmt.Print("> ")
}
