// Command hudctl drives a synthesis console from the terminal against a
// running hudsynth server. Lines are submitted for synthesis; ":play" replays
// the last clip and ":quit" exits.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/ent0n29/hudsynth/internal/console"
)

type options struct {
	baseURL string
	timeout time.Duration
	dwell   time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.baseURL, "server", "http://localhost:8000", "hudsynth base URL")
	flag.DurationVar(&opts.timeout, "timeout", 60*time.Second, "per-request synthesis timeout (0 disables)")
	flag.DurationVar(&opts.dwell, "dwell", console.DefaultDwell, "how long notifications stay visible")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hudctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.baseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return fmt.Errorf("invalid -server %q", opts.baseURL)
	}

	term := &terminalSurface{out: out, base: base}
	c := console.New(console.Options{
		Synthesizer:    console.NewHTTPSynthesizer(base.String()+"/generate-voice", &http.Client{}),
		Surface:        term,
		Dwell:          opts.dwell,
		RequestTimeout: opts.timeout,
	})
	defer c.Close()
	c.Start()

	lines := bufio.NewScanner(in)
	for lines.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		switch line := lines.Text(); strings.TrimSpace(line) {
		case ":quit", ":q":
			return nil
		case ":play":
			_ = c.Replay()
		default:
			if _, err := c.Submit(ctx, line); errors.Is(err, console.ErrRequestInFlight) {
				term.printf("busy: %v", err)
			}
		}
	}
	return lines.Err()
}

// terminalSurface prints console signals as they arrive.
type terminalSurface struct {
	mu   sync.Mutex
	out  io.Writer
	base *url.URL
	last console.Controls
}

func (t *terminalSurface) ShowNotification(n console.Notification) {
	marker := ">>"
	if n.Emphasis {
		marker = "!!"
	}
	t.printf("%s %s", marker, n.Text)
}

func (t *terminalSurface) ClearNotification(console.Notification) {}

func (t *terminalSurface) SetControls(c console.Controls) {
	t.mu.Lock()
	changed := c != t.last
	t.last = c
	t.mu.Unlock()
	if !changed {
		return
	}
	playback := "off"
	if c.PlaybackEnabled {
		playback = "on"
	}
	t.printf("[%s] playback %s", c.SubmitLabel, playback)
}

func (t *terminalSurface) Play(audioRef string) {
	t.printf("PLAY %s", t.resolve(audioRef))
}

func (t *terminalSurface) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return t.base.ResolveReference(u).String()
}

func (t *terminalSurface) printf(format string, args ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, format+"\n", args...)
}
