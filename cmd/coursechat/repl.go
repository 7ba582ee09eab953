package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/amoylab/coursechat/internal/common/errorx"
	"github.com/amoylab/coursechat/internal/console"
	"github.com/amoylab/coursechat/internal/telemetry"
	"github.com/amoylab/coursechat/internal/widget"
)

const helpText = `Type a question and press enter. Commands:
  /next, /prev           step through the slideshow
  /close                 close the open overlay
  /choose N              pick offer N
  /toggle N              expand or collapse syllabus section N
  /upcoming              list upcoming classes
  /visuals PROGRAM TYPE  show slideshow, video or syllabus for a program
  /move X Y              record a pointer position
  /help                  show this help
  /quit                  exit
`

var errQuit = errors.New("quit")

type repl struct {
	w    *widget.Widget
	view *console.Renderer
	in   io.Reader
	out  io.Writer
}

func newREPL(w *widget.Widget, view *console.Renderer, in io.Reader, out io.Writer) *repl {
	return &repl{w: w, view: view, in: in, out: out}
}

// Run reads lines until /quit, end of input or ctx is done
func (r *repl) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(r.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	fmt.Fprint(r.out, helpText)
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := r.handle(ctx, strings.TrimSpace(line))
			switch {
			case errors.Is(err, errQuit):
				return nil
			case errors.Is(err, context.Canceled):
				return nil
			case err != nil:
				fmt.Fprintf(r.out, "! %v\n", err)
			}
		}
	}
}

func (r *repl) handle(ctx context.Context, line string) error {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		r.w.Click(telemetry.ClickLabel("sendBtn", ""))
		p, err := r.w.Submit(ctx, line)
		if err != nil {
			return err
		}
		return p.Wait(ctx)
	}

	name, args := parseCommand(line)
	switch name {
	case "quit", "exit":
		return errQuit
	case "help":
		fmt.Fprint(r.out, helpText)
	case "next":
		r.w.Click(telemetry.ClickLabel("nextSlide", ""))
		r.w.NextSlide()
	case "prev":
		r.w.Click(telemetry.ClickLabel("prevSlide", ""))
		r.w.PrevSlide()
	case "close":
		return r.closeOverlay()
	case "choose":
		n, err := intArg(args, 0)
		if err != nil {
			return err
		}
		ch, ok := r.view.Choice(n)
		if !ok {
			return fmt.Errorf("no choice %d", n)
		}
		r.w.Click(telemetry.ClickLabel("", ch.Label()))
		p, err := ch.Activate(ctx)
		if errors.Is(err, errorx.ErrChoiceUsed) {
			return fmt.Errorf("choice %d was already used", n)
		}
		if err != nil {
			return err
		}
		return p.Wait(ctx)
	case "toggle":
		n, err := intArg(args, 0)
		if err != nil {
			return err
		}
		r.w.Click(telemetry.ClickLabel("", fmt.Sprintf("syllabus section %d", n)))
		_, err = r.w.ToggleSyllabusPanel(n - 1)
		return err
	case "upcoming":
		r.w.Click(telemetry.ClickLabel("showUpcomingBtn", ""))
		return r.w.Controller().ShowUpcoming(ctx).Wait(ctx)
	case "visuals":
		if len(args) != 2 {
			return errors.New("usage: /visuals PROGRAM TYPE")
		}
		r.w.Click(telemetry.ClickLabel("loadSelectedVisuals", ""))
		p, err := r.w.Controller().LoadSelected(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		return p.Wait(ctx)
	case "move":
		x, err := intArg(args, 0)
		if err != nil {
			return err
		}
		y, err := intArg(args, 1)
		if err != nil {
			return err
		}
		r.w.PointerMoved(x, y)
	default:
		return fmt.Errorf("unknown command /%s, try /help", name)
	}
	return nil
}

func (r *repl) closeOverlay() error {
	name := r.view.Overlay()
	if name == "" {
		return errors.New("no overlay is open")
	}
	r.w.Click(telemetry.ClickLabel("close"+cases.Title(language.English).String(name), ""))
	switch name {
	case "slideshow":
		r.w.CloseSlideshow()
	case "video":
		r.w.CloseVideo()
	case "syllabus":
		r.w.CloseSyllabus()
	case "upcoming":
		r.w.CloseUpcoming()
	}
	return nil
}

func parseCommand(line string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(line, "/"))
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func intArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i+1)
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("argument %q is not a number", args[i])
	}
	return n, nil
}
