package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"editzen-backend/internal/client"
	"editzen-backend/internal/models"
	"editzen-backend/internal/widget"
)

// streamingBackend satisfies the chat session's backend with the websocket
// endpoint, echoing deltas as they arrive.
type streamingBackend struct {
	api     *client.Client
	onChunk func(string)
}

func (b *streamingBackend) Chat(ctx context.Context, messages []models.ChatMessage, chatCtx *models.ChatContext) (*models.ChatMessage, error) {
	return b.api.ChatStream(ctx, messages, chatCtx, b.onChunk)
}

func runChat(ctx context.Context, api *client.Client, logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ContinueOnError)
	transformation := fs.String("transformation", "", "transformation the user is working on")
	stream := fs.Bool("stream", false, "stream replies over the websocket endpoint")
	if err := fs.Parse(args); err != nil {
		return err
	}

	chatCtx := contextFor(*transformation)

	app := tview.NewApplication()
	app.EnablePaste(true)
	app.EnableMouse(true)

	conversation := tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	conversation.SetTitle("EditZen Assistant").SetBorder(true)

	input := tview.NewTextArea()
	input.SetTitle("Message (Enter to send, Esc to quit)").SetBorder(true)

	var backend interface {
		Chat(context.Context, []models.ChatMessage, *models.ChatContext) (*models.ChatMessage, error)
	} = api
	streaming := false
	if *stream {
		backend = &streamingBackend{api: api, onChunk: func(chunk string) {
			app.QueueUpdateDraw(func() {
				if !streaming {
					streaming = true
					fmt.Fprint(conversation, "[green::]Assistant:[-]\n")
				}
				fmt.Fprint(conversation, tview.Escape(chunk))
				conversation.ScrollToEnd()
			})
		}}
	}
	session := widget.NewChatSession(backend, chatCtx)
	defer session.Close()

	fmt.Fprint(conversation, "Hi! I'm your EditZen assistant. Ask me anything about editing your images.\n\n")
	for i, q := range session.QuickActions() {
		fmt.Fprintf(conversation, "  [yellow::]/%d[-] %s\n", i+1, tview.Escape(q))
	}
	fmt.Fprintln(conversation)

	send := func(text string) {
		go func() {
			app.QueueUpdateDraw(func() {
				fmt.Fprintf(conversation, "[red::]You:[-]\n%s\n\n", tview.Escape(text))
				input.SetDisabled(true)
			})

			reply, err := session.Send(ctx, text)
			if err != nil && !errors.Is(err, widget.ErrClosed) {
				logger.Warn("chat request failed", zap.Error(err))
			}

			app.QueueUpdateDraw(func() {
				switch {
				case streaming && err == nil:
					fmt.Fprint(conversation, "\n\n")
				case reply.Content != "":
					fmt.Fprintf(conversation, "[green::]Assistant:[-]\n%s\n\n", tview.Escape(reply.Content))
				}
				streaming = false
				input.SetDisabled(false)
				conversation.ScrollToEnd()
			})
		}()
	}

	input.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyESC:
			app.Stop()
			return nil
		case tcell.KeyEnter:
			text := strings.TrimSpace(input.GetText())
			if text == "" || session.Awaiting() {
				return nil
			}
			input.SetText("", true)

			if t, ok := strings.CutPrefix(text, "/transformation"); ok {
				chatCtx := contextFor(strings.TrimSpace(t))
				session.SetContext(chatCtx)
				if chatCtx == nil {
					fmt.Fprint(conversation, "[yellow::]Transformation cleared[-]\n\n")
				} else {
					fmt.Fprintf(conversation, "[yellow::]Transformation: %s[-]\n\n", tview.Escape(chatCtx.TransformationType))
				}
				return nil
			}

			quick := session.QuickActions()
			if n, ok := quickActionIndex(text); ok && n < len(quick) {
				text = quick[n]
			}
			send(text)
			return nil
		}
		return event
	})

	go func() {
		<-ctx.Done()
		app.Stop()
	}()

	layout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(conversation, 0, 1, false).
		AddItem(input, 5, 0, true)

	return app.SetRoot(layout, true).SetFocus(input).Run()
}

func contextFor(transformation string) *models.ChatContext {
	if transformation == "" {
		return nil
	}
	return &models.ChatContext{TransformationType: transformation}
}

// quickActionIndex parses "/N" shortcuts into a zero-based index.
func quickActionIndex(text string) (int, bool) {
	if !strings.HasPrefix(text, "/") {
		return 0, false
	}
	n, err := strconv.Atoi(text[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
