package launch

import (
	"encoding/json"
	"fmt"
	"io"
)

// LivePrinter echoes the readable parts of a stream-json run as it happens:
// assistant text, streamed text deltas and the final result.
type LivePrinter struct {
	w io.Writer
}

func NewLivePrinter(w io.Writer) *LivePrinter {
	return &LivePrinter{w: w}
}

type streamLine struct {
	Type    string `json:"type"`
	Message *struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
	Delta *struct {
		Text *string `json:"text"`
	} `json:"delta"`
	Result *string `json:"result"`
}

// Line prints one line of runner output. Lines that are not JSON, or carry
// nothing displayable, are ignored.
func (p *LivePrinter) Line(line string) {
	var ev streamLine
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return
	}

	switch ev.Type {
	case "assistant":
		if ev.Message == nil {
			return
		}
		var items []struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(ev.Message.Content, &items); err != nil {
			return
		}
		for _, item := range items {
			if item.Text != nil {
				fmt.Fprint(p.w, *item.Text)
			}
		}
	case "content_block_delta":
		if ev.Delta != nil && ev.Delta.Text != nil {
			fmt.Fprint(p.w, *ev.Delta.Text)
		}
	case "result":
		if ev.Result != nil {
			fmt.Fprintf(p.w, "\n%s\n", *ev.Result)
		}
	}
}
