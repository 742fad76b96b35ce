package layout

import (
	"encoding/json"
	"io"
	"os"
)

// Trace 把输入词序列与排版出的行对应起来，用于定位某个词为什么被换到下一行。
type Trace struct {
	Text   string      `json:"text"`
	Tokens []Token     `json:"tokens"`
	Lines  []TraceLine `json:"lines"`
	Height float64     `json:"height"`
	Font   Font        `json:"font"`
}

// TraceLine 是一行及其包含的词。
type TraceLine struct {
	Line
	Words []string `json:"words"`
}

// NewTrace 重新切分 text，并按 Line.FirstToken 把词归入各行。
func NewTrace(text string, b *Block) *Trace {
	tokens := Tokenize(text)
	t := &Trace{Text: text, Tokens: tokens}
	if b == nil {
		return t
	}
	t.Height, t.Font = b.Height, b.Font
	for i, l := range b.Lines {
		end := len(tokens)
		if i+1 < len(b.Lines) {
			end = b.Lines[i+1].FirstToken
		}
		words := []string{}
		for _, tok := range tokens[min(l.FirstToken, end):end] {
			if tok.Word != "" {
				words = append(words, tok.Word)
			}
		}
		t.Lines = append(t.Lines, TraceLine{Line: l, Words: words})
	}
	return t
}

// Encode 以缩进 JSON 写出。
func (t *Trace) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(t)
}

// WriteDebugJSON 将 text 的排版轨迹写到 path。
func WriteDebugJSON(text string, b *Block, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := NewTrace(text, b).Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
