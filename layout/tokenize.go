package layout

import "strings"

// Tokenize 按单个空格切词，再把词内的换行符拆成带 BreakBefore 标记的后续词。
// 连续空格产生空词，连续换行产生空行，与逐词插入的做法得到的序列完全一致。
func Tokenize(text string) []Token {
	pieces := strings.Split(text, " ")
	tokens := make([]Token, 0, len(pieces))
	for _, piece := range pieces {
		parts := strings.Split(piece, "\n")
		tokens = append(tokens, Token{Word: parts[0]})
		for _, rest := range parts[1:] {
			tokens = append(tokens, Token{Word: rest, BreakBefore: true})
		}
	}
	return tokens
}
