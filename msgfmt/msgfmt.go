// Copyright © 2026 Murmur contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: msgfmt/msgfmt.go
// Summary: Renders messages into tagged chunks: header line, wrapped
// body paragraphs, syntax-highlighted code fences.

package msgfmt

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/go-enry/go-enry/v2"

	"github.com/murmurchat/murmur/chunk"
	"github.com/murmurchat/murmur/store"
)

const stampFormat = "2006 Jan _2 15:04"

// highlightStyle is the chroma style token colors are read from.
var highlightStyle = styles.Get("friendly")

// Render produces the display chunk for one message: a header line with
// the sender and a right-justified timestamp, then the body.
func Render(m *store.Message) chunk.Chunk {
	sender := m.Sender
	if sender == "" {
		sender = "?"
	}
	headTags := chunk.TagSet{Attrs: chunk.Bold}
	if m.Personal {
		headTags.Fg = "yellow"
	}
	if m.Outgoing {
		sender = "-> " + sender
	}
	ch := chunk.Chunk{
		{Tags: headTags, Text: sender},
		{Tags: chunk.TagSet{Attrs: chunk.Right, Fg: "gray"}, Text: m.ID.When().Format(stampFormat)},
		{Text: "\n"},
	}
	return append(ch, Body(m.Body)...)
}

// Body renders message text: fenced code blocks are syntax-highlighted
// verbatim, everything else is emitted as soft-wrapped paragraphs.
func Body(text string) chunk.Chunk {
	var out chunk.Chunk
	var plain []string
	flushPlain := func() {
		out = append(out, paragraphs(strings.Join(plain, "\n"))...)
		plain = plain[:0]
	}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		lang, ok := strings.CutPrefix(lines[i], "```")
		if !ok {
			plain = append(plain, lines[i])
			continue
		}
		var code []string
		j := i + 1
		for ; j < len(lines); j++ {
			if strings.HasPrefix(lines[j], "```") {
				break
			}
			code = append(code, lines[j])
		}
		if j == len(lines) {
			// unterminated fence, treat as plain text
			plain = append(plain, lines[i:]...)
			break
		}
		flushPlain()
		out = append(out, Highlight(strings.Join(code, "\n")+"\n", strings.TrimSpace(lang))...)
		i = j
	}
	flushPlain()
	return out
}

// paragraphs emits blank-line-separated paragraphs as fill-tagged
// segments so the layout engine rewraps them to the viewport width.
func paragraphs(text string) chunk.Chunk {
	var out chunk.Chunk
	for _, para := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(para) == "" {
			continue
		}
		out = append(out, chunk.Segment{
			Tags: chunk.TagSet{Attrs: chunk.Fill},
			Text: strings.TrimSpace(para) + "\n",
		})
	}
	return out
}

// Highlight tokenizes code and maps token colors onto chunk tags. An
// empty lang is sniffed; anything unrecognized falls back to verbatim
// text.
func Highlight(code, lang string) chunk.Chunk {
	lexer := lexerFor(code, lang)
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return chunk.Chunk{{Text: code}}
	}
	var out chunk.Chunk
	for _, tok := range it.Tokens() {
		entry := highlightStyle.Get(tok.Type)
		var tags chunk.TagSet
		if entry.Colour.IsSet() {
			tags.Fg = entry.Colour.String()
		}
		if entry.Bold == chroma.Yes {
			tags.Attrs = tags.Attrs.With(chunk.Bold)
		}
		out = append(out, chunk.Segment{Tags: tags, Text: tok.Value})
	}
	return out
}

func lexerFor(code, lang string) chroma.Lexer {
	if lang == "" {
		lang = enry.GetLanguage("", []byte(code))
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}
