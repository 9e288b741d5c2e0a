package transcribe

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"subtitle-player/internal/domain"
)

// whisperOutput mirrors the subset of whisper.cpp "-oj -ojf" output we read.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []whisperSegment `json:"transcription"`
}

type whisperSegment struct {
	Offsets whisperOffsets `json:"offsets"`
	Text    string         `json:"text"`
	Tokens  []whisperToken `json:"tokens"`
}

type whisperToken struct {
	Text    string         `json:"text"`
	Offsets whisperOffsets `json:"offsets"`
}

type whisperOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// parseWhisperJSON converts segments into cues and merges sub-word tokens into
// word timestamps. A token starting with a space begins a new word; special
// tokens such as "[_BEG_]" are skipped.
func parseWhisperJSON(data []byte) (domain.Transcript, string, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.Transcript{}, "", fmt.Errorf("decode whisper json: %w", err)
	}

	var transcript domain.Transcript
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text != "" {
			transcript.Cues = append(transcript.Cues, domain.Cue{
				Index:   len(transcript.Cues) + 1,
				StartMs: seg.Offsets.From,
				EndMs:   seg.Offsets.To,
				Text:    text,
			})
		}
		transcript.Words = append(transcript.Words, mergeTokens(seg.Tokens)...)
	}

	sort.SliceStable(transcript.Cues, func(i, j int) bool {
		return transcript.Cues[i].StartMs < transcript.Cues[j].StartMs
	})
	for i := range transcript.Cues {
		transcript.Cues[i].Index = i + 1
	}
	sort.SliceStable(transcript.Words, func(i, j int) bool {
		return transcript.Words[i].StartMs < transcript.Words[j].StartMs
	})

	return transcript, out.Result.Language, nil
}

func mergeTokens(tokens []whisperToken) []domain.WordTimestamp {
	var words []domain.WordTimestamp
	var current *domain.WordTimestamp

	flush := func() {
		if current != nil && strings.TrimSpace(current.Word) != "" {
			current.Word = strings.TrimSpace(current.Word)
			words = append(words, *current)
		}
		current = nil
	}

	for _, tok := range tokens {
		if tok.Text == "" || isSpecialToken(tok.Text) {
			continue
		}
		if current == nil || strings.HasPrefix(tok.Text, " ") {
			flush()
			current = &domain.WordTimestamp{
				Word:    tok.Text,
				StartMs: tok.Offsets.From,
				EndMs:   tok.Offsets.To,
			}
			continue
		}
		current.Word += tok.Text
		if tok.Offsets.To > current.EndMs {
			current.EndMs = tok.Offsets.To
		}
	}
	flush()

	return words
}

func isSpecialToken(text string) bool {
	return strings.HasPrefix(text, "[_") && strings.HasSuffix(text, "]")
}
