package session

import "github.com/andrewimm/clancy/internal/transcript"

func parseStream(raw string) *transcript.Transcript {
	return transcript.Parse(raw)
}
