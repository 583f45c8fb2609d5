package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/bracketview/pkg/bracket"
)

// Source supplies the match list of a championship.
type Source interface {
	// Name identifies the source kind in cache keys and logs.
	Name() string

	// Matches returns the championship's matches. A championship without
	// a generated bracket yields an empty list and no error.
	Matches(ctx context.Context, championshipID int) ([]bracket.Match, error)
}

// Static is a fixed match list. It ignores the championship id.
type Static []bracket.Match

func (Static) Name() string { return "static" }

func (s Static) Matches(context.Context, int) ([]bracket.Match, error) {
	return s, nil
}

// Envelope is the upstream response to a bracket generation request.
type Envelope struct {
	Message string      `json:"message"`
	Total   int         `json:"totalPartidas"`
	Matches []wireMatch `json:"partidas"`
}

// wireMatch accepts both the native field names and the upstream ones.
// Upstream names win when both are present.
type wireMatch struct {
	ID int `json:"id"`

	Round           *int    `json:"round"`
	SlotA           *string `json:"slot_a"`
	SlotB           *string `json:"slot_b"`
	NextMatchID     *int    `json:"next_match_id"`
	SlotInNextMatch *int    `json:"slot_in_next_match"`

	Fase                    *int    `json:"fase"`
	TimeA                   *string `json:"timeA"`
	TimeB                   *string `json:"timeB"`
	ProximaPartidaID        *int    `json:"proximaPartidaId"`
	PosicaoNaProximaPartida *int    `json:"posicaoNaProximaPartida"`
}

func (w wireMatch) match() bracket.Match {
	m := bracket.Match{
		ID:              w.ID,
		SlotA:           firstNonNil(w.TimeA, w.SlotA),
		SlotB:           firstNonNil(w.TimeB, w.SlotB),
		NextMatchID:     firstNonNil(w.ProximaPartidaID, w.NextMatchID),
		SlotInNextMatch: firstNonNil(w.PosicaoNaProximaPartida, w.SlotInNextMatch),
	}
	if r := firstNonNil(w.Fase, w.Round); r != nil {
		m.Round = *r
	}
	return m
}

func firstNonNil[T any](vals ...*T) *T {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// Decode reads a match list from r. The document is either a JSON array of
// matches or an upstream [Envelope]. Matches may use native or upstream
// field names. An empty document or JSON null decodes to an empty list.
func Decode(r io.Reader) ([]bracket.Match, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []bracket.Match{}, nil
	}

	var wire []wireMatch
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &wire); err != nil {
			return nil, fmt.Errorf("decode matches: %w", err)
		}
	case '{':
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w", err)
		}
		wire = env.Matches
	default:
		return nil, fmt.Errorf("decode matches: unexpected %q at start of document", data[0])
	}

	out := make([]bracket.Match, len(wire))
	for i, w := range wire {
		out[i] = w.match()
	}
	return out, nil
}

// DecodeBytes is [Decode] for an in-memory document.
func DecodeBytes(data []byte) ([]bracket.Match, error) {
	return Decode(bytes.NewReader(data))
}

// Encode returns the native JSON form of matches, readable by [Decode].
func Encode(matches []bracket.Match) ([]byte, error) {
	if matches == nil {
		matches = []bracket.Match{}
	}
	return json.Marshal(matches)
}
