// Package source supplies match lists to the bracket pipeline.
//
// The bracket engine treats the match list as an external input. This
// package provides the two places it comes from:
//
//   - [File]: a JSON file, either an array of matches or the upstream
//     bracket-generation envelope.
//   - [HTTP]: the upstream tournament REST API
//     (GET {base}/partidas/campeonato/{id}).
//
// Both accept the native field names (id, round, slot_a, slot_b,
// next_match_id, slot_in_next_match) and the upstream ones (id, fase, timeA,
// timeB, proximaPartidaId, posicaoNaProximaPartida); see [Decode].
//
// A championship whose bracket has not been generated yet is not an error:
// the upstream answers 404 and [HTTP.Matches] returns an empty list.
//
// [Static] wraps an in-memory list, used by the API for posted matches and by
// tests.
package source
