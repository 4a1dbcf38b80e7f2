// Package telegram implements the Telegram Bot API channel for xinyong.
//
// It receives signed integer amounts from inline queries and chat messages,
// renders them into stickers through the "render.sticker" service, and
// answers:
//
//   - Inline queries with a cached-sticker result. The rendered WebP is
//     first uploaded to a configured cache chat to obtain a reusable
//     file_id, then offered via answerInlineQuery.
//   - Private and group messages whose text parses as an integer with a
//     sticker reply via multipart sendSticker.
//   - Two delivery modes: long-polling (default) and webhook through the
//     gateway dispatcher.
//
// The module registers itself as "channel.telegram" via init() and
// implements the full module lifecycle: Configure → Provision → Validate →
// Start → Stop.
//
// No external Telegram library is used — the module communicates with the
// Bot API via raw net/http + encoding/json.
package telegram
