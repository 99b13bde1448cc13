// Package mapper shapes raw pipeline stream events into the OpenAI Responses
// wire format. A Converter carries the per-request context (item id, sequence
// numbering, content indices) and turns each pipeline event into zero or more
// wire events; Aggregate folds a completed event sequence into one final
// Response object for non-streaming callers.
package mapper
