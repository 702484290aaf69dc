// Command ingestd runs the website ingestion service: same-origin page
// discovery, content extraction, chunking, and knowledge-base persistence
// behind an HTTP API.
package main
